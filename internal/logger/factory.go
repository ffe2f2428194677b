// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package logger

import (
	"github.com/rs/zerolog"
)

// Static logger getters that map directly to config.yaml log.levels
// These ensure consistent logger names across the codebase

// GetDispatchLogger returns a logger for the tick loop and dispatchers
func GetDispatchLogger() zerolog.Logger {
	return GetLogger("dispatch")
}

// GetRegistryLogger returns a logger for command registration
func GetRegistryLogger() zerolog.Logger {
	return GetLogger("registry")
}

// GetRouterLogger returns a logger for response routing
func GetRouterLogger() zerolog.Logger {
	return GetLogger("router")
}

// GetStdioLogger returns a logger for the terminal line editor front end
func GetStdioLogger() zerolog.Logger {
	return GetLogger("stdio")
}

// GetTUILogger returns a logger for TUI components
func GetTUILogger() zerolog.Logger {
	return GetLogger("tui")
}

// GetAPILogger returns a logger for the websocket front end
func GetAPILogger() zerolog.Logger {
	return GetLogger("api")
}

// GetScriptLogger returns a logger for the scripted front end
func GetScriptLogger() zerolog.Logger {
	return GetLogger("script")
}

// GetTelemetryLogger returns a logger for tracing setup
func GetTelemetryLogger() zerolog.Logger {
	return GetLogger("telemetry")
}
