package app

import (
	"log/slog"

	"churnboard.telecomx.org/internal/appconf"
	"churnboard.telecomx.org/internal/dashboard"
	"churnboard.telecomx.org/internal/dataset"
)

// Application holds the dependencies shared by the HTTP handlers, helpers
// and middleware.
type Application struct {
	Config    appconf.Config
	Logger    *slog.Logger
	Dashboard *dashboard.Service
	LoadStats dataset.LoadStats
}
