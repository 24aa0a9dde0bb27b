package app

import (
	"io"
	"log/slog"
)

// App wires the fit pipeline together behind a single Run call.
type App struct {
	outW   io.Writer
	errW   io.Writer
	inR    io.Reader
	logger *slog.Logger
	cfg    *Config
}

// NewApp constructs the application with its own isolated logger. Logs and
// notices go to errW; outW carries only the rendered result.
func NewApp(outW, errW io.Writer, inR io.Reader, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)
	return &App{outW: outW, errW: errW, inR: inR, logger: logger, cfg: cfg}
}
