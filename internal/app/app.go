package app

import (
	"io"
	"log/slog"

	"github.com/jcape/datatest/internal/config"
	"github.com/jcape/datatest/internal/directive"
	hclconf "github.com/jcape/datatest/internal/hcl"
)

// App encapsulates the generator's dependencies and configuration.
type App struct {
	outW    io.Writer
	errW    io.Writer
	logger  *slog.Logger
	config  *Config
	loaders []config.Loader
}

// NewApp creates a new application instance. Diffs go to outW; logs and
// diagnostics go to errW. Without explicit loaders both annotation
// surfaces are read: directive comments and the sibling HCL file.
func NewApp(outW, errW io.Writer, cfg *Config, loaders ...config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, errW)

	if len(loaders) == 0 {
		loaders = []config.Loader{
			directive.NewLoader(),
			hclconf.NewLoader(cfg.HCLFile),
		}
	}

	logger.Debug("App created.", "dirs", cfg.Dirs, "output", cfg.Output, "check", cfg.Check, "workers", cfg.Workers)

	return &App{
		outW:    outW,
		errW:    errW,
		logger:  logger,
		config:  cfg,
		loaders: loaders,
	}
}
