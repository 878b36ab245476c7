package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/mpcalc/internal/calibration"
	"github.com/agbru/mpcalc/internal/cli"
	"github.com/agbru/mpcalc/internal/config"
	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/eval"
	"github.com/agbru/mpcalc/internal/logging"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/server"
	"github.com/agbru/mpcalc/internal/ui"
)

// Application represents the mpcalc application instance.
type Application struct {
	Config     config.AppConfig
	Registry   *eval.Registry
	Strategies *orchestration.StrategyRegistry
	// Profile is the loaded calibration profile, nil when none applies.
	Profile   *calibration.CalibrationProfile
	Logger    logging.Logger
	In        io.Reader
	ErrWriter io.Writer
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithRegistry sets the operation registry.
func WithRegistry(r *eval.Registry) AppOption {
	return func(a *Application) { a.Registry = r }
}

// WithStrategies sets the exptmod strategies used by --compare and the REPL.
func WithStrategies(s *orchestration.StrategyRegistry) AppOption {
	return func(a *Application) { a.Strategies = s }
}

// WithLogger sets the application logger.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// WithInput sets the REPL input.
func WithInput(in io.Reader) AppOption {
	return func(a *Application) { a.In = in }
}

// New creates a new Application instance by parsing command-line arguments.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter, In: os.Stdin}
	for _, opt := range opts {
		opt(app)
	}
	if app.Registry == nil {
		app.Registry = eval.DefaultRegistry()
	}

	programName := "mpcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Registry.List())
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	if app.Logger == nil {
		logger, err := logging.New(errWriter, logging.Options{
			Component: "mpcalc",
			Level:     cfg.LogLevel,
			Console:   !cfg.Serve,
			NoColor:   cfg.NoColor,
		})
		if err != nil {
			return nil, apperrors.NewConfigError("--log-level: %v", err)
		}
		app.Logger = logger
	}
	if app.Strategies == nil {
		app.Strategies = orchestration.DefaultStrategies(cfg.Window)
	}

	if !cfg.Calibrate {
		if p, ok := calibration.LoadOrCreateProfile(app.profilePath()); ok {
			app.Profile = p
			app.Logger.Debug("calibration profile loaded", logging.String("path", app.profilePath()))
			if p.IsStale(calibration.DefaultStaleAfter) {
				app.Logger.Warn("calibration profile is stale, rerun with --calibrate",
					logging.String("calibrated_at", p.CalibratedAt.Format("2006-01-02")))
			}
		}
	}
	return app, nil
}

// Run executes the application based on the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	case a.Config.REPL:
		return a.runREPL(out)
	case a.Config.Serve:
		return a.runServe(ctx)
	}
	return a.runCalculate(ctx, out)
}

func (a *Application) profilePath() string {
	if a.Config.CalibrationProfile != "" {
		return a.Config.CalibrationProfile
	}
	return calibration.GetDefaultProfilePath()
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Registry.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCalibration times the reductions and saves the resulting profile.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "--- Calibration ---\n")
	profile, err := calibration.RunCalibration(ctx, out, calibration.Options{Logger: a.Logger})
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, out)
	}
	path := a.profilePath()
	if err := profile.SaveProfile(path); err != nil {
		a.Logger.Error("cannot save calibration profile", err, logging.String("path", path))
		return apperrors.ExitErrorGeneric
	}
	fmt.Fprintf(out, "\n%s✓ Profile saved to: %s%s%s\n", ui.ColorGreen(), ui.ColorCyan(), path, ui.ColorReset())
	return apperrors.ExitSuccess
}

// runREPL starts the interactive register machine.
func (a *Application) runREPL(out io.Writer) int {
	expt, err := a.exptOptions()
	if err != nil {
		return apperrors.HandleCalculationError(err, 0, a.ErrWriter)
	}
	repl := cli.NewREPL(cli.REPLConfig{
		Timeout:    a.Config.Timeout,
		Radix:      a.Config.Radix,
		Expt:       expt,
		Strategies: a.Strategies,
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runServe runs the HTTP service until SIGINT or SIGTERM.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := server.DefaultConfig(a.Config.Addr)
	cfg.EvalTimeout = a.Config.Timeout
	if err := server.New(cfg, a.Registry, a.Logger).ListenAndServe(ctx); err != nil {
		a.Logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
