package main

//go:generate mockgen -source=app.go -destination=mock_app_test.go -package=main
//go:generate mockgen -destination=mock_runner_test.go -package=main github.com/bashhack/dirlock/internal/runner Executor,Interactor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bashhack/dirlock/internal/common"
	"github.com/bashhack/dirlock/internal/config"
	"github.com/bashhack/dirlock/internal/constants"
	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/lock"
	"github.com/bashhack/dirlock/internal/logger"
	"github.com/bashhack/dirlock/internal/metrics"
	"github.com/bashhack/dirlock/internal/runner"
)

// Locker is the part of *lock.Lock the commands use
type Locker interface {
	Lock(ctx context.Context) error
	Unlock() error
	Owner() (*lock.Owner, error)
	Break(expected *lock.Owner, force bool) (*lock.Owner, bool, error)
	LockFile() string
}

// LockerFactory creates the Locker for a finalized configuration
type LockerFactory func(cfg *config.Config, log common.Logger, m *metrics.Collector) (Locker, error)

// AppOptions contains app configuration and dependencies
type AppOptions struct {
	// Required
	Config *config.Config

	// Optional components
	Logger     logger.Logger
	Metrics    *metrics.Collector
	Executor   runner.Executor
	Interactor runner.Interactor
	NewLocker  LockerFactory

	// I/O dependencies
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// System dependencies
	Exit func(code int)
}

// App is the main dirlock application
type App struct {
	Config     *config.Config
	Logger     logger.Logger
	Metrics    *metrics.Collector
	Executor   runner.Executor
	Interactor runner.Interactor

	// I/O streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	newLocker LockerFactory
	exit      func(code int)

	// started is set once a command's arguments were parsed successfully
	started      bool
	restoreLevel func()
}

// NewDefaultApp creates an App with standard dependencies
func NewDefaultApp(versionInfo config.VersionInfo) *App {
	cfg := config.New()
	cfg.VersionInfo = versionInfo

	return NewApp(AppOptions{
		Config:   cfg,
		Executor: runner.NewExecExecutor(),
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Exit:     os.Exit,
	})
}

// NewApp creates an App with custom dependencies
func NewApp(opts AppOptions) *App {
	if opts.Config == nil {
		panic("Config is required in AppOptions")
	}

	app := &App{
		Config:     opts.Config,
		Logger:     opts.Logger,
		Metrics:    opts.Metrics,
		Executor:   opts.Executor,
		Interactor: opts.Interactor,
		Stdin:      opts.Stdin,
		Stdout:     opts.Stdout,
		Stderr:     opts.Stderr,
		newLocker:  opts.NewLocker,
		exit:       opts.Exit,
	}

	// Set defaults for nil dependencies
	if app.Stdin == nil {
		app.Stdin = os.Stdin
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.exit == nil {
		app.exit = os.Exit
	}
	if app.Executor == nil {
		app.Executor = runner.NewExecExecutor()
	}
	if app.newLocker == nil {
		app.newLocker = newFileLocker
	}

	return app
}

// newFileLocker creates the filesystem lock for the managed directory
func newFileLocker(cfg *config.Config, log common.Logger, m *metrics.Collector) (Locker, error) {
	l, err := lock.New(cfg.LockFile(),
		lock.WithScratchDir(cfg.ScratchDir()),
		lock.WithTimeout(cfg.Timeout),
		lock.WithLifetime(cfg.Lifetime),
		lock.WithRetryInterval(cfg.RetryInterval),
		lock.WithLogger(log),
		lock.WithMetrics(m),
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Initialize sets up components not provided during construction
func (a *App) Initialize() error {
	if err := a.Config.Finalize(); err != nil {
		// Config.Finalize already returns a properly wrapped error
		if errors.Is(err, errors.ErrInvalidConfiguration) {
			return err
		}
		return errors.Wrap(errors.ErrInvalidConfiguration, err.Error())
	}

	if a.Logger == nil {
		l := logger.NewWithOutput(a.Config.LogFile != "", a.Config.LogFile, logger.WarnLevel, a.Stdout, a.Stderr)
		logger.SetDefault(l)
		a.Logger = l
	} else if a.Config.LogFile != "" {
		if fl, ok := a.Logger.(*logger.DefaultLogger); ok {
			if err := fl.EnableFile(a.Config.LogFile); err != nil {
				a.Logger.Warning("Failed to open log file %s: %v", a.Config.LogFile, err)
			}
		}
	}

	if a.Metrics == nil && a.Config.MetricsFile != "" {
		a.Metrics = metrics.New()
	}

	if a.Interactor == nil {
		a.Interactor = runner.NewInteractor(a.Logger)
	}

	return nil
}

// consoleLevel returns the verbosity requested for this invocation
func (a *App) consoleLevel() logger.Level {
	switch {
	case a.Config.Quiet:
		return logger.ErrorLevel
	case a.Config.Verbose:
		return logger.DebugLevel
	default:
		return logger.WarnLevel
	}
}

// locker checks that the directory is managed and creates its lock
func (a *App) locker() (Locker, error) {
	info, err := os.Stat(a.Config.StateDir())
	if err != nil || !info.IsDir() {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrNotManaged, "%s", a.Config.Dir),
			"run `dirlock init` in the directory first")
	}

	l, err := a.newLocker(a.Config, a.Logger, a.Metrics)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize lock")
	}
	return l, nil
}

// Execute runs the command line args and returns the process exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	a.started = false
	root := a.newRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if a.restoreLevel != nil {
		a.restoreLevel()
		a.restoreLevel = nil
	}
	if err != nil && !a.started {
		err = newUsageError(err)
	}

	code := ExitCode(err)
	a.report(err, code)

	if err := a.Close(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
	}

	return code
}

// report prints err and, for failures of dirlock itself, the footer
func (a *App) report(err error, code int) {
	if err == nil {
		return
	}

	if isCommandFailure(err) {
		if a.Logger != nil {
			a.Logger.Debug("%v", err)
		}
		return
	}

	msg := err.Error()
	if code == ExitInterrupted {
		msg = errors.ErrInterrupted.Error()
	}

	if a.Logger != nil {
		a.Logger.Error("%s", msg)
	} else {
		_, _ = fmt.Fprintf(a.Stderr, "❌ %s\n", msg)
	}
	for _, hint := range errors.GetAllHints(err) {
		_, _ = fmt.Fprintf(a.Stderr, "💡 %s\n", hint)
	}

	_, _ = fmt.Fprintf(a.Stderr, "\n%s\n", constants.Footer)
}

// Close writes the metrics file and closes the log file
func (a *App) Close() error {
	var errs []error

	if a.Metrics != nil && a.Config.MetricsFile != "" {
		if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
			errs = append(errs, errors.Wrapf(err, "failed to write metrics to %s", a.Config.MetricsFile))
		}
	}

	if a.Logger != nil {
		if err := a.Logger.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close logger"))
		}
	}

	return errors.Join(errs...)
}

// CleanupOnSignal releases every held lock when the process is interrupted
func (a *App) CleanupOnSignal() {
	lock.FinalizeAll()
	if err := a.Close(); err != nil {
		_, _ = fmt.Fprintf(a.Stderr, "❌ Error during cleanup: %v\n", err)
	}
}
