package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bashhack/dirlock/internal/config"
	"github.com/bashhack/dirlock/internal/constants"
	"github.com/bashhack/dirlock/internal/errors"
	"github.com/bashhack/dirlock/internal/lock"
	"github.com/bashhack/dirlock/internal/runner"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(9)
	freeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	heldStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   constants.AppName,
		Short: "Run commands in a directory one at a time",
		Long: `dirlock serializes commands that operate on the same directory.

Every process that goes through dirlock takes the lock in <dir>/.dirlock
before running its command, waits while another process holds it, and
gives up with an advisory message when the wait times out. Locks left
behind by crashed processes are reclaimed once they outlive --lifetime.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.started = true

			if err := a.Config.Load(viper.New(), cmd.Flags()); err != nil {
				return err
			}
			if err := a.Initialize(); err != nil {
				return err
			}

			a.restoreLevel = a.Logger.PushLevel(a.consoleLevel())
			return nil
		},
	}

	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	a.Config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.newInitCommand(),
		a.newRunCommand(),
		a.newStatusCommand(),
		a.newUnlockCommand(),
		a.newVersionCommand(),
	)

	return root
}

func (a *App) newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Start managing a directory with dirlock",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info, err := os.Stat(a.Config.Dir)
			if err != nil || !info.IsDir() {
				return errors.NewConfigError(config.KeyDir, a.Config.Dir,
					errors.Wrap(errors.ErrInvalidConfiguration, "not an existing directory"))
			}

			stateDir := a.Config.StateDir()
			if info, err := os.Stat(stateDir); err == nil && info.IsDir() {
				a.Logger.InfoToUser("%s is already managed by dirlock", a.Config.Dir)
				return nil
			}

			if err := os.MkdirAll(stateDir, 0755); err != nil {
				return errors.Wrapf(err, "failed to create %s", stateDir)
			}
			if scratch := a.Config.ScratchDir(); scratch != "" {
				if err := os.MkdirAll(scratch, 0755); err != nil {
					return errors.Wrapf(err, "failed to create %s", scratch)
				}
			}

			a.Logger.Success("Initialized dirlock in %s", a.Config.Dir)
			return nil
		},
	}
}

func (a *App) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- COMMAND [ARGS...]",
		Short: "Run a command while holding the directory lock",
		Example: `  dirlock run -- make build
  dirlock run --timeout 30s -- ./deploy.sh production`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			l, err := a.locker()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := l.Lock(ctx); err != nil {
				return err
			}
			defer func() {
				if uerr := l.Unlock(); uerr != nil {
					a.Logger.Warning("Failed to release %s: %v", l.LockFile(), uerr)
					if err == nil {
						err = uerr
					}
				}
			}()

			a.Logger.Debug("Running %q in %s", args, a.Config.Dir)

			return a.Executor.Run(ctx, runner.Command{
				Dir:    a.Config.Dir,
				Name:   args[0],
				Args:   args[1:],
				Stdin:  a.Stdin,
				Stdout: a.Stdout,
				Stderr: a.Stderr,
			})
		},
	}

	// Everything after the command name belongs to the command
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func (a *App) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show who holds the directory lock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.locker()
			if err != nil {
				return err
			}

			owner, err := l.Owner()
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", l.LockFile())
			}

			writeStatus(cmd.OutOrStdout(), l.LockFile(), owner)
			return nil
		},
	}
}

// writeStatus prints one labelled line per owner attribute
func writeStatus(w io.Writer, lockFile string, owner *lock.Owner) {
	line := func(label, value string) {
		_, _ = fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), value)
	}

	line("Lock", lockFile)

	if owner == nil {
		line("State", freeStyle.Render("unlocked"))
		return
	}

	switch {
	case owner.Stale:
		line("State", staleStyle.Render("stale"))
	default:
		line("State", heldStyle.Render("locked"))
	}

	if owner.Corrupt {
		line("Content", staleStyle.Render("unreadable"))
		line("Age", owner.Age.Round(time.Second).String())
		return
	}

	line("Host", owner.Token.Host)
	line("PID", strconv.Itoa(owner.Token.PID))
	line("Created", owner.Token.CreatedAt.Local().Format(time.RFC3339))
	line("Age", owner.Age.Round(time.Second).String())

	alive := mutedStyle.Render("unknown (other host)")
	if owner.Alive != nil {
		alive = yesNo(*owner.Alive)
	}
	line("Alive", alive)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) newUnlockCommand() *cobra.Command {
	var force, yes bool

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Remove an abandoned directory lock",
		Long: `Remove the directory lock when it is older than --lifetime.

With --force the lock is removed whatever its age. Only do this when the
process shown by 'dirlock status' is gone: the current owner keeps running
as if it still held the lock.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			l, err := a.locker()
			if err != nil {
				return err
			}

			owner, err := l.Owner()
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", l.LockFile())
			}
			if owner == nil {
				a.Logger.InfoToUser("%s is not locked", a.Config.Dir)
				return nil
			}

			if !owner.Stale {
				if !force {
					return errors.WithHint(ownerError(l.LockFile(), owner),
						"the lock has not expired; use --force if its owner is gone")
				}
				question := fmt.Sprintf("Remove the lock held by PID %d on %s?", owner.Token.PID, owner.Token.Host)
				if !yes && !a.Interactor.PromptYesNo(question) {
					return errors.Wrap(errors.ErrInterrupted, "lock left in place")
				}
			}

			broken, removed, err := l.Break(owner, force)
			if err != nil {
				return errors.Wrapf(err, "failed to remove %s", l.LockFile())
			}
			if !removed {
				if broken == nil {
					a.Logger.InfoToUser("%s was released in the meantime", a.Config.Dir)
					return nil
				}
				if !broken.Token.Equal(owner.Token) {
					return errors.WithHint(ownerError(l.LockFile(), broken),
						"the lock changed hands; check 'dirlock status' again")
				}
				return ownerError(l.LockFile(), broken)
			}

			if broken.Corrupt {
				a.Logger.Success("Removed unreadable lock %s", l.LockFile())
			} else {
				a.Logger.Success("Removed lock held by PID %d on %s", broken.Token.PID, broken.Token.Host)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove the lock even if it has not expired")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// ownerError reports a lock that is still held by owner
func ownerError(lockFile string, owner *lock.Owner) error {
	err := errors.NewLockError(lockFile, owner.Token.PID, errors.ErrLockUnavailable)
	err.Host = owner.Token.Host
	return err
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := a.Config.VersionInfo
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) built on %s\n",
				constants.AppName, info.Version, info.Commit, info.Date)
			return err
		},
	}
}
