package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"medscribe/config"
	"medscribe/controller"
	"medscribe/doctor"
	"medscribe/generate"
	"medscribe/log"
	"medscribe/prefs"
	"medscribe/shutdown"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.Context(context.Background())
	err = newRootCmd(cfg).ExecuteContext(ctx)
	stop()
	log.Close()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitError carries a process exit code out of a command that already
// reported its own failure.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "medscribe",
		Short:         "Turn clinical shorthand into patient notes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			setupLogging(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cfg)
		},
	}
	cfg.BindFlags(root.PersistentFlags(), guiAvailable)

	root.AddCommand(
		newGenerateCmd(cfg),
		newDoctorCmd(cfg),
		newVersionCmd(),
	)
	return root
}

// setupLogging resolves the log directory and opens the log files. Failures
// only warn; the app works without logs.
func setupLogging(cfg *config.Config) {
	logPath, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to resolve log directory: %v\n", err)
		return
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
		return
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
}

func runInteractive(ctx context.Context, cfg *config.Config) error {
	inj := newInjector(cfg)
	ctrl, err := do.Invoke[*controller.Controller](inj)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	st := ctrl.State()
	log.SessionStart(cfg.Endpoint, string(st.Mode), string(st.Theme))
	defer func() { log.SessionEnd(ctrl.Generated()) }()

	if cfg.GUI {
		return runGUI(ctx, ctrl)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the interactive UI needs a terminal; use 'medscribe generate' in scripts")
	}
	return runTUI(ctx, ctrl)
}

func newDoctorCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the endpoint, clipboard and preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inj := newInjector(cfg)
			client, err := do.Invoke[*generate.Client](inj)
			if err != nil {
				return err
			}
			store, err := do.Invoke[*prefs.Store](inj)
			if err != nil {
				return err
			}
			code := doctor.Run(cmd.Context(), cmd.OutOrStdout(), doctor.Options{
				Endpoint:  client.Endpoint(),
				Prober:    client.Tracer(),
				Store:     store,
				StorePath: store.Path(),
			})
			if code != 0 {
				// the report already says what failed
				cmd.SilenceErrors = true
				return &exitError{code: code}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "medscribe %s\n", version)
		},
	}
}
