package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sirkon/checkverify/internal/checks"
	"github.com/sirkon/checkverify/internal/failure"
	"github.com/sirkon/checkverify/internal/report"
)

// Exit codes besides class specific ones of setup errors.
const (
	exitPassed   = 0
	exitMismatch = 1
	exitUsage    = 2
)

// app keeps global flags and output streams shared by commands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	color   string
	verbose bool
	config  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	root := a.rootCmd()
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errMismatch) {
		fmt.Fprintln(stderr, "error:", err)
	}

	return exitCode(err)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "checkverify",
		Short: "Verify static-analysis checks against annotated Go fixtures",
		Long: `checkverify runs error handling checks over Go fixtures and compares issues they
raise with issues declared in fixture comments:

	os.Remove(path) // Noncompliant {{error returned by os.Remove is dropped}}`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.color, "color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log verification stages to stderr")
	root.PersistentFlags().StringVar(&a.config, "config", "", "check configuration file (yaml or toml)")

	root.AddCommand(a.verifyCmd())
	root.AddCommand(a.suiteCmd())
	root.AddCommand(a.checksCmd())

	return root
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

func (a *app) colored() (bool, error) {
	switch a.color {
	case "auto":
		return a.stdout == os.Stdout && report.ColorAuto(), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, failure.New(failure.Configuration, "", 0, "invalid --color value %q, use auto, on or off", a.color)
	}
}

func (a *app) checkConfig() (*checks.Config, error) {
	if a.config == "" {
		return nil, nil
	}

	cfg, err := checks.LoadConfig(a.config)
	if err != nil {
		return nil, failure.Wrap(failure.Configuration, a.config, err, "load check config")
	}

	return cfg, nil
}

// errMismatch reports a verification that ran and failed. Its report has been printed already.
var errMismatch = errors.New("verification failed")

func exitCode(err error) int {
	if err == nil {
		return exitPassed
	}
	if errors.Is(err, errMismatch) {
		return exitMismatch
	}
	if class, ok := failure.ClassOf(err); ok {
		return class.ExitCode()
	}

	// Flag and argument errors of cobra.
	return exitUsage
}
