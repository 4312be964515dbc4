package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vk/assetforge/internal/app"
)

// Exit codes.
const (
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	output          string
	logLevel        string
	logFormat       string
	force           bool
	statusPort      int
	eventsURL       string
	eventsNamespace string
}

// config validates the flags into an app.Config for contentPath.
func (o *globalOptions) config(contentPath string) (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ContentPath:     contentPath,
		OutputPath:      o.output,
		LogFormat:       o.logFormat,
		LogLevel:        o.logLevel,
		Force:           o.force,
		StatusPort:      o.statusPort,
		EventsURL:       o.eventsURL,
		EventsNamespace: o.eventsNamespace,
	})
	if err != nil {
		return nil, usageError(err)
	}
	slog.Debug("CLI parameter validation complete.", "config", cfg)
	return cfg, nil
}

// newApp loads the content declared at args[0].
func (o *globalOptions) newApp(outW io.Writer, args []string) (*app.App, error) {
	cfg, err := o.config(args[0])
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(outW, cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Message: err.Error()}
	}
	return a, nil
}

// NewRootCommand builds the assetforge command tree writing to outW.
func NewRootCommand(outW io.Writer) *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "assetforge",
		Short: "Incremental build pipeline for game assets",
		Long: `AssetForge - incremental build pipeline for game assets.

Assets are declared in .hcl content files together with their processors,
parameters and bundles. Only assets whose declaration, inputs or outputs
changed since the last successful build are processed again.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.output, "output", "o", envString("ASSETFORGE_OUTPUT", ""), "Override the content's output directory.")
	flags.StringVar(&opts.logLevel, "log-level", envString("ASSETFORGE_LOG_LEVEL", "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", envString("ASSETFORGE_LOG_FORMAT", "text"), "Log output format. Options: 'text' or 'json'.")
	flags.BoolVarP(&opts.force, "force", "f", envBool("ASSETFORGE_FORCE"), "Rebuild every asset regardless of the dependency cache.")
	flags.IntVar(&opts.statusPort, "status-port", envInt("ASSETFORGE_STATUS_PORT"), "Port for the HTTP status server. 0 is disabled.")
	flags.StringVar(&opts.eventsURL, "events-url", envString("ASSETFORGE_EVENTS_URL", ""), "socket.io server that receives build events.")
	flags.StringVar(&opts.eventsNamespace, "events-namespace", envString("ASSETFORGE_EVENTS_NAMESPACE", "/"), "socket.io namespace for build events.")

	root.AddCommand(
		newBuildCommand(opts, outW),
		newCheckCommand(opts, outW),
		newCleanCommand(opts, outW),
		newProcessorsCommand(),
	)
	return root
}

// Execute runs the command line args. Errors are always *ExitError; errors
// cobra reports before a command runs are usage errors.
func Execute(ctx context.Context, args []string, outW io.Writer) error {
	slog.Debug("CLI parser started.")
	root := NewRootCommand(outW)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return usageError(err)
}

func contentArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError(fmt.Errorf("%s requires exactly one CONTENT_PATH argument, got %d", cmd.CommandPath(), len(args)))
	}
	return nil
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func envInt(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return v
}
