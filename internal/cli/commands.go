package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/vk/assetforge/internal/app"
	"github.com/vk/assetforge/internal/events"
	"github.com/vk/assetforge/internal/processor"
)

func newBuildCommand(opts *globalOptions, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "build CONTENT_PATH",
		Short: "Build every asset that changed since the last successful build",
		Long: `Build every asset that changed since the last successful build.

CONTENT_PATH is a single .hcl file or a directory containing .hcl files.`,
		Args: contentArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(outW, args)
			if err != nil {
				return err
			}
			res, err := a.Build(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}
			switch {
			case res.Stopped:
				return &ExitError{Code: ExitFailure, Message: "build stopped before all assets were processed"}
			case res.Failed:
				return &ExitError{Code: ExitFailure, Message: fmt.Sprintf("build failed: %d asset(s) failed", res.Counts[events.StatusFailed])}
			}
			return nil
		},
	}
}

func newCheckCommand(opts *globalOptions, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "check CONTENT_PATH",
		Short: "List the assets a build would process, without building",
		Args:  contentArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(outW, args)
			if err != nil {
				return err
			}
			pending := a.Check(cmd.Context())
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All assets are up to date.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ASSET\tREASON")
			for _, p := range pending {
				fmt.Fprintf(w, "%s\t%s\n", p.Asset, p.Reason)
			}
			return w.Flush()
		},
	}
}

func newCleanCommand(opts *globalOptions, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "clean CONTENT_PATH",
		Short: "Remove every recorded build output and the dependency cache",
		Args:  contentArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.newApp(outW, args)
			if err != nil {
				return err
			}
			removed, err := a.Clean(cmd.Context())
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d file(s).\n", removed)
			return nil
		},
	}
}

func newProcessorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "processors",
		Short: "List the built-in processors and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			descriptors, err := app.BuiltinProcessors()
			if err != nil {
				return &ExitError{Code: ExitFailure, Message: err.Error()}
			}
			return printProcessors(cmd.OutOrStdout(), descriptors)
		},
	}
}

func printProcessors(out io.Writer, descriptors []*processor.Descriptor) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, d := range descriptors {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\t%s\n", d.Name, d.Description)
		fmt.Fprintf(w, "  extensions\t%s\n", strings.Join(d.Extensions, ", "))
		for _, p := range d.Parameters {
			typ := p.Type.String()
			if p.Type == processor.TypeEnum {
				typ += " (" + strings.Join(p.Values, "|") + ")"
			}
			fmt.Fprintf(w, "  %s\t%s\tdefault %q\t%s\n", p.Name, typ, p.Default, p.Description)
		}
	}
	return w.Flush()
}
