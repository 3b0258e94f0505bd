// Package cli implements the portscope command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/portscope/internal/config"
	"github.com/aretw0/portscope/internal/presentation/table"
	"github.com/aretw0/portscope/internal/presentation/tui"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portscope",
		Short: "Inspect the data flowing through graph node ports",
		Long: `portscope reads the ports of a Bifrost graph node in a running Maya session
(through its Python command port) and shows them as tables: one column per
array, the declared plug type, and the min/max of the first column.

Start the command port in Maya with:
  commandPort -n ":7001" -stp "python";

Use --scene to read a YAML scene file instead of a live session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./portscope.yaml)")
	pf.Bool("debug", false, "Enable debug logging on stderr")
	pf.String("scene", "", "Read a YAML scene file instead of a live Maya session")
	pf.String("host", config.DefaultHostAddr, "Maya command port address")
	pf.Duration("timeout", config.DefaultHostTimeout, "Command port round-trip timeout")
	pf.StringP("output", "o", config.DefaultOutput, "Output format (table|csv|markdown|json)")
	pf.String("color", config.DefaultColor, "Colour plug types (auto|always|never)")
	pf.Int("workers", config.DefaultWorkers, "Ports read concurrently by dump")
	pf.StringP("node", "n", "", "Graph node (default: first graph under the scene selection)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "csv", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "always", "never"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewPortsCommand())
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewDumpCommand())
	rootCmd.AddCommand(NewMarkersCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewMCPCommand())
	rootCmd.AddCommand(NewSessionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// CommandContext carries what a command needs once configuration is loaded.
type CommandContext struct {
	App      *App
	Renderer *table.Renderer
	Out      io.Writer
}

// NewCommandContext loads configuration from the command's flags and builds the App.
// maxRows truncates rendered tables; 0 prints every row. Call cleanup when done.
func NewCommandContext(cmd *cobra.Command, maxRows int) (*CommandContext, func(), error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if cfg.Debug && cfg.File != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", cfg.File)
	}

	format, err := table.ParseFormat(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	app, err := NewApp(cfg)
	if err != nil {
		return nil, nil, err
	}

	out := cmd.OutOrStdout()
	opts := []table.Option{
		table.WithFormat(format),
		table.WithColorProfile(tui.ColorProfile(cfg.Color)),
		table.WithMaxRows(maxRows),
	}
	if format == table.FormatMarkdown && out == os.Stdout && tui.IsTerminal(os.Stdout) {
		if md, err := tui.NewRenderer(); err == nil {
			opts = append(opts, table.WithMarkdownRenderer(md))
		}
	}

	cleanup := func() {
		if err := app.Close(); err != nil {
			app.Logger.Warn("cleanup failed", "err", err)
		}
	}
	return &CommandContext{
		App:      app,
		Renderer: table.New(out, opts...),
		Out:      out,
	}, cleanup, nil
}

// Node resolves --node, falling back to the first graph under the scene selection.
func (c *CommandContext) Node(ctx context.Context, cmd *cobra.Command) (string, error) {
	node, _ := cmd.Flags().GetString("node")
	return c.App.Inspector.ResolveNode(ctx, node)
}
