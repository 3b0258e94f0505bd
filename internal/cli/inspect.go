package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/pkg/domain"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of portscope",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portscope version %s\n", portscope.Version)
		},
	}
}

// NewPortsCommand creates the ports command.
func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List the data ports of a graph node",
		Example: `  # Ports of the selected graph
  portscope ports

  # Ports of a named graph, as JSON
  portscope ports -n bifrostGraphShape1 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			node, err := c.Node(ctx, cmd)
			if err != nil {
				return err
			}
			names, err := c.App.Inspector.ListPorts(ctx, node)
			if err != nil {
				return err
			}
			return c.Renderer.Ports(node, names)
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var (
		maxRows  int
		watch    bool
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "show <port>",
		Short: "Show one port as a table",
		Long: `Reads one port and prints its values with the plug type, the number of
values and the min/max of the first column. With --watch the port is re-read
every --interval and printed again whenever it changes.`,
		Example: `  portscope show points
  portscope show points -o csv > points.csv
  portscope show weights --watch --interval 500ms`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, maxRows)
			if err != nil {
				return err
			}
			defer cleanup()

			port := args[0]
			ctx := cmd.Context()
			node, err := c.Node(ctx, cmd)
			if err != nil {
				return err
			}

			if !watch {
				result, err := c.App.Inspector.Extract(ctx, node, port)
				if err != nil {
					return err
				}
				return c.Renderer.Result(port, result)
			}

			sigCtx := NewSignalContext(ctx)
			defer sigCtx.Cancel()
			printSystemMessage(c.Out, "Watching '%s.%s' every %s.", node, port, interval)
			return Watch(sigCtx, c.App.Inspector, WatchOptions{
				Node:     node,
				Port:     port,
				Interval: interval,
				Logger:   c.App.Logger,
			}, func(result *domain.ExtractionResult) error {
				printSystemMessage(c.Out, "%s", time.Now().Format(time.TimeOnly))
				return c.Renderer.Result(port, result)
			})
		},
	}
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Print at most this many rows (0 for all)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-read the port and print it when it changes")
	cmd.Flags().DurationVar(&interval, "interval", DefaultWatchInterval, "Polling interval for --watch")
	return cmd
}

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	var maxRows int
	cmd := &cobra.Command{
		Use:   "dump [port...]",
		Short: "Show several ports, all of them by default",
		Long: `Reads the given ports, or every port of the node, concurrently
(--workers at a time) and prints them one after another. Ports without
readable data are reported as such.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, maxRows)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			node, err := c.Node(ctx, cmd)
			if err != nil {
				return err
			}
			order := args
			if len(order) == 0 {
				if order, err = c.App.Inspector.ListPorts(ctx, node); err != nil {
					return err
				}
			}
			results, err := c.App.Inspector.ExtractAll(ctx, node, order)
			if err != nil {
				return err
			}
			return c.Renderer.Dump(node, order, results)
		},
	}
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "Print at most this many rows per port (0 for all)")
	return cmd
}

// NewMarkersCommand creates the markers command.
func NewMarkersCommand() *cobra.Command {
	var (
		rows   []int
		column int
	)
	cmd := &cobra.Command{
		Use:   "markers <port>",
		Short: "Create locators at the positions or matrices held by a port",
		Long: `Reads a port of a position (float3, double3, long3, short3) or matrix type
and creates one space locator per row of --column, or only for --rows.
Values that are not a valid position or matrix are skipped. The new
locators are selected.`,
		Example: `  portscope markers points
  portscope markers transforms --rows 0,4,8`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			port := args[0]
			ctx := cmd.Context()
			node, err := c.Node(ctx, cmd)
			if err != nil {
				return err
			}
			result, err := c.App.Inspector.Extract(ctx, node, port)
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("%w: %s.%s has no readable data", domain.ErrNoSelection, node, port)
			}

			names, err := c.App.Inspector.CreateMarkersFromCells(ctx, result, cellRefs(result, rows, column))
			if err != nil {
				return err
			}
			if len(names) == 0 {
				return errors.New("no valid values to place markers at")
			}
			for _, name := range names {
				fmt.Fprintln(c.Out, name)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&rows, "rows", nil, "Rows to place markers for (default: all)")
	cmd.Flags().IntVar(&column, "column", 0, "Column to read")
	return cmd
}

// cellRefs selects rows of one column; no rows means every row.
func cellRefs(result *domain.ExtractionResult, rows []int, column int) []domain.CellRef {
	if len(rows) == 0 {
		n := 0
		if column >= 0 && column < result.Columns() {
			n = len(result.Data[column])
		}
		rows = make([]int, n)
		for i := range rows {
			rows[i] = i
		}
	}
	cells := make([]domain.CellRef, len(rows))
	for i, r := range rows {
		cells[i] = domain.CellRef{Row: r, Column: column}
	}
	return cells
}
