package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSessionCommand creates the session command and its subcommands.
func NewSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage viewer sessions",
		Long: `List, inspect, and remove the viewer sessions kept by 'portscope serve'.
Only useful with a shared backend (sessions.backend: redis).`,
	}
	cmd.AddCommand(newSessionLsCommand())
	cmd.AddCommand(newSessionInspectCommand())
	cmd.AddCommand(newSessionRmCommand())
	return cmd
}

func newSessionLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all active sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			ids, err := c.App.Sessions.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing sessions: %w", err)
			}
			if len(ids) == 0 {
				fmt.Fprintln(c.Out, "No active sessions found.")
				return nil
			}
			fmt.Fprintln(c.Out, "Active Sessions:")
			for _, id := range ids {
				fmt.Fprintln(c.Out, "- "+id)
			}
			return nil
		},
	}
}

func newSessionInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Print a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			sess, err := c.App.Sessions.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error loading session '%s': %w", args[0], err)
			}
			data, err := json.MarshalIndent(sess, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, string(data))
			return nil
		},
	}
}

func newSessionRmCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "rm <session-id>...",
		Short: "Remove one or more sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return errors.New("requires at least 1 session id, or --all")
			}
			c, cleanup, err := NewCommandContext(cmd, 0)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			if all {
				if args, err = c.App.Sessions.List(ctx); err != nil {
					return fmt.Errorf("error listing sessions: %w", err)
				}
			}

			var errs []error
			for _, id := range args {
				if err := c.App.Sessions.Delete(ctx, id); err != nil {
					errs = append(errs, fmt.Errorf("error removing '%s': %w", id, err))
					continue
				}
				fmt.Fprintf(c.Out, "Removed session '%s'\n", id)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Remove every session")
	return cmd
}
