package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abelbrown/lookout/internal/ipc"
	"github.com/abelbrown/lookout/internal/store"
)

// newSignalCommand builds a subcommand that sends name to the running
// instance.
func newSignalCommand(opts *rootOptions, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			err = ipc.Signal(cfg.SocketPath(), name)
			if errors.Is(err, ipc.ErrNotRunning) {
				return fmt.Errorf("no lookout instance listening on %s", cfg.SocketPath())
			}
			return err
		},
	}
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var limit int
	var forget string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the most launched entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			st, err := store.Open(filepath.Join(cfg.DataDir(), "lookout.db"))
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if forget != "" {
				if err := st.Forget(ctx, forget); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "forgot %q\n", forget)
				return nil
			}

			top, err := st.Top(ctx, limit)
			if err != nil {
				return err
			}
			if len(top) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing launched yet")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COUNT\tLAST USED\tENTRY")
			for _, u := range top {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", u.Count, u.LastUsed.Format("2006-01-02 15:04"), u.Key)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	cmd.Flags().StringVar(&forget, "forget", "", "reset the launch count of an entry")
	return cmd
}
