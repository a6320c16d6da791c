package main

import (
	"context"
	"fmt"

	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/spf13/cobra"
)

func newCheckinCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin",
		Short: "Print the check-in gate decision for today",
		Long: `Print "show" when today's check-in is missing and "stay-hidden" when it
exists. Anonymous sessions and store errors print "show". The exit code is
always zero.`,
		Args: cobra.NoArgs,
		RunE: withEnv(o, func(e *env, cmd *cobra.Command, args []string) error {
			eval := checkin.NewEvaluator(e.store, e.log.Named("checkin"), e.loc).WithClock(e.now)
			d := eval.Decide(context.Background(), &checkin.Session{UserID: e.cfg.Session.UserID})
			fmt.Fprintln(cmd.OutOrStdout(), d)
			return nil
		}),
	}
}
