package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sadopc/lifeos/internal/shell"
	"github.com/spf13/cobra"
)

const trayTimeout = 5 * time.Second

func newTrayCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "tray <show|quit>",
		Short:     "Send a tray command to a running shell",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(shell.TrayShow), string(shell.TrayQuit)},
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := shell.ParseTrayCommand(args[0])
			if err != nil {
				return err
			}
			_, cfg, err := o.loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), trayTimeout)
			defer cancel()
			if err := shell.SendTrayCommand(ctx, cfg.Shell.ControlSocket, tc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", tc)
			return nil
		},
	}
}
