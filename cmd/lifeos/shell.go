package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/sadopc/lifeos/internal/config"
	"github.com/sadopc/lifeos/internal/shell"
	"github.com/sadopc/lifeos/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// decisions queued between the evaluator and the controller
const bridgeBuffer = 4

func newShellCmd(o *rootOptions) *cobra.Command {
	var (
		forceShow bool
		keepAlive bool
		noTray    bool
	)
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Run the gated terminal UI",
		Long: `Start the terminal UI hidden behind the check-in gate.

The window reveals itself when today's check-in is missing. Otherwise it
stays in the tray strip until "lifeos tray show" or the o key opens it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(false)
			if err != nil {
				return err
			}
			defer e.close()

			if cmd.Flags().Changed("force-show") {
				e.cfg.Shell.ForceShowOnTimeout = forceShow
			}
			if cmd.Flags().Changed("keep-alive") {
				e.cfg.Shell.KeepAliveOnClose = keepAlive
			}
			return runShell(e, !noTray)
		},
	}
	cmd.Flags().BoolVar(&forceShow, "force-show", false, "reveal the window when no decision arrives in time")
	cmd.Flags().BoolVar(&keepAlive, "keep-alive", false, "keep running in the tray after the window closes")
	cmd.Flags().BoolVar(&noTray, "no-tray", false, "do not bind the control socket")
	return cmd
}

func runShell(e *env, withTray bool) error {
	log := e.log.Named("shell")
	bridge := shell.NewBridge(bridgeBuffer, e.log.Named("bridge"))

	opts := shell.Options{
		Timeout:          e.cfg.Shell.DecisionTimeout,
		KeepAliveOnClose: e.cfg.Shell.KeepAliveOnClose,
		Policy:           shell.PolicyFor(e.cfg.Shell.ForceShowOnTimeout),
	}
	if withTray {
		socket := e.cfg.Shell.ControlSocket
		opts.NewTray = func() (shell.Tray, error) {
			t, err := shell.ListenTray(socket, e.log.Named("tray"))
			if err != nil {
				return nil, err
			}
			return t, nil
		}
	}
	ctrl := shell.NewController(bridge, log, opts)

	eval := checkin.NewEvaluator(e.store, e.log.Named("checkin"), e.loc).WithClock(e.now)
	session := &checkin.Session{UserID: e.cfg.Session.UserID}
	if !session.Authenticated() {
		log.Info("anonymous session, check-in gate will show the window")
	}

	app := tui.NewApp(tui.Deps{
		Store:      e.store,
		Controller: ctrl,
		Bridge:     bridge,
		Evaluator:  eval,
		Session:    session,
		Log:        e.log,
		Location:   e.loc,
		Now:        e.now,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())

	e.loader.Watch(log, func(cfg *config.Config) {
		p.Send(shell.PolicyMsg{ForceShow: cfg.Shell.ForceShowOnTimeout})
	})

	log.Info("starting shell",
		zap.Duration("decision_timeout", opts.Timeout),
		zap.Bool("keep_alive_on_close", opts.KeepAliveOnClose),
		zap.Bool("tray", withTray))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run shell: %w", err)
	}
	return nil
}
