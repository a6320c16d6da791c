package shell

import (
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/lifeos/internal/checkin"
	"go.uber.org/zap"
)

const DefaultDecisionTimeout = 10 * time.Second

// TimeoutPolicy decides whether an expired decision timeout forces the
// window visible.
type TimeoutPolicy func(state WindowState) bool

// LogOnly leaves the window as it is.
func LogOnly(WindowState) bool { return false }

// ForceShow reveals the window.
func ForceShow(WindowState) bool { return true }

func PolicyFor(forceShow bool) TimeoutPolicy {
	if forceShow {
		return ForceShow
	}
	return LogOnly
}

// DefaultKeepAliveOnClose follows the platform convention.
func DefaultKeepAliveOnClose() bool {
	return runtime.GOOS == "darwin"
}

type Options struct {
	Timeout          time.Duration
	KeepAliveOnClose bool
	Policy           TimeoutPolicy
	// NewTray creates the tray. A nil func or an error leaves the tray absent.
	NewTray func() (Tray, error)
}

// Controller is the window visibility state machine. It is a bubbletea
// sub-model: all state changes happen in Update on the program loop.
type Controller struct {
	log    *zap.Logger
	opts   Options
	bridge *Bridge
	tray   Tray

	state         WindowState
	ready         bool
	pendingReveal bool
	decided       bool
	lastDecision  checkin.Decision
	gen           int
}

func NewController(bridge *Bridge, log *zap.Logger, opts Options) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDecisionTimeout
	}
	if opts.Policy == nil {
		opts.Policy = LogOnly
	}
	return &Controller{
		log:    log,
		opts:   opts,
		bridge: bridge,
		state:  Initializing,
	}
}

// Init creates the tray, arms the decision timeout and starts listening.
func (c *Controller) Init() tea.Cmd {
	cmds := []tea.Cmd{c.armTimeout()}
	if c.bridge != nil {
		cmds = append(cmds, c.bridge.listen())
	}
	if c.opts.NewTray != nil {
		t, err := c.opts.NewTray()
		if err != nil {
			c.log.Warn("tray unavailable, continuing without it", zap.Error(err))
		} else {
			c.tray = t
			cmds = append(cmds, listenTray(t))
		}
	}
	return tea.Batch(cmds...)
}

func (c *Controller) State() WindowState { return c.state }

func (c *Controller) Visibility() VisibilityState {
	v := VisibilityState{Window: c.state, Tray: TrayAbsent}
	if c.tray != nil {
		v.Tray = TrayPresent
	}
	return v
}

func (c *Controller) Visible() bool { return c.state == Visible }

func (c *Controller) LastDecision() checkin.Decision { return c.lastDecision }

func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case bridgeMsg:
		cmd := c.onDecision(msg.decision)
		if c.state == Destroyed {
			return cmd
		}
		return tea.Batch(cmd, c.bridge.listen())

	case bridgeClosedMsg:
		return nil

	case DecisionMsg:
		return c.onDecision(msg.Decision)

	case ReadyMsg:
		return c.onReady()

	case trayCommandMsg:
		var cmd tea.Cmd
		switch msg.cmd {
		case TrayShow:
			cmd = c.onTrayShow()
		case TrayQuit:
			return c.destroy()
		}
		if c.tray == nil || c.state == Destroyed {
			return cmd
		}
		return tea.Batch(cmd, listenTray(c.tray))

	case trayClosedMsg:
		return nil

	case TrayShowMsg:
		return c.onTrayShow()

	case TrayQuitMsg:
		return c.destroy()

	case WindowClosedMsg:
		return c.onWindowClosed()

	case ActivateMsg:
		return c.onActivate()

	case TimeoutMsg:
		return c.onTimeout(msg.Gen)

	case PolicyMsg:
		c.opts.Policy = PolicyFor(msg.ForceShow)
		c.log.Info("timeout policy changed", zap.Bool("force_show", msg.ForceShow))
		return nil

	case tea.KeyMsg:
		return c.onKey(msg)
	}
	return nil
}

func (c *Controller) transition(to WindowState) bool {
	from := c.state
	if !isAllowedTransition(from, to) {
		c.log.Debug("ignored transition", zap.Stringer("from", from), zap.Stringer("to", to))
		return false
	}
	c.state = to
	c.log.Debug("window state", zap.Stringer("from", from), zap.Stringer("to", to))
	return true
}

func (c *Controller) onDecision(d checkin.Decision) tea.Cmd {
	if c.state == Destroyed {
		c.log.Debug("decision after destroy dropped", zap.String("decision", string(d)))
		return nil
	}
	c.log.Info("decision received", zap.String("decision", string(d)), zap.Stringer("state", c.state))
	c.decided = true
	c.lastDecision = d

	if d != checkin.Show {
		return nil
	}
	switch c.state {
	case Initializing:
		if c.ready {
			return c.reveal()
		}
		c.pendingReveal = true
	case Hidden:
		return c.reveal()
	}
	return nil
}

func (c *Controller) onReady() tea.Cmd {
	if c.state != Initializing || c.ready {
		return nil
	}
	c.ready = true
	if c.pendingReveal {
		return c.reveal()
	}
	c.transition(Hidden)
	return nil
}

func (c *Controller) onTrayShow() tea.Cmd {
	switch c.state {
	case Hidden:
		return c.reveal()
	case Initializing:
		if c.ready {
			return c.reveal()
		}
		c.pendingReveal = true
	case Closed:
		cmd := c.onActivate()
		c.pendingReveal = true
		return cmd
	}
	return nil
}

func (c *Controller) onWindowClosed() tea.Cmd {
	if c.state == Destroyed || c.state == Closed {
		return nil
	}
	if !c.opts.KeepAliveOnClose {
		return c.destroy()
	}
	c.transition(Closed)
	c.gen++
	c.ready = false
	c.pendingReveal = false
	return nil
}

func (c *Controller) onActivate() tea.Cmd {
	if c.state != Closed {
		return nil
	}
	c.transition(Initializing)
	c.ready = false
	c.decided = false
	c.pendingReveal = false
	return c.armTimeout()
}

func (c *Controller) onTimeout(gen int) tea.Cmd {
	if gen != c.gen || c.decided || c.state == Visible || IsTerminal(c.state) || c.state == Closed {
		return nil
	}
	forceShow := c.opts.Policy(c.state)
	c.log.Warn("no check-in decision before timeout",
		zap.Duration("timeout", c.opts.Timeout),
		zap.Stringer("state", c.state),
		zap.Bool("force_show", forceShow),
	)
	if !forceShow {
		return nil
	}
	if c.state == Initializing && !c.ready {
		c.pendingReveal = true
		return nil
	}
	return c.reveal()
}

func (c *Controller) reveal() tea.Cmd {
	if !c.transition(Visible) {
		return nil
	}
	c.pendingReveal = false
	return func() tea.Msg { return RevealedMsg{} }
}

func (c *Controller) destroy() tea.Cmd {
	if c.state == Destroyed {
		return nil
	}
	c.transition(Destroyed)
	c.gen++
	if c.tray != nil {
		if err := c.tray.Close(); err != nil {
			c.log.Warn("closing tray", zap.Error(err))
		}
	}
	if c.bridge != nil {
		c.bridge.Close()
	}
	return tea.Quit
}

func (c *Controller) armTimeout() tea.Cmd {
	c.gen++
	gen := c.gen
	return tea.Tick(c.opts.Timeout, func(time.Time) tea.Msg {
		return TimeoutMsg{Gen: gen}
	})
}

var (
	keyTrayOpen   = key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open"))
	keyTrayQuit   = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	keyCloseWin   = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "close"))
	keyReactivate = key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "reopen"))
)

// onKey handles input while the window is not visible. The tray strip
// keys only work when the tray exists.
func (c *Controller) onKey(msg tea.KeyMsg) tea.Cmd {
	switch c.state {
	case Closed:
		switch {
		case key.Matches(msg, keyCloseWin):
			return c.destroy()
		case key.Matches(msg, keyReactivate):
			return c.onActivate()
		}
	case Initializing, Hidden:
		switch {
		case key.Matches(msg, keyCloseWin):
			return c.onWindowClosed()
		case c.tray != nil && key.Matches(msg, keyTrayOpen):
			return c.onTrayShow()
		case c.tray != nil && key.Matches(msg, keyTrayQuit):
			return c.destroy()
		}
	}
	return nil
}

var (
	trayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3C3C3C")).
			Padding(0, 1)
	trayDotStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	trayDimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

// View renders what exists of the app while the window is not visible.
func (c *Controller) View() string {
	switch c.state {
	case Hidden:
		if c.tray == nil {
			return ""
		}
		return trayStyle.Render(trayDotStyle.Render("●") + " lifeos  " +
			trayDimStyle.Render(keyTrayOpen.Help().Key+" "+keyTrayOpen.Help().Desc+" · "+
				keyTrayQuit.Help().Key+" "+keyTrayQuit.Help().Desc))
	case Closed:
		return trayDimStyle.Render("lifeos is running in the background · enter reopen · ctrl+c quit")
	}
	return ""
}
