package shell

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/lifeos/internal/checkin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTray struct {
	ch     chan TrayCommand
	closed bool
}

func newFakeTray() *fakeTray { return &fakeTray{ch: make(chan TrayCommand, 1)} }

func (f *fakeTray) Commands() <-chan TrayCommand { return f.ch }
func (f *fakeTray) Close() error {
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}

func newTestController(t *testing.T, opts Options) *Controller {
	t.Helper()
	c := NewController(NewBridge(4, zap.NewNop()), zap.NewNop(), opts)
	c.Init()
	return c
}

func withTray(opts Options) (Options, *fakeTray) {
	tr := newFakeTray()
	opts.NewTray = func() (Tray, error) { return tr, nil }
	return opts, tr
}

// msgOf runs a command that is expected to produce a single message.
func msgOf(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	return cmd()
}

func isRevealed(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	_, ok := msgOf(t, cmd).(RevealedMsg)
	return ok
}

func isQuit(t *testing.T, cmd tea.Cmd) bool {
	t.Helper()
	_, ok := msgOf(t, cmd).(tea.QuitMsg)
	return ok
}

// ============================================================
// State table
// ============================================================

func TestTransitionsTable(t *testing.T) {
	assert.True(t, isAllowedTransition(Initializing, Visible))
	assert.True(t, isAllowedTransition(Hidden, Visible))
	assert.True(t, isAllowedTransition(Closed, Initializing))
	assert.False(t, isAllowedTransition(Visible, Hidden))
	assert.False(t, isAllowedTransition(Destroyed, Visible))
	assert.False(t, isAllowedTransition(Destroyed, Initializing))
	assert.True(t, IsTerminal(Destroyed))
	assert.Equal(t, "visible", Visible.String())
	assert.Equal(t, "present", TrayPresent.String())
}

// ============================================================
// Decisions and ready signal
// ============================================================

func TestReadyWithoutDecisionStaysHidden(t *testing.T) {
	c := newTestController(t, Options{})
	assert.Equal(t, Initializing, c.State())
	assert.Nil(t, c.Update(ReadyMsg{}))
	assert.Equal(t, Hidden, c.State())
}

func TestShowBeforeReadyWaitsForFirstPaint(t *testing.T) {
	c := newTestController(t, Options{})
	assert.Nil(t, c.Update(DecisionMsg{Decision: checkin.Show}))
	assert.Equal(t, Initializing, c.State(), "never revealed before ready")

	assert.True(t, isRevealed(t, c.Update(ReadyMsg{})))
	assert.Equal(t, Visible, c.State())
}

func TestShowWhileHidden(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	assert.True(t, isRevealed(t, c.Update(DecisionMsg{Decision: checkin.Show})))
	assert.Equal(t, Visible, c.State())
}

func TestDoubleShowIsIdempotent(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	require.True(t, isRevealed(t, c.Update(DecisionMsg{Decision: checkin.Show})))
	assert.Nil(t, c.Update(DecisionMsg{Decision: checkin.Show}))
	assert.Equal(t, Visible, c.State())
}

func TestStayHiddenNeverReveals(t *testing.T) {
	c := newTestController(t, Options{})
	assert.Nil(t, c.Update(DecisionMsg{Decision: checkin.StayHidden}))
	c.Update(ReadyMsg{})
	assert.Equal(t, Hidden, c.State())
	assert.Nil(t, c.Update(DecisionMsg{Decision: checkin.StayHidden}))
	assert.Equal(t, Hidden, c.State())
	assert.Equal(t, checkin.StayHidden, c.LastDecision())
}

func TestStayHiddenDoesNotRetractPendingShow(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(DecisionMsg{Decision: checkin.Show})
	c.Update(DecisionMsg{Decision: checkin.StayHidden})
	assert.True(t, isRevealed(t, c.Update(ReadyMsg{})))
}

func TestSecondReadyIgnored(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	c.Update(DecisionMsg{Decision: checkin.Show})
	assert.Nil(t, c.Update(ReadyMsg{}))
	assert.Equal(t, Visible, c.State())
}

// ============================================================
// Tray
// ============================================================

func TestTrayShowOverridesStayHidden(t *testing.T) {
	opts, _ := withTray(Options{})
	c := newTestController(t, opts)
	c.Update(ReadyMsg{})
	c.Update(DecisionMsg{Decision: checkin.StayHidden})
	require.Equal(t, Hidden, c.State())

	assert.True(t, isRevealed(t, c.Update(TrayShowMsg{})))
	assert.Equal(t, Visible, c.State())
}

func TestTrayQuitDestroys(t *testing.T) {
	opts, tr := withTray(Options{})
	c := newTestController(t, opts)
	c.Update(ReadyMsg{})
	assert.True(t, isQuit(t, c.Update(TrayQuitMsg{})))
	assert.Equal(t, Destroyed, c.State())
	assert.True(t, tr.closed)
}

func TestTrayCommandFromSourceRearms(t *testing.T) {
	opts, tr := withTray(Options{})
	c := newTestController(t, opts)
	c.Update(ReadyMsg{})

	cmd := c.Update(trayCommandMsg{cmd: TrayShow})
	require.NotNil(t, cmd)
	assert.Equal(t, Visible, c.State())

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	tr.ch <- TrayQuit
	assert.Equal(t, trayCommandMsg{cmd: TrayQuit}, batch[1]())
}

func TestTrayFailureIsNonFatal(t *testing.T) {
	c := newTestController(t, Options{NewTray: func() (Tray, error) {
		return nil, errors.New("icon asset missing")
	}})
	assert.Equal(t, TrayAbsent, c.Visibility().Tray)

	c.Update(DecisionMsg{Decision: checkin.Show})
	assert.True(t, isRevealed(t, c.Update(ReadyMsg{})))
}

func TestTrayStripKeys(t *testing.T) {
	opts, _ := withTray(Options{})
	c := newTestController(t, opts)
	c.Update(ReadyMsg{})
	assert.NotEmpty(t, c.View())

	assert.True(t, isRevealed(t, c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})))
	assert.Equal(t, Visible, c.State())
	assert.Empty(t, c.View())
}

func TestTrayStripKeysNeedTray(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	assert.Empty(t, c.View())
	assert.Nil(t, c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")}))
	assert.Nil(t, c.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}))
	assert.Equal(t, Hidden, c.State())
}

// ============================================================
// Window close and reactivation
// ============================================================

func TestWindowClosedTerminates(t *testing.T) {
	c := newTestController(t, Options{KeepAliveOnClose: false})
	c.Update(ReadyMsg{})
	assert.True(t, isQuit(t, c.Update(WindowClosedMsg{})))
	assert.Equal(t, Destroyed, c.State())
}

func TestWindowClosedKeepAlive(t *testing.T) {
	c := newTestController(t, Options{KeepAliveOnClose: true})
	c.Update(ReadyMsg{})
	c.Update(DecisionMsg{Decision: checkin.Show})

	assert.Nil(t, c.Update(WindowClosedMsg{}))
	assert.Equal(t, Closed, c.State())

	// Decisions have no window to act on
	assert.Nil(t, c.Update(DecisionMsg{Decision: checkin.Show}))
	assert.Equal(t, Closed, c.State())

	cmd := c.Update(ActivateMsg{})
	require.NotNil(t, cmd, "reactivation arms a new timeout")
	assert.Equal(t, Initializing, c.State())

	c.Update(DecisionMsg{Decision: checkin.Show})
	assert.True(t, isRevealed(t, c.Update(ReadyMsg{})))
}

func TestActivateIgnoredWithWindow(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	assert.Nil(t, c.Update(ActivateMsg{}))
	assert.Equal(t, Hidden, c.State())
}

func TestTrayShowWhileClosedReopens(t *testing.T) {
	opts, _ := withTray(Options{KeepAliveOnClose: true})
	c := newTestController(t, opts)
	c.Update(ReadyMsg{})
	c.Update(WindowClosedMsg{})
	require.Equal(t, Closed, c.State())

	c.Update(TrayShowMsg{})
	assert.Equal(t, Initializing, c.State())
	assert.True(t, isRevealed(t, c.Update(ReadyMsg{})))
}

func TestClosedKeys(t *testing.T) {
	c := newTestController(t, Options{KeepAliveOnClose: true})
	c.Update(ReadyMsg{})
	c.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Equal(t, Closed, c.State())
	assert.NotEmpty(t, c.View())

	c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, Initializing, c.State())

	c.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Equal(t, Closed, c.State())
	assert.True(t, isQuit(t, c.Update(tea.KeyMsg{Type: tea.KeyCtrlC})))
}

func TestDestroyedIgnoresEverything(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(TrayQuitMsg{})
	require.Equal(t, Destroyed, c.State())

	assert.Nil(t, c.Update(DecisionMsg{Decision: checkin.Show}))
	assert.Nil(t, c.Update(TrayShowMsg{}))
	assert.Nil(t, c.Update(ReadyMsg{}))
	assert.Nil(t, c.Update(ActivateMsg{}))
	assert.Nil(t, c.Update(TrayQuitMsg{}))
	assert.Equal(t, Destroyed, c.State())
}

// ============================================================
// Timeout
// ============================================================

func TestTimeoutLogOnlyByDefault(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	assert.Nil(t, c.Update(TimeoutMsg{Gen: c.gen}))
	assert.Equal(t, Hidden, c.State())
}

func TestTimeoutForceShow(t *testing.T) {
	c := newTestController(t, Options{Policy: ForceShow})
	c.Update(ReadyMsg{})
	assert.True(t, isRevealed(t, c.Update(TimeoutMsg{Gen: c.gen})))
	assert.Equal(t, Visible, c.State())
}

func TestTimeoutForceShowBeforeReady(t *testing.T) {
	c := newTestController(t, Options{Policy: ForceShow})
	assert.Nil(t, c.Update(TimeoutMsg{Gen: c.gen}))
	assert.Equal(t, Initializing, c.State())
	assert.True(t, isRevealed(t, c.Update(ReadyMsg{})))
}

func TestTimeoutInertAfterDecision(t *testing.T) {
	c := newTestController(t, Options{Policy: ForceShow})
	c.Update(ReadyMsg{})
	c.Update(DecisionMsg{Decision: checkin.StayHidden})
	assert.Nil(t, c.Update(TimeoutMsg{Gen: c.gen}))
	assert.Equal(t, Hidden, c.State())
}

func TestTimeoutAfterDestroyNeverFires(t *testing.T) {
	c := newTestController(t, Options{Policy: ForceShow})
	gen := c.gen
	c.Update(TrayQuitMsg{})
	assert.Nil(t, c.Update(TimeoutMsg{Gen: gen}))
	assert.Equal(t, Destroyed, c.State())
}

func TestStaleTimeoutIgnored(t *testing.T) {
	c := newTestController(t, Options{Policy: ForceShow, KeepAliveOnClose: true})
	stale := c.gen
	c.Update(ReadyMsg{})
	c.Update(WindowClosedMsg{})
	c.Update(ActivateMsg{})
	c.Update(ReadyMsg{})

	assert.Nil(t, c.Update(TimeoutMsg{Gen: stale}))
	assert.Equal(t, Hidden, c.State())
	assert.True(t, isRevealed(t, c.Update(TimeoutMsg{Gen: c.gen})))
}

func TestPolicyMsgSwitchesPolicy(t *testing.T) {
	c := newTestController(t, Options{})
	c.Update(ReadyMsg{})
	c.Update(PolicyMsg{ForceShow: true})
	assert.True(t, isRevealed(t, c.Update(TimeoutMsg{Gen: c.gen})))
}

func TestTimeoutDefaults(t *testing.T) {
	c := NewController(nil, nil, Options{})
	assert.Equal(t, DefaultDecisionTimeout, c.opts.Timeout)
	assert.False(t, c.opts.Policy(Hidden))
	assert.True(t, PolicyFor(true)(Hidden))
}

// ============================================================
// Bridge
// ============================================================

func TestBridgeDelivers(t *testing.T) {
	b := NewBridge(1, zap.NewNop())
	require.True(t, b.Send(checkin.Show))
	assert.Equal(t, bridgeMsg{decision: checkin.Show}, b.listen()())
}

func TestBridgeDropsWhenFull(t *testing.T) {
	b := NewBridge(1, zap.NewNop())
	require.True(t, b.Send(checkin.Show))
	assert.False(t, b.Send(checkin.StayHidden))
}

func TestBridgeClosed(t *testing.T) {
	b := NewBridge(1, zap.NewNop())
	b.Close()
	b.Close()
	assert.NotPanics(t, func() { assert.False(t, b.Send(checkin.Show)) })
	assert.Equal(t, bridgeClosedMsg{}, b.listen()())
}

func TestBridgeConcurrentSendAndClose(t *testing.T) {
	b := NewBridge(8, zap.NewNop())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Send(checkin.Show)
		}()
	}
	b.Close()
	wg.Wait()
}

func TestBridgeMessageDrivesController(t *testing.T) {
	b := NewBridge(2, zap.NewNop())
	c := NewController(b, zap.NewNop(), Options{})
	c.Init()
	c.Update(ReadyMsg{})

	b.Send(checkin.Show)
	cmd := c.Update(b.listen()())
	require.NotNil(t, cmd)
	assert.Equal(t, Visible, c.State())
}

func TestDecisionDroppedAfterDestroy(t *testing.T) {
	b := NewBridge(2, zap.NewNop())
	c := NewController(b, zap.NewNop(), Options{})
	c.Init()
	c.Update(TrayQuitMsg{})
	assert.False(t, b.Send(checkin.Show))
}

// ============================================================
// Control socket
// ============================================================

func socketPath(t *testing.T) string {
	t.Helper()
	// unix socket paths are length limited, keep it short
	dir, err := os.MkdirTemp("", "lo")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestParseTrayCommand(t *testing.T) {
	c, err := ParseTrayCommand(" SHOW\n")
	require.NoError(t, err)
	assert.Equal(t, TrayShow, c)
	_, err = ParseTrayCommand("restart")
	assert.ErrorIs(t, err, ErrUnknownTrayCommand)
}

func TestSocketTrayRoundTrip(t *testing.T) {
	path := socketPath(t)
	tr, err := ListenTray(path, zap.NewNop())
	require.NoError(t, err)
	defer tr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- SendTrayCommand(ctx, path, TrayShow) }()

	select {
	case cmd := <-tr.Commands():
		assert.Equal(t, TrayShow, cmd)
	case <-ctx.Done():
		t.Fatal("command not received")
	}
	require.NoError(t, <-errc)

	err = SendTrayCommand(ctx, path, TrayCommand("restart"))
	assert.Error(t, err)
}

func TestSocketTrayInUse(t *testing.T) {
	path := socketPath(t)
	tr, err := ListenTray(path, zap.NewNop())
	require.NoError(t, err)
	defer tr.Close()

	_, err = ListenTray(path, zap.NewNop())
	assert.ErrorIs(t, err, ErrTrayInUse)
}

func TestSocketTrayCloseAndRebind(t *testing.T) {
	path := socketPath(t)
	tr, err := ListenTray(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	_, ok := <-tr.Commands()
	assert.False(t, ok)

	tr2, err := ListenTray(path, zap.NewNop())
	require.NoError(t, err)
	tr2.Close()
}

func TestSocketTrayStaleFile(t *testing.T) {
	path := socketPath(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	tr, err := ListenTray(path, zap.NewNop())
	require.NoError(t, err)
	tr.Close()
}

func TestSendTrayCommandNoShell(t *testing.T) {
	err := SendTrayCommand(context.Background(), socketPath(t), TrayShow)
	assert.Error(t, err)
}

func TestControllerWithSocketTray(t *testing.T) {
	path := socketPath(t)
	c := NewController(NewBridge(1, zap.NewNop()), zap.NewNop(), Options{
		NewTray: func() (Tray, error) { return ListenTray(path, zap.NewNop()) },
	})
	c.Init()
	c.Update(ReadyMsg{})
	require.Equal(t, TrayPresent, c.Visibility().Tray)

	go SendTrayCommand(context.Background(), path, TrayQuit)
	msg := listenTray(c.tray)()
	assert.True(t, isQuit(t, c.Update(msg)))
	assert.Equal(t, Destroyed, c.State())
}
