package shell

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/lifeos/internal/checkin"
	"go.uber.org/zap"
)

// Bridge carries decisions from the check-in side to the controller.
// Delivery is at most once: a full or closed bridge drops the decision.
type Bridge struct {
	log *zap.Logger

	mu     sync.Mutex
	ch     chan checkin.Decision
	closed bool
}

func NewBridge(buffer int, log *zap.Logger) *Bridge {
	if buffer < 1 {
		buffer = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{log: log, ch: make(chan checkin.Decision, buffer)}
}

// Send never blocks. It reports whether the decision was queued.
func (b *Bridge) Send(d checkin.Decision) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.log.Warn("decision dropped, bridge closed", zap.String("decision", string(d)))
		return false
	}
	select {
	case b.ch <- d:
		return true
	default:
		b.log.Warn("decision dropped, bridge full", zap.String("decision", string(d)))
		return false
	}
}

// Close stops delivery. Queued decisions are still drained by the listener.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}

func (b *Bridge) listen() tea.Cmd {
	ch := b.ch
	return func() tea.Msg {
		d, ok := <-ch
		if !ok {
			return bridgeClosedMsg{}
		}
		return bridgeMsg{decision: d}
	}
}
