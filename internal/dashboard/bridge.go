package dashboard

import (
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// ErrPanelClosed is returned by Post once the dashboard has been closed.
var ErrPanelClosed = errors.New("dashboard is closed")

// sender is the part of *tea.Program the bridge needs.
type sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards presentation messages to the Bubble Tea program via
// program.Send() and fans dashboard events back out to the host. It is
// goroutine-safe.
type Bridge struct {
	mu        sync.Mutex
	sender    sender
	disposed  bool
	onDispose []func()
	onAlert   []func(protocol.Alert)
}

// NewBridge creates a bridge that forwards to s.
func NewBridge(s sender) *Bridge {
	return &Bridge{sender: s}
}

// Post delivers a message to the dashboard.
func (b *Bridge) Post(m protocol.Message) error {
	msg, ok := messageToTea(m)
	if !ok {
		return fmt.Errorf("unsupported message type %q", m.Type)
	}
	return b.send(msg)
}

// Exited tells the dashboard the profiler finished.
func (b *Bridge) Exited(code int) {
	_ = b.send(ProcessExitedMsg{Code: code})
}

// Reset clears the dashboard for a new run of title.
func (b *Bridge) Reset(title string) error {
	return b.send(ResetMsg{Title: title})
}

func (b *Bridge) send(msg tea.Msg) error {
	b.mu.Lock()
	s, disposed := b.sender, b.disposed
	b.mu.Unlock()

	if disposed {
		return ErrPanelClosed
	}
	if s != nil {
		s.Send(msg)
	}
	return nil
}

// OnDispose registers fn to run when the dashboard closes. If it is already
// closed, fn runs immediately.
func (b *Bridge) OnDispose(fn func()) {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		fn()
		return
	}
	b.onDispose = append(b.onDispose, fn)
	b.mu.Unlock()
}

// OnAlert registers fn to receive alert requests from the dashboard.
func (b *Bridge) OnAlert(fn func(protocol.Alert)) {
	b.mu.Lock()
	b.onAlert = append(b.onAlert, fn)
	b.mu.Unlock()
}

// Dispose marks the dashboard closed and runs the dispose handlers once.
func (b *Bridge) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	handlers := b.onDispose
	b.onDispose = nil
	b.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Disposed reports whether the dashboard has been closed.
func (b *Bridge) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// alert hands a to every registered handler and reports whether there was
// one.
func (b *Bridge) alert(a protocol.Alert) bool {
	b.mu.Lock()
	handlers := append([]func(protocol.Alert){}, b.onAlert...)
	b.mu.Unlock()

	for _, fn := range handlers {
		fn(a)
	}
	return len(handlers) > 0
}
