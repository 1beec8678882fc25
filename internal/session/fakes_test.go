package session

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rileyhilliard/profdash/internal/dashboard"
	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

type fakeProcess struct {
	stdout io.Reader
	stderr io.Reader

	stdoutW *io.PipeWriter
	stderrW *io.PipeWriter

	exited chan struct{}
	once   sync.Once
	mu     sync.Mutex
	code   int
	killed bool
}

// finishedProcess has already written all of its output and exited with code.
func finishedProcess(stdout, stderr string, code int) *fakeProcess {
	p := &fakeProcess{
		stdout: strings.NewReader(stdout),
		stderr: strings.NewReader(stderr),
		exited: make(chan struct{}),
	}
	p.exit(code)
	return p
}

// runningProcess keeps both streams open until the test writes, exits, or
// kills it.
func runningProcess() *fakeProcess {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	return &fakeProcess{
		stdout:  outR,
		stderr:  errR,
		stdoutW: outW,
		stderrW: errW,
		exited:  make(chan struct{}),
	}
}

func (p *fakeProcess) Stdout() io.Reader { return p.stdout }
func (p *fakeProcess) Stderr() io.Reader { return p.stderr }

func (p *fakeProcess) Wait() (int, error) {
	<-p.exited
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code, nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	p.exit(-1)
	return nil
}

func (p *fakeProcess) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

func (p *fakeProcess) exit(code int) {
	p.once.Do(func() {
		p.mu.Lock()
		p.code = code
		p.mu.Unlock()
		if p.stdoutW != nil {
			p.stdoutW.Close()
			p.stderrW.Close()
		}
		close(p.exited)
	})
}

type fakePanel struct {
	mu        sync.Mutex
	messages  []protocol.Message
	exits     []int
	resets    []string
	disposed  bool
	onDispose []func()
	onAlert   []func(protocol.Alert)
}

func (p *fakePanel) Post(m protocol.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.disposed {
		return dashboard.ErrPanelClosed
	}
	p.messages = append(p.messages, m)
	return nil
}

func (p *fakePanel) OnDispose(fn func()) {
	p.mu.Lock()
	p.onDispose = append(p.onDispose, fn)
	p.mu.Unlock()
}

func (p *fakePanel) OnAlert(fn func(protocol.Alert)) {
	p.mu.Lock()
	p.onAlert = append(p.onAlert, fn)
	p.mu.Unlock()
}

func (p *fakePanel) Exited(code int) {
	p.mu.Lock()
	p.exits = append(p.exits, code)
	p.mu.Unlock()
}

func (p *fakePanel) Reset(title string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resets = append(p.resets, title)
	p.messages = nil
	return nil
}

func (p *fakePanel) Dispose() {
	p.mu.Lock()
	p.disposed = true
	fns := p.onDispose
	p.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (p *fakePanel) Alert(text string) {
	p.mu.Lock()
	fns := p.onAlert
	p.mu.Unlock()
	for _, fn := range fns {
		fn(protocol.NewAlert(text))
	}
}

func (p *fakePanel) Messages() []protocol.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]protocol.Message(nil), p.messages...)
}

func (p *fakePanel) OfType(t protocol.Type) []protocol.Message {
	var out []protocol.Message
	for _, m := range p.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func (p *fakePanel) Exits() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.exits...)
}

type fakeHost struct {
	file    string
	hasFile bool

	proc     ProcessHandle
	spawnErr error
	panel    Panel
	panelErr error

	mu      sync.Mutex
	spawned []exec.Command
	panels  []string
	errs    []error
}

func (h *fakeHost) ActiveFilePath() (string, bool) { return h.file, h.hasFile }

func (h *fakeHost) Spawn(_ context.Context, cmd exec.Command) (ProcessHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.spawned = append(h.spawned, cmd)
	if h.spawnErr != nil {
		return nil, h.spawnErr
	}
	return h.proc, nil
}

func (h *fakeHost) CreatePanel(title string) (Panel, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panels = append(h.panels, title)
	if h.panelErr != nil {
		return nil, h.panelErr
	}
	return h.panel, nil
}

func (h *fakeHost) ShowError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *fakeHost) Errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

func (h *fakeHost) Spawned() []exec.Command {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]exec.Command(nil), h.spawned...)
}
