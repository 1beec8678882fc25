package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/exec"
	"github.com/rileyhilliard/profdash/internal/protocol"
	"github.com/rileyhilliard/profdash/internal/session"
	"github.com/rileyhilliard/profdash/internal/ui"
)

// cliHost is the terminal's HostBridge. The active document is the file
// named on the command line, and the panel is prepared by the caller before
// the session starts.
type cliHost struct {
	file  string
	panel session.Panel
	out   io.Writer

	mu      sync.Mutex
	held    bool
	pending []string
}

func newCLIHost(file string, panel session.Panel, out io.Writer) *cliHost {
	return &cliHost{file: file, panel: panel, out: out}
}

func (h *cliHost) ActiveFilePath() (string, bool) {
	return h.file, h.file != ""
}

func (h *cliHost) Spawn(ctx context.Context, cmd exec.Command) (session.ProcessHandle, error) {
	proc, err := exec.Start(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

func (h *cliHost) CreatePanel(title string) (session.Panel, error) {
	if h.panel == nil {
		return nil, errors.New(errors.ErrHost,
			"No dashboard available for "+title,
			"")
	}
	return h.panel, nil
}

func (h *cliHost) ShowError(err error) {
	h.write(err.Error())
}

func (h *cliHost) ShowAlert(a protocol.Alert) {
	h.write(fmt.Sprintf("%s %s", ui.SymbolFail, a.Text))
}

// hold queues output until release, for while a full-screen dashboard owns
// the terminal.
func (h *cliHost) hold() {
	h.mu.Lock()
	h.held = true
	h.mu.Unlock()
}

// release prints anything queued by hold and resumes direct output.
func (h *cliHost) release() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.held = false
	h.mu.Unlock()

	for _, line := range pending {
		fmt.Fprintln(h.out, line)
	}
}

func (h *cliHost) write(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held {
		h.pending = append(h.pending, line)
		return
	}
	fmt.Fprintln(h.out, line)
}
