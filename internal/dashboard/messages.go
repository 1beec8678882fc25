package dashboard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// RealtimeMsg carries one live sample.
type RealtimeMsg struct {
	Sample protocol.RealtimeSample
}

// ProfileMsg carries a full series and function table.
type ProfileMsg struct {
	Data protocol.ProfilerData
}

// ErrorMsg carries free-text error content from the profiler or supervisor.
type ErrorMsg struct {
	Content string
}

// ResetMsg clears the dashboard for a fresh run.
type ResetMsg struct {
	Title string
}

// ProcessExitedMsg reports that the profiler finished.
type ProcessExitedMsg struct {
	Code int
}

// tickMsg drives the header spinner and elapsed time.
type tickMsg time.Time

// messageToTea converts a presentation message into the model's message.
func messageToTea(m protocol.Message) (tea.Msg, bool) {
	switch m.Type {
	case protocol.TypeRealtime:
		if m.Sample == nil {
			return nil, false
		}
		return RealtimeMsg{Sample: *m.Sample}, true
	case protocol.TypeProfile:
		if m.Profile == nil {
			return nil, false
		}
		return ProfileMsg{Data: *m.Profile}, true
	case protocol.TypeError:
		return ErrorMsg{Content: m.Content}, true
	default:
		return nil, false
	}
}
