package registry

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Holder describes the session that owns a target.
type Holder struct {
	Path    string    `json:"path"`
	Command string    `json:"command,omitempty"`
	Started time.Time `json:"started"`
	PID     int       `json:"pid"`
}

func newHolder(path, command string) Holder {
	return Holder{
		Path:    path,
		Command: command,
		Started: time.Now(),
		PID:     os.Getpid(),
	}
}

// Age returns how long ago the session started.
func (h Holder) Age() time.Duration {
	return time.Since(h.Started)
}

// String returns a human-readable description of the holder.
func (h Holder) String() string {
	s := fmt.Sprintf("pid %d, started %s", h.PID, humanize.Time(h.Started))
	if h.Command != "" {
		s = h.Command + " (" + s + ")"
	}
	return s
}
