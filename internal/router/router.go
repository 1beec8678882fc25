// Package router dispatches decoded profiler envelopes to the presentation
// layer by their type tag.
package router

import (
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// Sink receives routed messages. Implementations must be safe to call from
// the session's stdout, stderr, and wait goroutines.
type Sink interface {
	Realtime(sample protocol.RealtimeSample)
	Profile(data protocol.ProfilerData)
	Error(content string)
}

// Router classifies frames and forwards them to a Sink.
type Router struct {
	sink Sink
	log  logger.Logger
}

// New creates a router that forwards to sink. A nil logger discards output.
func New(sink Sink, log logger.Logger) *Router {
	if log == nil {
		log = logger.Noop()
	}
	return &Router{sink: sink, log: log}
}

// Handle parses one frame payload and routes it. Malformed payloads are
// logged and dropped; it reports whether anything reached the sink.
func (r *Router) Handle(payload []byte) bool {
	env, err := protocol.Parse(payload)
	if err != nil {
		r.log.Warn("dropping malformed frame (%d bytes): %v", len(payload), err)
		return false
	}
	return r.Route(env)
}

// Route forwards env to the sink according to its type. Unknown types are
// ignored and payloads whose data does not match the declared type are
// dropped.
func (r *Router) Route(env protocol.Envelope) bool {
	switch env.Type {
	case protocol.TypeRealtime:
		sample, err := env.Realtime()
		if err != nil {
			r.log.Warn("dropping realtime update: %v", err)
			return false
		}
		r.sink.Realtime(sample)
		return true

	case protocol.TypeProfile:
		data, err := env.Profile()
		if err != nil {
			r.log.Warn("dropping profiler data: %v", err)
			return false
		}
		r.sink.Profile(data)
		return true

	default:
		r.log.Debug("ignoring frame of type %q", env.Type)
		return false
	}
}

// StderrText forwards free-form process error output.
func (r *Router) StderrText(text string) {
	if text == "" {
		return
	}
	r.sink.Error(text)
}

// Exit reports a non-zero process exit status. Zero produces no message.
func (r *Router) Exit(code int) {
	if code == 0 {
		return
	}
	r.sink.Error(protocol.ExitErrorMessage(code).Content)
}
