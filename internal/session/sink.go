package session

import (
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/protocol"
)

// panelSink adapts a Panel to router.Sink. A panel that refuses a message has
// usually been closed; the message is dropped.
type panelSink struct {
	panel Panel
	log   logger.Logger
}

func (s panelSink) Realtime(sample protocol.RealtimeSample) {
	s.post(protocol.RealtimeMessage(sample))
}

func (s panelSink) Profile(data protocol.ProfilerData) {
	s.post(protocol.ProfileMessage(data))
}

func (s panelSink) Error(content string) {
	s.post(protocol.ErrorMessage(content))
}

func (s panelSink) post(msg protocol.Message) {
	if err := s.panel.Post(msg); err != nil {
		s.log.Debug("panel dropped %s message: %v", msg.Type, err)
	}
}
