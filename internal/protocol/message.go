package protocol

import (
	"encoding/json"
	"fmt"
)

// Message is what the supervisor posts to a panel. Exactly one of Sample,
// Profile, or Content is meaningful, selected by Type.
type Message struct {
	Type    Type
	Sample  *RealtimeSample
	Profile *ProfilerData
	Content string
}

// RealtimeMessage wraps a live sample.
func RealtimeMessage(s RealtimeSample) Message {
	return Message{Type: TypeRealtime, Sample: &s}
}

// ProfileMessage wraps a full profilerData payload.
func ProfileMessage(p ProfilerData) Message {
	return Message{Type: TypeProfile, Profile: &p}
}

// ErrorMessage wraps free-text error content.
func ErrorMessage(content string) Message {
	return Message{Type: TypeError, Content: content}
}

// ExitErrorMessage reports a profiler that terminated with a non-zero status.
func ExitErrorMessage(code int) Message {
	return ErrorMessage(fmt.Sprintf("profiler exited with code %d", code))
}

type wireMessage struct {
	Type    Type        `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Content string      `json:"content,omitempty"`
}

// MarshalJSON renders the message in the {type, data|content} wire shape.
func (m Message) MarshalJSON() ([]byte, error) {
	w := wireMessage{Type: m.Type, Content: m.Content}
	switch m.Type {
	case TypeRealtime:
		if m.Sample != nil {
			w.Data = m.Sample
		}
	case TypeProfile:
		if m.Profile != nil {
			w.Data = m.Profile
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the {type, data|content} wire shape.
func (m *Message) UnmarshalJSON(b []byte) error {
	var w struct {
		Type    Type            `json:"type"`
		Data    json.RawMessage `json:"data"`
		Content string          `json:"content"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*m = Message{Type: w.Type, Content: w.Content}
	env := Envelope{Type: w.Type, Data: w.Data}
	switch w.Type {
	case TypeRealtime:
		s, err := env.Realtime()
		if err != nil {
			return err
		}
		m.Sample = &s
	case TypeProfile:
		p, err := env.Profile()
		if err != nil {
			return err
		}
		m.Profile = &p
	}
	return nil
}

// Alert is the one reverse-direction message: the panel asking the host to
// show a user-visible notification.
type Alert struct {
	Command string `json:"command"`
	Text    string `json:"text"`
}

// NewAlert builds an alert request.
func NewAlert(text string) Alert {
	return Alert{Command: AlertCommand, Text: text}
}
