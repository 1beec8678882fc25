// Package protocol defines the event envelopes emitted by the profiler script
// and the messages exchanged between the session supervisor and the dashboard.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rileyhilliard/profdash/internal/errors"
)

// Type discriminates envelopes and presentation messages.
type Type string

const (
	// TypeRealtime carries one live sample.
	TypeRealtime Type = "realtimeUpdate"
	// TypeProfile carries the final series and per-function statistics.
	TypeProfile Type = "profilerData"
	// TypeError carries free-text error content for the panel.
	TypeError Type = "error"
)

// AlertCommand is the command name of panel-to-host notification requests.
const AlertCommand = "alert"

// Envelope is one decoded frame. Data is kept raw until the router asks for
// the shape matching Type.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RealtimeSample is one point in the live series.
type RealtimeSample struct {
	Time      string  `json:"time"`
	CPU       float64 `json:"cpu"`
	Mem       float64 `json:"mem"`
	Functions string  `json:"functions,omitempty"`
}

// FunctionStat is one row of the final summary table.
type FunctionStat struct {
	Function  string  `json:"function"`
	Calls     int     `json:"calls"`
	TotalTime float64 `json:"totalTime"`
	AvgCPU    float64 `json:"avgCpu"`
	MaxCPU    float64 `json:"maxCpu"`
	AvgMem    float64 `json:"avgMem"`
	MaxMem    float64 `json:"maxMem"`
}

// ProfilerData is the payload of a profilerData envelope.
type ProfilerData struct {
	RealTimeData  []RealtimeSample `json:"realTimeData"`
	FunctionStats []FunctionStat   `json:"functionStats"`
}

// Parse decodes a frame payload into an Envelope. The payload must be a JSON
// object with a string "type" field.
func Parse(payload []byte) (Envelope, error) {
	var raw struct {
		Type json.RawMessage `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Envelope{}, errors.WrapWithCode(err, errors.ErrDecode,
			"Frame is not a valid JSON object",
			"Check that the profiler prints one JSON object per frame")
	}
	if len(raw.Type) == 0 || bytes.Equal(raw.Type, []byte("null")) {
		return Envelope{}, errors.New(errors.ErrDecode,
			"Frame has no \"type\" field",
			"Every event must carry a type such as realtimeUpdate or profilerData")
	}

	var t string
	if err := json.Unmarshal(raw.Type, &t); err != nil {
		return Envelope{}, errors.WrapWithCode(err, errors.ErrDecode,
			"Frame \"type\" field is not a string", "")
	}

	return Envelope{Type: Type(t), Data: raw.Data}, nil
}

// Realtime decodes the envelope data as a RealtimeSample.
func (e Envelope) Realtime() (RealtimeSample, error) {
	var s RealtimeSample
	if err := decodeData(e, TypeRealtime, &s); err != nil {
		return RealtimeSample{}, err
	}
	return s, nil
}

// Profile decodes the envelope data as ProfilerData.
func (e Envelope) Profile() (ProfilerData, error) {
	var p ProfilerData
	if err := decodeData(e, TypeProfile, &p); err != nil {
		return ProfilerData{}, err
	}
	return p, nil
}

func decodeData(e Envelope, want Type, v interface{}) error {
	if e.Type != want {
		return errors.New(errors.ErrDecode,
			fmt.Sprintf("Envelope is %q, not %q", e.Type, want), "")
	}
	if len(e.Data) == 0 {
		return errors.New(errors.ErrDecode,
			fmt.Sprintf("%s envelope has no data", want), "")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return errors.WrapWithCode(err, errors.ErrDecode,
			fmt.Sprintf("%s data has an unexpected shape", want), "")
	}
	return nil
}

// SortStats orders function statistics by total time, longest first.
// Ties keep their original order.
func SortStats(stats []FunctionStat) []FunctionStat {
	out := make([]FunctionStat, len(stats))
	copy(out, stats)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalTime > out[j].TotalTime
	})
	return out
}
