package router

import (
	"testing"

	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/rileyhilliard/profdash/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	samples  []protocol.RealtimeSample
	profiles []protocol.ProfilerData
	errors   []string
}

func (s *recordingSink) Realtime(sample protocol.RealtimeSample) {
	s.samples = append(s.samples, sample)
}

func (s *recordingSink) Profile(data protocol.ProfilerData) {
	s.profiles = append(s.profiles, data)
}

func (s *recordingSink) Error(content string) {
	s.errors = append(s.errors, content)
}

func TestRouter_Handle(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		wantRouted   bool
		wantSamples  int
		wantProfiles int
		wantWarn     bool
	}{
		{
			name:        "realtime",
			payload:     `{"type":"realtimeUpdate","data":{"time":"0.1","cpu":12.5,"mem":50.2}}`,
			wantRouted:  true,
			wantSamples: 1,
		},
		{
			name:         "profile",
			payload:      `{"type":"profilerData","data":{"realTimeData":[{"time":"1","cpu":1,"mem":2}],"functionStats":[]}}`,
			wantRouted:   true,
			wantProfiles: 1,
		},
		{
			name:    "unknown type silently ignored",
			payload: `{"type":"heartbeat","data":{}}`,
		},
		{
			name:     "invalid json",
			payload:  `{not json}`,
			wantWarn: true,
		},
		{
			name:     "missing type",
			payload:  `{"data":{"cpu":1}}`,
			wantWarn: true,
		},
		{
			name:     "realtime with wrong shape",
			payload:  `{"type":"realtimeUpdate","data":{"cpu":"high"}}`,
			wantWarn: true,
		},
		{
			name:     "profile without data",
			payload:  `{"type":"profilerData"}`,
			wantWarn: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			log := logger.NewBufferLogger()
			r := New(sink, log)

			routed := r.Handle([]byte(tt.payload))

			assert.Equal(t, tt.wantRouted, routed)
			assert.Len(t, sink.samples, tt.wantSamples)
			assert.Len(t, sink.profiles, tt.wantProfiles)
			assert.Empty(t, sink.errors, "decode problems never reach the panel")
			assert.Equal(t, tt.wantWarn, log.HasLevel("warn"))
		})
	}
}

func TestRouter_HandleRealtimeValues(t *testing.T) {
	sink := &recordingSink{}
	r := New(sink, nil)

	r.Handle([]byte(`{"type":"realtimeUpdate","data":{"time":"0.1","cpu":12.5,"mem":50.2,"functions":"main"}}`))

	require.Len(t, sink.samples, 1)
	assert.Equal(t, 12.5, sink.samples[0].CPU)
	assert.Equal(t, 50.2, sink.samples[0].Mem)
	assert.Equal(t, "main", sink.samples[0].Functions)
}

func TestRouter_MalformedFrameDoesNotAffectNext(t *testing.T) {
	sink := &recordingSink{}
	r := New(sink, logger.Noop())

	r.Handle([]byte(`{"type":"realtimeUpdate","data":{"cpu":1}}{"type"`))
	r.Handle([]byte(`{"type":"realtimeUpdate","data":{"time":"2","cpu":3,"mem":4}}`))

	require.Len(t, sink.samples, 1)
	assert.Equal(t, "2", sink.samples[0].Time)
}

func TestRouter_StderrText(t *testing.T) {
	sink := &recordingSink{}
	r := New(sink, nil)

	r.StderrText("")
	r.StderrText("Traceback (most recent call last):\n")

	assert.Equal(t, []string{"Traceback (most recent call last):\n"}, sink.errors)
}

func TestRouter_Exit(t *testing.T) {
	tests := []struct {
		code int
		want []string
	}{
		{code: 0, want: nil},
		{code: 1, want: []string{"profiler exited with code 1"}},
		{code: 137, want: []string{"profiler exited with code 137"}},
	}

	for _, tt := range tests {
		sink := &recordingSink{}
		New(sink, nil).Exit(tt.code)
		assert.Equal(t, tt.want, sink.errors, "exit %d", tt.code)
	}
}
