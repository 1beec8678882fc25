package dashboard

import "github.com/rileyhilliard/profdash/internal/protocol"

// DefaultWindowSize is the number of realtime samples kept on screen.
const DefaultWindowSize = 60

// Window is a fixed-size ring of realtime samples. Push is O(1); once full,
// each push evicts the oldest sample.
type Window struct {
	data  []protocol.RealtimeSample
	head  int
	count int
}

// NewWindow creates a window holding at most size samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Window{data: make([]protocol.RealtimeSample, size)}
}

// Push appends a sample, evicting the oldest when full.
func (w *Window) Push(s protocol.RealtimeSample) {
	w.data[w.head] = s
	w.head = (w.head + 1) % len(w.data)
	if w.count < len(w.data) {
		w.count++
	}
}

// Len returns how many samples are held.
func (w *Window) Len() int { return w.count }

// Cap returns the window size.
func (w *Window) Cap() int { return len(w.data) }

// Latest returns the most recent sample.
func (w *Window) Latest() (protocol.RealtimeSample, bool) {
	if w.count == 0 {
		return protocol.RealtimeSample{}, false
	}
	return w.data[(w.head-1+len(w.data))%len(w.data)], true
}

// Samples returns the held samples oldest first.
func (w *Window) Samples() []protocol.RealtimeSample {
	out := make([]protocol.RealtimeSample, w.count)
	// head is the next write slot, so the oldest sample sits count slots back
	start := (w.head - w.count + len(w.data)) % len(w.data)
	for i := range out {
		out[i] = w.data[(start+i)%len(w.data)]
	}
	return out
}

// CPU returns the CPU series oldest first.
func (w *Window) CPU() []float64 {
	return w.series(func(s protocol.RealtimeSample) float64 { return s.CPU })
}

// Mem returns the memory series oldest first.
func (w *Window) Mem() []float64 {
	return w.series(func(s protocol.RealtimeSample) float64 { return s.Mem })
}

func (w *Window) series(pick func(protocol.RealtimeSample) float64) []float64 {
	if w.count == 0 {
		return nil
	}
	samples := w.Samples()
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = pick(s)
	}
	return out
}

// Reset drops every sample.
func (w *Window) Reset() {
	w.head = 0
	w.count = 0
}

// splitSeries separates a profilerData series into CPU and memory values.
func splitSeries(samples []protocol.RealtimeSample) (cpu, mem []float64) {
	cpu = make([]float64, len(samples))
	mem = make([]float64, len(samples))
	for i, s := range samples {
		cpu[i] = s.CPU
		mem[i] = s.Mem
	}
	return cpu, mem
}
