package frame

import (
	"context"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/rileyhilliard/profdash/internal/errors"
	"github.com/rileyhilliard/profdash/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	realtimeJSON = `{"type":"realtimeUpdate","data":{"time":"0.1","cpu":12.5,"mem":50.2}}`
	profileJSON  = `{"type":"profilerData","data":{"realTimeData":[],"functionStats":[{"function":"odd}{name\"","calls":1}]}}`
)

func newDecoder(t *testing.T, mode Mode) (Decoder, *logger.BufferLogger) {
	t.Helper()
	log := logger.NewBufferLogger()
	dec, err := New(Options{Mode: mode, Logger: log})
	require.NoError(t, err)
	return dec, log
}

// drain feeds chunks in order and collects every payload, calling Next after
// each chunk the way Pump does.
func drain(dec Decoder, chunks ...string) []string {
	var out []string
	for _, c := range chunks {
		dec.Feed([]byte(c))
		for {
			p, ok := dec.Next()
			if !ok {
				break
			}
			out = append(out, string(p))
		}
	}
	return out
}

func bracesStream() string {
	return "Profiling script.py...\n" +
		DefaultStart + realtimeJSON + "\n" +
		"print output with {unbalanced braces\n" +
		DefaultStart + "\n" + profileJSON + "\n" +
		"done\n"
}

func linesStream() string {
	return "warming up\n" +
		DefaultStart + "\n" +
		realtimeJSON + "\n" +
		"\n" +
		profileJSON + "\n" +
		DefaultEnd + "\n" +
		"trailing text\n"
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: Options{}},
		{name: "braces", opts: Options{Mode: ModeBraces}},
		{name: "last-brace", opts: Options{Mode: ModeLastBrace}},
		{name: "lines", opts: Options{Mode: ModeLines}},
		{name: "unknown mode", opts: Options{Mode: "xml"}, wantErr: true},
		{name: "same sentinels", opts: Options{Start: "@@", End: "@@"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = logger.Noop()
			dec, err := New(tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, dec)
		})
	}
}

func TestDecoder_WholeStream(t *testing.T) {
	tests := []struct {
		mode   Mode
		stream string
		want   []string
	}{
		{mode: ModeBraces, stream: bracesStream(), want: []string{realtimeJSON, profileJSON}},
		{mode: ModeLines, stream: linesStream(), want: []string{realtimeJSON, profileJSON}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			dec, _ := newDecoder(t, tt.mode)
			assert.Equal(t, tt.want, drain(dec, tt.stream))
			assert.Zero(t, dec.Buffered(), "trailing text without a sentinel prefix should not be retained")
		})
	}
}

func TestDecoder_ChunkBoundaryIndependence(t *testing.T) {
	streams := map[Mode]string{
		ModeBraces: bracesStream(),
		ModeLines:  linesStream(),
	}

	for mode, stream := range streams {
		t.Run(string(mode), func(t *testing.T) {
			whole, _ := newDecoder(t, mode)
			want := drain(whole, stream)
			require.Len(t, want, 2)

			for i := 0; i <= len(stream); i++ {
				dec, _ := newDecoder(t, mode)
				got := drain(dec, stream[:i], stream[i:])
				require.Equal(t, want, got, "split at %d", i)
			}

			bytewise := make([]string, len(stream))
			for i := range stream {
				bytewise[i] = stream[i : i+1]
			}
			dec, _ := newDecoder(t, mode)
			assert.Equal(t, want, drain(dec, bytewise...), "one byte per chunk")

			rng := rand.New(rand.NewSource(42))
			for round := 0; round < 200; round++ {
				var chunks []string
				rest := stream
				for len(rest) > 0 {
					n := 1 + rng.Intn(len(rest))
					if n > 17 {
						n = 1 + rng.Intn(17)
					}
					chunks = append(chunks, rest[:n])
					rest = rest[n:]
				}
				dec, _ := newDecoder(t, mode)
				require.Equal(t, want, drain(dec, chunks...), "round %d chunks %q", round, chunks)
			}
		})
	}
}

func TestDecoder_EmptyChunkIsNoop(t *testing.T) {
	for _, mode := range Modes() {
		t.Run(string(mode), func(t *testing.T) {
			dec, _ := newDecoder(t, mode)
			partial := DefaultStart + `{"type":"realtimeUpdate","da`
			assert.Empty(t, drain(dec, partial))
			before := dec.Buffered()

			dec.Feed(nil)
			dec.Feed([]byte{})
			_, ok := dec.Next()
			assert.False(t, ok)
			assert.Equal(t, before, dec.Buffered())
		})
	}
}

func TestDecoder_SentinelWithoutObject(t *testing.T) {
	for _, mode := range []Mode{ModeBraces, ModeLastBrace} {
		t.Run(string(mode), func(t *testing.T) {
			dec, log := newDecoder(t, mode)

			assert.Empty(t, drain(dec, DefaultStart+"  \n"))
			assert.NotZero(t, dec.Buffered(), "sentinel must be retained")
			assert.Empty(t, log.Messages(), "waiting for an object is not an error")

			assert.Equal(t, []string{`{"a":1}`}, drain(dec, `{"a":1}`))
		})
	}
}

func TestDecoder_SplitSentinelRetained(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	assert.Empty(t, drain(dec, strings.Repeat("x", 500)+"@@@PROFILER_ST"))
	assert.Less(t, dec.Buffered(), len(DefaultStart), "junk before a sentinel is discarded")

	assert.Equal(t, []string{`{"b":2}`}, drain(dec, `ART@@@{"b":2}`))
}

func TestDecoder_InvalidJSONDoesNotBlockLaterFrames(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	got := drain(dec, DefaultStart+`{not: json}`+"\n"+DefaultStart+realtimeJSON)
	assert.Equal(t, []string{`{not: json}`, realtimeJSON}, got)
}

func TestBraceDecoder_BracesInsideStrings(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	payload := `{"type":"x","data":{"s":"}}}\"{{","n":{"m":[1,{"k":"}"}]}}}`
	got := drain(dec, DefaultStart+payload+DefaultStart+`{"z":0}`)
	assert.Equal(t, []string{payload, `{"z":0}`}, got)
}

func TestBraceDecoder_BackToBackFramesStaySeparate(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	got := drain(dec, DefaultStart+`{"a":1}`+DefaultStart+`{"b":2}`)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
}

func TestBraceDecoder_TruncatedFrameResync(t *testing.T) {
	dec, log := newDecoder(t, ModeBraces)

	got := drain(dec,
		DefaultStart+`{"type":"realtimeUpdate","data":{"cpu":`,
		"\n"+DefaultStart+`{"b":2}`,
	)
	assert.Equal(t, []string{`{"b":2}`}, got)
	assert.Equal(t, 1, log.Count("warn"))
	assert.Zero(t, dec.Buffered())
}

func TestBraceDecoder_SentinelInsideString(t *testing.T) {
	payload := `{"type":"realtimeUpdate","data":{"time":"0.1","cpu":1,"mem":2,"functions":"` + DefaultStart + `{"}}`
	stream := DefaultStart + payload + "\n" + DefaultStart + realtimeJSON

	for i := 0; i <= len(stream); i++ {
		dec, log := newDecoder(t, ModeBraces)
		got := drain(dec, stream[:i], stream[i:])
		require.Equal(t, []string{payload, realtimeJSON}, got, "split at %d", i)
		require.Zero(t, log.Count("warn"), "split at %d", i)
	}
}

func TestBraceDecoder_PartialSentinelAfterTruncatedFrame(t *testing.T) {
	dec, log := newDecoder(t, ModeBraces)

	got := drain(dec,
		DefaultStart+`{"type":"realtimeUpdate","data":{"cpu":1`,
		"\n@@@PROF",
		"ILER_START@@@"+`{"b":2}`,
	)
	assert.Equal(t, []string{`{"b":2}`}, got)
	assert.Equal(t, 1, log.Count("warn"))
}

func TestBraceDecoder_LargePayloadManyChunks(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	var b strings.Builder
	b.WriteString(`{"type":"profilerData","data":{"realTimeData":[`)
	for i := 0; i < 2000; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"time":"t","cpu":1,"mem":2}`)
	}
	b.WriteString(`],"functionStats":[]}}`)
	payload := b.String()

	stream := DefaultStart + payload
	var chunks []string
	for len(stream) > 0 {
		n := 64
		if n > len(stream) {
			n = len(stream)
		}
		chunks = append(chunks, stream[:n])
		stream = stream[n:]
	}

	assert.Equal(t, []string{payload}, drain(dec, chunks...))
}

func TestLastBraceDecoder(t *testing.T) {
	t.Run("single object per read", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLastBrace)
		got := drain(dec, DefaultStart+`{"a":1}`, DefaultStart+`{"b":{"c":2}}`)
		assert.Equal(t, []string{`{"a":1}`, `{"b":{"c":2}}`}, got)
	})

	t.Run("two complete objects merge", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLastBrace)
		got := drain(dec, DefaultStart+`{"a":1}`+DefaultStart+`{"b":2}`)
		assert.Equal(t, []string{`{"a":1}` + DefaultStart + `{"b":2}`}, got)
	})

	t.Run("partial object waits", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLastBrace)
		assert.Empty(t, drain(dec, DefaultStart+`{"a":`))
		assert.Equal(t, []string{`{"a":{"b":1}}`}, drain(dec, `{"b":1}}`))
	})
}

func TestLineDecoder(t *testing.T) {
	t.Run("yields before end sentinel", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLines)
		assert.Equal(t, []string{`{"a":1}`}, drain(dec, DefaultStart+"\n"+`{"a":1}`+"\n"))
		assert.Empty(t, drain(dec, `{"b":`))
		assert.Equal(t, []string{`{"b":2}`}, drain(dec, "2}\n"+DefaultEnd))
	})

	t.Run("object on sentinel lines", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLines)
		got := drain(dec, DefaultStart+`{"a":1}`+"\n"+`{"b":2}`+DefaultEnd)
		assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
	})

	t.Run("text outside regions ignored", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLines)
		got := drain(dec,
			"before\n"+DefaultStart+"\n"+`{"a":1}`+"\n"+DefaultEnd+"\n",
			`{"ignored":true}`+"\n",
			DefaultStart+"\r\n"+`{"b":2}`+"\r\n"+DefaultEnd,
		)
		assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, got)
	})

	t.Run("bad line does not stop the region", func(t *testing.T) {
		dec, _ := newDecoder(t, ModeLines)
		got := drain(dec, DefaultStart+"\nnot json\n"+`{"a":1}`+"\n"+DefaultEnd)
		assert.Equal(t, []string{"not json", `{"a":1}`}, got)
	})
}

func TestPump(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	var got []string
	r := iotest.OneByteReader(strings.NewReader(bracesStream()))
	err := Pump(context.Background(), r, dec, func(p []byte) {
		got = append(got, string(p))
	})

	require.NoError(t, err)
	assert.Equal(t, []string{realtimeJSON, profileJSON}, got)
}

func TestPump_ReadError(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	r := iotest.TimeoutReader(strings.NewReader(DefaultStart + realtimeJSON))
	var got []string
	err := Pump(context.Background(), r, dec, func(p []byte) {
		got = append(got, string(p))
	})

	assert.ErrorIs(t, err, iotest.ErrTimeout)
	assert.Equal(t, []string{realtimeJSON}, got, "payloads read before the error are delivered")
}

func TestPump_Cancelled(t *testing.T) {
	dec, _ := newDecoder(t, ModeBraces)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Pump(ctx, strings.NewReader(DefaultStart+realtimeJSON), dec, func([]byte) { called = true })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
