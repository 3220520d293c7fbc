package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/engine"
	"github.com/roach88/synthgen/internal/ir"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		name   string
		source ir.Form
		val    float64
		tr     engine.Transport
		want   float64
	}{
		{"note A4", ir.FormNote, 69, engine.DefaultTransport, 440},
		{"note A5", ir.FormNote, 81, engine.DefaultTransport, 880},
		{"note A3", ir.FormNote, 57, engine.DefaultTransport, 220},
		{"seconds one", ir.FormSeconds, 1, engine.DefaultTransport, 1},
		{"seconds half", ir.FormSeconds, 0.5, engine.DefaultTransport, 2},
		{"samples", ir.FormSamples, 48000, engine.Transport{Tempo: 120, SampleRate: 48000}, 1},
		{"samples at 44.1k", ir.FormSamples, 441, engine.Transport{Tempo: 120, SampleRate: 44100}, 100},
		{"beats", ir.FormBeats, 1, engine.Transport{Tempo: 120, SampleRate: 48000}, 2},
		{"beats slower tempo", ir.FormBeats, 2, engine.Transport{Tempo: 60, SampleRate: 48000}, 0.5},
		{"control zero", ir.FormControl, 0, engine.DefaultTransport, 1},
		{"control one", ir.FormControl, 1, engine.DefaultTransport, 20000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := convert(t, tt.source, engine.Mono(tt.val, tt.source), tt.tr, nil)
			assert.Equal(t, [2]float64{tt.want, tt.want}, got.Vec)
			assert.Equal(t, ir.FormFrequency, got.Form)
		})
	}
}

func TestFrequency_LanesIndependent(t *testing.T) {
	got, _ := convert(t, ir.FormSeconds, engine.Stereo(0.5, 0.25, ir.FormSeconds), engine.DefaultTransport, nil)
	assert.Equal(t, [2]float64{2, 4}, got.Vec)
}

func TestFrequency_SinglePrecision(t *testing.T) {
	got, _ := convert(t, ir.FormSeconds, engine.Mono(3, ir.FormSeconds), engine.DefaultTransport, nil)
	assert.Equal(t, float64(float32(1)/float32(3)), got.Vec[0])
}

func TestFrequency_TransportReadAtPointOfUse(t *testing.T) {
	m := ir.NewModule("test")
	f, err := m.NewFunction("twice", "a", "b", "ra", "rb")
	require.NoError(t, err)
	fc := codegen.NewFunctionContext(f)
	reg := codegen.Default()
	require.NoError(t, reg.EmitConvert(fc, codegen.OpFrequency, ir.FormBeats, f.Params[0], f.Params[2]))
	require.NoError(t, reg.EmitConvert(fc, codegen.OpFrequency, ir.FormBeats, f.Params[1], f.Params[3]))
	fc.B.Ret()

	listing := ir.PrintFunction(f)
	assert.Equal(t, 2, strings.Count(listing, "load v2f32, @transport.bpm"))
	_, ok := m.LookupGlobal(ir.GlobalTempo)
	assert.True(t, ok)
	_, ok = m.LookupGlobal(ir.GlobalSampleRate)
	assert.False(t, ok, "sample rate is only declared when used")
}

func TestFrequency_FixedTransport(t *testing.T) {
	fixed := codegen.FixedTransport{BPM: 90, SampleRate: 1000}
	got, m := convert(t, ir.FormBeats, engine.Mono(1, ir.FormBeats), engine.DefaultTransport, fixed)
	assert.Equal(t, [2]float64{1.5, 1.5}, got.Vec)
	assert.Empty(t, m.Globals)

	got, _ = convert(t, ir.FormSamples, engine.Mono(10, ir.FormSamples), engine.DefaultTransport, fixed)
	assert.Equal(t, [2]float64{100, 100}, got.Vec)
}

func TestFrequency_UnsupportedSource(t *testing.T) {
	for _, form := range []ir.Form{ir.FormNone, ir.FormAmplitude, ir.FormDb, ir.FormFrequency} {
		m := ir.NewModule("test")
		f, err := m.NewFunction("convert", "x", "result")
		require.NoError(t, err)
		fc := codegen.NewFunctionContext(f)

		err = codegen.Default().EmitConvert(fc, codegen.OpFrequency, form, f.Params[0], f.Params[1])
		require.Error(t, err, "form %s", form)

		var ie *codegen.InternalError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, codegen.ErrCodeMissingGenerator, ie.Code)
		assert.Equal(t, form, ie.Form)
		assert.Empty(t, f.Entry().Instrs, "nothing is emitted on a lookup miss")
	}
}
