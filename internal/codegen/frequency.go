package codegen

import "github.com/roach88/synthgen/internal/ir"

// RegisterFrequency registers one frequency converter per supported source
// form. Forms without an entry (amplitude, db, frequency itself) have no
// meaningful frequency and fail lookup.
func RegisterFrequency(r *Registry) error {
	converters := []struct {
		form ir.Form
		fn   ConvertFunc
	}{
		{ir.FormBeats, frequencyFromBeats},
		{ir.FormControl, frequencyFromControl},
		{ir.FormNote, frequencyFromNote},
		{ir.FormSamples, frequencyFromSamples},
		{ir.FormSeconds, frequencyFromSeconds},
	}
	for _, c := range converters {
		if err := r.RegisterConverter(OpFrequency, c.form, c.fn); err != nil {
			return err
		}
	}
	return nil
}

// frequencyFromBeats: tempo / (val * 60). A value of one beat lasts
// 60/tempo seconds.
func frequencyFromBeats(fc *FunctionContext, val ir.Value) ir.Value {
	b := fc.B
	tempo := fc.Transport.Tempo(fc)
	return b.FDiv(tempo, b.FMul(val, ir.Splat(ir.V2F32, 60)))
}

// frequencyFromControl: pow(20000, val), mapping [0, 1] to [1, 20000] Hz.
func frequencyFromControl(fc *FunctionContext, val ir.Value) ir.Value {
	return fc.B.Call(powV2F32(fc.Module), ir.Splat(ir.V2F32, 20000), val)
}

// frequencyFromNote: 440 * pow(2, (val - 69) / 12), MIDI note 69 = A4.
func frequencyFromNote(fc *FunctionContext, val ir.Value) ir.Value {
	b := fc.B
	semitones := b.FDiv(b.FSub(val, ir.Splat(ir.V2F32, 69)), ir.Splat(ir.V2F32, 12))
	ratio := b.Call(powV2F32(fc.Module), ir.Splat(ir.V2F32, 2), semitones)
	return b.FMul(ir.Splat(ir.V2F32, 440), ratio)
}

// frequencyFromSamples: sampleRate / val, val being a period in samples.
func frequencyFromSamples(fc *FunctionContext, val ir.Value) ir.Value {
	return fc.B.FDiv(fc.Transport.SampleRate(fc), val)
}

// frequencyFromSeconds: 1 / val.
func frequencyFromSeconds(fc *FunctionContext, val ir.Value) ir.Value {
	return fc.B.FDiv(ir.Splat(ir.V2F32, 1), val)
}
