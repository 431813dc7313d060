package resynth

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-resynth/dsp/core"
)

// atomicFloat64 is a lock-free float64 stored as bit patterns, written by
// the control thread and read by the audio thread per sample with relaxed
// ordering.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func (a *atomicFloat64) load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// clampParam clamps v into [0,1], deterministically mapping NaN to the
// lower bound since NaN has no well-defined nearest value in [0,1].
func clampParam(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return core.Clamp(v, 0, 1)
}

// AtomicParams holds every control-rate parameter as a lock-free atomic,
// normalized to [0,1]. All setters clamp at ingress.
type AtomicParams struct {
	slice      atomicFloat64
	voice      atomicFloat64
	freeze     atomicFloat64
	blur       atomicFloat64
	feedback   atomicFloat64
	warp       atomicFloat64
	centerFreq atomicFloat64
	bandwidth  atomicFloat64
	freq       atomicFloat64
	octave     atomicFloat64
	glide      atomicFloat64
	waveform   atomicFloat64
}

// NewAtomicParams returns a params block initialized to the engine defaults.
func NewAtomicParams() *AtomicParams {
	p := &AtomicParams{}
	p.slice.store(0.1)
	p.voice.store(1.0)
	p.freeze.store(0.0)
	p.blur.store(0.0)
	p.feedback.store(0.0)
	p.warp.store(0.5)
	p.centerFreq.store(0.5)
	p.bandwidth.store(1.0)
	p.freq.store(0.5)
	p.octave.store(0.5)
	p.glide.store(0.01)
	p.waveform.store(0.0)
	return p
}

func (p *AtomicParams) Slice() float64      { return p.slice.load() }
func (p *AtomicParams) Voice() float64      { return p.voice.load() }
func (p *AtomicParams) Freeze() float64     { return p.freeze.load() }
func (p *AtomicParams) Blur() float64       { return p.blur.load() }
func (p *AtomicParams) Feedback() float64   { return p.feedback.load() }
func (p *AtomicParams) Warp() float64       { return p.warp.load() }
func (p *AtomicParams) CenterFreq() float64 { return p.centerFreq.load() }
func (p *AtomicParams) Bandwidth() float64  { return p.bandwidth.load() }
func (p *AtomicParams) Freq() float64       { return p.freq.load() }
func (p *AtomicParams) Octave() float64     { return p.octave.load() }
func (p *AtomicParams) Glide() float64      { return p.glide.load() }
func (p *AtomicParams) Waveform() float64   { return p.waveform.load() }

func (p *AtomicParams) SetSlice(v float64)      { p.slice.store(clampParam(v)) }
func (p *AtomicParams) SetVoice(v float64)      { p.voice.store(clampParam(v)) }
func (p *AtomicParams) SetFreeze(v float64)     { p.freeze.store(clampParam(v)) }
func (p *AtomicParams) SetBlur(v float64)       { p.blur.store(clampParam(v)) }
func (p *AtomicParams) SetFeedback(v float64)   { p.feedback.store(clampParam(v)) }
func (p *AtomicParams) SetWarp(v float64)       { p.warp.store(clampParam(v)) }
func (p *AtomicParams) SetCenterFreq(v float64) { p.centerFreq.store(clampParam(v)) }
func (p *AtomicParams) SetBandwidth(v float64)  { p.bandwidth.store(clampParam(v)) }
func (p *AtomicParams) SetFreq(v float64)       { p.freq.store(clampParam(v)) }
func (p *AtomicParams) SetOctave(v float64)     { p.octave.store(clampParam(v)) }
func (p *AtomicParams) SetGlide(v float64)      { p.glide.store(clampParam(v)) }
func (p *AtomicParams) SetWaveform(v float64)   { p.waveform.store(clampParam(v)) }

// IsFrozen reports whether the freeze parameter is past its midpoint.
func (p *AtomicParams) IsFrozen() bool { return p.Freeze() > 0.5 }

// MaxVoices maps the voice parameter to a voice-bank ceiling in [1,NumVoices].
func (p *AtomicParams) MaxVoices() int {
	n := int(p.Voice()*32) + 1
	if n < 1 {
		n = 1
	}
	if n > NumVoices {
		n = NumVoices
	}
	return n
}

// WaveformIndex maps the waveform parameter to a selector in [0,3].
func (p *AtomicParams) WaveformIndex() Waveform {
	idx := int(p.Waveform() * 4)
	if idx < 0 {
		idx = 0
	}
	if idx > 3 {
		idx = 3
	}
	return Waveform(idx)
}

// ModifierSnapshot reads every modifier-chain parameter once for a frame.
func (p *AtomicParams) ModifierSnapshot() ModifierParams {
	return ModifierParams{
		CenterFreq: p.CenterFreq(),
		Bandwidth:  p.Bandwidth(),
		Blur:       p.Blur(),
		Feedback:   p.Feedback(),
		Warp:       p.Warp(),
		Freq:       p.Freq(),
		Octave:     p.Octave(),
	}
}

// SliceToFFTOrder maps the slice parameter and sample rate to an FFT order,
// per the engine's external-interface mapping table.
func SliceToFFTOrder(slice, sampleRate float64) int {
	slice = clampParam(slice)
	seconds := 17 * math.Pow(6400.0/17.0, slice) / 1000
	order := int(math.Round(math.Log2(seconds * sampleRate)))
	if order < MinFFTOrder {
		order = MinFFTOrder
	}
	if order > MaxFFTOrder {
		order = MaxFFTOrder
	}
	return order
}
