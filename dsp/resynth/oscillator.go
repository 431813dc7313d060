package resynth

import "math"

// linearSmoother ramps linearly from its current value toward a target over
// a configurable number of samples.
type linearSmoother struct {
	current     float64
	target      float64
	step        float64
	rampSamples float64
}

func (s *linearSmoother) setRampSamples(n float64) {
	if n < 0 {
		n = 0
	}
	s.rampSamples = n
}

func (s *linearSmoother) setTarget(target float64) {
	s.target = target
	if s.rampSamples > 0 {
		s.step = (target - s.current) / s.rampSamples
	} else {
		s.current = target
		s.step = 0
	}
}

func (s *linearSmoother) next() float64 {
	if s.current == s.target {
		return s.current
	}
	s.current += s.step
	if (s.step > 0 && s.current >= s.target) || (s.step < 0 && s.current <= s.target) {
		s.current = s.target
	}
	return s.current
}

func (s *linearSmoother) reset(value float64) {
	s.current = value
	s.target = value
	s.step = 0
}

// Waveform selects the periodic function used by every voice in a bank.
type Waveform int

const (
	WaveformSine Waveform = iota
	WaveformTriangle
	WaveformSaw
	WaveformSquare
)

func waveformSample(wf Waveform, phase float64) float64 {
	switch wf {
	case WaveformSine:
		return math.Sin(phase)
	case WaveformTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(phase))
	case WaveformSaw:
		return (2 / math.Pi) * (phase - math.Pi)
	case WaveformSquare:
		if math.Sin(phase) >= 0 {
			return 1
		}
		return -1
	default:
		return 0
	}
}

type voice struct {
	freq   linearSmoother
	amp    linearSmoother
	phase  float64
	active bool
}

// oscillatorBank is a fixed-size bank of NumVoices additive oscillators,
// each with its own phase accumulator and amplitude/frequency smoothers.
type oscillatorBank struct {
	voices     [NumVoices]voice
	sampleRate float64
	waveform   Waveform
}

func newOscillatorBank(sampleRate float64) *oscillatorBank {
	b := &oscillatorBank{sampleRate: sampleRate}
	for i := range b.voices {
		b.voices[i].amp.setRampSamples(0.010 * sampleRate)
	}
	return b
}

func (b *oscillatorBank) setSampleRate(sampleRate float64) {
	b.sampleRate = sampleRate
	for i := range b.voices {
		b.voices[i].amp.setRampSamples(0.010 * sampleRate)
	}
}

// setGlideSeconds sets the frequency smoother ramp time shared by every
// voice (the "portamento" control).
func (b *oscillatorBank) setGlideSeconds(seconds float64) {
	n := seconds * b.sampleRate
	for i := range b.voices {
		b.voices[i].freq.setRampSamples(n)
	}
}

func (b *oscillatorBank) setWaveform(wf Waveform) {
	b.waveform = wf
}

// updateFrame assigns the first min(len(tracks), maxVoices) voices from
// tracks, and targets the remaining voices to silence.
func (b *oscillatorBank) updateFrame(tracks []PartialTrack, maxVoices int) {
	if maxVoices > NumVoices {
		maxVoices = NumVoices
	}
	if maxVoices < 1 {
		maxVoices = 1
	}

	n := len(tracks)
	if n > maxVoices {
		n = maxVoices
	}

	for i := 0; i < n; i++ {
		v := &b.voices[i]
		v.freq.setTarget(tracks[i].Frequency)
		if tracks[i].Active {
			v.amp.setTarget(tracks[i].Amplitude)
		} else {
			v.amp.setTarget(0)
		}
		v.active = tracks[i].Active
	}

	for i := n; i < NumVoices; i++ {
		b.voices[i].amp.setTarget(0)
	}
}

// nextSample advances every voice by one sample and returns the normalized
// sum.
func (b *oscillatorBank) nextSample() float64 {
	sum := 0.0
	twoPi := 2 * math.Pi

	for i := range b.voices {
		v := &b.voices[i]
		if !v.active && v.amp.current == 0 && v.amp.target == 0 {
			continue
		}

		f := v.freq.next()
		a := v.amp.next()

		sum += a * waveformSample(b.waveform, v.phase)

		v.phase += twoPi * f / b.sampleRate
		if v.phase >= twoPi {
			v.phase -= twoPi
		} else if v.phase < 0 {
			v.phase += twoPi
		}

		if a < AmplitudeThreshold {
			v.active = false
		}
	}

	return sum / NumVoices
}

func (b *oscillatorBank) reset() {
	for i := range b.voices {
		v := &b.voices[i]
		v.freq.reset(0)
		v.amp.reset(0)
		v.phase = 0
		v.active = false
	}
}
