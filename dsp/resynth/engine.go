package resynth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-resynth/dsp/core"
)

// Engine owns the full resynthesis pipeline and presents exactly two
// surface operations to a host: Prepare and ProcessSample. All parameter
// writes and SetSlice, Reset and Release calls are expected to originate from a single
// control thread distinct from the one calling ProcessSample.
type Engine struct {
	cfg      core.ProcessorConfig
	fftOrder int
	prepared bool

	params *AtomicParams
	guard  guard

	analyzer  *analyzer
	extractor *extractor
	tracker   *tracker
	bank      *oscillatorBank
	modChain  *modifierChain

	scratchTracks []PartialTrack
}

// NewEngine returns an unprepared engine. Call Prepare before ProcessSample.
func NewEngine() *Engine {
	return &Engine{
		params: NewAtomicParams(),
	}
}

// Params returns the engine's atomic parameter block, for the control
// thread to read and write.
func (e *Engine) Params() *AtomicParams { return e.params }

// Latency reports the current processing latency in samples, equal to the
// active FFT frame size.
func (e *Engine) Latency() int {
	if !e.prepared {
		return 0
	}
	return e.analyzer.fftSize
}

// Dry returns the input sample delayed by Latency samples, for a host
// wrapper to align against ProcessSample's output when performing its own
// dry/wet mix. Valid only after the engine is prepared; returns 0 otherwise.
func (e *Engine) Dry() float64 {
	if !e.prepared {
		return 0
	}
	return e.analyzer.dry()
}

// Prepare validates sample rate and block size, and builds all
// FFT-size-dependent state at the FFT order implied by the default slice
// parameter.
func (e *Engine) Prepare(sampleRate float64, maxBlock int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		e.prepared = false
		return fmt.Errorf("resynth: sample rate must be > 0: %f", sampleRate)
	}
	if maxBlock <= 0 {
		e.prepared = false
		return fmt.Errorf("resynth: max block must be > 0: %d", maxBlock)
	}

	cfg := core.ApplyProcessorOptions(core.WithSampleRate(sampleRate), core.WithBlockSize(maxBlock))
	order := SliceToFFTOrder(e.params.Slice(), cfg.SampleRate)

	a, err := newAnalyzer(cfg.SampleRate, order)
	if err != nil {
		e.prepared = false
		return err
	}

	e.cfg = cfg
	e.fftOrder = order
	e.analyzer = a
	e.extractor = newExtractor()
	e.extractor.reconfigure(a.fftSize)
	e.tracker = newTracker()
	e.bank = newOscillatorBank(sampleRate)
	e.bank.setGlideSeconds(e.params.Glide())
	e.bank.setWaveform(e.params.WaveformIndex())
	e.modChain = newModifierChain()
	e.scratchTracks = make([]PartialTrack, 0, MaxActiveTracks)
	e.prepared = true

	return nil
}

// Release deallocates FFT/window resources under the guard. The engine
// bypasses (and Prepare must be called again) afterward.
func (e *Engine) Release() {
	e.guard.acquire()
	defer e.guard.release()

	e.analyzer = nil
	e.extractor = nil
	e.tracker = nil
	e.bank = nil
	e.modChain = nil
	e.scratchTracks = nil
	e.prepared = false
}

// Reset clears analysis/tracker/oscillator state without releasing
// FFT-size-dependent buffers, for a stream restart at the same
// configuration.
func (e *Engine) Reset() {
	if !e.prepared {
		return
	}
	e.guard.acquire()
	defer e.guard.release()

	e.analyzer.reset()
	e.tracker.reset()
	e.bank.reset()
	e.modChain.reset()
}

// SetSlice updates the slice parameter and, if the implied FFT order
// changed, reconfigures the engine under the guard. This must only be
// called from the control thread.
func (e *Engine) SetSlice(v float64) error {
	v = clampParam(v)
	e.params.SetSlice(v)

	if !e.prepared {
		return nil
	}

	newOrder := SliceToFFTOrder(v, e.cfg.SampleRate)
	if newOrder == e.fftOrder {
		return nil
	}

	e.guard.acquire()
	defer e.guard.release()

	return e.reconfigure(newOrder)
}

// reconfigure rebuilds FFT-size-dependent state. Callers must hold the
// guard.
func (e *Engine) reconfigure(fftOrder int) error {
	if err := e.analyzer.reconfigure(e.cfg.SampleRate, fftOrder); err != nil {
		return err
	}
	e.extractor.reconfigure(e.analyzer.fftSize)
	e.tracker.reset()
	e.modChain.reset()
	e.bank.reset()
	e.fftOrder = fftOrder
	return nil
}

// ProcessSample advances the engine by exactly one sample. If a
// reconfiguration is in progress, it passes x through unmodified.
func (e *Engine) ProcessSample(x float32) float32 {
	if !e.prepared {
		return x
	}
	if !e.guard.tryAcquire() {
		return x
	}
	defer e.guard.release()

	xf := float64(x)
	e.analyzer.writeSample(xf)

	y := e.bank.nextSample()

	if e.analyzer.advance() {
		e.processFrame()
	}

	return float32(y)
}

func (e *Engine) processFrame() {
	var tracks []PartialTrack

	if e.params.IsFrozen() {
		tracks = e.tracker.active()
	} else {
		frame := e.analyzer.buildFrame()
		peaks := e.extractor.extract(frame, e.cfg.SampleRate)
		tracks = e.tracker.update(peaks)
	}

	e.scratchTracks = append(e.scratchTracks[:0], tracks...)

	modParams := e.params.ModifierSnapshot()
	e.scratchTracks = e.modChain.apply(e.scratchTracks, modParams)

	e.bank.setGlideSeconds(e.params.Glide())
	e.bank.setWaveform(e.params.WaveformIndex())
	e.bank.updateFrame(e.scratchTracks, e.params.MaxVoices())
}
