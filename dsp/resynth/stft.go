package resynth

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-resynth/dsp/delay"
	"github.com/cwbudde/algo-resynth/dsp/window"
)

const analysisOverlap = 4

// analyzer is the overlap-add STFT front end: it accumulates input samples
// into a circular fifo, and on each hop boundary windows and transforms the
// unwrapped frame into a complex spectrum.
type analyzer struct {
	sampleRate float64
	fftOrder   int
	fftSize    int
	hopSize    int
	numBins    int

	plan         *algofft.Plan[complex128]
	windowCoeffs []float64

	input    *fifo
	dryDelay *delay.Line

	frameTime []float64      // reused unwrap scratch, len fftSize
	spectrum  []complex128   // reused frame FFT buffer, len fftSize

	hopCount int
}

func newAnalyzer(sampleRate float64, fftOrder int) (*analyzer, error) {
	a := &analyzer{}
	if err := a.reconfigure(sampleRate, fftOrder); err != nil {
		return nil, err
	}
	return a, nil
}

// reconfigure rebuilds all frame-sized state for a new sample rate and/or
// fftOrder. Callers on the control thread must hold the engine guard while
// calling this; it must never run concurrently with sample processing.
func (a *analyzer) reconfigure(sampleRate float64, fftOrder int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("resynth: sample rate must be > 0: %f", sampleRate)
	}
	if fftOrder < MinFFTOrder || fftOrder > MaxFFTOrder {
		return fmt.Errorf("resynth: fft order must be in [%d, %d]: %d", MinFFTOrder, MaxFFTOrder, fftOrder)
	}

	fftSize := 1 << uint(fftOrder)
	hopSize := fftSize / analysisOverlap

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return fmt.Errorf("resynth: failed to create FFT plan: %w", err)
	}

	coeffs := window.Generate(window.TypeHann, fftSize, window.WithPeriodic())
	if len(coeffs) != fftSize {
		return fmt.Errorf("resynth: window generation failed for size %d", fftSize)
	}

	input, err := newFIFO(fftSize)
	if err != nil {
		return err
	}

	// Sized one sample larger than fftSize: delay.Line's ring buffer can only
	// return delays up to (capacity-1) without aliasing back onto a newer
	// sample, so reproducing the reported fftSize-sample latency exactly
	// needs fftSize+1 slots.
	dryDelay, err := delay.New(fftSize + 1)
	if err != nil {
		return err
	}

	a.sampleRate = sampleRate
	a.fftOrder = fftOrder
	a.fftSize = fftSize
	a.hopSize = hopSize
	a.numBins = fftSize/2 + 1

	a.plan = plan
	a.windowCoeffs = coeffs
	a.input = input
	a.dryDelay = dryDelay
	a.frameTime = make([]float64, fftSize)
	a.spectrum = make([]complex128, fftSize)
	a.hopCount = 0

	return nil
}

// writeSample pushes one input sample into the analysis fifo and the dry
// delay line used to report processing latency to a host.
func (a *analyzer) writeSample(x float64) {
	a.input.write(x)
	a.dryDelay.Write(x)
}

// dry returns the input sample delayed by exactly fftSize samples, matching
// the engine's reported processing latency.
func (a *analyzer) dry() float64 {
	return a.dryDelay.Read(a.fftSize + 1)
}

// advance moves the hop counter forward by one sample and reports whether a
// new frame is ready for analysis.
func (a *analyzer) advance() bool {
	a.hopCount++
	if a.hopCount >= a.hopSize {
		a.hopCount = 0
		return true
	}
	return false
}

// buildFrame unwraps the current fifo contents, applies the analysis
// window, and runs the forward FFT. The returned spectrum (length fftSize,
// but only bins [0, numBins) are meaningful for real input) is owned by the
// analyzer and reused on the next call.
func (a *analyzer) buildFrame() []complex128 {
	a.input.unwrap(a.frameTime)
	for i, w := range a.windowCoeffs {
		a.spectrum[i] = complex(a.frameTime[i]*w, 0)
	}

	// Forward transform in place.
	if err := a.plan.Forward(a.spectrum, a.spectrum); err != nil {
		// A forward FFT failure on a fixed, validated plan/frame size
		// indicates a library-level invariant violation; there is no
		// meaningful spectrum to return, so zero it rather than panic.
		for i := range a.spectrum {
			a.spectrum[i] = 0
		}
	}

	return a.spectrum
}

func (a *analyzer) reset() {
	a.input.reset()
	a.dryDelay.Reset()
	a.hopCount = 0
	for i := range a.spectrum {
		a.spectrum[i] = 0
	}
}
