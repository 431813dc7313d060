package resynth

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-resynth/dsp/buffer"
	"github.com/cwbudde/algo-resynth/dsp/spectrum"
)

// extractor finds local maxima in a magnitude spectrum and refines each to
// sub-bin precision by parabolic interpolation across its three surrounding
// magnitude samples.
type extractor struct {
	fftSize int
	numBins int

	reBuf  *buffer.Buffer
	imBuf  *buffer.Buffer
	magBuf *buffer.Buffer

	reBins  []float64
	imBins  []float64
	magBins []float64

	candidates []SpectralPeak
}

func newExtractor() *extractor {
	return &extractor{}
}

// reconfigure resizes the extractor's bin-domain scratch for a new fftSize.
// The three buffers are owned for the extractor's lifetime and resized in
// place, so shrinking (or reconfiguring back to a previously-seen size)
// never reallocates.
func (e *extractor) reconfigure(fftSize int) {
	numBins := fftSize/2 + 1
	e.fftSize = fftSize
	e.numBins = numBins

	if e.reBuf == nil {
		e.reBuf = buffer.New(numBins)
		e.imBuf = buffer.New(numBins)
		e.magBuf = buffer.New(numBins)
	} else {
		e.reBuf.Resize(numBins)
		e.imBuf.Resize(numBins)
		e.magBuf.Resize(numBins)
	}

	e.reBins = e.reBuf.Samples()
	e.imBins = e.imBuf.Samples()
	e.magBins = e.magBuf.Samples()

	if cap(e.candidates) < numBins/4+1 {
		e.candidates = make([]SpectralPeak, 0, numBins/4+1)
	} else {
		e.candidates = e.candidates[:0]
	}
}

// extract returns up to MaxPeaks spectral peaks from spectrum, sorted by
// descending magnitude with ascending bin index as a tiebreak. The returned
// slice is owned by the extractor and reused on the next call.
func (e *extractor) extract(frame []complex128, sampleRate float64) []SpectralPeak {
	numBins := e.numBins
	for k := 0; k < numBins; k++ {
		e.reBins[k] = real(frame[k])
		e.imBins[k] = imag(frame[k])
	}

	spectrum.MagnitudeFromParts(e.magBins, e.reBins, e.imBins)

	norm := 1.0 / float64(e.fftSize)
	for k := range e.magBins {
		e.magBins[k] *= norm
	}

	e.candidates = e.candidates[:0]

	for i := 1; i <= numBins-2; i++ {
		y0 := e.magBins[i]
		if y0 <= e.magBins[i-1] || y0 <= e.magBins[i+1] {
			continue
		}

		yMinus := e.magBins[i-1]
		yPlus := e.magBins[i+1]

		d := 2 * (2*y0 - yMinus - yPlus)
		delta := 0.0
		if math.Abs(d) > 1e-10 {
			delta = (yMinus - yPlus) / d
			delta = math.Max(-0.5, math.Min(0.5, delta))
		}

		freq := (float64(i) + delta) * sampleRate / float64(e.fftSize)
		mag := y0 - 0.25*(yMinus-yPlus)*delta
		phase := math.Atan2(e.imBins[i], e.reBins[i])

		e.candidates = append(e.candidates, SpectralPeak{
			BinIndex:  i,
			Frequency: freq,
			Magnitude: mag,
			Phase:     phase,
		})
	}

	sort.Slice(e.candidates, func(a, b int) bool {
		ca, cb := e.candidates[a], e.candidates[b]
		if ca.Magnitude != cb.Magnitude {
			return ca.Magnitude > cb.Magnitude
		}
		return ca.BinIndex < cb.BinIndex
	})

	if len(e.candidates) > MaxPeaks {
		e.candidates = e.candidates[:MaxPeaks]
	}

	return e.candidates
}
