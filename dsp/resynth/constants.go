package resynth

// Engine-wide sizing constants. These are fixed by design, not configurable,
// since the oscillator bank, peak extractor, and tracker all size their
// scratch state from them once at prepare time.
const (
	// NumVoices is the size of the additive oscillator bank.
	NumVoices = 33

	// MaxPeaks caps the number of spectral peaks kept per analysis frame.
	MaxPeaks = 33

	// MaxActiveTracks caps the number of simultaneously live partial tracks.
	MaxActiveTracks = 33

	// MaxFramesDead is the number of consecutive unmatched frames a track
	// tolerates before it is retired.
	MaxFramesDead = 3

	// AmplitudeThreshold is the minimum partial/voice amplitude considered
	// audible; below this, tracks are retired and voices are silenced.
	AmplitudeThreshold = 1e-3

	// MinFFTOrder and MaxFFTOrder bound the analysis frame size (2^order).
	MinFFTOrder = 7
	MaxFFTOrder = 14

	// modifierStateWatermark bounds the sparse per-track modifier state
	// maps; once either exceeds it, stale entries for retired track IDs are
	// pruned.
	modifierStateWatermark = 4 * MaxActiveTracks
)
