package resynth

import "math"

// ModifierParams is a snapshot of the control parameters a modifier chain
// pass needs, read once at the top of a frame.
type ModifierParams struct {
	CenterFreq float64
	Bandwidth  float64
	Blur       float64
	Feedback   float64
	Warp       float64
	Freq       float64
	Octave     float64
}

// modifierChain reshapes a frame's tracked partials in a fixed order:
// frequency window, blur, feedback, warp, fine shift, octave. Blur and
// feedback carry sparse per-track_id state that persists harmlessly across
// track retirement and is lazily pruned.
type modifierChain struct {
	prevAmp   map[int64]float64
	fb        map[int64]float64
	activeSet map[int64]struct{}
}

func newModifierChain() *modifierChain {
	return &modifierChain{
		prevAmp:   make(map[int64]float64, modifierStateWatermark),
		fb:        make(map[int64]float64, modifierStateWatermark),
		activeSet: make(map[int64]struct{}, modifierStateWatermark),
	}
}

func (c *modifierChain) reset() {
	clear(c.prevAmp)
	clear(c.fb)
}

// apply reshapes tracks in place and returns it.
func (c *modifierChain) apply(tracks []PartialTrack, p ModifierParams) []PartialTrack {
	c.frequencyWindow(tracks, p.CenterFreq, p.Bandwidth)
	c.blur(tracks, p.Blur)
	c.feedback(tracks, p.Feedback)
	c.warp(tracks, p.Warp)
	c.fineShift(tracks, p.Freq)
	c.octave(tracks, p.Octave)
	c.pruneIfNeeded(tracks)
	return tracks
}

func (c *modifierChain) frequencyWindow(tracks []PartialTrack, centerFreq, bandwidth float64) {
	centerHz := 20 * math.Pow(20000.0/20.0, centerFreq)
	bwSemitones := 1 + 59*bandwidth
	ratio := math.Pow(2, bwSemitones/12)
	sqrtRatio := math.Sqrt(ratio)
	fMin := centerHz / sqrtRatio
	fMax := centerHz * sqrtRatio

	for i := range tracks {
		if !tracks[i].Active {
			continue
		}
		if tracks[i].Frequency < fMin || tracks[i].Frequency > fMax {
			tracks[i].Active = false
		}
	}
}

func (c *modifierChain) blur(tracks []PartialTrack, blur float64) {
	alpha := 1 - blur
	for i := range tracks {
		if !tracks[i].Active {
			continue
		}
		id := tracks[i].TrackID
		prev, ok := c.prevAmp[id]
		if !ok {
			prev = tracks[i].Amplitude
		}
		amp := (1-alpha)*prev + alpha*tracks[i].Amplitude
		tracks[i].Amplitude = amp
		c.prevAmp[id] = amp
	}
}

func (c *modifierChain) feedback(tracks []PartialTrack, feedback float64) {
	for i := range tracks {
		if !tracks[i].Active {
			continue
		}
		id := tracks[i].TrackID
		fb := c.fb[id] * 0.97
		amp := tracks[i].Amplitude*(1-feedback) + fb*feedback
		tracks[i].Amplitude = amp
		c.fb[id] = amp
	}
}

func (c *modifierChain) warp(tracks []PartialTrack, warp float64) {
	ratio := math.Pow(2, (warp-0.5)*1.0)
	for i := range tracks {
		if !tracks[i].Active {
			continue
		}
		tracks[i].Frequency *= ratio
	}
}

func (c *modifierChain) fineShift(tracks []PartialTrack, freqParam float64) {
	cents := (freqParam - 0.5) * 200
	ratio := math.Pow(2, cents/1200)
	for i := range tracks {
		if !tracks[i].Active {
			continue
		}
		tracks[i].Frequency *= ratio
	}
}

func (c *modifierChain) octave(tracks []PartialTrack, octave float64) {
	ratio := math.Pow(2, (octave-0.5)*4)
	for i := range tracks {
		if !tracks[i].Active {
			continue
		}
		tracks[i].Frequency *= ratio
	}
}

// pruneIfNeeded drops sparse per-track state for track IDs no longer in
// tracks, once either map grows past the watermark.
func (c *modifierChain) pruneIfNeeded(tracks []PartialTrack) {
	if len(c.prevAmp) <= modifierStateWatermark && len(c.fb) <= modifierStateWatermark {
		return
	}

	clear(c.activeSet)
	for i := range tracks {
		c.activeSet[tracks[i].TrackID] = struct{}{}
	}

	for id := range c.prevAmp {
		if _, ok := c.activeSet[id]; !ok {
			delete(c.prevAmp, id)
		}
	}
	for id := range c.fb {
		if _, ok := c.activeSet[id]; !ok {
			delete(c.fb, id)
		}
	}
}
