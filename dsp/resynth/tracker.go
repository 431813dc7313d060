package resynth

import "math"

// tracker implements a McAulay-Quatieri-style greedy partial tracker: each
// frame it ages, matches, fades, retires, and finally births tracks against
// the current peak list.
type tracker struct {
	tracks      []PartialTrack
	nextTrackID int64
	matched     []bool
}

func newTracker() *tracker {
	return &tracker{
		tracks:  make([]PartialTrack, 0, MaxActiveTracks),
		matched: make([]bool, 0, MaxPeaks),
	}
}

// active returns the tracker's current track list without mutating it; used
// when the engine is frozen.
func (t *tracker) active() []PartialTrack {
	return t.tracks
}

func (t *tracker) reset() {
	t.tracks = t.tracks[:0]
	t.nextTrackID = 0
}

// update runs one frame of the tracking protocol against peaks (assumed
// sorted by descending magnitude) and returns the resulting active track
// list. The returned slice is owned by the tracker and reused on the next
// call.
func (t *tracker) update(peaks []SpectralPeak) []PartialTrack {
	// 1. Age.
	for i := range t.tracks {
		t.tracks[i].FramesSinceLastUpdate++
	}

	// Matched scratch, reset for this frame's peak count.
	if cap(t.matched) < len(peaks) {
		t.matched = make([]bool, len(peaks))
	} else {
		t.matched = t.matched[:len(peaks)]
		for i := range t.matched {
			t.matched[i] = false
		}
	}

	// 2. Greedy match.
	for ti := range t.tracks {
		tr := &t.tracks[ti]

		var predicted float64
		if n := len(tr.FrequencyHistory); n >= 2 {
			last := tr.FrequencyHistory[n-1]
			prevLast := tr.FrequencyHistory[n-2]
			predicted = last + (last - prevLast)
		} else {
			predicted = tr.Frequency
		}

		tol := math.Abs(predicted * 0.10)

		best := -1
		bestDist := math.Inf(1)
		for pj := range peaks {
			if t.matched[pj] {
				continue
			}
			dist := math.Abs(peaks[pj].Frequency - predicted)
			if dist < bestDist {
				bestDist = dist
				best = pj
			}
		}

		if best >= 0 && bestDist < tol {
			t.matched[best] = true
			p := peaks[best]

			tr.PrevFrequency = tr.Frequency
			tr.PrevAmplitude = tr.Amplitude
			tr.Frequency = p.Frequency
			tr.Amplitude = p.Magnitude
			tr.Phase = p.Phase
			tr.FrequencyHistory = pushHistory(tr.FrequencyHistory, p.Frequency)
			tr.AmplitudeHistory = pushHistory(tr.AmplitudeHistory, p.Magnitude)
			tr.FramesSinceLastUpdate = 0
			tr.FramesSinceCreation++
		}
	}

	// 3. Fade-out.
	for i := range t.tracks {
		tr := &t.tracks[i]
		if tr.FramesSinceLastUpdate == 1 {
			tr.PrevAmplitude = tr.Amplitude
			tr.Amplitude *= 0.9
		}
	}

	// 4. Retire.
	kept := t.tracks[:0]
	for _, tr := range t.tracks {
		if !tr.Active {
			continue
		}
		if tr.FramesSinceLastUpdate > MaxFramesDead {
			continue
		}
		if tr.Amplitude < AmplitudeThreshold {
			continue
		}
		kept = append(kept, tr)
	}
	t.tracks = kept

	// 5. Birth.
	for pj := range peaks {
		if t.matched[pj] {
			continue
		}
		if len(t.tracks) >= MaxActiveTracks {
			break
		}
		p := peaks[pj]
		t.tracks = append(t.tracks, PartialTrack{
			TrackID:               t.nextTrackID,
			Frequency:             p.Frequency,
			Amplitude:             p.Magnitude,
			Phase:                 p.Phase,
			FrequencyHistory:      pushHistory(nil, p.Frequency),
			AmplitudeHistory:      pushHistory(nil, p.Magnitude),
			FramesSinceCreation:   1,
			FramesSinceLastUpdate: 0,
			Active:                true,
		})
		t.nextTrackID++
	}

	return t.tracks
}
