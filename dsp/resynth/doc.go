// Package resynth implements a real-time spectral resynthesis engine.
//
// An overlap-add STFT analyzer feeds a spectral peak extractor, which feeds
// a McAulay-Quatieri-style partial tracker. Tracked partials are reshaped by
// a chain of per-partial modifiers and rendered by a bank of additive
// oscillators. Control-rate parameters are exposed as lock-free atomics so
// the audio thread never blocks on the control thread, and vice versa.
package resynth
