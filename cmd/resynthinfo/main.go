// Command resynthinfo drives the resynthesis engine against a generated
// test signal, prints the FFT order and latency, and then prints the
// engine's output sample at each analysis hop.
//
// Usage:
//
//	resynthinfo [flags]
//
// Examples:
//
//	resynthinfo -signal sine -freq 440 -seconds 0.5
//	resynthinfo -signal chirp -freq 100 -freq-end 2000 -seconds 1
//	resynthinfo -slice 0.3 -voice 0.5 -waveform 2
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-resynth/dsp/core"
	"github.com/cwbudde/algo-resynth/dsp/resynth"
	"github.com/cwbudde/algo-resynth/dsp/signal"
)

func main() {
	sampleRate := flag.Float64("sr", 44100, "sample rate in Hz")
	sig := flag.String("signal", "sine", "test signal: sine, chirp, or silence")
	freq := flag.Float64("freq", 440, "tone frequency in Hz (sine), or chirp start frequency")
	freqEnd := flag.Float64("freq-end", 2000, "chirp end frequency in Hz")
	seconds := flag.Float64("seconds", 0.5, "signal duration in seconds")
	amplitude := flag.Float64("amplitude", 0.5, "signal amplitude")

	slice := flag.Float64("slice", 0.1, "slice parameter in [0,1], controls FFT size")
	voice := flag.Float64("voice", 1.0, "voice parameter in [0,1], controls max active oscillators")
	waveform := flag.Float64("waveform", 0, "waveform parameter in [0,1]")
	glide := flag.Float64("glide", 0.01, "glide parameter in [0,1] (frequency ramp seconds)")
	warp := flag.Float64("warp", 0.5, "warp parameter in [0,1]")
	blur := flag.Float64("blur", 0, "blur parameter in [0,1]")
	feedback := flag.Float64("feedback", 0, "feedback parameter in [0,1]")
	centerFreq := flag.Float64("center", 0.5, "frequency window center parameter in [0,1]")
	bandwidth := flag.Float64("bandwidth", 1.0, "frequency window bandwidth parameter in [0,1]")
	freqParam := flag.Float64("freqparam", 0.5, "fine shift parameter in [0,1]")
	octave := flag.Float64("octave", 0.5, "octave shift parameter in [0,1]")

	maxRows := flag.Int("max-rows", 20, "maximum number of frame rows to print")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: resynthinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Drives the resynthesis engine against a generated test signal and\n")
		fmt.Fprintf(os.Stderr, "prints the engine's output sample at each analysis hop.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  resynthinfo -signal sine -freq 440 -seconds 0.5\n")
		fmt.Fprintf(os.Stderr, "  resynthinfo -signal chirp -freq 100 -freq-end 2000 -seconds 1\n")
	}
	flag.Parse()

	samples := int(*seconds * *sampleRate)
	if samples <= 0 {
		fmt.Fprintf(os.Stderr, "error: seconds must produce at least one sample\n")
		os.Exit(1)
	}

	input, err := generateInput(*sig, *sampleRate, *freq, *freqEnd, *amplitude, samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	engine := resynth.NewEngine()
	if err := engine.Prepare(*sampleRate, samples); err != nil {
		fmt.Fprintf(os.Stderr, "error: prepare failed: %v\n", err)
		os.Exit(1)
	}

	if err := engine.SetSlice(*slice); err != nil {
		fmt.Fprintf(os.Stderr, "error: set slice failed: %v\n", err)
		os.Exit(1)
	}

	p := engine.Params()
	p.SetVoice(*voice)
	p.SetWaveform(*waveform)
	p.SetGlide(*glide)
	p.SetWarp(*warp)
	p.SetBlur(*blur)
	p.SetFeedback(*feedback)
	p.SetCenterFreq(*centerFreq)
	p.SetBandwidth(*bandwidth)
	p.SetFreq(*freqParam)
	p.SetOctave(*octave)

	fmt.Printf("fft order: %d (latency %d samples)\n\n", resynth.SliceToFFTOrder(*slice, *sampleRate), engine.Latency())

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Sample\tOutput\n")
	fmt.Fprintf(tw, "------\t------\n")

	hop := engine.Latency() / 4
	if hop <= 0 {
		hop = 1
	}

	rows := 0
	for i, x := range input {
		y := engine.ProcessSample(x)
		if i%hop == 0 && rows < *maxRows {
			fmt.Fprintf(tw, "%d\t%.6f\n", i, y)
			rows++
		}
	}
	tw.Flush()
}

func generateInput(kind string, sampleRate, freq, freqEnd, amplitude float64, samples int) ([]float32, error) {
	gen := signal.NewGenerator(core.WithSampleRate(sampleRate))

	var data []float64
	var err error
	switch kind {
	case "sine":
		data, err = gen.Sine(freq, amplitude, samples)
	case "chirp":
		data, err = gen.LinearChirp(freq, freqEnd, amplitude, samples)
	case "silence":
		data = make([]float64, samples)
	default:
		return nil, fmt.Errorf("unknown signal kind %q (want sine, chirp, or silence)", kind)
	}
	if err != nil {
		return nil, err
	}

	out := make([]float32, len(data))
	for i, v := range data {
		out[i] = float32(v)
	}
	return out, nil
}
