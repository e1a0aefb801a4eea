package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes a scalar series over the window t >= From.
type Summary struct {
	From    float64
	Samples int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
}

// Summarize computes statistics of values whose time is at least from.
func Summarize(times, values []float64, from float64) Summary {
	var window []float64
	for i, t := range times {
		if t >= from {
			window = append(window, values[i])
		}
	}

	s := Summary{From: from, Samples: len(window)}
	if len(window) == 0 {
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(window, nil)
	s.Min, s.Max = floats.Min(window), floats.Max(window)
	return s
}

// PowerSpectrum returns |X_k| for k < len/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	centred := make([]float64, len(data))
	copy(centred, data)
	floats.AddConst(-stat.Mean(data, nil), centred)

	spec := fft.FFTReal(centred)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}
