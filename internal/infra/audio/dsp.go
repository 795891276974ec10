package audio

import "math"

// filterMinSamples is the shortest clip the high-pass filter runs on.
// Anything at or below this goes to the API unfiltered.
const filterMinSamples = 800

// biquad is a direct-form-I second-order IIR section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (s *biquad) process(x float64) float64 {
	y := s.b0*x + s.b1*s.x1 + s.b2*s.x2 - s.a1*s.y1 - s.a2*s.y2
	s.x2, s.x1 = s.x1, x
	s.y2, s.y1 = s.y1, y
	return y
}

// newHighpassSection derives high-pass coefficients for one section from the
// cutoff, quality factor and sample rate (RBJ audio EQ cookbook).
func newHighpassSection(cutoffHz, q float64, sampleRate int) *biquad {
	w0 := 2 * math.Pi * cutoffHz / float64(sampleRate)
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return &biquad{
		b0: (1 + cosw0) / 2 / a0,
		b1: -(1 + cosw0) / a0,
		b2: (1 + cosw0) / 2 / a0,
		a1: -2 * cosw0 / a0,
		a2: (1 - alpha) / a0,
	}
}

// Highpass runs a fourth-order Butterworth high-pass over the clip and
// returns the filtered samples. Clips of filterMinSamples or fewer, and
// cutoffs outside (0, nyquist), are returned unchanged.
func Highpass(samples []int16, cutoffHz float64, sampleRate int) []int16 {
	if len(samples) <= filterMinSamples {
		return samples
	}
	if cutoffHz <= 0 || cutoffHz >= float64(sampleRate)/2 {
		return samples
	}

	// Butterworth pole pair Q values for a fourth-order filter as two
	// cascaded second-order sections.
	sections := [2]*biquad{
		newHighpassSection(cutoffHz, 0.54119610, sampleRate),
		newHighpassSection(cutoffHz, 1.30656296, sampleRate),
	}

	out := make([]int16, len(samples))
	for i, sample := range samples {
		x := float64(sample)
		for _, sec := range sections {
			x = sec.process(x)
		}
		switch {
		case x > math.MaxInt16:
			out[i] = math.MaxInt16
		case x < math.MinInt16:
			out[i] = math.MinInt16
		default:
			out[i] = int16(math.Round(x))
		}
	}
	return out
}
