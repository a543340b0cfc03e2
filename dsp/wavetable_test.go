package dsp

import (
	"fmt"
	"math"
	"testing"
)

// risingZeroCrossings estimates frequency from upward zero crossings. The
// sawtooth crosses upward once per period, at the wrap.
func risingZeroCrossings(samples []float64, sampleRate float64) float64 {
	var first, last, count int
	for i := 1; i < len(samples); i++ {
		if samples[i-1] < 0 && samples[i] >= 0 {
			if count == 0 {
				first = i
			}
			last = i
			count++
		}
	}
	if count < 2 {
		return 0
	}
	return float64(count-1) * sampleRate / float64(last-first)
}

func TestWavetableFrequency(t *testing.T) {
	table := SawtoothTable(DefaultTableSize, DefaultHarmonics)
	for _, freq := range []float64{110, 261.63, 440, 1000} {
		t.Run(fmt.Sprintf("%.0fHz", freq), func(t *testing.T) {
			osc := NewWavetable(testRate, table)
			osc.SetFrequency(freq)
			samples := make([]float64, int(testRate))
			for i := range samples {
				samples[i] = osc.Process()
			}
			got := risingZeroCrossings(samples, testRate)
			if math.Abs(got-freq) > 0.5 {
				t.Errorf("measured %.2f Hz, want %.2f Hz", got, freq)
			}
		})
	}
}

func TestSawtoothTableShape(t *testing.T) {
	table := SawtoothTable(DefaultTableSize, DefaultHarmonics)
	if len(table) != DefaultTableSize {
		t.Fatalf("size %d", len(table))
	}
	if math.Abs(table[0]) > 1e-9 {
		t.Errorf("table[0] = %.6f, want 0", table[0])
	}
	var peak float64
	for _, v := range table {
		peak = math.Max(peak, math.Abs(v))
	}
	// 0.5 * (pi/2) plus Gibbs overshoot.
	if peak < 0.7 || peak > 1.0 {
		t.Errorf("peak %.3f outside expected range", peak)
	}
}

func TestWavetableEmptyTable(t *testing.T) {
	osc := NewWavetable(testRate, nil)
	osc.SetFrequency(440)
	if v := osc.Process(); v != 0 {
		t.Errorf("empty table produced %.3f", v)
	}
}
