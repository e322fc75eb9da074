// Package util contains misc internal utilities.
package util

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Limiter holds software travel limits for an axis
type Limiter struct {
	Min float64 `json:"min" yaml:"min" koanf:"min"`
	Max float64 `json:"max" yaml:"max" koanf:"max"`
}

// Check returns true if min <= input <= max
func (l Limiter) Check(input float64) bool {
	return input >= l.Min && input <= l.Max
}

// Clamp limits input to the range [low, high]
func Clamp(input, low, high float64) float64 {
	return math.Max(low, math.Min(input, high))
}

// UniqueFloat64 returns the sorted distinct values of fs.
// fs is not modified.
func UniqueFloat64(fs []float64) []float64 {
	if len(fs) == 0 {
		return []float64{}
	}
	cp := make([]float64, len(fs))
	copy(cp, fs)
	sort.Float64s(cp)
	out := cp[:1]
	for _, f := range cp[1:] {
		if f != out[len(out)-1] {
			out = append(out, f)
		}
	}
	return out
}

// SecsToDuration converts a floating point number of seconds to a time.Duration
func SecsToDuration(secs float64) time.Duration {
	return time.Duration(math.Round(secs * 1e9))
}

// IntSliceToCSV convets a slice of ints to CSV formatted data.
// e.g., []int{1,2,3,4,5} => "1,2,3,4,5"
func IntSliceToCSV(is []int) string {
	s := make([]string, len(is))
	for i, v := range is {
		s[i] = strconv.Itoa(v)
	}

	return strings.Join(s, ",")
}
