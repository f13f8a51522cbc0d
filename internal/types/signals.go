// Package types provides type definitions for structured data used throughout the job application assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "sort"

// SignalSet maps a normalized keyword or phrase to an importance weight.
// The zero value is a valid, empty set.
type SignalSet struct {
	Weights map[string]float64 `json:"weights"`
}

// NewSignalSet copies weights into a new SignalSet.
func NewSignalSet(weights map[string]float64) SignalSet {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return SignalSet{Weights: out}
}

// Len returns the number of signals.
func (s SignalSet) Len() int {
	return len(s.Weights)
}

// Has reports whether keyword is present.
func (s SignalSet) Has(keyword string) bool {
	_, ok := s.Weights[keyword]
	return ok
}

// Weight returns the weight of keyword, or zero.
func (s SignalSet) Weight(keyword string) float64 {
	return s.Weights[keyword]
}

// Keywords returns keywords ordered by weight descending, then alphabetically.
func (s SignalSet) Keywords() []string {
	out := make([]string, 0, len(s.Weights))
	for k := range s.Weights {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := s.Weights[out[i]], s.Weights[out[j]]
		if wi != wj {
			return wi > wj
		}
		return out[i] < out[j]
	})
	return out
}

// Top returns at most n keywords in Keywords order.
func (s SignalSet) Top(n int) []string {
	keys := s.Keywords()
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
