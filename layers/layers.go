// Package layers restricts preprocessing to a subset of a print's layers.
package layers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidFilter = errors.New("invalid layer filter")

// Filter decides whether a 0-based layer index takes part in preprocessing.
type Filter interface {
	Contains(layer int) bool
	String() string
}

type all struct{}

func (all) Contains(int) bool { return true }
func (all) String() string    { return "all" }

// All accepts every layer.
func All() Filter {
	return all{}
}

type span struct {
	first, last int
}

func (s span) Contains(layer int) bool {
	return layer >= s.first && layer <= s.last
}

func (s span) String() string {
	switch {
	case s.first == 0 && s.last == 0:
		return "first"
	case s.first == s.last:
		return strconv.Itoa(s.first)
	case s.last == math.MaxInt:
		return fmt.Sprintf("%d-", s.first)
	}
	return fmt.Sprintf("%d-%d", s.first, s.last)
}

// Range accepts layers first through last, inclusive.
func Range(first, last int) Filter {
	if last < first {
		first, last = last, first
	}
	return span{first: first, last: last}
}

// First accepts only the first layer.
func First() Filter {
	return Range(0, 0)
}

/*
Parse reads a filter from its command line form.

	all   : every layer
	first : the first layer
	N     : layer N only
	N-M   : layers N through M
	N-    : layer N and above
*/
func Parse(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all":
		return All(), nil
	case "first":
		return First(), nil
	}

	lo, hi, isRange := strings.Cut(s, "-")
	first, err := strconv.Atoi(lo)
	if err != nil || first < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	if !isRange {
		return Range(first, first), nil
	}
	if hi == "" {
		return Range(first, math.MaxInt), nil
	}
	last, err := strconv.Atoi(hi)
	if err != nil || last < first {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return Range(first, last), nil
}
