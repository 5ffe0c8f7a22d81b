package layers

import (
	"strconv"
	"strings"
)

const (
	markLayerChange = ";LAYER_CHANGE" // prusaslicer, superslicer
	markLayer       = ";LAYER:"       // cura, ideamaker
)

// Tracker follows layer markers through a G-code stream.
type Tracker struct {
	layer   int
	started bool
}

// Observe updates the tracker with one line and returns the current layer.
func (t *Tracker) Observe(line string) int {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, markLayerChange):
		if t.started {
			t.layer++
		}
		t.started = true
	case strings.HasPrefix(line, markLayer):
		if n, err := strconv.Atoi(strings.TrimSpace(line[len(markLayer):])); err == nil {
			t.layer = n
			t.started = true
		}
	}
	return t.layer
}

func (t *Tracker) Layer() int {
	return t.layer
}
