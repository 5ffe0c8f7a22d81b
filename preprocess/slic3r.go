package preprocess

import (
	"io"
	"iter"
	"strings"

	"github.com/macdylan/preprocess-cancellation/gcode"
)

const (
	slic3rStart = "; printing object"
	slic3rStop  = "; stop printing object"
)

// Slic3r handles PrusaSlicer, SuperSlicer and Slic3r output, which labels
// objects with "; printing object" / "; stop printing object" comments.
func Slic3r(in io.Reader, opts Options) iter.Seq2[string, error] {
	return run(in, opts, func() dialect { return slic3r{} })
}

func slic3rObject(line, prefix string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return gcode.CleanID(line[len(prefix):]), true
}

type slic3r struct{}

func (slic3r) scan(lines []string, objs *objects, c *collector) {
	for _, line := range lines {
		if name, ok := slic3rObject(line, slic3rStart); ok && name != "" {
			c.current = objs.get(name)
		} else if _, ok := slic3rObject(line, slic3rStop); ok {
			c.current = nil
		}
		c.observe(line)
	}
}

func (slic3r) rewrite(r *rewriter, line string) {
	if name, ok := slic3rObject(line, slic3rStart); ok && name != "" {
		r.define()
		r.emit(line)
		r.start(name)
		return
	}
	if _, ok := slic3rObject(line, slic3rStop); ok {
		r.end()
		r.emit(line)
		return
	}
	r.pass(line)
}
