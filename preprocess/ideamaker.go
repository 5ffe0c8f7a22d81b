package preprocess

import (
	"io"
	"iter"
	"strings"

	"github.com/macdylan/preprocess-cancellation/gcode"
)

const (
	ideaPrinting      = ";PRINTING:"
	ideaPrintingID    = ";PRINTING_ID:"
	ideaRemainingTime = ";REMAINING_TIME:"
)

// IdeaMaker handles ideaMaker output. ";PRINTING: <name>" names the next
// object, ";PRINTING_ID: <id>" enters it (-1 is not an object) and
// ";REMAINING_TIME:" leaves it.
func IdeaMaker(in io.Reader, opts Options) iter.Seq2[string, error] {
	return run(in, opts, func() dialect { return &ideaMaker{} })
}

func ideaValue(line, prefix string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

// ideaState resolves the object entered by a ;PRINTING_ID: line.
type ideaState struct {
	name string
}

func (s *ideaState) next(line string) (enter string, leave bool) {
	if v, ok := ideaValue(line, ideaPrinting); ok {
		s.name = gcode.CleanID(v)
		return "", false
	}
	if id, ok := ideaValue(line, ideaPrintingID); ok {
		if id == "-1" || s.name == "" {
			return "", true
		}
		return s.name, true
	}
	if _, ok := ideaValue(line, ideaRemainingTime); ok {
		return "", true
	}
	return "", false
}

type ideaMaker struct {
	printing ideaState
}

func (*ideaMaker) scan(lines []string, objs *objects, c *collector) {
	var s ideaState
	for _, line := range lines {
		if enter, leave := s.next(line); leave {
			c.current = nil
			if enter != "" {
				c.current = objs.get(enter)
			}
		}
		c.observe(line)
	}
}

func (d *ideaMaker) rewrite(r *rewriter, line string) {
	enter, leave := d.printing.next(line)
	if !leave || (enter == "" && r.current == "") {
		r.pass(line)
		return
	}
	r.end()
	r.define()
	r.emit(line)
	if enter != "" {
		r.start(enter)
	}
}
