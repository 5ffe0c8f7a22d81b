package preprocess

import (
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/macdylan/preprocess-cancellation/gcode"
)

// M486 handles files labelled with Marlin's M486 object commands:
//
//	M486 T<n>     n objects in the print, definitions go here
//	M486 S<id>    start object id, -1 leaves the current object
//	M486 A<name>  name the current object
//
// The original M486 lines are kept as comments.
func M486(in io.Reader, opts Options) iter.Seq2[string, error] {
	return run(in, opts, func() dialect { return &m486{} })
}

type m486Cmd struct {
	total  int // T, -1 when missing
	id     string
	hasID  bool
	name   string
	hasTag bool
}

func parseM486(line string) (*m486Cmd, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 4 || !strings.EqualFold(line[:4], "M486") {
		return nil, false
	}
	b, err := gcode.ParseBlock(line)
	if err != nil || !b.Is("M486") {
		return nil, false
	}

	cmd := &m486Cmd{total: -1}
	if err := b.GetParam('T', &cmd.total); err != nil {
		cmd.total = -1
	}
	var id int
	if err := b.GetParam('S', &id); err == nil {
		cmd.id, cmd.hasID = strconv.Itoa(id), true
	}

	// the name may hold spaces, so take it from the raw text
	text, _, _ := strings.Cut(line, ";")
	fields := strings.Fields(text)
	for i := 1; i < len(fields); i++ {
		if f := fields[i]; f[0] == 'A' || f[0] == 'a' {
			name := strings.Join(append([]string{f[1:]}, fields[i+1:]...), " ")
			cmd.name, cmd.hasTag = gcode.CleanID(strings.Trim(name, `"'`)), true
			break
		}
	}
	return cmd, true
}

type m486 struct {
	hasTotal bool
}

func (d *m486) scan(lines []string, objs *objects, c *collector) {
	for _, line := range lines {
		if cmd, ok := parseM486(line); ok {
			if cmd.total >= 0 {
				d.hasTotal = true
				for i := 0; i < cmd.total; i++ {
					objs.get(strconv.Itoa(i))
				}
			}
			if cmd.hasID {
				c.current = nil
				if cmd.id != "-1" {
					c.current = objs.get(cmd.id)
				}
			}
			if cmd.hasTag && cmd.name != "" && c.current != nil {
				c.current.name = cmd.name
			}
		}
		c.observe(line)
	}
}

func (d *m486) rewrite(r *rewriter, line string) {
	cmd, ok := parseM486(line)
	if !ok {
		if d.hasTotal {
			r.emit(line)
		} else {
			r.pass(line)
		}
		return
	}

	if cmd.total >= 0 {
		r.define()
	}
	if cmd.hasID {
		r.end()
		r.define()
	}
	r.emit("; " + line)
	if cmd.hasID && cmd.id != "-1" {
		r.start(r.objects.get(cmd.id).name)
	}
}
