// Package preprocess rewrites slicer object markers into Klipper's
// EXCLUDE_OBJECT commands so individual objects can be cancelled mid-print.
package preprocess

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/macdylan/preprocess-cancellation/gcode"
	"github.com/macdylan/preprocess-cancellation/layers"
)

var (
	// Version is written into the header of every processed file.
	Version = "dev"

	ErrEmptyInput = errors.New("empty input")
)

const (
	// HeaderMark starts the comment that flags a file as already processed.
	HeaderMark = "; Pre-Processed for Cancel-Object support by preprocess_cancellation"
)

// Options are passed through to every preprocessor.
type Options struct {
	// UseHull outlines objects with their convex hull instead of a bounding box.
	UseHull bool
	// Layers selects which layers contribute points to the object outlines.
	Layers layers.Filter
}

func (o Options) filter() layers.Filter {
	if o.Layers == nil {
		return layers.All()
	}
	return o.Layers
}

// Preprocessor reads slicer G-code and yields the rewritten lines, each
// with its line ending. A read error is yielded once and ends the sequence.
type Preprocessor func(in io.Reader, opts Options) iter.Seq2[string, error]

// AlreadyProcessed reports whether line carries klipper object definitions.
func AlreadyProcessed(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "EXCLUDE_OBJECT_DEFINE") ||
		strings.HasPrefix(line, "DEFINE_OBJECT")
}

func readLines(in io.Reader) ([]string, error) {
	var (
		lines []string
		br    = bufio.NewReaderSize(in, 64*1024)
	)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	return lines, nil
}

// isCommand reports whether line holds anything but a comment.
func isCommand(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && line[0] != ';'
}

// addPoint records the end point of an extruding move.
func addPoint(h Hull, line string) {
	line = strings.TrimLeft(line, " \t")
	if line == "" || (line[0] != 'G' && line[0] != 'g') {
		return
	}
	b, err := gcode.ParseBlock(line)
	if err != nil || !b.IsMove() {
		return
	}
	e, ok := b.Float('E')
	if !ok || e <= 0 {
		return
	}
	x, okx := b.Float('X')
	y, oky := b.Float('Y')
	if okx && oky {
		h.Add(Point{x, y})
	}
}

type object struct {
	name string
	hull Hull
}

// objects keeps the known objects in first-seen order.
type objects struct {
	keys    []string
	byKey   map[string]*object
	precise bool
}

func newObjects(precise bool) *objects {
	return &objects{byKey: make(map[string]*object), precise: precise}
}

func (o *objects) get(key string) *object {
	if obj, ok := o.byKey[key]; ok {
		return obj
	}
	obj := &object{name: key, hull: NewHull(o.precise)}
	o.keys = append(o.keys, key)
	o.byKey[key] = obj
	return obj
}

// uniqueNames suffixes the key onto any name already taken by an earlier
// object, klipper keys excluded objects by name.
func (o *objects) uniqueNames() {
	taken := make(map[string]bool, len(o.keys))
	for _, key := range o.keys {
		obj := o.byKey[key]
		name := obj.name
		if taken[name] {
			name = gcode.CleanID(obj.name + "_" + key)
			for n := 2; taken[name]; n++ {
				name = fmt.Sprintf("%s_%s_%d", obj.name, gcode.CleanID(key), n)
			}
		}
		taken[name] = true
		obj.name = name
	}
}

func (o *objects) len() int {
	return len(o.keys)
}

// collector follows the current object and layer during the first pass.
type collector struct {
	filter  layers.Filter
	tracker layers.Tracker
	current *object
}

func (c *collector) observe(line string) {
	layer := c.tracker.Observe(line)
	if c.current != nil && c.filter.Contains(layer) {
		addPoint(c.current.hull, line)
	}
}

// rewriter emits the second pass, stopping once the consumer does.
type rewriter struct {
	yield   func(string, error) bool
	objects *objects
	defined bool
	current string
	done    bool
	lastNL  bool
}

func (r *rewriter) emit(lines ...string) {
	for _, line := range lines {
		if r.done {
			return
		}
		if !r.yield(line, nil) {
			r.done = true
			return
		}
		r.lastNL = strings.HasSuffix(line, "\n")
	}
}

// define writes the header and every object definition once.
func (r *rewriter) define() {
	if r.defined {
		return
	}
	r.defined = true
	if !r.lastNL {
		r.emit("\n")
	}
	r.emit(
		"\n",
		fmt.Sprintf("%s %s\n", HeaderMark, Version),
		fmt.Sprintf("; %d known objects\n", r.objects.len()),
	)
	for _, key := range r.objects.keys {
		obj := r.objects.byKey[key]
		r.emit(defineObject(obj.name, obj.hull))
	}
}

// pass copies line and places the definitions after the first command.
func (r *rewriter) pass(line string) {
	r.emit(line)
	if !r.defined && isCommand(line) {
		r.define()
	}
}

func (r *rewriter) start(name string) {
	r.end()
	r.define()
	if !r.lastNL {
		r.emit("\n")
	}
	r.current = name
	r.emit(fmt.Sprintf("EXCLUDE_OBJECT_START NAME=%s\n", name))
}

func (r *rewriter) end() {
	if r.current == "" {
		return
	}
	if !r.lastNL {
		r.emit("\n")
	}
	r.emit(fmt.Sprintf("EXCLUDE_OBJECT_END NAME=%s\n", r.current))
	r.current = ""
}

// finish closes a trailing open object.
func (r *rewriter) finish() {
	r.end()
}

func defineObject(name string, h Hull) string {
	sb := strings.Builder{}
	sb.WriteString("EXCLUDE_OBJECT_DEFINE NAME=")
	sb.WriteString(name)
	if !h.Empty() {
		c := h.Center()
		fmt.Fprintf(&sb, " CENTER=%.3f,%.3f", c[0], c[1])
		sb.WriteString(" POLYGON=[")
		for i, p := range h.Polygon() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('[')
			sb.WriteString(coord(p[0]))
			sb.WriteByte(',')
			sb.WriteString(coord(p[1]))
			sb.WriteByte(']')
		}
		sb.WriteByte(']')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func coord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dialect is the marker syntax of one slicer.
type dialect interface {
	// scan collects the objects and their points.
	scan(lines []string, objs *objects, c *collector)
	// rewrite emits one input line with the klipper markers around it.
	rewrite(r *rewriter, line string)
}

// run reads the input, lets the dialect collect objects and then rewrites
// every line. A fresh dialect is made per iteration.
func run(in io.Reader, opts Options, newDialect func() dialect) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		lines, err := readLines(in)
		if err != nil {
			yield("", err)
			return
		}

		d := newDialect()
		objs := newObjects(opts.UseHull)
		d.scan(lines, objs, &collector{filter: opts.filter()})
		objs.uniqueNames()

		r := &rewriter{yield: yield, objects: objs, lastNL: true}
		for _, line := range lines {
			if r.done {
				return
			}
			d.rewrite(r, line)
		}
		r.finish()
	}
}
