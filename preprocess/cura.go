package preprocess

import (
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/macdylan/preprocess-cancellation/gcode"
)

const (
	curaMesh        = ";MESH:"
	curaNonMesh     = "NONMESH"
	curaTimeElapsed = ";TIME_ELAPSED:"
)

// Cura handles Cura_SteamEngine output, where ";MESH:<name>" switches the
// current object and ";MESH:NONMESH" or ";TIME_ELAPSED:" leaves it.
func Cura(in io.Reader, opts Options) iter.Seq2[string, error] {
	return run(in, opts, func() dialect { return &cura{unnamed: make(map[string]string)} })
}

type cura struct {
	// meshes with nothing left after CleanID, by raw name
	unnamed map[string]string
}

// meshName returns the object named by a ;MESH: line, "" for NONMESH.
func (d *cura) meshName(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, curaMesh) {
		return "", false
	}
	mesh := strings.TrimSpace(line[len(curaMesh):])
	if mesh == curaNonMesh {
		return "", true
	}
	if name := gcode.CleanID(mesh); name != "" {
		return name, true
	}
	name, ok := d.unnamed[mesh]
	if !ok {
		name = "mesh_" + strconv.Itoa(len(d.unnamed))
		d.unnamed[mesh] = name
	}
	return name, true
}

func (d *cura) scan(lines []string, objs *objects, c *collector) {
	for _, line := range lines {
		if name, ok := d.meshName(line); ok {
			c.current = nil
			if name != "" {
				c.current = objs.get(name)
			}
		}
		c.observe(line)
	}
}

func (d *cura) rewrite(r *rewriter, line string) {
	if name, ok := d.meshName(line); ok {
		r.end()
		r.define()
		r.emit(line)
		if name != "" {
			r.start(name)
		}
		return
	}
	if strings.HasPrefix(strings.TrimSpace(line), curaTimeElapsed) {
		r.end()
	}
	r.pass(line)
}
