package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdylan/preprocess-cancellation/layers"
	"github.com/macdylan/preprocess-cancellation/preprocess"
	"github.com/macdylan/preprocess-cancellation/slicers"
)

const prusaGcode = `; generated by PrusaSlicer 2.6.0 on 2023-01-01 at 10:00:00 UTC
M107
;LAYER_CHANGE
; printing object cube id:0 copy 0
G1 X10 Y10 E1
G1 X20 Y20 E1
; stop printing object cube id:0 copy 0
; printing object cyl id:1 copy 0
G1 X30 Y30 E1
; stop printing object cyl id:1 copy 0
M84
`

var testOpts = preprocess.Options{Layers: layers.All()}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProcessFileInPlace(t *testing.T) {
	reg := slicers.Default(nil)
	path := writeFile(t, "part.gcode", prusaGcode)

	res, err := processFile(reg, path, "", testOpts)
	require.NoError(t, err)
	assert.Equal(t, slicers.PrusaSlicer, res.slicer)
	assert.Equal(t, 2, res.objects)
	assert.Equal(t, path, res.output)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "EXCLUDE_OBJECT_START NAME=cube_id_0_copy_0\n")
	assert.Contains(t, string(out), "EXCLUDE_OBJECT_END NAME=cyl_id_1_copy_0\n")

	// a second run leaves the file alone
	_, err = processFile(reg, path, "", testOpts)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)

	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestProcessFileSuffix(t *testing.T) {
	reg := slicers.Default(nil)
	path := writeFile(t, "part.gcode", prusaGcode)

	res, err := processFile(reg, path, "_cancel", testOpts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "part_cancel.gcode"), res.output)

	orig, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, prusaGcode, string(orig))

	out, err := os.ReadFile(res.output)
	require.NoError(t, err)
	assert.Contains(t, string(out), "EXCLUDE_OBJECT_DEFINE NAME=cube_id_0_copy_0")
}

func TestProcessFileUnknownSlicer(t *testing.T) {
	reg := slicers.Default(nil)
	content := "; generated by Simplify3D\nG28\nG1 X1 Y1 E1\n"
	path := writeFile(t, "part.gcode", content)

	_, err := processFile(reg, path, "", testOpts)
	assert.ErrorIs(t, err, ErrNotIdentified)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(out))
}

func TestProcessFileMissing(t *testing.T) {
	_, err := processFile(slicers.Default(nil), filepath.Join(t.TempDir(), "nope.gcode"), "", testOpts)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessStream(t *testing.T) {
	var out bytes.Buffer
	res, err := processStream(slicers.Default(nil), strings.NewReader(prusaGcode), &out, testOpts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.objects)
	assert.True(t, strings.HasPrefix(out.String(), "; generated by PrusaSlicer"))
	assert.Contains(t, out.String(), preprocess.HeaderMark)
}

func TestProcessStreamPassesThrough(t *testing.T) {
	var out bytes.Buffer
	in := "G28\nG1 X1 Y1\n"
	_, err := processStream(slicers.Default(nil), strings.NewReader(in), &out, testOpts)
	assert.ErrorIs(t, err, ErrNotIdentified)
	assert.Equal(t, in, out.String())
}

func TestIdentifyFindsLaterDefinitions(t *testing.T) {
	data := []byte(";Generated with Cura_SteamEngine 5.1\nG28\nEXCLUDE_OBJECT_DEFINE NAME=a\n")
	_, err := identify(slicers.Default(nil), data)
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "a/b.gcode", outputPath("a/b.gcode", ""))
	assert.Equal(t, "a/b-x.gcode", outputPath("a/b.gcode", "-x"))
	assert.Equal(t, "noext_c", outputPath("noext", "_c"))
}

func TestReport(t *testing.T) {
	t.Setenv(envSlic3rOutputName, "")

	var buf bytes.Buffer
	report(&buf, &result{path: "p.gcode", slicer: slicers.Cura, objects: 3}, nil)
	assert.Contains(t, buf.String(), "p.gcode")
	assert.Contains(t, buf.String(), "cura")
	assert.Contains(t, buf.String(), "3 objects")

	buf.Reset()
	report(&buf, &result{path: "p.gcode"}, ErrNotIdentified)
	assert.Contains(t, buf.String(), ErrNotIdentified.Error())
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv(envHull, "true")
	t.Setenv(envLayers, " first ")
	t.Setenv(envSlic3rOutputName, "final.gcode")

	assert.True(t, envBool(envHull, false))
	assert.False(t, envBool("CANCEL_UNSET_FOR_TEST", false))
	assert.Equal(t, "first", env(envLayers, "all"))
	assert.Equal(t, "final.gcode", displayName("/tmp/x.gcode"))
}

func TestProcessFileKeepsPermissions(t *testing.T) {
	path := writeFile(t, "part.gcode", prusaGcode)
	require.NoError(t, os.Chmod(path, 0640))

	_, err := processFile(slicers.Default(nil), path, "", testOpts)
	require.NoError(t, err)

	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), st.Mode().Perm())
}
