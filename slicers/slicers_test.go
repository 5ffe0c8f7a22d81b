package slicers

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macdylan/preprocess-cancellation/preprocess"
)

func samePreprocessor(t *testing.T, want, got preprocess.Preprocessor) {
	t.Helper()
	require.NotNil(t, got)
	assert.Equal(t, reflect.ValueOf(want).Pointer(), reflect.ValueOf(got).Pointer())
}

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func TestIdentifyScenarios(t *testing.T) {
	reg := Default(nil)

	tests := []struct {
		line   string
		slicer Slicer
		want   preprocess.Preprocessor
	}{
		{";Generated with Cura_SteamEngine 5.1", Cura, preprocess.Cura},
		{"M486 S0", M486, preprocess.M486},
		{"; generated by PrusaSlicer 2.6.0 on ...", PrusaSlicer, preprocess.Slic3r},
		{"; generated by Slic3r 1.3.0", Slic3r, preprocess.Slic3r},
		{"; generated by SuperSlicer 2.5.59", SuperSlicer, preprocess.Slic3r},
		{";Sliced by ideaMaker 4.2.1", IdeaMaker, preprocess.IdeaMaker},
	}

	for _, tt := range tests {
		t.Run(tt.slicer.String(), func(t *testing.T) {
			p, ok := reg.Identify(tt.line)
			require.True(t, ok)
			samePreprocessor(t, tt.want, p)

			e, ok := reg.IdentifySlicer(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.slicer, e.Slicer)
		})
	}
}

func TestIdentifyExactMarker(t *testing.T) {
	reg := Default(nil)
	for _, e := range reg.Entries() {
		p, ok := reg.Identify(e.Marker)
		require.True(t, ok, e.Slicer.String())
		samePreprocessor(t, e.Preprocessor, p)
	}
}

func TestIdentifyTrimsThenPrefixes(t *testing.T) {
	reg := Default(nil)
	for _, e := range reg.Entries() {
		got, ok := reg.IdentifySlicer("  " + e.Marker + " trailing text\r\n")
		require.True(t, ok, e.Slicer.String())
		assert.Equal(t, e.Slicer, got.Slicer)
	}
}

func TestIdentifyMisses(t *testing.T) {
	reg := Default(nil)
	for _, line := range []string{
		"",
		"   ",
		"G28 ; home",
		"; generated by",
		"M48",
		"m486 S0",
		"; GENERATED BY PRUSASLICER 2.6.0",
		";generated with cura_steamengine 5.1",
		"; printing object cube",
	} {
		p, ok := reg.Identify(line)
		assert.False(t, ok, "%q", line)
		assert.Nil(t, p, "%q", line)
	}
}

func TestIdentifyIsIdempotent(t *testing.T) {
	reg := Default(nil)
	line := "; generated by PrusaSlicer 2.6.0"

	first, ok1 := reg.IdentifySlicer(line)
	second, ok2 := reg.IdentifySlicer(line)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first.Slicer, second.Slicer)
	assert.Equal(t, first.Marker, second.Marker)
}

func TestIdentifyScanOrder(t *testing.T) {
	reg := NewRegistry(nil,
		Entry{Slicer: PrusaSlicer, Marker: "; generated by", Preprocessor: preprocess.Slic3r},
		Entry{Slicer: SuperSlicer, Marker: "; generated by SuperSlicer", Preprocessor: preprocess.Slic3r},
	)
	e, ok := reg.IdentifySlicer("; generated by SuperSlicer 2.5")
	require.True(t, ok)
	assert.Equal(t, PrusaSlicer, e.Slicer)
}

func TestIdentifyLogsMatchOnly(t *testing.T) {
	var buf bytes.Buffer
	reg := Default(debugLogger(&buf))

	_, ok := reg.Identify("G28")
	assert.False(t, ok)
	assert.Empty(t, buf.String())

	_, ok = reg.Identify(";Sliced by ideaMaker 4.2.1")
	assert.True(t, ok)
	assert.Equal(t, "level=DEBUG msg=\"identified slicer\" slicer=ideamaker\n", buf.String())
}

func TestEntriesIsACopy(t *testing.T) {
	reg := Default(nil)
	entries := reg.Entries()
	entries[0].Marker = "changed"

	assert.Equal(t, "M486", reg.Entries()[0].Marker)
}

func TestDefaultOrder(t *testing.T) {
	var got []string
	for _, e := range Default(nil).Entries() {
		got = append(got, e.Slicer.String())
	}
	assert.Equal(t, []string{"m486", "superslicer", "prusaslicer", "slic3r", "cura", "ideamaker"}, got)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("cura")
	assert.True(t, ok)
	assert.Equal(t, Cura, s)

	_, ok = Lookup("simplify3d")
	assert.False(t, ok)

	assert.Equal(t, "unknown", Slicer(42).String())
}

func TestIdentifyConcurrent(t *testing.T) {
	reg := Default(nil)
	lines := []string{"M486 T3", ";Generated with Cura_SteamEngine", "G1 X1", "; generated by Slic3r"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			line := lines[i%len(lines)]
			_, ok := reg.Identify(line)
			assert.Equal(t, !strings.HasPrefix(line, "G1"), ok)
		}(i)
	}
	wg.Wait()
}
