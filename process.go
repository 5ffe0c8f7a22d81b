package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/macdylan/preprocess-cancellation/preprocess"
	"github.com/macdylan/preprocess-cancellation/slicers"
)

var (
	ErrAlreadyProcessed = errors.New("already supports cancellation")
	ErrNotIdentified    = errors.New("could not identify slicer")
)

type result struct {
	path    string
	output  string
	slicer  slicers.Slicer
	objects int
}

// identify scans the whole file, it is already processed if any line
// carries object definitions even after the slicer marker.
func identify(reg *slicers.Registry, data []byte) (slicers.Entry, error) {
	var (
		entry slicers.Entry
		found bool
	)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if preprocess.AlreadyProcessed(line) ||
			strings.HasPrefix(line, preprocess.HeaderMark) {
			return slicers.Entry{}, ErrAlreadyProcessed
		}
		if !found {
			entry, found = reg.IdentifySlicer(line)
		}
	}
	if err := sc.Err(); err != nil {
		return slicers.Entry{}, err
	}
	if !found {
		return slicers.Entry{}, ErrNotIdentified
	}
	return entry, nil
}

// rewrite runs the preprocessor over data and writes the result to out,
// returning the number of objects defined.
func rewrite(p preprocess.Preprocessor, data []byte, out io.Writer, opts preprocess.Options) (int, error) {
	var (
		objects int
		bw      = bufio.NewWriterSize(out, 64*1024)
	)
	for line, err := range p(bytes.NewReader(data), opts) {
		if err != nil {
			return 0, err
		}
		if strings.HasPrefix(line, "EXCLUDE_OBJECT_DEFINE") {
			objects++
		}
		if _, err := bw.WriteString(line); err != nil {
			return 0, err
		}
	}
	return objects, bw.Flush()
}

func processStream(reg *slicers.Registry, in io.Reader, out io.Writer, opts preprocess.Options) (*result, error) {
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}

	res := &result{path: "-", output: "-"}
	entry, err := identify(reg, data)
	if err != nil {
		// pass through unchanged
		if _, werr := out.Write(data); werr != nil {
			return res, werr
		}
		return res, err
	}

	res.slicer = entry.Slicer
	res.objects, err = rewrite(entry.Preprocessor, data, out, opts)
	return res, err
}

// outputPath is path itself when suffix is empty, otherwise the suffix goes
// before the extension: part.gcode -> part_cancel.gcode.
func outputPath(path, suffix string) string {
	if suffix == "" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

func processFile(reg *slicers.Registry, path, suffix string, opts preprocess.Options) (*result, error) {
	res := &result{path: path, output: outputPath(path, suffix)}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}

	entry, err := identify(reg, data)
	if err != nil {
		return res, err
	}
	res.slicer = entry.Slicer

	dir := filepath.Dir(res.output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(res.output)+".*")
	if err != nil {
		return res, err
	}
	defer os.Remove(tmp.Name())

	res.objects, err = rewrite(entry.Preprocessor, data, tmp, opts)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", path, err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return res, err
	}
	if err := os.Chmod(tmp.Name(), st.Mode().Perm()); err != nil {
		return res, fmt.Errorf("%s: keep permissions: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), res.output); err != nil {
		return res, err
	}
	return res, nil
}
