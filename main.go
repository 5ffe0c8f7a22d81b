package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/macdylan/preprocess-cancellation/layers"
	"github.com/macdylan/preprocess-cancellation/preprocess"
	"github.com/macdylan/preprocess-cancellation/slicers"
)

func main() {
	var (
		suffix    = flag.String("output-suffix", env(envOutputSuffix, ""), "write to <name><suffix>.gcode instead of in place")
		hull      = flag.Bool("hull", envBool(envHull, false), "outline objects with their convex hull instead of a bounding box")
		layerSpec = flag.String("layers", env(envLayers, "all"), "layers used for object outlines: all, first, N, N-M or N-")
		verbose   = flag.Bool("v", false, "debug logging")
		version   = flag.Bool("version", false, "print version and exit")
	)
	flag.Usage = flag_usage
	flag.Parse()

	if *version {
		fmt.Println(Version)
		return
	}

	filter, err := layers.Parse(*layerSpec)
	if err != nil {
		log.Fatalln(err)
	}

	preprocess.Version = Version
	logger := newLogger(os.Stderr, *verbose)
	reg := slicers.Default(logger)
	opts := preprocess.Options{UseHull: *hull, Layers: filter}

	startCPUProfile()
	defer stopCPUProfile()

	if flag.NArg() == 0 {
		if st, _ := os.Stdin.Stat(); (st.Mode() & os.ModeCharDevice) != 0 {
			flag_usage()
		}
		res, err := processStream(reg, os.Stdin, os.Stdout, opts)
		if res != nil {
			report(os.Stderr, res, err)
		}
		if err != nil && !errors.Is(err, ErrNotIdentified) && !errors.Is(err, ErrAlreadyProcessed) {
			log.Fatalln(err)
		}
		return
	}

	failed := 0
	for _, path := range flag.Args() {
		logger.Debug("processing", "path", path, "layers", filter.String(), "hull", *hull)
		res, err := processFile(reg, path, *suffix, opts)
		report(os.Stderr, res, err)
		if err != nil && !errors.Is(err, ErrNotIdentified) && !errors.Is(err, ErrAlreadyProcessed) {
			failed++
		}
	}

	writeMemProfile()
	if failed > 0 {
		stopCPUProfile()
		os.Exit(1)
	}
}
