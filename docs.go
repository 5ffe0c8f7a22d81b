package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

var (
	Version = "dev"
)

func flag_usage() {
	ex, _ := os.Executable()
	usage := `Add Klipper cancel-object (EXCLUDE_OBJECT) support to G-code files.
%s

Supported slicers: PrusaSlicer, SuperSlicer, Slic3r, Cura, ideaMaker,
and any G-code labelled with M486.

Usage:
  %s [flags] file.gcode...
  %s [flags] < in.gcode > out.gcode

Example configuration in PrusaSlicer,
Go to Print Settings -> Output options -> Post-processing scripts:

  %s;

DO NOT include spaces in the path.

Flags:
`
	absPath, _ := filepath.Abs(ex)
	name := filepath.Base(ex)
	fmt.Fprintf(flag.CommandLine.Output(), usage, Version, name, name, absPath)
	flag.PrintDefaults()
	os.Exit(1)
}
