package main

const (
	// env fallbacks for the flags, post-processing hooks can't always pass args
	envOutputSuffix = "CANCEL_OUTPUT_SUFFIX"
	envLayers       = "CANCEL_LAYERS"
	envHull         = "CANCEL_HULL"

	// set by PrusaSlicer when running post-processing scripts
	envSlic3rOutputName = "SLIC3R_PP_OUTPUT_NAME"
)
