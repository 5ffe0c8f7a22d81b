package main

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// displayName is the name to report for path. PrusaSlicer post-processes a
// temporary file and passes the final name through the environment.
func displayName(path string) string {
	if name := env(envSlic3rOutputName, ""); name != "" {
		return name
	}
	return path
}
