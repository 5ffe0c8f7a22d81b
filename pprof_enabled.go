//go:build pprof

package main

import (
	"log"
	"os"
	"runtime"
	"runtime/pprof"
)

const (
	cpuProfile = "cancel-cpu.pprof"
	memProfile = "cancel-mem.pprof"
)

func startCPUProfile() {
	f, err := os.Create(cpuProfile)
	if err != nil {
		log.Fatalln(err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		log.Fatalln(err)
	}
}

func stopCPUProfile() {
	pprof.StopCPUProfile()
}

func writeMemProfile() {
	f, err := os.Create(memProfile)
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Fatalln(err)
	}
}
