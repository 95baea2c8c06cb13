package main

import (
	"fmt"
	"runtime"
)

// Version is the bwbench release version.
const Version = "0.1.0"

// versionCmd handles the version command.
func versionCmd(_ []string) int {
	fmt.Printf("bwbench %s %s/%s %s\n", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	return 0
}
