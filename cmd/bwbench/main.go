// Package main provides the bwbench CLI for driving concurrent workloads
// against a Bw-Tree index.
package main

import (
	"fmt"
	"os"
)

func main() {
	exitCode := run(os.Args)
	os.Exit(exitCode)
}

// run executes the CLI and returns an exit code.
// This is separated from main() to facilitate testing.
func run(args []string) int {
	if len(args) < 2 {
		printUsage(os.Stdout)
		return 1
	}

	switch args[1] {
	case "run":
		return runCmd(args[2:])
	case "version":
		return versionCmd(args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[1])
		fmt.Fprintln(os.Stderr, "Run 'bwbench help' for usage.")
		return 1
	}
}

// printUsage prints the top-level usage message.
func printUsage(w *os.File) {
	fmt.Fprintln(w, "bwbench - concurrent workload driver for the bwtree index")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bwbench <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run      Run a mixed workload and report throughput")
	fmt.Fprintln(w, "  version  Print version information")
	fmt.Fprintln(w, "  help     Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'bwbench <command> -h' for command options.")
}
