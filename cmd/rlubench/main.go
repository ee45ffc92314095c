// Package main implements the rlubench CLI tool.
//
// rlubench exercises the RLU engine through its ordered set:
//
//	rlubench bench -n 16 -r 0.2 -d 5s     # Throughput benchmark
//	rlubench stress -threads 128          # Ordering stress test
//	rlubench version                      # Version information
//
// Every command accepts -config with a YAML file; flags given on the
// command line override values from the file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "bench":
		os.Exit(benchCommand(os.Args[2:]))
	case "stress":
		os.Exit(stressCommand(os.Args[2:]))
	case "version", "--version", "-v":
		os.Exit(versionCommand(os.Args[2:]))
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`rlubench - Read-Log-Update benchmark tool

USAGE:
    rlubench <command> [flags]

COMMANDS:
    bench      Measure ordered-set throughput under a read/update mix
    stress     Check list ordering under concurrent readers and writers
    version    Show version information
    help       Show this help message

EXAMPLES:
    # Eight threads, 2% updates, two seconds (the defaults)
    rlubench bench

    # Sixteen threads, 20% updates, keys in [-4096, 4095]
    rlubench bench -n 16 -r 0.2 -m -4096 -M 4095 -s 2048

    # Benchmark settings from a file, duration from the command line
    rlubench bench -config bench.yaml -d 10s

    # Full ordering stress test
    rlubench stress

    # Fail unless the engine satisfies a version requirement
    rlubench version -require v0.1.0

    # Check the engine requirement of a dependent module
    rlubench version -gomod ../app/go.mod

OUTPUT:
    bench writes one CSV row to stdout and a summary to stderr.
    Logs are JSON on stderr; set LOG_LEVEL=debug|info|warn|error.

`)
}
