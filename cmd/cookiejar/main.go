// main.go - cookiejar command line tool
//
// To the extent possible under law, Yawning Angel has waived all copyright
// and related or neighboring rights to the software, using the Creative
// Commons "CC0" public domain dedication. See LICENSE or
// <http://creativecommons.org/publicdomain/zero/1.0/> for full details.

// Command cookiejar runs, probes and benchmarks cookie gated handshakes.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"gitlab.com/yawning/cookiejar.git"
)

type globalOptions struct {
	Verbose bool `short:"v" long:"verbose" description:"Log at debug level in a human readable format"`
}

var options globalOptions

func newLogger() (*zap.Logger, error) {
	if options.Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// keyFromSeed returns the key for a hex encoded seed, or nil for a random
// key if seed is empty.
func keyFromSeed(seed string) (*cookiejar.Key, error) {
	if seed == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	if len(b) != cookiejar.SeedSize {
		return nil, fmt.Errorf("invalid seed: need %d bytes, got %d", cookiejar.SeedSize, len(b))
	}
	return cookiejar.NewKeyFromSeed(b), nil
}

func main() {
	parser := flags.NewParser(&options, flags.Default)
	parser.AddCommand("serve",
		"Run a handshake server",
		"Answer cookie gated handshakes on a UDP socket, echoing INIT payloads.",
		&serveCommand{})
	parser.AddCommand("probe",
		"Handshake with a server",
		"Perform a full cookie handshake with a server and print the reply.",
		&probeCommand{})
	parser.AddCommand("bench",
		"Benchmark cookie generation and verification",
		"Generate and verify cookies from several goroutines and report the rate.",
		&benchCommand{})

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
