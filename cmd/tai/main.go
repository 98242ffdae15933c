// Command tai is a terminal assistant that answers questions and performs
// tasks on the local machine through confirmed tool calls.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	level := zerolog.WarnLevel
	if os.Getenv("TAI_DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
