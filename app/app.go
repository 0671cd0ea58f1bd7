// Package app wires a hello.Program to the board it runs on
package app

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/merliot/hello"
	"github.com/merliot/hello/display"
	"github.com/merliot/hello/telemetry"
)

// Config resolves the build-time options for variant v.  HELLO_OPTIONS, when
// set, replaces the built-in options; bad options fall back to defaults.
func Config(v hello.Variant, options string) (hello.Config, error) {
	def := hello.DefaultConfig(v)
	options = hello.GetEnv("HELLO_OPTIONS", options)
	cfg, err := hello.ParseOptions(def, options)
	if err != nil {
		return def, fmt.Errorf("options %q: %w", options, err)
	}
	return cfg, nil
}

// New builds the program described by cfg on top of env, writing to out
func New(cfg hello.Config, env hello.Env, out io.Writer) *hello.Program {
	if cfg.Display {
		if m := display.Board(); m != nil {
			out = io.MultiWriter(out, m)
		}
	}

	if cfg.Variant == hello.VariantEmulator {
		// flushed once per iteration
		out = bufio.NewWriter(out)
	}

	log := hello.NewLogger(out, env, cfg.Tag, cfg.Level)
	opts := []hello.Option{hello.WithLogger(log)}

	if cfg.Broker != "" {
		pub := telemetry.NewPublisher(cfg.Broker, "hello-"+cfg.Chip, cfg.HeartbeatTopic())
		log.Infof("Heartbeats to %s", pub)
		opts = append(opts, hello.WithPublisher(pub))
	}

	return hello.NewProgram(cfg, env, out, opts...)
}

// Start runs variant v forever
func Start(v hello.Variant, options string) {
	cfg, err := Config(v, options)
	if err != nil {
		fmt.Printf("Using defaults, bad %s\n", err.Error())
	}
	New(cfg, hello.NewSystemEnv(), os.Stdout).Run()
}
