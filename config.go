package hello

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"
)

// Variant selects which loop a Program runs
type Variant int

const (
	// VariantConsole prints and logs a counter once per second
	VariantConsole Variant = iota
	// VariantEmulator adds busy work and an explicit flush per iteration,
	// for running under QEMU
	VariantEmulator
)

func (v Variant) String() string {
	switch v {
	case VariantConsole:
		return "console"
	case VariantEmulator:
		return "emulator"
	}
	return "variant(" + strconv.Itoa(int(v)) + ")"
}

func ParseVariant(s string) (Variant, error) {
	switch s {
	case "console":
		return VariantConsole, nil
	case "emulator", "qemu":
		return VariantEmulator, nil
	}
	return VariantConsole, fmt.Errorf("unknown variant %q", s)
}

// Config is baked into the image at build time as an options string; see
// ParseOptions.
type Config struct {
	Variant Variant
	// Chip is the target identifier reported at boot
	Chip string
	// Tag prefixes every log line
	Tag   string
	Level Level

	// Delay between iterations
	Delay time.Duration
	// Work is the busy-work iteration count of the emulator loop
	Work int

	// Broker is the MQTT broker host:port for heartbeats; empty disables
	// telemetry
	Broker string
	Topic  string

	// Display mirrors stdout onto the board's screen, if it has one
	Display bool
}

const (
	defaultChip  = "esp32"
	defaultTag   = "HelloWorld"
	defaultDelay = 1000 * time.Millisecond
	defaultWork  = 100000
)

func DefaultConfig(v Variant) Config {
	return Config{
		Variant: v,
		Chip:    defaultChip,
		Tag:     defaultTag,
		Level:   LevelInfo,
		Delay:   defaultDelay,
		Work:    defaultWork,
	}
}

// HeartbeatTopic is Topic, or hello/<chip>/heartbeat when Topic is not set
func (c Config) HeartbeatTopic() string {
	if c.Topic != "" {
		return c.Topic
	}
	return "hello/" + c.Chip + "/heartbeat"
}

// ParseOptions applies a shell-quoted list of key=value words to cfg, e.g.
//
//	chip=esp32s3 tag=HelloWorld broker=10.0.0.2:1883 display=on
//
// cfg is returned unchanged on error.
func ParseOptions(cfg Config, options string) (Config, error) {
	words, err := shlex.Split(options)
	if err != nil {
		return cfg, fmt.Errorf("splitting options: %w", err)
	}

	next := cfg
	for _, word := range words {
		key, value, ok := strings.Cut(word, "=")
		if !ok {
			return cfg, fmt.Errorf("option %q: want key=value", word)
		}
		if err := next.set(key, value); err != nil {
			return cfg, fmt.Errorf("option %q: %w", key, err)
		}
	}

	return next, nil
}

func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case "variant":
		c.Variant, err = ParseVariant(value)
	case "chip":
		if !ValidId(value) {
			return fmt.Errorf("invalid chip %q", value)
		}
		c.Chip = value
	case "tag":
		if !ValidId(value) {
			return fmt.Errorf("invalid tag %q", value)
		}
		c.Tag = value
	case "loglevel":
		c.Level, err = ParseLevel(value)
	case "delay":
		var d time.Duration
		if d, err = time.ParseDuration(value); err == nil {
			if d < TickPeriodMs*time.Millisecond {
				return fmt.Errorf("delay %s shorter than one tick", d)
			}
			c.Delay = d
		}
	case "work":
		var n int
		if n, err = strconv.Atoi(value); err == nil {
			if n < 0 {
				return fmt.Errorf("negative work %d", n)
			}
			c.Work = n
		}
	case "broker":
		c.Broker = value
	case "topic":
		c.Topic = value
	case "display":
		c.Display, err = parseOnOff(value)
	default:
		return fmt.Errorf("unknown option")
	}
	return err
}

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}

// A valid ID is a non-empty string with only [a-z], [A-Z], [0-9], or
// underscore characters.
func ValidId(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			(r != '_') {
			return false
		}
	}
	return len(s) > 0
}
