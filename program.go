package hello

import (
	"fmt"
	"io"
	"strings"
)

// Beat is one iteration's heartbeat, as published to telemetry
type Beat struct {
	Chip    string `json:"chip"`
	Counter int32  `json:"counter"`
	Heap    uint32 `json:"heap"`
	Ms      uint32 `json:"ms"`
}

// Publisher sends heartbeats off the board
type Publisher interface {
	Publish(Beat) error
}

type flusher interface {
	Flush() error
}

// Program is one of the two loops, bound to an Env and an output stream.
// Run is the firmware entry; Boot and Iterate let a caller drive the loop a
// bounded number of times.
type Program struct {
	cfg     Config
	env     Env
	out     io.Writer
	log     *Logger
	pub     Publisher
	counter int32
	booted  bool
}

type Option func(*Program)

// WithLogger replaces the default logger, which writes to the program output
func WithLogger(l *Logger) Option {
	return func(p *Program) { p.log = l }
}

// WithPublisher publishes a Beat after every iteration
func WithPublisher(pub Publisher) Option {
	return func(p *Program) { p.pub = pub }
}

func NewProgram(cfg Config, env Env, out io.Writer, opts ...Option) *Program {
	p := &Program{cfg: cfg, env: env, out: out}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = NewLogger(out, env, cfg.Tag, cfg.Level)
	}
	return p
}

// Counter is the value the next iteration will print
func (p *Program) Counter() int32 {
	return p.counter
}

// Boot prints the banner and start-up info.  Only the first call does
// anything.
func (p *Program) Boot() {
	if p.booted {
		return
	}
	p.booted = true

	switch p.cfg.Variant {
	case VariantEmulator:
		fmt.Fprint(p.out, emulatorBanner)
		fmt.Fprintf(p.out, "Chip: %s\n", strings.ToUpper(p.cfg.Chip))
		fmt.Fprintf(p.out, "Free heap: %d bytes\n", p.env.FreeHeap())
		fmt.Fprint(p.out, "\n")
		fmt.Fprint(p.out, "Starting counter loop...\n")
		fmt.Fprint(p.out, emulatorRule)
	default:
		fmt.Fprint(p.out, consoleBanner)
		p.log.Infof("Hello from ESP32!")
		p.log.Infof("Free heap: %d bytes", p.env.FreeHeap())
		p.log.Infof("Chip model: %s", p.cfg.Chip)
	}
}

// Iterate runs one pass of the loop body, delay included
func (p *Program) Iterate() {
	p.Boot()

	switch p.cfg.Variant {
	case VariantEmulator:
		var line string
		p.counter, line = EmulatorStep(p.counter, p.env.Ticks().Ms())
		fmt.Fprint(p.out, line)
		p.publish()
		busyWork(p.cfg.Work)
		p.env.Delay(p.cfg.Delay)
		if f, ok := p.out.(flusher); ok {
			f.Flush()
		}
	default:
		var line, msg string
		p.counter, line, msg = ConsoleStep(p.counter)
		fmt.Fprint(p.out, line)
		p.log.Infof("%s", msg)
		p.publish()
		p.env.Delay(p.cfg.Delay)
	}
}

// Run never returns
func (p *Program) Run() {
	p.Boot()
	for {
		p.Iterate()
	}
}

func (p *Program) publish() {
	if p.pub == nil {
		return
	}
	beat := Beat{
		Chip:    p.cfg.Chip,
		Counter: p.counter,
		Heap:    p.env.FreeHeap(),
		Ms:      p.env.Ticks().Ms(),
	}
	if err := p.pub.Publish(beat); err != nil {
		p.log.Warnf("Heartbeat: %s", err.Error())
	}
}
