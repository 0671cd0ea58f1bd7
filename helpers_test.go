package hello

import (
	"bytes"
	"strings"
	"time"
)

// fakeEnv is a clock that only moves when the loop delays
type fakeEnv struct {
	heap   uint32
	ticks  Ticks
	delays []time.Duration
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{heap: 298756}
}

func (f *fakeEnv) FreeHeap() uint32 { return f.heap }
func (f *fakeEnv) Ticks() Ticks     { return f.ticks }

func (f *fakeEnv) Delay(d time.Duration) {
	f.delays = append(f.delays, d)
	f.ticks += MsToTicks(d)
}

// flushBuffer records how many lines had been written at each Flush
type flushBuffer struct {
	bytes.Buffer
	flushedAt []int
}

func (b *flushBuffer) Flush() error {
	b.flushedAt = append(b.flushedAt, strings.Count(b.String(), "\n"))
	return nil
}

type fakePublisher struct {
	beats []Beat
	err   error
}

func (p *fakePublisher) Publish(b Beat) error {
	p.beats = append(p.beats, b)
	return p.err
}
