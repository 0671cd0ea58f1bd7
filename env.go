package hello

import (
	"os"
	"time"
)

// Env is what the loops need from the runtime they run on: a free heap
// figure, a tick counter and a way to block the calling task.
type Env interface {
	FreeHeap() uint32
	Ticks() Ticks
	Delay(time.Duration)
}

// Ticks counts scheduler ticks since boot
type Ticks uint32

const (
	TickRateHz   = 100
	TickPeriodMs = 1000 / TickRateHz
)

// Ms converts ticks to milliseconds
func (t Ticks) Ms() uint32 {
	return uint32(t) * TickPeriodMs
}

// MsToTicks rounds d down to whole ticks
func MsToTicks(d time.Duration) Ticks {
	return Ticks(d.Milliseconds() * TickRateHz / 1000)
}

func GetEnv(name string, defaultValue string) string {
	value, ok := os.LookupEnv(name)
	if !ok {
		return defaultValue
	}
	return value
}
