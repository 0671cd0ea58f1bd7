package hello

import (
	"runtime"
	"time"
)

// SystemEnv is the Env of the running image.  Under TinyGo the heap figures
// come from the TinyGo allocator; on a host they come from the Go runtime.
type SystemEnv struct {
	boot time.Time
}

func NewSystemEnv() *SystemEnv {
	return &SystemEnv{boot: time.Now()}
}

func (s *SystemEnv) FreeHeap() uint32 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.HeapInuse > m.HeapSys {
		return 0
	}
	return uint32(m.HeapSys - m.HeapInuse)
}

func (s *SystemEnv) Ticks() Ticks {
	return MsToTicks(time.Since(s.boot))
}

// Delay blocks for d rounded down to whole ticks, like vTaskDelay
func (s *SystemEnv) Delay(d time.Duration) {
	time.Sleep(time.Duration(MsToTicks(d)) * TickPeriodMs * time.Millisecond)
}
