//go:build tinygo

package telemetry

import (
	"sync"
)

type mutex struct {
	sync.Mutex
}
