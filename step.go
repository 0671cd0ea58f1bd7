package hello

import "fmt"

const (
	consoleBanner = "\n" +
		"====================================\n" +
		"   ESP32 - Hello World Program!    \n" +
		"====================================\n" +
		"\n"

	emulatorBanner = "\n\n" +
		"========================================\n" +
		"   ESP32 Hello World in QEMU!         \n" +
		"========================================\n" +
		"\n"

	emulatorRule = "========================================\n"
)

// ConsoleStep is one iteration of the console loop: the stdout line for
// counter, the next counter and the log message reporting it.  The counter
// wraps like a C int.
func ConsoleStep(counter int32) (next int32, out, log string) {
	out = fmt.Sprintf("Hello World! Counter: %d\n", counter)
	next = counter + 1
	log = fmt.Sprintf("Loop iteration: %d", next)
	return
}

// EmulatorStep is one iteration of the emulator loop: the stdout line for
// counter stamped with ms since boot, and the next counter.
func EmulatorStep(counter int32, ms uint32) (next int32, out string) {
	out = fmt.Sprintf("[%d] Hello World! Counter: %d\n", int32(ms), counter)
	return counter + 1, out
}

// workSink keeps the busy-work sum alive
var workSink int

// busyWork burns CPU for n additions
func busyWork(n int) {
	sum := 0
	for i := 0; i < n; i++ {
		sum += i
	}
	workSink = sum
}
