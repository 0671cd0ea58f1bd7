// Command hello-qemu is the hello loop for QEMU: busy work between prints
// and an explicit flush after each one.
package main

import (
	"github.com/merliot/hello"
	"github.com/merliot/hello/app"
)

var options string

func main() {
	app.Start(hello.VariantEmulator, options)
}
