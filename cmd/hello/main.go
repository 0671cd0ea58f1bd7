// Command hello prints a banner, then logs a counter once a second forever.
//
//	tinygo flash -target esp32-coreboard-v2 -ldflags "-X 'main.options=chip=esp32 tag=HelloWorld'" ./cmd/hello
package main

import (
	"github.com/merliot/hello"
	"github.com/merliot/hello/app"
)

// options is set with -ldflags -X; see hello.ParseOptions
var options string

func main() {
	app.Start(hello.VariantConsole, options)
}
