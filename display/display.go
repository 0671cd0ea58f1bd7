// Package display mirrors console output onto a board's screen
package display

import (
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

var font = &proggy.TinySZ8pt7b

// Mirror is an io.Writer that draws everything written to it on a
// terminal and pushes the frame to the display
type Mirror struct {
	display tinyterm.Displayer
	term    *tinyterm.Terminal
}

func NewMirror(d tinyterm.Displayer, softwareScroll bool) *Mirror {
	term := tinyterm.NewTerminal(d)
	term.Configure(&tinyterm.Config{
		Font:              font,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: softwareScroll,
	})
	return &Mirror{display: d, term: term}
}

// Write draws p; the terminal never refreshes the screen itself
func (m *Mirror) Write(p []byte) (int, error) {
	n, err := m.term.Write(p)
	if derr := m.display.Display(); err == nil {
		err = derr
	}
	return n, err
}
