//go:build pyportal

package display

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

// Board returns a Mirror on the PyPortal's parallel ILI9341 screen
func Board() *Mirror {
	d := ili9341.NewParallel(
		machine.LCD_DATA0,
		machine.TFT_WR,
		machine.TFT_DC,
		machine.TFT_CS,
		machine.TFT_RESET,
		machine.TFT_RD,
	)

	backlight := machine.TFT_BACKLIGHT
	backlight.Configure(machine.PinConfig{Mode: machine.PinOutput})

	d.Configure(ili9341.Config{})
	backlight.High()

	d.SetRotation(ili9341.Rotation270)
	d.FillScreen(color.RGBA{0, 0, 0, 255})

	return NewMirror(d, false)
}
