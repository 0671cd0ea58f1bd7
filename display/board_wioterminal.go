//go:build wioterminal

package display

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ili9341"
)

// Board returns a Mirror on the Wio Terminal's SPI ILI9341 screen
func Board() *Mirror {
	machine.SPI3.Configure(machine.SPIConfig{
		SCK:       machine.LCD_SCK_PIN,
		SDO:       machine.LCD_SDO_PIN,
		SDI:       machine.LCD_SDI_PIN,
		Frequency: 40000000,
	})

	backlight := machine.LCD_BACKLIGHT
	backlight.Configure(machine.PinConfig{Mode: machine.PinOutput})

	d := ili9341.NewSPI(
		machine.SPI3,
		machine.LCD_DC,
		machine.LCD_SS_PIN,
		machine.LCD_RESET,
	)

	d.Configure(ili9341.Config{})
	backlight.High()

	d.SetRotation(ili9341.Rotation270)
	d.FillScreen(color.RGBA{0, 0, 0, 255})

	return NewMirror(d, false)
}
