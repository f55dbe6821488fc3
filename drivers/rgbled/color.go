package rgbled

import "image/color"

// Color is a packed 0x00RRGGBB value.
type Color uint32

// Bit offsets of each 8-bit channel inside a Color.
const (
	RedPos   = 16
	GreenPos = 8
	BluePos  = 0
)

// Predefined colours. ColorOff is also what Color() reports while the LED is off.
const (
	ColorOff    Color = 0x000000
	ColorRed    Color = 0xFF0000
	ColorGreen  Color = 0x00FF00
	ColorBlue   Color = 0x0000FF
	ColorYellow Color = 0xFFFF00
	ColorPurple Color = 0xFF00FF
	ColorCyan   Color = 0x00FFFF
	ColorWhite  Color = 0xFFFFFF
)

// RGB packs three channel values.
func RGB(r, g, b uint8) Color {
	return Color(r)<<RedPos | Color(g)<<GreenPos | Color(b)<<BluePos
}

// Channel extracts the 8-bit component at bit offset pos.
func (c Color) Channel(pos uint) uint8 { return uint8(c >> pos) }

func (c Color) Red() uint8   { return c.Channel(RedPos) }
func (c Color) Green() uint8 { return c.Channel(GreenPos) }
func (c Color) Blue() uint8  { return c.Channel(BluePos) }

// ToRGBA converts to the colour type used by tinygo displays and pixel
// drivers. Color itself does not implement color.Color.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: 0xFF}
}

// FromRGBA packs c, dropping alpha.
func FromRGBA(c color.RGBA) Color { return RGB(c.R, c.G, c.B) }
