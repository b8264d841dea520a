package model

// Color is a highlight color from the fixed palette.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
)

// DefaultColor is applied when a highlight is created without a color.
const DefaultColor = ColorYellow

// Palette lists the accepted colors in display order.
var Palette = []Color{ColorYellow, ColorBlue, ColorGreen, ColorPink, ColorOrange}

// Valid reports whether c belongs to the palette.
func (c Color) Valid() bool {
	for _, p := range Palette {
		if c == p {
			return true
		}
	}
	return false
}
