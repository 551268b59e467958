package rendering

import (
	"fmt"
	"strings"
)

// RGB is an 8-bit color triple.
type RGB struct {
	R, G, B int
}

// Palette is the three named colors a template defines.
type Palette struct {
	Primary   RGB
	Secondary RGB
	Accent    RGB
}

// DefaultColorScheme is used for empty or unrecognized scheme names.
const DefaultColorScheme = "default"

var colorSchemes = map[string]Palette{
	"default": {
		Primary:   RGB{44, 62, 80},
		Secondary: RGB{52, 73, 94},
		Accent:    RGB{41, 128, 185},
	},
	"blue": {
		Primary:   RGB{0, 51, 102},
		Secondary: RGB{0, 102, 204},
		Accent:    RGB{51, 153, 255},
	},
	"green": {
		Primary:   RGB{0, 100, 0},
		Secondary: RGB{34, 139, 34},
		Accent:    RGB{50, 205, 50},
	},
	"red": {
		Primary:   RGB{139, 0, 0},
		Secondary: RGB{178, 34, 34},
		Accent:    RGB{220, 20, 60},
	},
}

// modernPalette is fixed blue / slate / orange.
var modernPalette = Palette{
	Primary:   RGB{37, 99, 235},
	Secondary: RGB{71, 85, 105},
	Accent:    RGB{234, 88, 12},
}

// PaletteFor returns the palette for a scheme name, falling back to "default".
// Matching is exact, like template ids.
func PaletteFor(scheme string) Palette {
	if p, ok := colorSchemes[scheme]; ok {
		return p
	}
	return colorSchemes[DefaultColorScheme]
}

// ColorSchemes lists the recognized scheme names.
func ColorSchemes() []string {
	return []string{"default", "blue", "green", "red"}
}

// colorDefinitions renders the \definecolor block for a palette.
func colorDefinitions(p Palette) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\\definecolor{primary}{RGB}{%d,%d,%d}\n", p.Primary.R, p.Primary.G, p.Primary.B)
	fmt.Fprintf(&sb, "\\definecolor{secondary}{RGB}{%d,%d,%d}\n", p.Secondary.R, p.Secondary.G, p.Secondary.B)
	fmt.Fprintf(&sb, "\\definecolor{accent}{RGB}{%d,%d,%d}\n", p.Accent.R, p.Accent.G, p.Accent.B)
	return sb.String()
}
