package meter

import "github.com/jacklau/termmeter/internal/style"

// Theme controls the glyphs and styles used to draw a meter line.
type Theme struct {
	Filled string
	Empty  string

	TitleStyle  []style.Token
	FilledStyle []style.Token
	EmptyStyle  []style.Token
	ETAStyle    []style.Token
}

// DefaultTheme draws a green-on-white heavy line bar with a bold italic blue title.
func DefaultTheme() Theme {
	return Theme{
		Filled:      "━",
		Empty:       "━",
		TitleStyle:  []style.Token{style.Blue, style.Bold, style.Italic},
		FilledStyle: []style.Token{style.Green},
		EmptyStyle:  []style.Token{style.White},
		ETAStyle:    []style.Token{style.Bold, style.Red},
	}
}
