package domain

import "fmt"

// Color is an 8-bit RGBA color.
type Color struct {
	R uint8 `json:"r" toml:"r"`
	G uint8 `json:"g" toml:"g"`
	B uint8 `json:"b" toml:"b"`
	A uint8 `json:"a" toml:"a"`
}

// RGB formats the color as a CSS rgb() value, ignoring alpha.
func (c Color) RGB() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// RGBA formats the color as a CSS rgba() value with alpha scaled to [0,1].
func (c Color) RGBA() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3g)", c.R, c.G, c.B, float64(c.A)/255)
}

// Font describes the subtitle typeface.
type Font struct {
	Family    string `json:"family" toml:"family"`
	PointSize int    `json:"pointSize" toml:"point_size"`
	Bold      bool   `json:"bold" toml:"bold"`
	Italic    bool   `json:"italic" toml:"italic"`
}

// SubtitleStyle groups the overlay appearance attributes.
type SubtitleStyle struct {
	Font       Font  `json:"font" toml:"font"`
	Text       Color `json:"text" toml:"text"`
	Background Color `json:"background" toml:"background"`
}

// DefaultSubtitleStyle is white 16pt Arial on half-transparent black.
func DefaultSubtitleStyle() SubtitleStyle {
	return SubtitleStyle{
		Font:       Font{Family: "Arial", PointSize: 16},
		Text:       Color{R: 255, G: 255, B: 255, A: 255},
		Background: Color{A: 128},
	}
}
