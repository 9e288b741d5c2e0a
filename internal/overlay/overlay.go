// Package overlay holds subtitle overlay state and turns it into drawable frames.
//
// The overlay never decides on its own what text to show. Callers set or clear the
// text, and every mutation produces exactly one redraw request.
package overlay

import (
	"fmt"
	"strings"
	"sync"

	nethtml "golang.org/x/net/html"

	"subtitle-player/internal/domain"
)

// BottomMargin is the gap in pixels between the subtitle box and the bottom
// edge of the video.
const BottomMargin = 20

// Frame is a snapshot of what one redraw cycle should paint. HTML carries all
// box styling; the painter centers it horizontally BottomMargin pixels above
// the bottom edge and adds nothing else.
type Frame struct {
	Visible      bool                 `json:"visible"`
	HTML         string               `json:"html,omitempty"`
	Style        domain.SubtitleStyle `json:"style"`
	BottomMargin int                  `json:"bottomMargin"`
}

// Overlay stores the current subtitle text and style.
type Overlay struct {
	mu     sync.Mutex
	text   *string
	style  domain.SubtitleStyle
	redraw func()
}

// New creates an overlay with the given style. redraw is invoked once per mutation,
// after internal state is updated, and may be nil.
func New(style domain.SubtitleStyle, redraw func()) *Overlay {
	return &Overlay{style: style, redraw: redraw}
}

// SetText replaces the current text. A nil text clears the overlay.
func (o *Overlay) SetText(text *string) {
	o.mu.Lock()
	if text == nil {
		o.text = nil
	} else {
		copied := *text
		o.text = &copied
	}
	o.mu.Unlock()
	o.requestRedraw()
}

// SetFont changes the subtitle font.
func (o *Overlay) SetFont(font domain.Font) {
	o.mu.Lock()
	o.style.Font = font
	o.mu.Unlock()
	o.requestRedraw()
}

// SetTextColor changes the subtitle foreground color.
func (o *Overlay) SetTextColor(color domain.Color) {
	o.mu.Lock()
	o.style.Text = color
	o.mu.Unlock()
	o.requestRedraw()
}

// SetBackground changes the subtitle box color, alpha included.
func (o *Overlay) SetBackground(color domain.Color) {
	o.mu.Lock()
	o.style.Background = color
	o.mu.Unlock()
	o.requestRedraw()
}

// Text returns a copy of the current text, or nil when cleared.
func (o *Overlay) Text() *string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.text == nil {
		return nil
	}
	copied := *o.text
	return &copied
}

// Style returns the current style.
func (o *Overlay) Style() domain.SubtitleStyle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.style
}

// Frame renders the current state. Empty or cleared text yields an invisible frame.
func (o *Overlay) Frame() Frame {
	o.mu.Lock()
	defer o.mu.Unlock()

	frame := Frame{Style: o.style, BottomMargin: BottomMargin}
	if o.text == nil || strings.TrimSpace(*o.text) == "" {
		return frame
	}

	frame.Visible = true
	frame.HTML = renderBlock(Sanitize(*o.text), o.style)
	return frame
}

func (o *Overlay) requestRedraw() {
	if o.redraw != nil {
		o.redraw()
	}
}

// renderBlock wraps sanitized markup in a styled subtitle box.
func renderBlock(markup string, style domain.SubtitleStyle) string {
	var css strings.Builder
	fmt.Fprintf(&css, "color: %s; background-color: %s; padding: 5px;", style.Text.RGB(), style.Background.RGBA())
	if family := strings.TrimSpace(style.Font.Family); family != "" {
		fmt.Fprintf(&css, " font-family: '%s';", strings.ReplaceAll(family, "'", ""))
	}
	if style.Font.PointSize > 0 {
		fmt.Fprintf(&css, " font-size: %dpt;", style.Font.PointSize)
	}
	if style.Font.Bold {
		css.WriteString(" font-weight: bold;")
	}
	if style.Font.Italic {
		css.WriteString(" font-style: italic;")
	}

	return fmt.Sprintf(`<div style="%s">%s</div>`, nethtml.EscapeString(css.String()), markup)
}
