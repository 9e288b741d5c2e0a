package overlay

import (
	"errors"
	"io"
	"regexp"
	"strings"

	nethtml "golang.org/x/net/html"
)

// allowedTags lists the inline emphasis tags cue text may carry.
var allowedTags = map[string]bool{
	"b":      true,
	"i":      true,
	"u":      true,
	"s":      true,
	"em":     true,
	"strong": true,
	"font":   true,
	"br":     true,
}

var safeColor = regexp.MustCompile(`^[#a-zA-Z0-9(),. %]+$`)

// Sanitize reduces cue markup to simple inline emphasis. Unknown tags, attributes
// other than font color, comments and doctypes are dropped, text is escaped and
// unclosed tags are closed at the end.
func Sanitize(markup string) string {
	z := nethtml.NewTokenizer(strings.NewReader(markup))
	var out strings.Builder
	var open []string

	for {
		tt := z.Next()
		switch tt {
		case nethtml.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nethtml.EscapeString(markup)
			}
			for i := len(open) - 1; i >= 0; i-- {
				out.WriteString("</" + open[i] + ">")
			}
			return out.String()
		case nethtml.TextToken:
			out.WriteString(nethtml.EscapeString(string(z.Text())))
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			tok := z.Token()
			if !allowedTags[tok.Data] {
				continue
			}
			if tok.Data == "br" {
				out.WriteString("<br>")
				continue
			}
			out.WriteString(openTag(tok))
			if tt == nethtml.SelfClosingTagToken {
				out.WriteString("</" + tok.Data + ">")
				continue
			}
			open = append(open, tok.Data)
		case nethtml.EndTagToken:
			tok := z.Token()
			idx := lastIndex(open, tok.Data)
			if idx < 0 {
				continue
			}
			for i := len(open) - 1; i >= idx; i-- {
				out.WriteString("</" + open[i] + ">")
			}
			open = open[:idx]
		}
	}
}

func openTag(tok nethtml.Token) string {
	if tok.Data != "font" {
		return "<" + tok.Data + ">"
	}
	for _, attr := range tok.Attr {
		if attr.Key == "color" && safeColor.MatchString(attr.Val) {
			return `<font color="` + nethtml.EscapeString(attr.Val) + `">`
		}
	}
	return "<font>"
}

func lastIndex(stack []string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
	}
	return -1
}
