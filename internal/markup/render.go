package markup

import (
	"html"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// HTML renders nodes as escaped HTML.
func HTML(nodes []Node) string {
	var b strings.Builder
	writeHTML(&b, nodes)
	return b.String()
}

func writeHTML(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n.Kind {
		case Text:
			b.WriteString(html.EscapeString(n.Text))
		case Bold:
			b.WriteString("<strong>")
			writeHTML(b, n.Children)
			b.WriteString("</strong>")
		case Italic:
			b.WriteString("<em>")
			writeHTML(b, n.Children)
			b.WriteString("</em>")
		case Bullet:
			b.WriteString(BulletGlyph)
			writeHTML(b, n.Children)
		case LineBreak:
			b.WriteString("<br>")
		}
	}
}

// Plain renders nodes without emphasis.
func Plain(nodes []Node) string {
	var b strings.Builder
	writePlain(&b, nodes)
	return b.String()
}

func writePlain(b *strings.Builder, nodes []Node) {
	for _, n := range nodes {
		switch n.Kind {
		case Text:
			b.WriteString(n.Text)
		case Bold, Italic:
			writePlain(b, n.Children)
		case Bullet:
			b.WriteString(BulletGlyph)
			writePlain(b, n.Children)
		case LineBreak:
			b.WriteString("\n")
		}
	}
}

type Styles struct {
	Text   lipgloss.Style
	Bullet lipgloss.Style
}

// Render renders nodes for the terminal. Emphasis is layered on top of the
// surrounding style, so bold text inside a bullet keeps the text colour.
func Render(nodes []Node, styles Styles) string {
	var b strings.Builder
	writeStyled(&b, nodes, styles.Text, styles)
	return b.String()
}

func writeStyled(b *strings.Builder, nodes []Node, style lipgloss.Style, styles Styles) {
	for _, n := range nodes {
		switch n.Kind {
		case Text:
			b.WriteString(style.Render(n.Text))
		case Bold:
			writeStyled(b, n.Children, style.Bold(true), styles)
		case Italic:
			writeStyled(b, n.Children, style.Italic(true), styles)
		case Bullet:
			b.WriteString(styles.Bullet.Render(BulletGlyph))
			writeStyled(b, n.Children, style, styles)
		case LineBreak:
			b.WriteString("\n")
		}
	}
}
