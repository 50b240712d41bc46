// Package markup turns the small markdown subset coaches answer in into a
// tree of inline nodes.
//
// Rules apply in this order: **bold**, *italic*, "- " bullet lines, numbered
// lines, newlines. A numbered line keeps only its text, rendered bold; the
// ordinal is dropped.
package markup

import (
	"regexp"
	"strings"
)

type Kind int

const (
	Text Kind = iota
	Bold
	Italic
	Bullet
	LineBreak
)

var kindName = map[Kind]string{
	Text:      "text",
	Bold:      "bold",
	Italic:    "italic",
	Bullet:    "bullet",
	LineBreak: "break",
}

func (k Kind) String() string {
	return kindName[k]
}

// BulletGlyph prefixes bullet lines.
const BulletGlyph = "• "

type Node struct {
	Kind     Kind
	Text     string
	Children []Node
}

var (
	boldRe     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe   = regexp.MustCompile(`\*(.*?)\*`)
	bulletRe   = regexp.MustCompile(`^- (.+)$`)
	numberedRe = regexp.MustCompile(`^\d+\. (.+)$`)
)

// placeholder stands in for an already parsed bold span while italics are
// matched around it.
const placeholder = "\x00"

func Parse(s string) []Node {
	var nodes []Node
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			nodes = append(nodes, Node{Kind: LineBreak})
		}
		nodes = append(nodes, parseLine(line)...)
	}

	return nodes
}

func parseLine(line string) []Node {
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		return []Node{{Kind: Bullet, Children: parseInline(m[1])}}
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		return []Node{{Kind: Bold, Children: parseInline(m[1])}}
	}

	return parseInline(line)
}

func parseInline(s string) []Node {
	s = strings.ReplaceAll(s, placeholder, "")

	// Pull out bold spans first so italics can wrap them
	var bolds []string
	flat := boldRe.ReplaceAllStringFunc(s, func(m string) string {
		bolds = append(bolds, boldRe.FindStringSubmatch(m)[1])
		return placeholder
	})

	var nodes []Node
	last := 0
	for _, loc := range italicRe.FindAllStringSubmatchIndex(flat, -1) {
		nodes = appendSpans(nodes, flat[last:loc[0]], &bolds)
		nodes = append(nodes, Node{
			Kind:     Italic,
			Children: appendSpans(nil, flat[loc[2]:loc[3]], &bolds),
		})
		last = loc[1]
	}

	return appendSpans(nodes, flat[last:], &bolds)
}

// appendSpans expands placeholders back into bold nodes, consuming bolds in
// order.
func appendSpans(nodes []Node, s string, bolds *[]string) []Node {
	for {
		before, after, found := strings.Cut(s, placeholder)
		if before != "" {
			nodes = append(nodes, Node{Kind: Text, Text: before})
		}
		if !found {
			return nodes
		}

		inner := (*bolds)[0]
		*bolds = (*bolds)[1:]
		nodes = append(nodes, Node{Kind: Bold, Children: parseItalic(inner)})

		s = after
	}
}

func parseItalic(s string) []Node {
	var nodes []Node
	last := 0
	for _, loc := range italicRe.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			nodes = append(nodes, Node{Kind: Text, Text: s[last:loc[0]]})
		}

		italic := Node{Kind: Italic}
		if loc[3] > loc[2] {
			italic.Children = []Node{{Kind: Text, Text: s[loc[2]:loc[3]]}}
		}
		nodes = append(nodes, italic)
		last = loc[1]
	}
	if last < len(s) {
		nodes = append(nodes, Node{Kind: Text, Text: s[last:]})
	}

	return nodes
}
