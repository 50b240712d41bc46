package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	titleStyle        = TextStyle.MarginLeft(2)
	itemStyle         = AltTextStyle.PaddingLeft(4)
	selectedItemStyle = AccentTextStyle.PaddingLeft(2)
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
)

func NewPicker(title string, values []string) Picker {
	// Turn list values into items
	items := []list.Item{}
	minWidth := max(9, utf8.RuneCountInString(title)+4)
	for _, value := range values {
		c := utf8.RuneCountInString(value)
		if c > minWidth {
			minWidth = c
		}

		items = append(items, item(value))
	}
	minHeight := len(items) + 4

	// Create list
	l := list.New(items, itemDelegate{}, minWidth, minHeight)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle

	return Picker{
		List:      l,
		minWidth:  minWidth,
		minHeight: minHeight,
	}
}

type Picker struct {
	List list.Model

	minWidth  int
	minHeight int
}

// Selected returns the highlighted value.
func (p Picker) Selected() (string, bool) {
	i, ok := p.List.SelectedItem().(item)
	return string(i), ok
}

func (p *Picker) Update(width int, height int) {
	if width < p.List.Width() {
		p.List.SetWidth(width)
	} else {
		p.List.SetWidth(p.minWidth)
	}

	if height < p.List.Height()-1 {
		p.List.SetHeight(height - 1)
	} else {
		p.List.SetHeight(p.minHeight)
	}
}

type item string

func (i item) FilterValue() string { return "" }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(string(i)))
}
