package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/stopwatch"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/spotdemo4/quick-coach/internal/chat"
	"github.com/spotdemo4/quick-coach/internal/markup"
	"github.com/spotdemo4/quick-coach/internal/reveal"
)

var (
	BodyStyle   = lipgloss.NewStyle().Padding(1)
	FooterStyle = lipgloss.NewStyle().Align(lipgloss.Center)

	TextStyle       = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#4c4f69", Dark: "#cdd6f4"})
	SubtextStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#a6adc8"})
	AltTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5c5f77", Dark: "#bac2de"})
	AccentTextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04a5e5", Dark: "#89dceb"})
	BulletStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#40a02b", Dark: "#a6e3a1"})

	MarkupStyles = markup.Styles{
		Text:   TextStyle,
		Bullet: BulletStyle,
	}
)

// Cursor trails an answer while it is being revealed.
const Cursor = "▍"

var placeholders = map[string]string{
	"career":  "Ask about career development, skills, or job search...",
	"startup": "Ask about your startup idea, MVP, or go-to-market...",
}

type Options struct {
	Version string
	Modes   []string
	// Mode skips the picker when set.
	Mode    string
	Delay   reveal.DelayModel
	Animate bool
}

type Tui struct {
	spinner   spinner.Model
	stopwatch stopwatch.Model
	picker    Picker
	prompt    textinput.Model
	viewport  viewport.Model
	width     *int
	height    *int

	scheduler *teaScheduler
	conv      *chat.Conversation
	engines   map[string]*reveal.Engine
	delay     reveal.DelayModel
	animate   bool

	requests       chan<- string
	output         <-chan Msg
	version        string
	mode           string
	recommendation string
	loading        bool
}

// New creates the TUI. The chosen mode and every question are sent on
// requests; answers arrive on output.
func New(opts Options, requests chan<- string, output <-chan Msg) Tui {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	sw := stopwatch.New()
	p := NewPicker("Coach", opts.Modes)

	ti := textinput.New()
	ti.Prompt = AccentTextStyle.Render("› ")
	ti.CharLimit = 500

	vp := viewport.New(0, 0)
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	delay := opts.Delay
	if delay == nil {
		delay = reveal.ConstantDelay(reveal.DefaultSpeed)
	}

	return Tui{
		spinner:   s,
		stopwatch: sw,
		picker:    p,
		prompt:    ti,
		viewport:  vp,

		scheduler: &teaScheduler{},
		conv:      chat.New(),
		engines:   map[string]*reveal.Engine{},
		delay:     delay,
		animate:   opts.Animate,

		requests: requests,
		output:   output,
		version:  opts.Version,
		mode:     opts.Mode,
	}
}

func (m Tui) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		m.stopwatch.Init(),
		textinput.Blink,
		m.listen(),
	}

	// Mode was chosen up front
	if m.mode != "" {
		cmds = append(cmds, m.send(m.mode))
	}

	return tea.Batch(cmds...)
}

func (m Tui) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	cmds := []tea.Cmd{}

	switch msg := msg.(type) {

	case Msg:
		switch msg.Type {

		case MsgLoading:
			m.loading = true
			cmds = append(cmds, m.stopwatch.Reset())
			cmds = append(cmds, m.stopwatch.Start())

		case MsgRecommendation:
			m.loading = false
			m.recommendation = msg.Text
			m.prompt.Placeholder = placeholders[m.mode]
			cmds = append(cmds, m.stopwatch.Stop())
			cmds = append(cmds, m.prompt.Focus())

		case MsgAnswer:
			m.loading = false
			m.reveal(msg.Text)
			cmds = append(cmds, m.stopwatch.Stop())

		case MsgError:
			// Errors are shown at once
			m.loading = false
			m.conv.AddError(msg.Text)
			cmds = append(cmds, m.stopwatch.Stop())
		}

		cmds = append(cmds, m.listen())

	case revealTickMsg:
		m.scheduler.Fire(msg)

	case tea.KeyMsg:
		switch msg.String() {

		case "ctrl+c", "esc":
			m.Close()
			return m, tea.Quit

		case "q":
			if m.mode == "" {
				m.Close()
				return m, tea.Quit
			}

		case "enter":
			// If this is a mode selection
			if m.mode == "" {
				if mode, ok := m.picker.Selected(); ok {
					m.mode = mode
					cmds = append(cmds, m.send(mode))
				}
				break
			}

			// If this is a question
			if m.Ready() {
				question := strings.TrimSpace(m.prompt.Value())
				m.prompt.Reset()
				m.conv.AddUser(question)
				m.loading = true
				cmds = append(cmds, m.send(question))
			}
		}

	case tea.WindowSizeMsg:
		m.width = &msg.Width
		m.height = &msg.Height
		m.picker.Update(msg.Width, msg.Height)
		m.viewport.Width = max(msg.Width-2, 0)
		m.viewport.Height = max(msg.Height-5, 0)
		m.prompt.Width = max(msg.Width-6, 0)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.stopwatch, cmd = m.stopwatch.Update(msg)
	cmds = append(cmds, cmd)

	if m.mode == "" {
		m.picker.List, cmd = m.picker.List.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.prompt, cmd = m.prompt.Update(msg)
		cmds = append(cmds, cmd)

		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, m.scheduler.Flush())
	m.refresh()

	return m, tea.Batch(cmds...)
}

// Ready reports whether a question can be sent.
func (m Tui) Ready() bool {
	return m.recommendation != "" &&
		!m.loading &&
		!m.conv.Revealing() &&
		strings.TrimSpace(m.prompt.Value()) != ""
}

// Messages returns the transcript.
func (m Tui) Messages() []chat.Message {
	return m.conv.Messages()
}

// Close stops every pending reveal.
func (m Tui) Close() {
	for _, e := range m.engines {
		e.Close()
	}
}

// reveal appends an assistant answer and starts revealing it.
func (m *Tui) reveal(text string) {
	msg := m.conv.BeginAssistant(text)
	conv := m.conv
	engines := m.engines

	var e *reveal.Engine
	e = reveal.New(
		reveal.WithScheduler(m.scheduler),
		reveal.WithDelay(m.delay),
		reveal.WithOnUpdate(func(s reveal.State) {
			_ = conv.SetDisplayed(msg.ID, s.Displayed)
		}),
		reveal.WithOnComplete(func() {
			_ = conv.Finish(msg.ID)

			// Finished engines are not kept around
			e.Close()
			delete(engines, msg.ID)
		}),
	)
	m.engines[msg.ID] = e

	e.Set(text, m.animate)
}

func (m Tui) listen() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.output
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Tui) send(text string) tea.Cmd {
	return func() tea.Msg {
		m.requests <- text
		return nil
	}
}

// refresh rebuilds the transcript shown in the viewport.
func (m *Tui) refresh() {
	if m.width == nil || m.recommendation == "" {
		return
	}

	var b strings.Builder
	b.WriteString(markup.Render(markup.Parse(m.recommendation), MarkupStyles))

	for _, msg := range m.conv.Messages() {
		b.WriteString("\n\n")

		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(AccentTextStyle.Render("you › "))
			b.WriteString(TextStyle.Render(msg.Content))

		case chat.RoleAssistant:
			b.WriteString(SubtextStyle.Render("coach › "))
			if msg.Failed {
				b.WriteString(ErrTextStyle.Render(msg.Content))
				continue
			}
			b.WriteString(markup.Render(markup.Parse(msg.Content), MarkupStyles))
			if msg.Revealing {
				b.WriteString(SubtextStyle.Render(Cursor))
			}
		}
	}

	if m.loading {
		b.WriteString("\n\n" + m.spinner.View() + SubtextStyle.Render(" thinking..."))
	}

	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m Tui) View() string {
	// If the mode has not been chosen yet
	if m.mode == "" {
		return m.render(renderParams{
			body:   m.picker.List.View(),
			footer: AltTextStyle.Render(fmt.Sprintf("quick coach v%s", m.version)),
			center: true,
		})
	}

	// If the recommendation has not been generated yet
	if m.recommendation == "" {
		return m.render(renderParams{
			body:   m.spinner.View(),
			footer: AltTextStyle.Render(fmt.Sprintf("%s elapsed", m.stopwatch.View())),
			center: true,
		})
	}

	footer := fmt.Sprintf("took %s · pgup/pgdn scroll · esc quit", m.stopwatch.View())
	if m.loading {
		footer = fmt.Sprintf("%s elapsed", m.stopwatch.View())
	}

	return m.render(renderParams{
		body:   m.viewport.View() + "\n\n" + m.prompt.View(),
		footer: AltTextStyle.Render(footer),
	})
}

type renderParams struct {
	body   string
	footer string
	center bool
}

func (m Tui) render(p renderParams) string {
	if m.width == nil || m.height == nil {
		return ""
	}

	bodyStyle := BodyStyle.Width(*m.width).Height(*m.height - 1)
	if p.center {
		bodyStyle = bodyStyle.Align(lipgloss.Center, lipgloss.Center)
	}

	footerStyle := FooterStyle.Width(*m.width)

	return lipgloss.JoinVertical(lipgloss.Top, bodyStyle.Render(p.body), footerStyle.Render(p.footer))
}
