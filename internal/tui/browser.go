// Package tui is an interactive specimen browser: a list of specimens next
// to the selected specimen's balance diagram drawn on a braille canvas.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/pipeline"
	"github.com/san-kum/bladebalance/internal/theme"
	"github.com/san-kum/bladebalance/internal/viz"
)

const listWidth = 26

type cacheKey struct {
	index int
	demo  bool
}

type model struct {
	specimens []*balance.Specimen
	opts      pipeline.Options
	cache     map[cacheKey]*pipeline.Result

	themes   []theme.Theme
	themeIdx int
	styles   viz.Styles

	cursor int
	demo   bool
	err    error

	width  int
	height int
}

// newBrowser starts on th; the t key cycles through th and the built-in
// themes.
func newBrowser(specimens []*balance.Specimen, opts pipeline.Options, th theme.Theme) model {
	themes := []theme.Theme{th}
	for _, t := range theme.Themes {
		if t.Name != th.Name {
			themes = append(themes, t)
		}
	}
	return model{
		specimens: specimens,
		opts:      opts,
		cache:     make(map[cacheKey]*pipeline.Result),
		themes:    themes,
		styles:    viz.NewStyles(th),
		demo:      opts.Scene.Demo,
		width:     100,
		height:    32,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.specimens)-1 {
			m.cursor++
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = max(len(m.specimens)-1, 0)
	case "d":
		m.demo = !m.demo
	case "t":
		m.themeIdx = (m.themeIdx + 1) % len(m.themes)
		m.styles = viz.NewStyles(m.themes[m.themeIdx])
	}
	return m, nil
}

// current returns the result for the selected specimen, computing it on
// first use.
func (m model) current() (*pipeline.Result, error) {
	if len(m.specimens) == 0 {
		return nil, nil
	}
	key := cacheKey{index: m.cursor, demo: m.demo}
	if r, ok := m.cache[key]; ok {
		return r, nil
	}
	opts := m.opts
	opts.Scene.Demo = m.demo
	r, err := pipeline.Run(m.specimens[m.cursor], opts)
	if err != nil {
		return nil, err
	}
	m.cache[key] = r
	return r, nil
}

func (m model) View() string {
	if len(m.specimens) == 0 {
		return "\n  " + m.styles.Muted.Render("no specimens") + "\n"
	}

	detail := m.viewDetail()
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.viewList(), "  ", detail)

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	mode := "dynamics"
	if m.demo {
		mode = "outline"
	}
	hint := fmt.Sprintf("  ↑↓ select   d %s   t theme (%s)   q quit", mode, m.themes[m.themeIdx].Name)
	b.WriteString(m.styles.KeyHint.Render(hint) + "\n")
	return b.String()
}

func (m model) viewList() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("specimens") + "\n")
	b.WriteString(m.styles.Separator(listWidth) + "\n")

	rows := max(m.height-6, 5)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	for i := start; i < len(m.specimens) && i < start+rows; i++ {
		name := truncate(m.specimens[i].Name(), listWidth-2)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("▸ "+name) + "\n")
		} else {
			b.WriteString("  " + m.styles.Label.Render(name) + "\n")
		}
	}
	return lipgloss.NewStyle().Width(listWidth).Render(b.String())
}

func (m model) viewDetail() string {
	r, err := m.current()
	if err != nil {
		return m.styles.Warning.Render(err.Error())
	}

	cw := max(m.width-listWidth-30, 40)
	ch := max(m.height-6, 12)
	canvas := m.styles.Canvas(viz.DrawScene(r.Scene, cw, ch))

	side := []string{m.styles.Summary(r.Scene.Summary)}
	if legend := m.styles.Legend(r.Scene); legend != "" {
		side = append(side, legend)
	}
	if sk := m.styles.Skipped(r.Scene.Skipped); sk != "" {
		side = append(side, sk)
	}

	title := m.styles.Title.Render(r.Scene.Title)
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.JoinHorizontal(lipgloss.Top, canvas, " ", lipgloss.JoinVertical(lipgloss.Left, side...)),
	)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run opens the browser on the alternate screen and blocks until it exits.
func Run(specimens []*balance.Specimen, opts pipeline.Options, th theme.Theme) error {
	_, err := tea.NewProgram(newBrowser(specimens, opts, th), tea.WithAltScreen()).Run()
	return err
}
