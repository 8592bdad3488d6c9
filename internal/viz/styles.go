package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/scene"
	"github.com/san-kum/bladebalance/internal/theme"
)

// Styles are lipgloss styles derived from a plot theme.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Warning  lipgloss.Style
	Panel    lipgloss.Style
	KeyHint  lipgloss.Style

	theme theme.Theme
}

func NewStyles(th theme.Theme) Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(th.Terminal(theme.Font)),
		Label:    lipgloss.NewStyle().Foreground(th.Terminal(theme.Axis)),
		Value:    lipgloss.NewStyle().Bold(true).Foreground(th.Terminal(scene.RoleRog)),
		Muted:    lipgloss.NewStyle().Foreground(th.Terminal(theme.Grid)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(th.Terminal(scene.RoleCOM)),
		Warning:  lipgloss.NewStyle().Foreground(th.Terminal(scene.RoleTarget)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Terminal(theme.Paper)).
			Padding(0, 1),
		KeyHint: lipgloss.NewStyle().Foreground(th.Terminal(theme.Axis)).Italic(true),
		theme:   th,
	}
}

// Role is the foreground style of a scene color role.
func (s Styles) Role(role string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(s.theme.Terminal(role))
}

func (s Styles) Canvas(c *Canvas) string {
	return c.Render(s.Role)
}

// Summary renders the specimen summary as a label/value panel.
func (s Styles) Summary(sum scene.Summary) string {
	rog := "n/a"
	if sum.HasRog {
		rog = fmt.Sprintf("%.2f mm", sum.Rog)
	}
	rows := [][2]string{
		{"pommel", fmt.Sprintf("%.2f mm", sum.Pommel)},
		{"grip", fmt.Sprintf("%.2f mm", sum.Grip)},
		{"com", fmt.Sprintf("%.2f mm", sum.COM)},
		{"length", fmt.Sprintf("%.2f mm", sum.Length)},
		{"rog", rog},
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(sum.Name) + "\n")
	for _, r := range rows {
		b.WriteString(s.Label.Render(fmt.Sprintf("%-8s", r[0])) + s.Value.Render(r[1]) + "\n")
	}
	return s.Panel.Render(strings.TrimSuffix(b.String(), "\n"))
}

// Legend lists the legend entries of sc in rank order.
func (s Styles) Legend(sc *scene.Scene) string {
	var lines []string
	for _, e := range sc.LegendEntries() {
		role := ""
		if e.Trace >= 0 {
			role = sc.Traces[e.Trace].Role
		} else {
			role = sc.Markers[e.Marker].Role
		}
		lines = append(lines, s.Role(role).Render("■ ")+e.Label)
	}
	return strings.Join(lines, "\n")
}

// Skipped lists quantities that could not be derived.
func (s Styles) Skipped(skipped []balance.Skip) string {
	if len(skipped) == 0 {
		return ""
	}
	lines := make([]string, len(skipped))
	for i, sk := range skipped {
		lines[i] = s.Warning.Render("! " + sk.Quantity + ": " + sk.Err.Error())
	}
	return strings.Join(lines, "\n")
}

func (s Styles) Separator(width int) string {
	if width < 8 {
		return s.Muted.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return s.Muted.Render(left + " ◆ " + right)
}
