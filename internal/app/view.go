package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const watchedMark = " ✓"

func (m Model) View() string {
	rows := make([]string, 0, m.height)
	rows = append(rows, m.bar(m.theme.TitleBar, m.title()))

	body := m.listRows()
	if m.showHelp {
		body = strings.Split(m.help.View(m.keys), "\n")
	}
	page := m.nav.PageSize()
	for i := 0; i < page; i++ {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		rows = append(rows, line)
	}

	rows = append(rows, m.statusLine())
	return strings.Join(rows, "\n")
}

func (m Model) title() string {
	var b strings.Builder
	b.WriteString("reel")
	if m.version != "" {
		b.WriteString(" v" + m.version)
	}
	b.WriteString(" -")
	for _, kb := range m.keys.ShortHelp() {
		h := kb.Help()
		b.WriteString(" " + h.Key + ":" + capitalize(h.Desc))
	}
	return b.String()
}

func (m Model) listRows() []string {
	window := m.nav.VisibleWindow()
	out := make([]string, 0, len(window))
	selected, _ := m.nav.CurrentSelection()
	for _, name := range window {
		mark := ""
		if m.isWatched(name) {
			mark = watchedMark
		}
		if name == selected {
			out = append(out, m.bar(m.theme.Selected, "> "+name+mark))
			continue
		}
		line := m.fit("  " + name + mark)
		if mark != "" {
			line = m.theme.Watched.Render(line)
		} else {
			line = m.theme.Item.Render(line)
		}
		out = append(out, line)
	}
	return out
}

func (m Model) statusLine() string {
	if m.mode == modeSearch {
		return m.fit("> " + m.search.View())
	}
	style := m.theme.Status
	if strings.HasPrefix(m.status, "Oops!") {
		style = m.theme.Error
	}
	return m.bar(style, "> "+m.status)
}

func (m Model) isWatched(name string) bool {
	if len(m.watched) == 0 {
		return false
	}
	p, ok := m.cat.Path(name)
	if !ok {
		return false
	}
	_, ok = m.watched[p]
	return ok
}

// fit truncates s to the terminal width, keeping the last column free.
func (m Model) fit(s string) string {
	if m.width <= 1 {
		return s
	}
	return runewidth.Truncate(s, m.width-1, "")
}

// bar renders a full-width styled line.
func (m Model) bar(style lipgloss.Style, s string) string {
	s = m.fit(s)
	if m.width > 1 {
		s = runewidth.FillRight(s, m.width-1)
	}
	return style.Render(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
