package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sahilm/fuzzy"

	"github.com/reel/reel/internal/ui"
)

func newSearchInput(theme ui.Theme) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.PromptStyle = theme.Prompt
	ti.Placeholder = "part of a movie name"
	ti.CharLimit = 128
	return ti
}

// bestMatch returns the index of the name that fuzzy-matches query best.
// Ties go to the earlier name.
func bestMatch(query string, names []string) (int, bool) {
	query = strings.TrimSpace(query)
	if query == "" || len(names) == 0 {
		return -1, false
	}
	matches := fuzzy.FindNoSort(query, names)
	if len(matches) == 0 {
		return -1, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score || (m.Score == best.Score && m.Index < best.Index) {
			best = m
		}
	}
	return best.Index, true
}
