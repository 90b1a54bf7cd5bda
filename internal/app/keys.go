package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reel/reel/internal/config"
)

// Command is a user action resolved from a key.
type Command int

const (
	CmdNone Command = iota
	CmdUp
	CmdDown
	CmdPageUp
	CmdPageDown
	CmdPlay
	CmdRescan
	CmdFind
	CmdSearch
	CmdInfo
	CmdHelp
	CmdQuit
)

func (c Command) String() string {
	switch c {
	case CmdUp:
		return "up"
	case CmdDown:
		return "down"
	case CmdPageUp:
		return "page_up"
	case CmdPageDown:
		return "page_down"
	case CmdPlay:
		return "play"
	case CmdRescan:
		return "rescan"
	case CmdFind:
		return "find"
	case CmdSearch:
		return "search"
	case CmdInfo:
		return "info"
	case CmdHelp:
		return "help"
	case CmdQuit:
		return "quit"
	default:
		return "none"
	}
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Play     key.Binding
	Rescan   key.Binding
	Find     key.Binding
	Search   key.Binding
	Info     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func binding(keys, desc string) key.Binding {
	ks := config.SplitKeys(keys)
	label := ""
	if len(ks) > 0 {
		label = ks[0]
	}
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(label, desc))
}

func newKeyMap(kb config.KeybindConfig) keyMap {
	return keyMap{
		Up:       binding(kb.Up, "up"),
		Down:     binding(kb.Down, "down"),
		PageUp:   binding(kb.PageUp, "page up"),
		PageDown: binding(kb.PageDown, "page down"),
		Play:     binding(kb.Play, "play"),
		Rescan:   binding(kb.Rescan, "rescan"),
		Find:     binding(kb.Find, "find"),
		Search:   binding(kb.Search, "search"),
		Info:     binding(kb.Info, "details"),
		Help:     binding(kb.Help, "help"),
		Quit:     binding(kb.Quit, "quit"),
	}
}

// resolve maps a key press to its Command.
func (k keyMap) resolve(msg tea.KeyMsg) Command {
	switch {
	case key.Matches(msg, k.Quit):
		return CmdQuit
	case key.Matches(msg, k.Up):
		return CmdUp
	case key.Matches(msg, k.Down):
		return CmdDown
	case key.Matches(msg, k.PageUp):
		return CmdPageUp
	case key.Matches(msg, k.PageDown):
		return CmdPageDown
	case key.Matches(msg, k.Play):
		return CmdPlay
	case key.Matches(msg, k.Rescan):
		return CmdRescan
	case key.Matches(msg, k.Find):
		return CmdFind
	case key.Matches(msg, k.Search):
		return CmdSearch
	case key.Matches(msg, k.Info):
		return CmdInfo
	case key.Matches(msg, k.Help):
		return CmdHelp
	default:
		return CmdNone
	}
}

// ShortHelp is shown in the title line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Rescan, k.Find, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Play, k.Rescan, k.Find, k.Search},
		{k.Info, k.Help, k.Quit},
	}
}
