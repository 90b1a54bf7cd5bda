// Package navigator tracks the selected row and the scroll window over a
// sorted list of names. It does no I/O.
package navigator

import (
	"strings"
	"unicode/utf8"
)

// ViewportState is the whole navigator state.
//
// With a non-empty list: 0 <= FirstVisible <= Selected < FirstVisible+PageSize
// and Selected < len(items). With an empty list both indexes are zero.
type ViewportState struct {
	Selected     int
	FirstVisible int
	PageSize     int
}

// Navigator moves a cursor over items. The zero value is not usable; call New.
type Navigator struct {
	items []string
	state ViewportState
}

func New(pageSize int) Navigator {
	return Navigator{state: ViewportState{PageSize: max(pageSize, 1)}}
}

// Reset replaces the list and returns the cursor to the top.
func (n *Navigator) Reset(items []string) {
	n.items = items
	n.state.Selected = 0
	n.state.FirstVisible = 0
}

func (n Navigator) State() ViewportState { return n.state }

func (n Navigator) Len() int { return len(n.items) }

// Items returns the list being navigated. Callers must not modify it.
func (n Navigator) Items() []string { return n.items }

func (n Navigator) PageSize() int { return n.state.PageSize }

// Resize changes the page size and scrolls just enough to keep the selection
// on screen.
func (n *Navigator) Resize(pageSize int) {
	n.state.PageSize = max(pageSize, 1)
	n.clampWindow()
}

// SelectAt jumps to offset and scrolls it to the top of the window. It
// reports false and leaves the state alone when offset is out of range.
func (n *Navigator) SelectAt(offset int) bool {
	if offset < 0 || offset >= len(n.items) {
		return false
	}
	n.state.Selected = offset
	n.state.FirstVisible = offset
	return true
}

// ScrollUp moves the selection up by step rows, never above the first row.
func (n *Navigator) ScrollUp(step int) {
	if len(n.items) == 0 || step <= 0 {
		return
	}
	n.state.Selected = max(0, n.state.Selected-step)
	if n.state.Selected < n.state.FirstVisible {
		n.state.FirstVisible = max(0, n.state.FirstVisible-step)
	}
	n.clampWindow()
}

// ScrollDown moves the selection down by step rows, never past the last row.
func (n *Navigator) ScrollDown(step int) {
	if len(n.items) == 0 || step <= 0 {
		return
	}
	n.state.Selected = min(len(n.items)-1, n.state.Selected+step)
	if n.state.Selected >= n.state.FirstVisible+n.state.PageSize {
		n.state.FirstVisible += step
	}
	n.clampWindow()
}

// clampWindow pulls FirstVisible back into the range that keeps Selected
// visible. Single-row and full-page steps never need it.
func (n *Navigator) clampWindow() {
	if len(n.items) == 0 {
		n.state.Selected = 0
		n.state.FirstVisible = 0
		return
	}
	s := &n.state
	if s.FirstVisible > s.Selected {
		s.FirstVisible = s.Selected
	}
	if lo := s.Selected - s.PageSize + 1; s.FirstVisible < lo {
		s.FirstVisible = lo
	}
	if s.FirstVisible < 0 {
		s.FirstVisible = 0
	}
}

// VisibleWindow returns the rows currently on screen.
func (n Navigator) VisibleWindow() []string {
	if len(n.items) == 0 {
		return nil
	}
	lo := min(n.state.FirstVisible, len(n.items))
	hi := min(lo+n.state.PageSize, len(n.items))
	return n.items[lo:hi]
}

// CurrentSelection returns the selected name, or false for an empty list.
func (n Navigator) CurrentSelection() (string, bool) {
	if len(n.items) == 0 {
		return "", false
	}
	return n.items[n.state.Selected], true
}

// IndexOfInitial returns the index of the first item whose first character
// matches r ignoring case, or -1.
func IndexOfInitial(items []string, r rune) int {
	want := string(r)
	for i, item := range items {
		first, size := utf8.DecodeRuneInString(item)
		if size == 0 {
			continue
		}
		if strings.EqualFold(string(first), want) {
			return i
		}
	}
	return -1
}
