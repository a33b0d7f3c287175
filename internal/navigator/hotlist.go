package navigator

import (
	"strings"

	"github.com/nicobailon/gw/internal/hotkey"
)

// Project returns the indices of items whose search text contains filter,
// case-insensitively, in their original order.
func Project[T any](items []T, filter string, search func(T) string) []int {
	f := strings.ToLower(filter)
	out := make([]int, 0, len(items))
	for i, it := range items {
		if f == "" || strings.Contains(strings.ToLower(search(it)), f) {
			out = append(out, i)
		}
	}
	return out
}

// HotList is a filterable list with hotkey codes and a clamped selection.
// Every mutation reprojects, so codes always match what is drawn.
type HotList[T any] struct {
	items    []T
	search   func(T) string
	pool     []rune
	filter   string
	visible  []int
	codes    []string
	selected int
}

func NewHotList[T any](pool []rune, search func(T) string) *HotList[T] {
	l := &HotList[T]{search: search, pool: pool}
	l.refresh()
	return l
}

func (l *HotList[T]) refresh() {
	l.visible = Project(l.items, l.filter, l.search)
	l.codes = hotkey.Assign(len(l.visible), l.pool)
	l.clamp()
}

func (l *HotList[T]) clamp() {
	if l.selected >= len(l.visible) {
		l.selected = len(l.visible) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

func (l *HotList[T]) SetItems(items []T) {
	l.items = items
	l.refresh()
}

func (l *HotList[T]) Items() []T { return l.items }

func (l *HotList[T]) Filter() string { return l.filter }

func (l *HotList[T]) SetFilter(f string) {
	l.filter = f
	l.refresh()
}

func (l *HotList[T]) AppendFilter(r rune) {
	l.SetFilter(l.filter + string(r))
}

func (l *HotList[T]) TrimFilter() {
	if l.filter == "" {
		return
	}
	r := []rune(l.filter)
	l.SetFilter(string(r[:len(r)-1]))
}

func (l *HotList[T]) Len() int { return len(l.visible) }

// Visible returns the projected items.
func (l *HotList[T]) Visible() []T {
	out := make([]T, len(l.visible))
	for i, idx := range l.visible {
		out[i] = l.items[idx]
	}
	return out
}

func (l *HotList[T]) Codes() []string { return l.codes }

func (l *HotList[T]) Index() int { return l.selected }

func (l *HotList[T]) Selected() (T, bool) {
	var zero T
	if len(l.visible) == 0 {
		return zero, false
	}
	return l.items[l.visible[l.selected]], true
}

func (l *HotList[T]) Select(i int) {
	l.selected = i
	l.clamp()
}

func (l *HotList[T]) Down() { l.Select(l.selected + 1) }

func (l *HotList[T]) Up() { l.Select(l.selected - 1) }

func (l *HotList[T]) Top() { l.Select(0) }

func (l *HotList[T]) Bottom() { l.Select(len(l.visible) - 1) }

// SelectWhere selects the first visible item matching fn.
func (l *HotList[T]) SelectWhere(fn func(T) bool) bool {
	for i, idx := range l.visible {
		if fn(l.items[idx]) {
			l.selected = i
			return true
		}
	}
	return false
}
