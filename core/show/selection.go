package show

import "slices"

// SelectionList is an ordered set of marcher indices. Order is kept for
// tools that work in selection order; equality only considers membership.
// The zero value is an empty selection. Methods never modify the receiver.
type SelectionList struct {
	order   []int
	members map[int]struct{}
}

// NewSelectionList builds a selection, dropping duplicates after their
// first occurrence.
func NewSelectionList(indices ...int) SelectionList {
	var sl SelectionList
	for _, i := range indices {
		sl.push(i)
	}
	return sl
}

// push appends i unless already present. Only call it on a selection
// under construction; its map must not be shared.
func (sl *SelectionList) push(i int) {
	if sl.members == nil {
		sl.members = make(map[int]struct{})
	}
	if _, ok := sl.members[i]; ok {
		return
	}
	sl.members[i] = struct{}{}
	sl.order = append(sl.order, i)
}

// Len returns the number of selected marchers.
func (sl SelectionList) Len() int {
	return len(sl.order)
}

// Empty reports whether nothing is selected.
func (sl SelectionList) Empty() bool {
	return len(sl.order) == 0
}

// Contains reports whether i is selected.
func (sl SelectionList) Contains(i int) bool {
	_, ok := sl.members[i]
	return ok
}

// Indices returns the selection in insertion order.
func (sl SelectionList) Indices() []int {
	return slices.Clone(sl.order)
}

// Sorted returns the selection in ascending order.
func (sl SelectionList) Sorted() []int {
	out := slices.Clone(sl.order)
	slices.Sort(out)
	return out
}

// Add returns the selection with indices appended.
func (sl SelectionList) Add(indices ...int) SelectionList {
	return NewSelectionList(append(slices.Clone(sl.order), indices...)...)
}

// Remove returns the selection without indices.
func (sl SelectionList) Remove(indices ...int) SelectionList {
	drop := NewSelectionList(indices...)
	out := SelectionList{}
	for _, i := range sl.order {
		if !drop.Contains(i) {
			out.push(i)
		}
	}
	return out
}

// Toggle returns the selection with the membership of each index flipped.
func (sl SelectionList) Toggle(indices ...int) SelectionList {
	flip := NewSelectionList(indices...)
	out := SelectionList{}
	for _, i := range sl.order {
		if !flip.Contains(i) {
			out.push(i)
		}
	}
	for _, i := range flip.order {
		if !sl.Contains(i) {
			out.push(i)
		}
	}
	return out
}

// Equal reports whether both selections hold the same marchers.
func (sl SelectionList) Equal(o SelectionList) bool {
	if sl.Len() != o.Len() {
		return false
	}
	for _, i := range sl.order {
		if !o.Contains(i) {
			return false
		}
	}
	return true
}

// below returns the selection restricted to indices under n.
func (sl SelectionList) below(n int) SelectionList {
	out := SelectionList{}
	for _, i := range sl.order {
		if i >= 0 && i < n {
			out.push(i)
		}
	}
	return out
}
