package physics

// BufferedList keeps a stable snapshot of items. Additions and removals are
// queued and only become visible after Flush, so a snapshot can be iterated
// while the loop body asks for structural changes.
type BufferedList[T comparable] struct {
	items   []T
	added   []T
	removed []T
}

// Add queues item unless it is already present or pending.
// Returns false when the call was a duplicate.
func (l *BufferedList[T]) Add(item T) bool {
	if indexOf(l.added, item) >= 0 {
		return false
	}
	if i := indexOf(l.removed, item); i >= 0 {
		// Re-adding a body removed in the same tick cancels the removal.
		l.removed = append(l.removed[:i], l.removed[i+1:]...)
		return true
	}
	if indexOf(l.items, item) >= 0 {
		return false
	}
	l.added = append(l.added, item)
	return true
}

// Append queues item without checking for duplicates.
func (l *BufferedList[T]) Append(item T) {
	l.added = append(l.added, item)
}

// Remove queues item for removal. A pending addition is simply cancelled.
func (l *BufferedList[T]) Remove(item T) {
	if i := indexOf(l.added, item); i >= 0 {
		l.added = append(l.added[:i], l.added[i+1:]...)
		return
	}
	if indexOf(l.items, item) >= 0 && indexOf(l.removed, item) < 0 {
		l.removed = append(l.removed, item)
	}
}

// Flush applies queued changes. The previous snapshot slice is never
// modified in place.
func (l *BufferedList[T]) Flush() {
	if len(l.added) == 0 && len(l.removed) == 0 {
		return
	}
	next := make([]T, 0, len(l.items)+len(l.added))
	for _, item := range l.items {
		if indexOf(l.removed, item) < 0 {
			next = append(next, item)
		}
	}
	next = append(next, l.added...)
	l.items = next
	l.added = nil
	l.removed = nil
}

// Items returns the current snapshot. Callers must not modify it.
func (l *BufferedList[T]) Items() []T {
	return l.items
}

// Pending returns items queued for addition.
func (l *BufferedList[T]) Pending() []T {
	return l.added
}

// Contains reports whether item is in the list once queued changes apply.
func (l *BufferedList[T]) Contains(item T) bool {
	if indexOf(l.added, item) >= 0 {
		return true
	}
	return indexOf(l.items, item) >= 0 && indexOf(l.removed, item) < 0
}

// Clear drops the snapshot. Queued additions survive.
func (l *BufferedList[T]) Clear() {
	l.items = nil
	l.removed = nil
}

// Len is the snapshot size.
func (l *BufferedList[T]) Len() int {
	return len(l.items)
}

func indexOf[T comparable](s []T, item T) int {
	for i, v := range s {
		if v == item {
			return i
		}
	}
	return -1
}
