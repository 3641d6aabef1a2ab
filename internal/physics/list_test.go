package physics

import (
	"slices"
	"testing"
)

func TestBufferedList(t *testing.T) {
	var l BufferedList[int]

	if !l.Add(1) || !l.Add(2) {
		t.Fatal("Add() of new items returned false")
	}
	if l.Add(1) {
		t.Error("Add() of pending duplicate returned true")
	}
	if l.Len() != 0 {
		t.Errorf("Len() before Flush = %d, expected 0", l.Len())
	}

	l.Flush()
	if !slices.Equal(l.Items(), []int{1, 2}) {
		t.Errorf("Items() = %v, expected [1 2]", l.Items())
	}
	if l.Add(2) {
		t.Error("Add() of existing item returned true")
	}

	snapshot := l.Items()
	l.Remove(1)
	l.Add(3)
	if !slices.Equal(snapshot, []int{1, 2}) {
		t.Errorf("snapshot changed before Flush: %v", snapshot)
	}
	if l.Contains(1) || !l.Contains(3) {
		t.Error("Contains() does not reflect queued changes")
	}

	l.Flush()
	if !slices.Equal(l.Items(), []int{2, 3}) {
		t.Errorf("Items() = %v, expected [2 3]", l.Items())
	}
	if !slices.Equal(snapshot, []int{1, 2}) {
		t.Errorf("old snapshot modified by Flush: %v", snapshot)
	}
}

func TestBufferedListCancel(t *testing.T) {
	var l BufferedList[string]

	l.Add("a")
	l.Remove("a")
	l.Flush()
	if l.Len() != 0 {
		t.Errorf("Len() = %d, expected add+remove to cancel", l.Len())
	}

	l.Add("b")
	l.Flush()
	l.Remove("b")
	if !l.Add("b") {
		t.Error("re-adding a removed item should succeed")
	}
	l.Flush()
	if !slices.Equal(l.Items(), []string{"b"}) {
		t.Errorf("Items() = %v, expected [b]", l.Items())
	}
}

func TestBufferedListClearKeepsPending(t *testing.T) {
	var l BufferedList[int]
	l.Append(1)
	l.Flush()
	l.Append(2)
	l.Append(2)

	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len() after Clear = %d, expected 0", l.Len())
	}
	if len(l.Pending()) != 2 {
		t.Errorf("Pending() = %v, expected two queued items", l.Pending())
	}
	l.Flush()
	if !slices.Equal(l.Items(), []int{2, 2}) {
		t.Errorf("Items() = %v, expected [2 2]", l.Items())
	}
}
