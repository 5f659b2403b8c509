package surveymeta

// ArrayValue is an array with reference identity: deserialization splices
// into it instead of replacing it, so holders of the value stay valid.
type ArrayValue interface {
	Items() []any
	Len() int
	Push(items ...any)
	Splice(start, deleteCount int, items ...any) []any
}

// Array is the default ArrayValue. Push and remove callbacks fire for every
// inserted and removed element.
type Array struct {
	items    []any
	onPush   func(item any, index int)
	onRemove func(item any, index int)
}

var _ ArrayValue = (*Array)(nil)

// NewArray returns an empty array with optional callbacks.
func NewArray(onPush, onRemove func(item any, index int)) *Array {
	return &Array{onPush: onPush, onRemove: onRemove}
}

// Len returns the number of elements.
func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// Items returns a copy of the elements.
func (a *Array) Items() []any {
	if a == nil {
		return nil
	}
	out := make([]any, len(a.items))
	copy(out, a.items)
	return out
}

// At returns the element at i, or nil when out of range.
func (a *Array) At(i int) any {
	if a == nil || i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// Push appends items.
func (a *Array) Push(items ...any) {
	a.Splice(len(a.items), 0, items...)
}

// Clear removes every element.
func (a *Array) Clear() {
	a.Splice(0, len(a.items))
}

// Splice removes deleteCount elements at start, inserts items there, and
// returns the removed elements. Out-of-range arguments are clamped.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	n := len(a.items)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}
	removed := make([]any, deleteCount)
	copy(removed, a.items[start:start+deleteCount])

	next := make([]any, 0, n-deleteCount+len(items))
	next = append(next, a.items[:start]...)
	next = append(next, items...)
	next = append(next, a.items[start+deleteCount:]...)
	a.items = next

	if a.onRemove != nil {
		for i, it := range removed {
			a.onRemove(it, start+i)
		}
	}
	if a.onPush != nil {
		for i, it := range items {
			a.onPush(it, start+i)
		}
	}
	return removed
}
