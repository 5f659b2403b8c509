package surveymeta

import (
	"strconv"
	"strings"
)

// pointer is an immutable JSON Pointer built while walking JSON input. Each
// step links to its parent, so branching never copies the prefix.
type pointer struct {
	parent *pointer
	token  string
}

func (p *pointer) field(name string) *pointer {
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return &pointer{parent: p, token: esc}
}

func (p *pointer) index(i int) *pointer {
	return &pointer{parent: p, token: strconv.Itoa(i)}
}

// String renders the pointer; the root (nil) renders as "".
func (p *pointer) String() string {
	if p == nil {
		return ""
	}
	var tokens []string
	for cur := p; cur != nil; cur = cur.parent {
		tokens = append(tokens, cur.token)
	}
	b := &strings.Builder{}
	for i := len(tokens) - 1; i >= 0; i-- {
		b.WriteByte('/')
		b.WriteString(tokens[i])
	}
	return b.String()
}

// SplitPointer returns the unescaped reference tokens of a JSON Pointer.
func SplitPointer(ptr string) []string {
	if ptr == "" {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	for i, t := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(t, "~1", "/"), "~0", "~")
	}
	return parts
}
