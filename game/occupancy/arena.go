package occupancy

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind tags which arena a handle belongs to
type Kind string

const (
	HeroKind    Kind = "H"
	MonsterKind Kind = "M"
)

// Handle is a stable reference to an entity. N starts at 1 and is never
// reused within an arena, so the display id of a unit never changes.
type Handle struct {
	Kind Kind
	N    int
}

// ID returns the display identifier, e.g. "H1" or "M3"
func (h Handle) ID() string {
	return string(h.Kind) + strconv.Itoa(h.N)
}

func (h Handle) String() string {
	return h.ID()
}

// IsZero reports whether h was never assigned
func (h Handle) IsZero() bool {
	return h.N == 0
}

func (h Handle) MarshalText() ([]byte, error) {
	return []byte(h.ID()), nil
}

func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHandle parses a display id such as "h2" or "M10"
func ParseHandle(s string) (Handle, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return Handle{}, fmt.Errorf("invalid unit id %q", s)
	}
	k := Kind(s[:1])
	if k != HeroKind && k != MonsterKind {
		return Handle{}, fmt.Errorf("invalid unit id %q: must start with H or M", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return Handle{}, fmt.Errorf("invalid unit id %q", s)
	}
	return Handle{Kind: k, N: n}, nil
}

// Arena owns entities of one kind and hands out handles for them.
// Retired slots stay empty forever.
type Arena[T any] struct {
	kind  Kind
	items []*T
}

// NewArena creates an empty arena for the given kind
func NewArena[T any](kind Kind) *Arena[T] {
	return &Arena[T]{kind: kind}
}

// Add stores item and returns its new handle
func (a *Arena[T]) Add(item *T) Handle {
	a.items = append(a.items, item)
	return Handle{Kind: a.kind, N: len(a.items)}
}

// Get returns the item behind h, or false if h is unknown or retired
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	if !a.owns(h) {
		return nil, false
	}
	item := a.items[h.N-1]
	return item, item != nil
}

// Retire drops the item; the handle is never handed out again
func (a *Arena[T]) Retire(h Handle) bool {
	if !a.owns(h) || a.items[h.N-1] == nil {
		return false
	}
	a.items[h.N-1] = nil
	return true
}

// Retired reports whether h was issued by this arena and later retired
func (a *Arena[T]) Retired(h Handle) bool {
	return a.owns(h) && a.items[h.N-1] == nil
}

// Len counts live items
func (a *Arena[T]) Len() int {
	n := 0
	for _, it := range a.items {
		if it != nil {
			n++
		}
	}
	return n
}

// Each visits live items in handle order
func (a *Arena[T]) Each(fn func(h Handle, item *T)) {
	for i, it := range a.items {
		if it != nil {
			fn(Handle{Kind: a.kind, N: i + 1}, it)
		}
	}
}

func (a *Arena[T]) owns(h Handle) bool {
	return h.Kind == a.kind && h.N >= 1 && h.N <= len(a.items)
}
