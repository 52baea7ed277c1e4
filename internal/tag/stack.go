package tag

import "golang.org/x/exp/slices"

// Stack is a LIFO of values. The zero value is an empty stack.
type Stack[T any] struct {
	items []T
}

func NewStack[T any]() *Stack[T] {
	return &Stack[T]{
		items: make([]T, 0, 10),
	}
}

func (s *Stack[T]) Push(v T) {
	s.items = append(s.items, v)
}

// Pop removes the top value. ok is false if the stack was empty.
func (s *Stack[T]) Pop() (v T, ok bool) {
	if len(s.items) == 0 {
		return v, false
	}

	last := len(s.items) - 1
	v = s.items[last]

	var zero T
	s.items[last] = zero
	s.items = s.items[:last]

	return v, true
}

func (s *Stack[T]) Peek() (v T, ok bool) {
	if len(s.items) == 0 {
		return v, false
	}

	return s.items[len(s.items)-1], true
}

func (s *Stack[T]) Len() int {
	return len(s.items)
}

func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns a copy of the stack contents, bottom first.
func (s *Stack[T]) Items() []T {
	return slices.Clone(s.items)
}
