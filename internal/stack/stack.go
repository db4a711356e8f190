// Package stack provides a small generic stack. The parser keeps its
// open-element state on one of these.
package stack

type Stack[T any] []T

func (s *Stack[T]) Push(v T) {
	*s = append(*s, v)
}

// Pop removes and returns the top of the stack. The second return is
// false if the stack is empty.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	l := len(*s)
	if l == 0 {
		return zero, false
	}
	v := (*s)[l-1]
	(*s)[l-1] = zero
	*s = (*s)[:l-1]

	// shed excess capacity once the stack has drained well below it
	if c := cap(*s); c > 20 && c > len(*s)*2 {
		*s = append(Stack[T](nil), *s...)
	}
	return v, true
}

func (s Stack[T]) Peek() (T, bool) {
	var zero T
	if len(s) == 0 {
		return zero, false
	}
	return s[len(s)-1], true
}

func (s Stack[T]) Len() int {
	return len(s)
}
