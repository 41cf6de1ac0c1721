package typeutil

import (
	"sort"
	"sync"
)

// ConcurrentSet is a set safe for use by multiple goroutines.
// The zero value is an empty set ready to use.
type ConcurrentSet[T comparable] struct {
	inner sync.Map
}

func NewConcurrentSet[T comparable](elements ...T) *ConcurrentSet[T] {
	set := &ConcurrentSet[T]{}
	for _, e := range elements {
		set.Insert(e)
	}
	return set
}

// Insert adds element and reports whether it was newly added.
func (set *ConcurrentSet[T]) Insert(element T) bool {
	_, exist := set.inner.LoadOrStore(element, struct{}{})
	return !exist
}

// Contain reports whether all elements are present.
func (set *ConcurrentSet[T]) Contain(elements ...T) bool {
	for i := range elements {
		if _, ok := set.inner.Load(elements[i]); !ok {
			return false
		}
	}
	return true
}

// TryRemove removes element and reports whether it was present.
func (set *ConcurrentSet[T]) TryRemove(element T) bool {
	_, exist := set.inner.LoadAndDelete(element)
	return exist
}

func (set *ConcurrentSet[T]) Collect() []T {
	elements := make([]T, 0)
	set.inner.Range(func(key, _ any) bool {
		elements = append(elements, key.(T))
		return true
	})
	return elements
}

func (set *ConcurrentSet[T]) Len() int {
	n := 0
	set.inner.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// SortedStrings returns the elements of a string set in ascending order.
func SortedStrings(set *ConcurrentSet[string]) []string {
	out := set.Collect()
	sort.Strings(out)
	return out
}
