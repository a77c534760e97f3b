package utils

import "sync"

type Number interface {
	int | int32 | int64 | float32 | float64
}

// SafeMap is an accumulator safe for concurrent use.
type SafeMap[K comparable, V Number] struct {
	mutex sync.Mutex
	data  map[K]V
}

func NewSafeMap[K comparable, V Number]() *SafeMap[K, V] {
	return &SafeMap[K, V]{data: make(map[K]V)}
}

// Merge adds every value of other to the matching key under a single lock.
func (m *SafeMap[K, V]) Merge(other map[K]V) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for key, v := range other {
		m.data[key] += v
	}
}

// Clone returns a snapshot of the accumulated values.
func (m *SafeMap[K, V]) Clone() map[K]V {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	data := make(map[K]V, len(m.data))
	for key, v := range m.data {
		data[key] = v
	}
	return data
}
