package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_PushReturnsBatchAtThreshold(t *testing.T) {
	b := NewBuffer[int](3)

	assert.Nil(t, b.Push(1))
	assert.Nil(t, b.Push(2))
	assert.Equal(t, []int{1, 2, 3}, b.Push(3))
	assert.Equal(t, 0, b.Len())

	assert.Nil(t, b.Push(4))
	assert.Equal(t, []int{4}, b.Drain())
	assert.Nil(t, b.Drain())
}

func TestBuffer_BatchIsNotAliased(t *testing.T) {
	b := NewBuffer[int](2)
	b.Push(1)
	batch := b.Push(2)
	require.Equal(t, []int{1, 2}, batch)

	b.Push(9)
	assert.Equal(t, []int{1, 2}, batch)
}

func TestBuffer_MinimumThreshold(t *testing.T) {
	b := NewBuffer[string](0)
	assert.Equal(t, []string{"a"}, b.Push("a"))
}

func TestBuffer_ConcurrentPushLosesNothing(t *testing.T) {
	b := NewBuffer[int](7)

	var mu sync.Mutex
	var seen []int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if batch := b.Push(i); batch != nil {
				mu.Lock()
				seen = append(seen, batch...)
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	seen = append(seen, b.Drain()...)

	assert.Len(t, seen, 100)
	assert.ElementsMatch(t, seen, func() []int {
		all := make([]int, 100)
		for i := range all {
			all[i] = i
		}
		return all
	}())
}
