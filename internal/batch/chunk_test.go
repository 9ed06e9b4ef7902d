package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EvenSplit(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4}, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, []int{1, 2}, chunks[0])
	assert.Equal(t, []int{3, 4}, chunks[1])
}

func TestChunk_Remainder(t *testing.T) {
	chunks := Chunk([]int{1, 2, 3, 4, 5}, 2)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2}, chunks[0])
	assert.Equal(t, []int{3, 4}, chunks[1])
	assert.Equal(t, []int{5}, chunks[2])
}

func TestChunk_SizeOne(t *testing.T) {
	chunks := Chunk([]string{"a", "b", "c"}, 1)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Len(t, c, 1, "chunk %d", i)
	}
}

func TestChunk_SizeLargerThanInput(t *testing.T) {
	chunks := Chunk([]int{1, 2}, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, []int{1, 2}, chunks[0])
}

func TestChunk_Empty(t *testing.T) {
	assert.Nil(t, Chunk([]int{}, 3))
}

func TestChunk_ConcatenationReproducesInput(t *testing.T) {
	items := make([]int, 17)
	for i := range items {
		items[i] = i
	}

	for _, size := range []int{1, 2, 3, 5, 16, 17, 100} {
		chunks := Chunk(items, size)

		want := (len(items) + size - 1) / size
		assert.Len(t, chunks, want, "size %d", size)

		var flat []int
		for i, c := range chunks {
			if i < len(chunks)-1 {
				assert.Len(t, c, size, "size %d chunk %d", size, i)
			}
			flat = append(flat, c...)
		}
		assert.Equal(t, items, flat, "size %d", size)
	}
}

func TestChunk_InvalidSizePanics(t *testing.T) {
	assert.Panics(t, func() { Chunk([]int{1}, 0) })
	assert.Panics(t, func() { Chunk([]int{1}, -1) })
}
