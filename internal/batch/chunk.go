package batch

// Chunk partitions items into contiguous slices of at most size elements.
// Order is preserved, every item lands in exactly one chunk, and only the
// final chunk may be short. size must be >= 1; the job builder rejects
// smaller values before a chunk is ever cut.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		panic("batch: chunk size must be >= 1")
	}
	if len(items) == 0 {
		return nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks
}
