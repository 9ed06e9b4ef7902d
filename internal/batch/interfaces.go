// Package batch provides the generic batch pipeline engine: stage
// contracts, chain combinators, chunked execution and job assembly.
//
// A job owns one Reader, an optional Filter, one Processor and one Writer.
// Running a job reads the full item set once, filters it, partitions it
// into chunks and, per chunk, processes every item before handing the
// transformed chunk to the writer. The first error at any stage aborts the
// run; chunks written before the failure stay persisted.
package batch

import "context"

// JobParameter is a run's external configuration: date ranges, publisher
// ids, result limits, ISBN lists. Treated as immutable for the run.
type JobParameter map[string]string

// Reader loads the full item set for a run. It is called exactly once;
// implementations fetch everything they need internally (pagination loops
// included). A failed read aborts the run before any item is touched.
type Reader[T any] interface {
	Read(ctx context.Context, params JobParameter) ([]T, error)
}

// ReaderFunc adapts a function to the Reader interface.
type ReaderFunc[T any] func(ctx context.Context, params JobParameter) ([]T, error)

// Read implements Reader.
func (f ReaderFunc[T]) Read(ctx context.Context, params JobParameter) ([]T, error) {
	return f(ctx, params)
}

// Filter reduces an item sequence. Implementations are pure and total:
// they never fail, never reorder and return a subsequence of their input.
type Filter[T any] interface {
	Filter(items []T) []T
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc[T any] func(items []T) []T

// Filter implements Filter.
func (f FilterFunc[T]) Filter(items []T) []T {
	return f(items)
}

// Processor transforms one item. A failure carries the offending input in
// a *ProcessError when it is still available.
type Processor[I, O any] interface {
	Process(ctx context.Context, item I) (O, error)
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc[I, O any] func(ctx context.Context, item I) (O, error)

// Process implements Processor.
func (f ProcessorFunc[I, O]) Process(ctx context.Context, item I) (O, error) {
	return f(ctx, item)
}

// Writer persists one chunk per call. Each call is its own persistence
// unit; a failure carries back every item of the chunk in a *WriteError.
type Writer[T any] interface {
	Write(ctx context.Context, items []T) error
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc[T any] func(ctx context.Context, items []T) error

// Write implements Writer.
func (f WriterFunc[T]) Write(ctx context.Context, items []T) error {
	return f(ctx, items)
}
