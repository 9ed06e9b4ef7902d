package batch

import "context"

// FilterChain applies an ordered list of filters, feeding each filter's
// output into the next. With no filters it is the identity. Order of
// addition is order of application; filters do not commute in general.
type FilterChain[T any] struct {
	filters []Filter[T]
}

// NewFilterChain creates a FilterChain from the given filters, in order.
func NewFilterChain[T any](filters ...Filter[T]) *FilterChain[T] {
	return &FilterChain[T]{filters: filters}
}

// Append adds a filter to the end of the chain and returns the chain.
func (c *FilterChain[T]) Append(filter Filter[T]) *FilterChain[T] {
	c.filters = append(c.filters, filter)
	return c
}

// Len returns the number of filters in the chain.
func (c *FilterChain[T]) Len() int {
	return len(c.filters)
}

// Filter folds the chain over the items, left to right.
func (c *FilterChain[T]) Filter(items []T) []T {
	for _, f := range c.filters {
		items = f.Filter(items)
	}
	return items
}

// ProcessorChain composes exactly two processors, first then second.
// Longer chains are built by nesting. A failure from the first processor
// propagates unchanged; a failure from the second is repackaged without a
// recoverable input item, because the original input was consumed by the
// first processor.
type ProcessorChain[I, M, O any] struct {
	first  Processor[I, M]
	second Processor[M, O]
}

// NewProcessorChain composes two processors into one.
func NewProcessorChain[I, M, O any](first Processor[I, M], second Processor[M, O]) *ProcessorChain[I, M, O] {
	return &ProcessorChain[I, M, O]{first: first, second: second}
}

// Process implements Processor.
func (c *ProcessorChain[I, M, O]) Process(ctx context.Context, item I) (O, error) {
	var zero O

	mid, err := c.first.Process(ctx, item)
	if err != nil {
		return zero, err
	}

	out, err := c.second.Process(ctx, mid)
	if err != nil {
		return zero, NewProcessErrorNoItem[I]("chained processor failed", err)
	}
	return out, nil
}

// Identity is a Processor whose output equals its input. Used when a
// pipeline needs no transformation but the assembly requires a processor.
type Identity[T any] struct{}

// NewIdentity creates an identity processor.
func NewIdentity[T any]() Identity[T] {
	return Identity[T]{}
}

// Process implements Processor.
func (Identity[T]) Process(_ context.Context, item T) (T, error) {
	return item, nil
}
