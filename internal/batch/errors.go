package batch

import "fmt"

// ReadErrorKind classifies a read failure.
type ReadErrorKind string

const (
	// ReadEmptyData indicates the source produced no usable data.
	ReadEmptyData ReadErrorKind = "empty_data"
	// ReadInvalidArguments indicates the run parameters could not be parsed.
	ReadInvalidArguments ReadErrorKind = "invalid_arguments"
	// ReadUnknown covers any other read failure.
	ReadUnknown ReadErrorKind = "unknown"
)

// ReadError is a failed Reader call. It aborts the run before any item is
// processed.
type ReadError struct {
	Kind    ReadErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("read failed (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("read failed (%s): %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// NewEmptyDataError creates a ReadError for a source without data.
func NewEmptyDataError(message string) *ReadError {
	return &ReadError{Kind: ReadEmptyData, Message: message}
}

// NewInvalidArgumentsError creates a ReadError for unparseable parameters.
func NewInvalidArgumentsError(message string) *ReadError {
	return &ReadError{Kind: ReadInvalidArguments, Message: message}
}

// NewReadError wraps an arbitrary failure as an unknown-kind ReadError.
func NewReadError(message string, err error) *ReadError {
	return &ReadError{Kind: ReadUnknown, Message: message, Err: err}
}

// ProcessError is a failed Processor call. Item is nil when the failure
// happened after the original input was already consumed (mid-chain).
type ProcessError[I any] struct {
	Item    *I
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProcessError[I]) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("process failed: %s: %v", e.Message, e.Err)
	}
	return "process failed: " + e.Message
}

// Unwrap returns the underlying error.
func (e *ProcessError[I]) Unwrap() error {
	return e.Err
}

// HasItem reports whether the offending input is still attached.
func (e *ProcessError[I]) HasItem() bool {
	return e.Item != nil
}

// NewProcessError creates a ProcessError carrying the offending input.
func NewProcessError[I any](item I, message string, err error) *ProcessError[I] {
	return &ProcessError[I]{Item: &item, Message: message, Err: err}
}

// NewProcessErrorNoItem creates a ProcessError whose input is no longer
// recoverable.
func NewProcessErrorNoItem[I any](message string, err error) *ProcessError[I] {
	return &ProcessError[I]{Message: message, Err: err}
}

// WriteError is a failed Writer call. Items holds every item of the failed
// chunk so a caller can log, alert or requeue exactly what was lost.
type WriteError[T any] struct {
	Items   []T
	Message string
	Err     error
}

// Error implements the error interface.
func (e *WriteError[T]) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("write failed (%d items): %s: %v", len(e.Items), e.Message, e.Err)
	}
	return fmt.Sprintf("write failed (%d items): %s", len(e.Items), e.Message)
}

// Unwrap returns the underlying error.
func (e *WriteError[T]) Unwrap() error {
	return e.Err
}

// NewWriteError creates a WriteError carrying the failed chunk.
func NewWriteError[T any](items []T, message string, err error) *WriteError[T] {
	return &WriteError[T]{Items: items, Message: message, Err: err}
}

// BuildError reports an incomplete or invalid job assembly.
type BuildError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("job build error for %s: %s", e.Field, e.Message)
}

// NewBuildError creates a new BuildError.
func NewBuildError(field, message string) *BuildError {
	return &BuildError{Field: field, Message: message}
}

// StageError wraps a stage failure with the stage's name, so a terminated
// run identifies where it died.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}
