// Package prompt provides the language-model interface used by series
// classification: book title normalization and text embedding. Two
// implementations exist, an HTTP bridge sidecar and the OpenAI API.
package prompt

import (
	"context"
	"fmt"
)

// SaleInfo carries one sales site's view of a book, given to the
// normalizer as context. Short site codes are preferred to keep prompts
// small.
type SaleInfo struct {
	Site  string `json:"site"`
	Title string `json:"title"`

	Price *int `json:"price,omitempty"`

	// Desc is the publisher-provided description, when available.
	Desc string `json:"desc,omitempty"`

	// Series lists titles of other books believed to share a series.
	Series []string `json:"series,omitempty"`
}

// NormalizeRequest asks for a title stripped of volume numbers, edition
// markers and other noise.
type NormalizeRequest struct {
	Title string `json:"title"`

	// SaleInfo gives per-site context that improves normalization.
	SaleInfo []SaleInfo `json:"sale_info,omitempty"`
}

// Normalized is the normalization result.
type Normalized struct {
	// Original is the input title.
	Original string `json:"original"`

	// Title is the normalized title.
	Title string `json:"title"`

	// Reason describes what was removed.
	Reason string `json:"reason"`
}

// Prompt is the language-model interface for series classification.
type Prompt interface {
	// Normalize strips noise from a book title. Implementations return
	// the input unchanged in Original.
	Normalize(ctx context.Context, req *NormalizeRequest) (*Normalized, error)

	// Embed converts texts into embedding vectors, one per input, in
	// input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ConnectError reports a failure to reach the language model backend.
type ConnectError struct {
	Backend string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("prompt: connecting to %s: %v", e.Backend, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// DecodeError reports an unparseable backend response.
type DecodeError struct {
	Backend string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("prompt: decoding %s response: %v", e.Backend, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
