package books

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwhale/bookbatch/internal/batch"
)

func TestPublisherIDs(t *testing.T) {
	ids, err := PublisherIDs(batch.JobParameter{ParamPublisher: "1,7, 42"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 7, 42}, ids)
}

func TestPublisherIDs_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params batch.JobParameter
	}{
		{"missing", batch.JobParameter{}},
		{"blank", batch.JobParameter{ParamPublisher: "  "}},
		{"not a number", batch.JobParameter{ParamPublisher: "1,seven"}},
		{"negative", batch.JobParameter{ParamPublisher: "-3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PublisherIDs(tt.params)
			var re *batch.ReadError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, batch.ReadInvalidArguments, re.Kind)
		})
	}
}

func TestISBNs(t *testing.T) {
	isbns, err := ISBNs(batch.JobParameter{ParamISBN: "9791100000001, 9791100000002"})
	require.NoError(t, err)
	assert.Equal(t, []string{"9791100000001", "9791100000002"}, isbns)
}

func TestISBNs_Absent(t *testing.T) {
	isbns, err := ISBNs(batch.JobParameter{})
	require.NoError(t, err)
	assert.Nil(t, isbns)
}

func TestISBNs_Blank(t *testing.T) {
	_, err := ISBNs(batch.JobParameter{ParamISBN: " , "})
	var re *batch.ReadError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, batch.ReadInvalidArguments, re.Kind)
}

func TestWindow(t *testing.T) {
	from, to, err := Window(batch.JobParameter{
		ParamFrom: "2026-01-01",
		ParamTo:   "2026-03-31",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestWindow_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params batch.JobParameter
	}{
		{"missing from", batch.JobParameter{ParamTo: "2026-03-31"}},
		{"missing to", batch.JobParameter{ParamFrom: "2026-01-01"}},
		{"bad format", batch.JobParameter{ParamFrom: "20260101", ParamTo: "2026-03-31"}},
		{"inverted", batch.JobParameter{ParamFrom: "2026-03-31", ParamTo: "2026-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Window(tt.params)
			var re *batch.ReadError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, batch.ReadInvalidArguments, re.Kind)
		})
	}
}
