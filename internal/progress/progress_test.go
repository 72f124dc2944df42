package progress

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/stepwrap/internal/daily"
	"github.com/fyrsmithlabs/stepwrap/internal/healthexport"
)

var _ daily.Observer = (*Bar)(nil)

func TestBar_ObserveAndFinish(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, "Parsing records", 2)

	for i := 1; i <= 5; i++ {
		b.Observe(i)
	}
	assert.Equal(t, 5, b.Processed())
	assert.NotEmpty(t, buf.String())

	require.NoError(t, b.Finish())
}

func TestNew_DefaultEvery(t *testing.T) {
	b := New(io.Discard, "x", 0)
	assert.Equal(t, DefaultEvery, b.every)
}

type sliceSource struct {
	recs []healthexport.Record
	i    int
}

func (s *sliceSource) Next() (healthexport.Record, error) {
	if s.i >= len(s.recs) {
		return healthexport.Record{}, io.EOF
	}
	r := s.recs[s.i]
	s.i++
	return r, nil
}

func TestBar_DrivenByAggregate(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	src := &sliceSource{}
	for i := 0; i < 7; i++ {
		src.recs = append(src.recs, healthexport.Record{Start: start, End: start.Add(time.Minute), Value: 10})
	}

	b := New(io.Discard, "Parsing records", 3)
	table, err := daily.Aggregate(context.Background(), src, b)
	require.NoError(t, err)

	assert.Equal(t, 70, table.Total())
	assert.Equal(t, 7, b.Processed())
	require.NoError(t, b.Finish())
}
