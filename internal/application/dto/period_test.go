package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRequestBounds(t *testing.T) {
	from, to, err := PeriodRequest{From: "2026-01-01", To: "2026-01-31"}.Bounds()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), to)

	_, to, err = PeriodRequest{To: "2026-01-31T12:00:00Z"}.Bounds()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC), to)

	_, _, err = PeriodRequest{From: "ayer"}.Bounds()
	assert.Error(t, err)

	_, _, err = PeriodRequest{From: "2026-02-01", To: "2026-01-01"}.Bounds()
	assert.Error(t, err)

	from, to, err = PeriodRequest{}.Bounds()
	require.NoError(t, err)
	assert.True(t, from.IsZero() && to.IsZero())
}

func TestNewListNeverNil(t *testing.T) {
	l := NewList[int](nil, 20, 0, 0)
	assert.NotNil(t, l.Items)
	assert.Equal(t, 20, l.Page.Limit)
}
