package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: 20}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: 200, Offset: 0}, Page{Limit: 1000, Offset: -3}.Normalize())
	assert.Equal(t, Page{Limit: 5, Offset: 10}, Page{Limit: 5, Offset: 10}.Normalize())
}

func TestPeriodContains(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	p := Period{From: from, To: to}
	assert.True(t, p.Contains(from))
	assert.True(t, p.Contains(to.Add(-time.Second)))
	assert.False(t, p.Contains(to))
	assert.False(t, p.Contains(from.Add(-time.Second)))
	assert.True(t, Period{}.Contains(time.Now()))
}
