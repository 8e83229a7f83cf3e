package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/telar-erp/internal/application/ports"
	"github.com/jhoicas/telar-erp/internal/infrastructure/cache"
	"github.com/jhoicas/telar-erp/pkg/config"
	"github.com/jhoicas/telar-erp/pkg/logger"
)

func TestNoop_SiempreMiss(t *testing.T) {
	c := cache.Noop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "telar:c-1:dashboard", map[string]int{"a": 1}, time.Minute))

	var out map[string]int
	assert.ErrorIs(t, c.Get(ctx, "telar:c-1:dashboard", &out), ports.ErrCacheMiss)
	assert.Nil(t, out)
	assert.NoError(t, c.DeletePrefix(ctx, "telar:c-1:"))
}

func TestNew_DriverNoop(t *testing.T) {
	c, closeFn, err := cache.New(context.Background(), config.CacheConfig{Driver: "noop"}, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, cache.Noop{}, c)
	assert.NoError(t, closeFn())
}

func TestNew_DriverDesconocido(t *testing.T) {
	_, _, err := cache.New(context.Background(), config.CacheConfig{Driver: "memcached"}, logger.Nop())
	assert.Error(t, err)
}
