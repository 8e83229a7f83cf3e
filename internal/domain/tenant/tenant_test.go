package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	_, err := Require(context.Background())
	assert.ErrorIs(t, err, ErrMissingTenant)

	_, err = Require(WithCompany(context.Background(), ""))
	assert.ErrorIs(t, err, ErrMissingTenant)

	id, err := Require(WithCompany(context.Background(), "c-1"))
	require.NoError(t, err)
	assert.Equal(t, "c-1", id)
}

func TestNew_CarriesActor(t *testing.T) {
	ctx := New(context.Background(), "c-1", "u-1", "admin")
	id, ok := CompanyID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "c-1", id)
	assert.Equal(t, Actor{UserID: "u-1", Role: "admin"}, ActorFrom(ctx))
	assert.Equal(t, Actor{}, ActorFrom(context.Background()))
}
