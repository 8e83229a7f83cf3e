package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/telar-erp/internal/domain"
)

type light string

var lights = Transitions[light]{
	"green":  {"yellow"},
	"yellow": {"red"},
	"red":    {"green"},
	"off":    {},
}

func TestValidate(t *testing.T) {
	assert.NoError(t, lights.Validate("green", "yellow"))

	err := lights.Validate("green", "red")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	var te *TransitionError
	assert.True(t, errors.As(err, &te))
	assert.Equal(t, "green", te.From)

	assert.ErrorIs(t, lights.Validate("green", "blue"), domain.ErrInvalidInput)
}

func TestNextIsACopy(t *testing.T) {
	next := lights.Next("green")
	next[0] = "red"
	assert.Equal(t, []light{"yellow"}, lights.Next("green"))
}

func TestTerminal(t *testing.T) {
	assert.True(t, lights.Terminal("off"))
	assert.False(t, lights.Terminal("red"))
	assert.False(t, lights.Terminal("blue"))
}
