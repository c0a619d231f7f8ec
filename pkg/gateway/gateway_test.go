package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("create: %w", ErrTransient)))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("card declined")))
	assert.False(t, IsTransient(nil))
}

func TestOutcomeValid(t *testing.T) {
	assert.True(t, OutcomeApproved.Valid())
	assert.True(t, OutcomePending.Valid())
	assert.False(t, Outcome("settled").Valid())
}
