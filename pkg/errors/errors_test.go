package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("compartment", nil)
	assert.Equal(t, "compartment not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsBadRequest(err))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := BadRequest("compartment_number must be 1, 2, or 3", nil)
	wrapped := fmt.Errorf("handling request: %w", inner)

	assert.True(t, IsBadRequest(wrapped))
	assert.False(t, IsNotFound(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "internal server error")
}

func TestPredicatesOnPlainErrors(t *testing.T) {
	assert.False(t, IsNotFound(stderrors.New("boom")))
	assert.False(t, IsBadRequest(nil))
}
