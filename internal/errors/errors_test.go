package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ndsborki/loadout-bot/internal/errors"
)

func TestWrapPreservesCode(t *testing.T) {
	base := apperrors.Validation("bad input")
	wrapped := apperrors.Wrap(base, "handling event")

	assert.Equal(t, apperrors.CodeValidation, wrapped.Code)
	assert.True(t, apperrors.IsValidation(wrapped))
	assert.ErrorIs(t, wrapped, base)
}

func TestWrapUnknownError(t *testing.T) {
	wrapped := apperrors.Wrap(fmt.Errorf("boom"), "context")

	assert.Equal(t, apperrors.CodeUnknown, wrapped.Code)
	assert.Equal(t, "context: boom", wrapped.Error())
}

func TestWrapWithCode(t *testing.T) {
	err := apperrors.WrapWithCode(fmt.Errorf("unexpected EOF"), apperrors.CodeCorrupt, "store unreadable")

	assert.True(t, apperrors.IsCorrupt(err))
	assert.Equal(t, apperrors.CodeCorrupt, apperrors.GetCode(err))
}

func TestWrapNil(t *testing.T) {
	require.Nil(t, apperrors.Wrap(nil, "nothing"))
}

func TestWithMeta(t *testing.T) {
	err := apperrors.NotFoundf("build %q not found", "abc").WithMeta("build_id", "abc")

	meta := apperrors.GetMeta(err)
	require.NotNil(t, meta)
	assert.Equal(t, "abc", meta["build_id"])
}

func TestGetCodeOnPlainError(t *testing.T) {
	assert.Equal(t, apperrors.CodeUnknown, apperrors.GetCode(fmt.Errorf("plain")))
}
