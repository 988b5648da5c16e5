package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	plain := New(ErrKindNotFound, "object missing")
	assert.Equal(t, "[not_found] object missing", plain.Error())

	wrapped := Wrap(ErrKindConnectionFailed, "put failed", errors.New("dial tcp: refused"))
	assert.Equal(t, "[connection_failed] put failed: dial tcp: refused", wrapped.Error())
}

func TestKindOf_TraversesChain(t *testing.T) {
	base := New(ErrKindPermissionDenied, "acl rejected")
	outer := fmt.Errorf("copying a.txt: %w", base)

	assert.Equal(t, ErrKindPermissionDenied, KindOf(outer))
	assert.True(t, IsPermissionDenied(outer))
	assert.False(t, IsNotFound(outer))
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		kind ErrKind
		pred func(error) bool
	}{
		{"not found", ErrKindNotFound, IsNotFound},
		{"timeout", ErrKindTimeout, IsTimeout},
		{"connection", ErrKindConnectionFailed, IsConnectionFailed},
		{"operation", ErrKindOperationFailed, IsOperationFailed},
		{"invalid input", ErrKindInvalidInput, IsInvalidInput},
		{"permission", ErrKindPermissionDenied, IsPermissionDenied},
		{"not supported", ErrKindNotSupported, IsNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.pred(New(tt.kind, "x")))
			assert.False(t, tt.pred(New(ErrKindUnknown, "x")))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(New(ErrKindConnectionFailed, "x")))
	assert.True(t, IsTransient(New(ErrKindTimeout, "x")))
	assert.False(t, IsTransient(New(ErrKindNotFound, "x")))
	assert.False(t, IsTransient(New(ErrKindOperationFailed, "x")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrKindOperationFailed, "delete failed", cause)
	assert.ErrorIs(t, err, cause)
}
