package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/app-subscriptions/internal/apperr"
)

func TestError_UnwrapsToKind(t *testing.T) {
	err := fmt.Errorf("apps.Create: %w", apperr.Newf(apperr.ErrConflict, "%s already exists under this user.", "facebook"))

	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NotErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "facebook already exists under this user.", apperr.Message(err, "internal error"))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "sentinel", err: fmt.Errorf("op: %w", apperr.ErrNotFound), want: "not found"},
		{name: "typed", err: apperr.New(apperr.ErrPermission, "Permission denied."), want: "Permission denied."},
		{name: "configuration is hidden", err: apperr.ErrConfiguration, want: "internal error"},
		{name: "unknown", err: errors.New("db down"), want: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Message(tt.err, "internal error"))
		})
	}
}
