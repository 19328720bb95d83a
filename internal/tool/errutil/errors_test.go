package errutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }
func (customErr) Kind() Kind    { return KindNotADirectory }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"classified", New(KindAmbiguousEdit, "found %d times", 2), KindAmbiguousEdit},
		{"wrapped classified", fmt.Errorf("edit: %w", New(KindPathDenied, "denied")), KindPathDenied},
		{"custom type", fmt.Errorf("list: %w", customErr{}), KindNotADirectory},
		{"cancelled", fmt.Errorf("run: %w", context.Canceled), KindCancelled},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	err := Wrap(KindIOFailure, os.ErrPermission, "read %s", "/x")

	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Equal(t, "read /x: permission denied", err.Error())
	assert.Equal(t, KindIOFailure, KindOf(err))
}
