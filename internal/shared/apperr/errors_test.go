package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkippable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, true},
		{"data unavailable", fmt.Errorf("4h candles: %w", ErrDataUnavailable), true},
		{"transient", fmt.Errorf("fetch BTC/USD: %w", ErrTransient), true},
		{"persistence", ErrPersistence, true},
		{"notification", ErrNotification, true},
		{"context canceled", context.Canceled, false},
		{"deadline wrapped with transient", fmt.Errorf("%w: %w", ErrTransient, context.DeadlineExceeded), false},
		{"unclassified", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Skippable(tt.err))
		})
	}
}
