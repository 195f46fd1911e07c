package redis

import (
	"context"
	"testing"
)

func TestConfig_Addr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cfg  Config
		want string
	}{
		{Config{Host: "localhost", Port: "6380"}, "localhost:6380"},
		{Config{Host: "cache"}, "cache:6379"},
		{Config{Host: "::1", Port: "6379"}, "[::1]:6379"},
	}
	for _, tt := range tests {
		if got := tt.cfg.Addr(); got != tt.want {
			t.Errorf("Addr() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	if (Config{}).Enabled() {
		t.Error("empty host should disable the cache")
	}
	if !(Config{Host: "localhost"}).Enabled() {
		t.Error("configured host should enable the cache")
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	// port 1 is reserved and refuses connections
	_, err := NewRedisClient(context.Background(), Config{Host: "127.0.0.1", Port: "1"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
