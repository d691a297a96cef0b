package cmd

import (
	"testing"
	"time"

	"github.com/nepochemu/ytm/internal/config"
)

func TestCommandTimeout(t *testing.T) {
	tests := []struct {
		name string
		cc   config.ControlConfig
		want time.Duration
	}{
		{
			name: "defaults",
			want: 10*time.Second + time.Second,
		},
		{
			name: "long confirmation budget",
			cc:   config.ControlConfig{ConfirmAttempts: 30, ConfirmDelay: time.Second},
			want: 40 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := commandTimeout(tt.cc); got != tt.want {
				t.Errorf("commandTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}
