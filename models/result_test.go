package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Minute, "0:42:00"},
		{time.Hour + 5*time.Minute + 9*time.Second, "1:05:09"},
		{3*time.Hour + 59*time.Second, "3:00:59"},
		{1500 * time.Millisecond, "0:00:02"}, // rounds to the nearest second
		{0, "0:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.d))
	}
}
