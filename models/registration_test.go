package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketPrice(t *testing.T) {
	tests := []struct {
		userType   string
		jenisTiket string
		want       int
	}{
		{UserTypeASN, TicketFunRun, 90000},
		{UserTypeUmum, TicketFunRun, 112500},
		{UserTypeASN, TicketHalfMarathon, 150000},
		{UserTypeUmum, TicketHalfMarathon, 187500},
		{UserTypeASN, TicketFullMarathon, 210000},
		{UserTypeUmum, TicketFullMarathon, 262500},
	}
	for _, tt := range tests {
		t.Run(tt.userType+"/"+tt.jenisTiket, func(t *testing.T) {
			got, err := TicketPrice(tt.userType, tt.jenisTiket)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTicketPriceRejectsUnknownCombos(t *testing.T) {
	_, err := TicketPrice(UserTypeASN, "ultra-marathon")
	assert.Error(t, err)

	_, err = TicketPrice("VIP", TicketFunRun)
	assert.Error(t, err)

	_, err = TicketPrice("", "")
	assert.Error(t, err)
}

func TestTicketTypeName(t *testing.T) {
	assert.Equal(t, "Fun Run (5K)", TicketTypeName(TicketFunRun))
	assert.Equal(t, "Half Marathon (21K)", TicketTypeName(TicketHalfMarathon))
	assert.Equal(t, "Full Marathon (42K)", TicketTypeName(TicketFullMarathon))
	// Unknown ids pass through unchanged.
	assert.Equal(t, "mystery", TicketTypeName("mystery"))
}

func TestNewTicketNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		n := NewTicketNumber()
		require.Len(t, n, len(ticketNumberPrefix)+6)
		require.True(t, strings.HasPrefix(n, ticketNumberPrefix))
		for _, r := range n[len(ticketNumberPrefix):] {
			assert.Contains(t, ticketNumberAlphabet, string(r))
		}
		seen[n] = true
	}
	// 100 draws from a 32^6 space colliding would point at a broken generator.
	assert.Greater(t, len(seen), 95)
}
