package payment

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fatimahgelora/korpri/models"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name              string
		transactionStatus string
		fraudStatus       string
		want              string
	}{
		{"capture accepted", "capture", "accept", models.PaymentCompleted},
		{"capture challenged", "capture", "challenge", models.PaymentPending},
		{"capture without fraud verdict", "capture", "", models.PaymentPending},
		{"settlement", "settlement", "", models.PaymentCompleted},
		{"cancel", "cancel", "", models.PaymentFailed},
		{"deny", "deny", "", models.PaymentFailed},
		{"expire", "expire", "", models.PaymentFailed},
		{"pending", "pending", "", models.PaymentPending},
		{"unknown status stays pending", "refund_chargeback", "", models.PaymentPending},
		{"empty status stays pending", "", "", models.PaymentPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapStatus(tt.transactionStatus, tt.fraudStatus))
		})
	}
}

func TestMapStatusIsIdempotent(t *testing.T) {
	// Replaying the same notification maps to the same status every time.
	first := MapStatus("settlement", "")
	second := MapStatus("settlement", "")
	assert.Equal(t, models.PaymentCompleted, first)
	assert.Equal(t, first, second)
}

func TestVerifySignature(t *testing.T) {
	c := NewClient("server-key", false, time.Second)

	n := Notification{
		OrderID:     "order-1",
		StatusCode:  "200",
		GrossAmount: "187500.00",
	}
	sum := sha512.Sum512([]byte("order-1" + "200" + "187500.00" + "server-key"))
	n.SignatureKey = hex.EncodeToString(sum[:])

	assert.True(t, c.VerifySignature(n))

	n.SignatureKey = "deadbeef"
	assert.False(t, c.VerifySignature(n))
}
