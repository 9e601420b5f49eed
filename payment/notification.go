package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"

	"github.com/fatimahgelora/korpri/models"
)

// Notification is the asynchronous status callback Midtrans posts to the webhook.
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	TransactionTime   string `json:"transaction_time"`
	SignatureKey      string `json:"signature_key"`
}

// MapStatus translates the gateway's transaction-status vocabulary into the
// three-state domain model. Unrecognized statuses map to pending: a payment
// is never silently marked completed.
func MapStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return models.PaymentCompleted
		}
		return models.PaymentPending
	case "settlement":
		return models.PaymentCompleted
	case "cancel", "deny", "expire":
		return models.PaymentFailed
	case "pending":
		return models.PaymentPending
	default:
		return models.PaymentPending
	}
}

// VerifySignature checks the notification's SHA-512 signature:
// sha512(order_id + status_code + gross_amount + serverKey).
func (c *Client) VerifySignature(n Notification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + c.serverKey))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}
