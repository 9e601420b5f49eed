// Package payment is a thin client for the Midtrans Snap hosted-payment API.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	sandboxSnapURL    = "https://app.sandbox.midtrans.com/snap/v1/transactions"
	productionSnapURL = "https://app.midtrans.com/snap/v1/transactions"
)

// Client creates hosted-payment-page transactions.
type Client struct {
	serverKey string
	apiURL    string
	http      *http.Client
}

// NewClient builds a Snap client. The timeout bounds every create-transaction
// call; Midtrans itself enforces none.
func NewClient(serverKey string, production bool, timeout time.Duration) *Client {
	apiURL := sandboxSnapURL
	if production {
		apiURL = productionSnapURL
	}
	return &Client{
		serverKey: serverKey,
		apiURL:    apiURL,
		http:      &http.Client{Timeout: timeout},
	}
}

// TransactionDetails carries the order reference and total charge.
type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int    `json:"gross_amount"`
}

// CustomerDetails identifies the paying participant.
type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ItemDetail is a single line item on the hosted payment page.
type ItemDetail struct {
	ID       string `json:"id"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
}

// TransactionRequest is the Snap create-transaction payload.
type TransactionRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
	ItemDetails        []ItemDetail       `json:"item_details"`
}

// SnapResponse holds the opaque token used to launch the hosted payment UI.
type SnapResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// CreateTransaction registers the order with Midtrans and returns the Snap token.
func (c *Client) CreateTransaction(ctx context.Context, tr TransactionRequest) (*SnapResponse, error) {
	body, err := json.Marshal(tr)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.serverKey+":")))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("midtrans request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("midtrans returned %d: %s", resp.StatusCode, msg)
	}

	var snap SnapResponse
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snap response: %w", err)
	}
	if snap.Token == "" {
		return nil, fmt.Errorf("midtrans response missing token")
	}
	return &snap, nil
}
