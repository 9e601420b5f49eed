package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fatimahgelora/korpri/metrics"
	"github.com/fatimahgelora/korpri/models"
	"github.com/fatimahgelora/korpri/payment"
)

// webhookResponse is the acknowledgement body Midtrans expects.
type webhookResponse struct {
	Message string `json:"message"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// PaymentWebhook reconciles a Midtrans notification into the registration's
// payment status. The handler is idempotent: replaying a notification
// overwrites the status field with the same value and nothing else. A
// notification whose order reference matches no registration is still
// acknowledged with 200 so the gateway does not retry forever; database
// failures answer 500 and leave redelivery to the gateway's retry policy.
func (h *Handler) PaymentWebhook(c echo.Context) error {
	var n payment.Notification
	if err := c.Bind(&n); err != nil {
		zap.L().Warn("malformed payment notification", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "malformed notification payload")
	}
	orderID, err := uuid.Parse(n.OrderID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}

	if h.verifySig && !h.payments.VerifySignature(n) {
		zap.L().Warn("payment notification signature mismatch", zap.String("order_id", n.OrderID))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid signature")
	}

	status := payment.MapStatus(n.TransactionStatus, n.FraudStatus)
	metrics.PaymentWebhooks.WithLabelValues(status).Inc()

	res, err := h.db.NewUpdate().Model((*models.Registration)(nil)).
		Set("payment_status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", orderID).
		Exec(c.Request().Context())
	if err != nil {
		zap.L().Error("webhook update failed", zap.String("order_id", n.OrderID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update registration")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		zap.L().Warn("payment notification for unknown order", zap.String("order_id", n.OrderID))
	}

	zap.L().Info("payment notification processed",
		zap.String("order_id", n.OrderID),
		zap.String("transaction_status", n.TransactionStatus),
		zap.String("status", status))

	return c.JSON(http.StatusOK, webhookResponse{
		Message: "Webhook processed successfully",
		OrderID: n.OrderID,
		Status:  status,
	})
}
