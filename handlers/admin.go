package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fatimahgelora/korpri/models"
)

const defaultPageSize = 50

// AdminRegistrations lists registrations for the admin console with optional
// payment-status and category filters, free-text search, and paging.
func (h *Handler) AdminRegistrations(c echo.Context) error {
	q := h.db.NewSelect().Model((*models.Registration)(nil)).Order("created_at DESC")

	if status := c.QueryParam("paymentStatus"); status != "" {
		q = q.Where("payment_status = ?", status)
	}
	if tiket := c.QueryParam("jenisTiket"); tiket != "" {
		q = q.Where("jenis_tiket = ?", tiket)
	}
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("(nama ILIKE ? OR nik LIKE ? OR ticket_number ILIKE ?)", pattern, pattern, pattern)
	}

	limit := defaultPageSize
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be 1-500")
		}
		limit = n
	}
	offset := 0
	if s := c.QueryParam("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
		}
		offset = n
	}

	var regs []models.Registration
	total, err := q.Limit(limit).Offset(offset).ScanAndCount(c.Request().Context(), &regs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if regs == nil {
		regs = []models.Registration{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"registrations": regs,
		"total":         total,
		"limit":         limit,
		"offset":        offset,
	})
}

// AdminRegistrationStats returns totals per payment status and ticket category.
func (h *Handler) AdminRegistrationStats(c echo.Context) error {
	type statusCount struct {
		PaymentStatus string `bun:"payment_status" json:"paymentStatus"`
		JenisTiket    string `bun:"jenis_tiket" json:"jenisTiket"`
		Count         int    `bun:"count" json:"count"`
	}

	var rows []statusCount
	err := h.db.NewSelect().Model((*models.Registration)(nil)).
		ColumnExpr("payment_status, jenis_tiket, count(*) AS count").
		GroupExpr("payment_status, jenis_tiket").
		Scan(c.Request().Context(), &rows)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rows == nil {
		rows = []statusCount{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"counts": rows})
}
