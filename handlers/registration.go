package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fatimahgelora/korpri/metrics"
	"github.com/fatimahgelora/korpri/models"
	"github.com/fatimahgelora/korpri/payment"
	"github.com/fatimahgelora/korpri/qrcode"
)

// registrationRequest is the submission payload from the registration form.
// The price is never taken from the client; it is resolved from the fixed
// fare table by (participant class, ticket category).
type registrationRequest struct {
	Email      string `json:"email"`
	UserType   string `json:"userType"`
	JenisTiket string `json:"jenisTiket"`
	NIK        string `json:"nik"`
	Nama       string `json:"nama"`
	NomerHP    string `json:"nomerHp"`
	Alamat     string `json:"alamat"`
	Provinsi   string `json:"provinsi"`
	Kabupaten  string `json:"kabupaten"`
	Kecamatan  string `json:"kecamatan"`
	Kelurahan  string `json:"kelurahan"`
}

func (r *registrationRequest) validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	for field, value := range map[string]string{
		"email":      r.Email,
		"userType":   r.UserType,
		"jenisTiket": r.JenisTiket,
		"nik":        strings.TrimSpace(r.NIK),
		"nama":       strings.TrimSpace(r.Nama),
		"nomerHp":    strings.TrimSpace(r.NomerHP),
		"alamat":     strings.TrimSpace(r.Alamat),
		"kabupaten":  strings.TrimSpace(r.Kabupaten),
	} {
		if value == "" {
			return fmt.Errorf("%s is required", field)
		}
	}
	if r.UserType != models.UserTypeASN && r.UserType != models.UserTypeUmum {
		return fmt.Errorf("userType must be %s or %s", models.UserTypeASN, models.UserTypeUmum)
	}
	return nil
}

type registrationResponse struct {
	Registration *models.Registration `json:"registration"`
	SnapToken    string               `json:"snapToken,omitempty"`
	RedirectURL  string               `json:"redirectUrl,omitempty"`
	QRCodeURL    string               `json:"qrCodeUrl,omitempty"`
	PaymentError string               `json:"paymentError,omitempty"`
}

// CreateRegistration validates the submission, rejects duplicate NIKs before
// touching any row, persists the registration as pending, and creates the
// hosted-payment transaction with the registration id as order reference.
//
// If the gateway call fails the pending row stays in place and the response
// carries the registration id so the client can retry via the pay endpoint;
// there is no automatic retry.
func (h *Handler) CreateRegistration(c echo.Context) error {
	var req registrationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	price, err := models.TicketPrice(req.UserType, req.JenisTiket)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()

	exists, err := h.db.NewSelect().Model((*models.Registration)(nil)).
		Where("nik = ?", strings.TrimSpace(req.NIK)).
		Exists(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if exists {
		return echo.NewHTTPError(http.StatusConflict, "NIK sudah terdaftar")
	}

	user := &models.User{
		Email:      req.Email,
		Nama:       req.Nama,
		NIK:        req.NIK,
		NomerHP:    req.NomerHP,
		Alamat:     req.Alamat,
		Provinsi:   req.Provinsi,
		Kabupaten:  req.Kabupaten,
		Kecamatan:  req.Kecamatan,
		Kelurahan:  req.Kelurahan,
		UserType:   req.UserType,
		JenisTiket: req.JenisTiket,
	}
	_, err = h.db.NewInsert().Model(user).
		On("CONFLICT (email) DO UPDATE").
		Set("nama = EXCLUDED.nama, nik = EXCLUDED.nik, nomer_hp = EXCLUDED.nomer_hp, alamat = EXCLUDED.alamat, provinsi = EXCLUDED.provinsi, kabupaten = EXCLUDED.kabupaten, kecamatan = EXCLUDED.kecamatan, kelurahan = EXCLUDED.kelurahan, user_type = EXCLUDED.user_type, jenis_tiket = EXCLUDED.jenis_tiket").
		Returning("id").
		Exec(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	now := time.Now()
	reg := &models.Registration{
		ID:            uuid.New(),
		UserID:        user.ID,
		UserType:      req.UserType,
		NIK:           strings.TrimSpace(req.NIK),
		Nama:          req.Nama,
		NomerHP:       req.NomerHP,
		Alamat:        req.Alamat,
		JenisTiket:    req.JenisTiket,
		KabKota:       req.Kabupaten,
		TicketPrice:   price,
		PaymentStatus: models.PaymentPending,
		TicketNumber:  models.NewTicketNumber(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// The NIK pre-check above handles the common case; a concurrent duplicate
	// slips past it and lands on the registrations_nik_unique constraint here.
	if _, err := h.db.NewInsert().Model(reg).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return echo.NewHTTPError(http.StatusConflict, "NIK sudah terdaftar")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RegistrationsCreated.Inc()

	snap, err := h.createTransaction(c, reg, req.Email)
	if err != nil {
		zap.L().Error("payment transaction failed, registration stays pending",
			zap.String("registration_id", reg.ID.String()), zap.Error(err))
		return c.JSON(http.StatusBadGateway, registrationResponse{
			Registration: reg,
			PaymentError: "payment transaction could not be created; retry via /api/registrations/" + reg.ID.String() + "/pay",
		})
	}

	return c.JSON(http.StatusCreated, registrationResponse{
		Registration: reg,
		SnapToken:    snap.Token,
		RedirectURL:  snap.RedirectURL,
		QRCodeURL:    h.qr.ImageURL(reg.TicketNumber, qrcode.DefaultSize),
	})
}

// RetryPayment creates a new payment transaction for an existing pending
// registration. Completed or failed registrations are not payable again.
func (h *Handler) RetryPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}

	ctx := c.Request().Context()
	reg := &models.Registration{}
	if err := h.db.NewSelect().Model(reg).Where("rg.id = ?", id).Scan(ctx); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "registration not found")
	}
	if reg.PaymentStatus != models.PaymentPending {
		return echo.NewHTTPError(http.StatusConflict, "registration is not pending payment")
	}

	var email string
	err = h.db.NewSelect().Model((*models.User)(nil)).
		Column("email").
		Where("id = ?", reg.UserID).
		Scan(ctx, &email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	snap, err := h.createTransaction(c, reg, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, registrationResponse{
		Registration: reg,
		SnapToken:    snap.Token,
		RedirectURL:  snap.RedirectURL,
	})
}

// GetRegistration returns a registration with its ticket QR image URL.
func (h *Handler) GetRegistration(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}

	reg := &models.Registration{}
	if err := h.db.NewSelect().Model(reg).Where("rg.id = ?", id).Scan(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "registration not found")
	}

	return c.JSON(http.StatusOK, registrationResponse{
		Registration: reg,
		QRCodeURL:    h.qr.ImageURL(reg.TicketNumber, qrcode.DefaultSize),
	})
}

// TicketQR redirects to the rendered QR image for a registration's ticket number.
func (h *Handler) TicketQR(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}

	var ticketNumber string
	err = h.db.NewSelect().Model((*models.Registration)(nil)).
		Column("ticket_number").
		Where("id = ?", id).
		Scan(c.Request().Context(), &ticketNumber)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "registration not found")
	}

	size := qrcode.DefaultSize
	if s := c.QueryParam("size"); s != "" {
		if _, err := fmt.Sscanf(s, "%d", &size); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid size param")
		}
	}
	return c.Redirect(http.StatusFound, h.qr.ImageURL(ticketNumber, size))
}

// isUniqueViolation reports whether err carries Postgres SQLSTATE 23505
// (unique_violation), as surfaced by pgdriver's error fields.
func isUniqueViolation(err error) bool {
	var pg interface{ Field(byte) string }
	if !errors.As(err, &pg) {
		return false
	}
	return pg.Field('C') == "23505"
}

func (h *Handler) createTransaction(c echo.Context, reg *models.Registration, email string) (*payment.SnapResponse, error) {
	return h.payments.CreateTransaction(c.Request().Context(), payment.TransactionRequest{
		TransactionDetails: payment.TransactionDetails{
			OrderID:     reg.ID.String(),
			GrossAmount: reg.TicketPrice,
		},
		CustomerDetails: payment.CustomerDetails{
			FirstName: reg.Nama,
			Email:     email,
			Phone:     reg.NomerHP,
		},
		ItemDetails: []payment.ItemDetail{{
			ID:       reg.JenisTiket,
			Price:    reg.TicketPrice,
			Quantity: 1,
			Name:     "KORPRI RUN 2025 - " + models.TicketTypeName(reg.JenisTiket),
		}},
	})
}
