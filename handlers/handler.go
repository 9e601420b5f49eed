package handlers

import (
	"github.com/uptrace/bun"

	"github.com/fatimahgelora/korpri/address"
	"github.com/fatimahgelora/korpri/payment"
	"github.com/fatimahgelora/korpri/qrcode"
	"github.com/fatimahgelora/korpri/raceops"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db        *bun.DB
	JWTKey    []byte
	payments  *payment.Client
	addresses *address.Client
	qr        *qrcode.URLBuilder
	race      *raceops.Service
	verifySig bool
}

// New creates a Handler wired to the database, signing key, and external
// service adapters.
func New(db *bun.DB, jwtKey []byte, payments *payment.Client, addresses *address.Client, qr *qrcode.URLBuilder, race *raceops.Service, verifySig bool) *Handler {
	return &Handler{
		db:        db,
		JWTKey:    jwtKey,
		payments:  payments,
		addresses: addresses,
		qr:        qr,
		race:      race,
		verifySig: verifySig,
	}
}
