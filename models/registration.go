package models

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Participant classes. ASN (civil servants) pay a reduced fare.
const (
	UserTypeASN  = "ASN"
	UserTypeUmum = "Umum"
)

// Ticket categories, one per race distance.
const (
	TicketFunRun       = "fun-run"
	TicketHalfMarathon = "half-marathon"
	TicketFullMarathon = "full-marathon"
)

// Payment statuses as stored on a registration.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Registration is a single paid (or pending) race entry.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:rg"`

	ID            uuid.UUID `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `bun:"user_id,notnull,type:uuid" json:"userID"`
	UserType      string    `bun:"user_type,notnull" json:"userType"`
	NIK           string    `bun:"nik,notnull,unique" json:"nik"`
	Nama          string    `bun:"nama,notnull" json:"nama"`
	NomerHP       string    `bun:"nomer_hp,notnull" json:"nomerHp"`
	Alamat        string    `bun:"alamat,notnull" json:"alamat"`
	JenisTiket    string    `bun:"jenis_tiket,notnull" json:"jenisTiket"`
	KabKota       string    `bun:"kab_kota,notnull" json:"kabKota"`
	TicketPrice   int       `bun:"ticket_price,notnull" json:"ticketPrice"`
	PaymentStatus string    `bun:"payment_status,notnull,default:'pending'" json:"paymentStatus"`
	TicketNumber  string    `bun:"ticket_number,notnull,unique" json:"ticketNumber"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// priceTable is fixed per event edition and keyed by (ticket category, participant class).
// Prices are not user-editable; the server always resolves them from here.
var priceTable = map[string]map[string]int{
	TicketFunRun:       {UserTypeASN: 90000, UserTypeUmum: 112500},
	TicketHalfMarathon: {UserTypeASN: 150000, UserTypeUmum: 187500},
	TicketFullMarathon: {UserTypeASN: 210000, UserTypeUmum: 262500},
}

// TicketPrice resolves the fare for a participant class and ticket category.
func TicketPrice(userType, jenisTiket string) (int, error) {
	byClass, ok := priceTable[jenisTiket]
	if !ok {
		return 0, fmt.Errorf("unknown ticket category %q", jenisTiket)
	}
	price, ok := byClass[userType]
	if !ok {
		return 0, fmt.Errorf("unknown participant class %q", userType)
	}
	return price, nil
}

// TicketTypeName returns the display name for a ticket category id.
func TicketTypeName(jenisTiket string) string {
	switch jenisTiket {
	case TicketFunRun:
		return "Fun Run (5K)"
	case TicketHalfMarathon:
		return "Half Marathon (21K)"
	case TicketFullMarathon:
		return "Full Marathon (42K)"
	}
	return jenisTiket
}

// TicketCategories lists all valid ticket category ids.
func TicketCategories() []string {
	return []string{TicketFunRun, TicketHalfMarathon, TicketFullMarathon}
}

// ticketNumberPrefix identifies the event edition on printed tickets.
const ticketNumberPrefix = "KR2025"

// ticketNumberAlphabet avoids 0/O and 1/I so numbers survive being read aloud
// at a checkpoint.
const ticketNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewTicketNumber generates a human-readable ticket number such as KR2025XK4F7P.
func NewTicketNumber() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(err)
	}
	for i := range b {
		b[i] = ticketNumberAlphabet[int(b[i])%len(ticketNumberAlphabet)]
	}
	return ticketNumberPrefix + string(b)
}
