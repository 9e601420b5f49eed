package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Bib assignment states. A bib is assigned to exactly one registration and is
// never reassigned once collected.
const (
	BibAvailable = "available"
	BibAssigned  = "assigned"
	BibCollected = "collected"
)

// RaceBib links a registration to a unique integer bib number.
type RaceBib struct {
	bun.BaseModel `bun:"table:race_bibs,alias:rb"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()" json:"id"`
	RegistrationID uuid.UUID  `bun:"registration_id,notnull,type:uuid,unique" json:"registrationID"`
	BibNumber      int        `bun:"bib_number,notnull,unique" json:"bibNumber"`
	Status         string     `bun:"status,notnull,default:'available'" json:"status"`
	AssignedAt     *time.Time `bun:"assigned_at" json:"assignedAt,omitempty"`
	CollectedAt    *time.Time `bun:"collected_at" json:"collectedAt,omitempty"`
	StaffID        *uuid.UUID `bun:"staff_id,type:uuid" json:"staffID,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`

	Registration *Registration `bun:"rel:belongs-to,join:registration_id=id" json:"-"`
}
