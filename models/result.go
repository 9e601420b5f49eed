package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Race result states. dnf/dsq are administrative overrides, never reached by
// the normal start/finish flow.
const (
	ResultRegistered = "registered"
	ResultStarted    = "started"
	ResultFinished   = "finished"
	ResultDNF        = "dnf"
	ResultDSQ        = "dsq"
)

// RaceResult records timing and ranking for one bib.
type RaceResult struct {
	bun.BaseModel `bun:"table:race_results,alias:rr"`

	ID               uuid.UUID     `bun:"id,pk,nullzero,type:uuid,default:gen_random_uuid()" json:"id"`
	RegistrationID   uuid.UUID     `bun:"registration_id,notnull,type:uuid" json:"registrationID"`
	BibNumber        int           `bun:"bib_number,notnull,unique" json:"bibNumber"`
	StartTime        *time.Time    `bun:"start_time" json:"startTime,omitempty"`
	FinishTime       *time.Time    `bun:"finish_time" json:"finishTime,omitempty"`
	RaceDuration     time.Duration `bun:"race_duration,nullzero" json:"raceDuration,omitempty"`
	Position         int           `bun:"position,nullzero" json:"position,omitempty"`
	CategoryPosition int           `bun:"category_position,nullzero" json:"categoryPosition,omitempty"`
	Status           string        `bun:"status,notnull,default:'registered'" json:"status"`
	CreatedAt        time.Time     `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt        time.Time     `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`

	Registration *Registration `bun:"rel:belongs-to,join:registration_id=id" json:"-"`
}

// FormatDuration renders a race duration as H:MM:SS for tickets and result boards.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
