package raceops

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fatimahgelora/korpri/models"
)

// ErrNotFound is returned by store lookups when no row matches.
var ErrNotFound = errors.New("raceops: not found")

// Stats are the race-day aggregate counts, recomputed on demand.
type Stats struct {
	TotalRegistered      int `json:"totalRegistered"`
	TotalStarted         int `json:"totalStarted"`
	TotalFinished        int `json:"totalFinished"`
	FunRunFinished       int `json:"funRunFinished"`
	HalfMarathonFinished int `json:"halfMarathonFinished"`
	FullMarathonFinished int `json:"fullMarathonFinished"`
}

// Store is the persistence surface for race-day operations. The service calls
// every method inside InTx; the Postgres implementation maps InTx to a
// serializable transaction so concurrent stations cannot issue duplicate bib
// numbers or conflicting position ranks.
type Store interface {
	// InTx runs fn against a transactional view of the store.
	InTx(ctx context.Context, fn func(Store) error) error

	GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	RegistrationByTicket(ctx context.Context, ticketNumber string) (*models.Registration, error)

	BibByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.RaceBib, error)
	BibByNumber(ctx context.Context, bibNumber int) (*models.RaceBib, error)
	MaxBibNumber(ctx context.Context) (int, error)
	CreateBib(ctx context.Context, bib *models.RaceBib) error
	UpdateBib(ctx context.Context, bib *models.RaceBib) error

	ResultByBib(ctx context.Context, bibNumber int) (*models.RaceResult, error)
	CreateResult(ctx context.Context, res *models.RaceResult) error
	UpdateResult(ctx context.Context, res *models.RaceResult) error

	// CountEarlierFinishers counts finished results ranked ahead of a finish at
	// t with the given bib number. Ties on finish time break by bib ascending.
	CountEarlierFinishers(ctx context.Context, t time.Time, bibNumber int) (int, error)
	// CountEarlierCategoryFinishers is CountEarlierFinishers restricted to one
	// ticket category.
	CountEarlierCategoryFinishers(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) (int, error)

	// ShiftLaterTies moves finishers already recorded at t with a bib number
	// above bibNumber down one overall rank, keeping positions unique when a
	// lower bib lands on an occupied timestamp.
	ShiftLaterTies(ctx context.Context, t time.Time, bibNumber int) error
	// ShiftLaterCategoryTies is ShiftLaterTies for category ranks within one
	// ticket category.
	ShiftLaterCategoryTies(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) error

	Stats(ctx context.Context) (*Stats, error)
}
