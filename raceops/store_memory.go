package raceops

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fatimahgelora/korpri/models"
)

// MemoryStore is an in-memory Store used by tests. InTx holds the store lock
// for the whole operation, which mirrors the serializable-transaction
// guarantee of the Postgres store; the data accessors themselves do not lock
// and must be reached through InTx (Stats is the exception and locks itself).
type MemoryStore struct {
	mu      sync.Mutex
	regs    map[uuid.UUID]*models.Registration
	bibs    map[uuid.UUID]*models.RaceBib // by registration id
	results map[int]*models.RaceResult    // by bib number
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		regs:    make(map[uuid.UUID]*models.Registration),
		bibs:    make(map[uuid.UUID]*models.RaceBib),
		results: make(map[int]*models.RaceResult),
	}
}

// AddRegistration seeds a registration row.
func (m *MemoryStore) AddRegistration(reg *models.Registration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *reg
	m.regs[reg.ID] = &cp
}

func (m *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn((*memoryTx)(m))
}

// memoryTx exposes the unlocked accessors inside InTx.
type memoryTx MemoryStore

func (m *memoryTx) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *memoryTx) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, ok := m.regs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *reg
	return &cp, nil
}

func (m *memoryTx) RegistrationByTicket(ctx context.Context, ticketNumber string) (*models.Registration, error) {
	for _, reg := range m.regs {
		if reg.TicketNumber == ticketNumber {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryTx) BibByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.RaceBib, error) {
	bib, ok := m.bibs[registrationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *bib
	return &cp, nil
}

func (m *memoryTx) BibByNumber(ctx context.Context, bibNumber int) (*models.RaceBib, error) {
	for _, bib := range m.bibs {
		if bib.BibNumber == bibNumber {
			cp := *bib
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryTx) MaxBibNumber(ctx context.Context) (int, error) {
	max := 0
	for _, bib := range m.bibs {
		if bib.BibNumber > max {
			max = bib.BibNumber
		}
	}
	return max, nil
}

func (m *memoryTx) CreateBib(ctx context.Context, bib *models.RaceBib) error {
	cp := *bib
	m.bibs[bib.RegistrationID] = &cp
	return nil
}

func (m *memoryTx) UpdateBib(ctx context.Context, bib *models.RaceBib) error {
	cp := *bib
	m.bibs[bib.RegistrationID] = &cp
	return nil
}

func (m *memoryTx) ResultByBib(ctx context.Context, bibNumber int) (*models.RaceResult, error) {
	res, ok := m.results[bibNumber]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (m *memoryTx) CreateResult(ctx context.Context, res *models.RaceResult) error {
	cp := *res
	m.results[res.BibNumber] = &cp
	return nil
}

func (m *memoryTx) UpdateResult(ctx context.Context, res *models.RaceResult) error {
	cp := *res
	m.results[res.BibNumber] = &cp
	return nil
}

func (m *memoryTx) rankedAhead(t time.Time, bibNumber int, res *models.RaceResult) bool {
	if res.Status != models.ResultFinished || res.FinishTime == nil {
		return false
	}
	if res.FinishTime.Before(t) {
		return true
	}
	return res.FinishTime.Equal(t) && res.BibNumber < bibNumber
}

func (m *memoryTx) CountEarlierFinishers(ctx context.Context, t time.Time, bibNumber int) (int, error) {
	n := 0
	for _, res := range m.results {
		if m.rankedAhead(t, bibNumber, res) {
			n++
		}
	}
	return n, nil
}

func (m *memoryTx) CountEarlierCategoryFinishers(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) (int, error) {
	n := 0
	for _, res := range m.results {
		if !m.rankedAhead(t, bibNumber, res) {
			continue
		}
		if reg, ok := m.regs[res.RegistrationID]; ok && reg.JenisTiket == jenisTiket {
			n++
		}
	}
	return n, nil
}

func (m *memoryTx) ShiftLaterTies(ctx context.Context, t time.Time, bibNumber int) error {
	for _, res := range m.results {
		if res.Status == models.ResultFinished && res.FinishTime != nil &&
			res.FinishTime.Equal(t) && res.BibNumber > bibNumber {
			res.Position++
		}
	}
	return nil
}

func (m *memoryTx) ShiftLaterCategoryTies(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) error {
	for _, res := range m.results {
		if res.Status != models.ResultFinished || res.FinishTime == nil ||
			!res.FinishTime.Equal(t) || res.BibNumber <= bibNumber {
			continue
		}
		if reg, ok := m.regs[res.RegistrationID]; ok && reg.JenisTiket == jenisTiket {
			res.CategoryPosition++
		}
	}
	return nil
}

func (m *memoryTx) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{TotalRegistered: len(m.regs)}
	for _, res := range m.results {
		if res.StartTime != nil {
			stats.TotalStarted++
		}
		if res.Status != models.ResultFinished {
			continue
		}
		stats.TotalFinished++
		reg, ok := m.regs[res.RegistrationID]
		if !ok {
			continue
		}
		switch reg.JenisTiket {
		case models.TicketFunRun:
			stats.FunRunFinished++
		case models.TicketHalfMarathon:
			stats.HalfMarathonFinished++
		case models.TicketFullMarathon:
			stats.FullMarathonFinished++
		}
	}
	return stats, nil
}

func (m *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).Stats(ctx)
}

// The remaining MemoryStore methods delegate with the lock held so the type
// satisfies Store even when used outside InTx.

func (m *MemoryStore) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).GetRegistration(ctx, id)
}

func (m *MemoryStore) RegistrationByTicket(ctx context.Context, ticketNumber string) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).RegistrationByTicket(ctx, ticketNumber)
}

func (m *MemoryStore) BibByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.RaceBib, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).BibByRegistration(ctx, registrationID)
}

func (m *MemoryStore) BibByNumber(ctx context.Context, bibNumber int) (*models.RaceBib, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).BibByNumber(ctx, bibNumber)
}

func (m *MemoryStore) MaxBibNumber(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).MaxBibNumber(ctx)
}

func (m *MemoryStore) CreateBib(ctx context.Context, bib *models.RaceBib) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).CreateBib(ctx, bib)
}

func (m *MemoryStore) UpdateBib(ctx context.Context, bib *models.RaceBib) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).UpdateBib(ctx, bib)
}

func (m *MemoryStore) ResultByBib(ctx context.Context, bibNumber int) (*models.RaceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).ResultByBib(ctx, bibNumber)
}

func (m *MemoryStore) CreateResult(ctx context.Context, res *models.RaceResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).CreateResult(ctx, res)
}

func (m *MemoryStore) UpdateResult(ctx context.Context, res *models.RaceResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).UpdateResult(ctx, res)
}

func (m *MemoryStore) CountEarlierFinishers(ctx context.Context, t time.Time, bibNumber int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).CountEarlierFinishers(ctx, t, bibNumber)
}

func (m *MemoryStore) CountEarlierCategoryFinishers(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).CountEarlierCategoryFinishers(ctx, jenisTiket, t, bibNumber)
}

func (m *MemoryStore) ShiftLaterTies(ctx context.Context, t time.Time, bibNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).ShiftLaterTies(ctx, t, bibNumber)
}

func (m *MemoryStore) ShiftLaterCategoryTies(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (*memoryTx)(m).ShiftLaterCategoryTies(ctx, jenisTiket, t, bibNumber)
}
