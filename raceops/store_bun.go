package raceops

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/fatimahgelora/korpri/models"
)

// BunStore is the PostgreSQL-backed Store. InTx runs serializable
// transactions: bib allocation and finish ranking read counts that must not
// race with concurrent checkpoint or timing stations.
type BunStore struct {
	db  *bun.DB
	idb bun.IDB
}

// NewBunStore wraps a bun database handle.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db, idb: db}
}

// InTx runs fn inside a serializable transaction. Nested calls reuse the
// surrounding transaction.
func (s *BunStore) InTx(ctx context.Context, fn func(Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, tx bun.Tx) error {
		return fn(&BunStore{idb: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *BunStore) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg := new(models.Registration)
	err := s.idb.NewSelect().Model(reg).Where("rg.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return reg, nil
}

func (s *BunStore) RegistrationByTicket(ctx context.Context, ticketNumber string) (*models.Registration, error) {
	reg := new(models.Registration)
	err := s.idb.NewSelect().Model(reg).Where("rg.ticket_number = ?", ticketNumber).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return reg, nil
}

func (s *BunStore) BibByRegistration(ctx context.Context, registrationID uuid.UUID) (*models.RaceBib, error) {
	bib := new(models.RaceBib)
	err := s.idb.NewSelect().Model(bib).Where("rb.registration_id = ?", registrationID).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return bib, nil
}

func (s *BunStore) BibByNumber(ctx context.Context, bibNumber int) (*models.RaceBib, error) {
	bib := new(models.RaceBib)
	err := s.idb.NewSelect().Model(bib).Where("rb.bib_number = ?", bibNumber).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return bib, nil
}

func (s *BunStore) MaxBibNumber(ctx context.Context) (int, error) {
	var max int
	err := s.idb.NewSelect().
		ColumnExpr("COALESCE(MAX(bib_number), 0)").
		Model((*models.RaceBib)(nil)).
		Scan(ctx, &max)
	return max, err
}

func (s *BunStore) CreateBib(ctx context.Context, bib *models.RaceBib) error {
	_, err := s.idb.NewInsert().Model(bib).Exec(ctx)
	return err
}

func (s *BunStore) UpdateBib(ctx context.Context, bib *models.RaceBib) error {
	_, err := s.idb.NewUpdate().Model(bib).WherePK().Exec(ctx)
	return err
}

func (s *BunStore) ResultByBib(ctx context.Context, bibNumber int) (*models.RaceResult, error) {
	res := new(models.RaceResult)
	err := s.idb.NewSelect().Model(res).Where("rr.bib_number = ?", bibNumber).Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

func (s *BunStore) CreateResult(ctx context.Context, res *models.RaceResult) error {
	_, err := s.idb.NewInsert().Model(res).Exec(ctx)
	return err
}

func (s *BunStore) UpdateResult(ctx context.Context, res *models.RaceResult) error {
	_, err := s.idb.NewUpdate().Model(res).WherePK().Exec(ctx)
	return err
}

func (s *BunStore) CountEarlierFinishers(ctx context.Context, t time.Time, bibNumber int) (int, error) {
	return s.idb.NewSelect().
		Model((*models.RaceResult)(nil)).
		Where("rr.status = ?", models.ResultFinished).
		Where("(rr.finish_time < ? OR (rr.finish_time = ? AND rr.bib_number < ?))", t, t, bibNumber).
		Count(ctx)
}

func (s *BunStore) CountEarlierCategoryFinishers(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) (int, error) {
	return s.idb.NewSelect().
		Model((*models.RaceResult)(nil)).
		Join("INNER JOIN registrations AS rg ON rg.id = rr.registration_id").
		Where("rr.status = ?", models.ResultFinished).
		Where("rg.jenis_tiket = ?", jenisTiket).
		Where("(rr.finish_time < ? OR (rr.finish_time = ? AND rr.bib_number < ?))", t, t, bibNumber).
		Count(ctx)
}

func (s *BunStore) ShiftLaterTies(ctx context.Context, t time.Time, bibNumber int) error {
	_, err := s.idb.NewUpdate().
		Model((*models.RaceResult)(nil)).
		Set("position = position + 1").
		Where("rr.status = ?", models.ResultFinished).
		Where("rr.finish_time = ?", t).
		Where("rr.bib_number > ?", bibNumber).
		Exec(ctx)
	return err
}

func (s *BunStore) ShiftLaterCategoryTies(ctx context.Context, jenisTiket string, t time.Time, bibNumber int) error {
	_, err := s.idb.NewUpdate().
		Model((*models.RaceResult)(nil)).
		TableExpr("registrations AS rg").
		Set("category_position = category_position + 1").
		Where("rg.id = rr.registration_id").
		Where("rg.jenis_tiket = ?", jenisTiket).
		Where("rr.status = ?", models.ResultFinished).
		Where("rr.finish_time = ?", t).
		Where("rr.bib_number > ?", bibNumber).
		Exec(ctx)
	return err
}

func (s *BunStore) Stats(ctx context.Context) (*Stats, error) {
	stats := new(Stats)
	err := s.idb.NewRaw(`
		SELECT
			(SELECT count(*) FROM registrations) AS total_registered,
			(SELECT count(*) FROM race_results WHERE start_time IS NOT NULL) AS total_started,
			(SELECT count(*) FROM race_results WHERE status = 'finished') AS total_finished,
			(SELECT count(*) FROM race_results rr
				INNER JOIN registrations rg ON rg.id = rr.registration_id
				WHERE rr.status = 'finished' AND rg.jenis_tiket = 'fun-run') AS fun_run_finished,
			(SELECT count(*) FROM race_results rr
				INNER JOIN registrations rg ON rg.id = rr.registration_id
				WHERE rr.status = 'finished' AND rg.jenis_tiket = 'half-marathon') AS half_marathon_finished,
			(SELECT count(*) FROM race_results rr
				INNER JOIN registrations rg ON rg.id = rr.registration_id
				WHERE rr.status = 'finished' AND rg.jenis_tiket = 'full-marathon') AS full_marathon_finished
	`).Scan(ctx, &stats.TotalRegistered, &stats.TotalStarted, &stats.TotalFinished,
		&stats.FunRunFinished, &stats.HalfMarathonFinished, &stats.FullMarathonFinished)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
