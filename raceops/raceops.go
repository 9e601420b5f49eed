// Package raceops implements the race-day workflow: bib assignment, bib
// collection at the checkpoint, start/finish timing, and result ranking.
//
// Bibs move available -> assigned -> collected; results move
// registered -> started -> finished, with dnf/dsq set only by staff override.
// Invalid transitions come back as structured failures, never as errors: an
// error from any operation means infrastructure trouble, not a bad scan.
package raceops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fatimahgelora/korpri/models"
)

// Result is the outcome of a single race operation. Message is staff-facing.
type Result struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	BibNumber        int    `json:"bibNumber,omitempty"`
	ParticipantName  string `json:"participantName,omitempty"`
	Position         int    `json:"position,omitempty"`
	CategoryPosition int    `json:"categoryPosition,omitempty"`
	Duration         string `json:"duration,omitempty"`
}

func failure(format string, args ...interface{}) *Result {
	return &Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Service runs race-day operations against a Store.
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the clock, used by tests to control timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a race-operations service.
func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssignBib issues the next unused bib number to a registration. A
// registration can hold at most one bib; a second assignment attempt fails
// without creating a row.
func (s *Service) AssignBib(ctx context.Context, registrationID uuid.UUID) (*Result, error) {
	var res *Result
	err := s.store.InTx(ctx, func(tx Store) error {
		reg, err := tx.GetRegistration(ctx, registrationID)
		if errors.Is(err, ErrNotFound) {
			res = failure("registration not found")
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := tx.BibByRegistration(ctx, registrationID); err == nil {
			res = failure("registration already has a bib assigned")
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		max, err := tx.MaxBibNumber(ctx)
		if err != nil {
			return err
		}

		now := s.now()
		bib := &models.RaceBib{
			ID:             uuid.New(),
			RegistrationID: registrationID,
			BibNumber:      max + 1,
			Status:         models.BibAssigned,
			AssignedAt:     &now,
		}
		if err := tx.CreateBib(ctx, bib); err != nil {
			return err
		}

		res = &Result{
			Success:         true,
			Message:         fmt.Sprintf("bib #%d assigned", bib.BibNumber),
			BibNumber:       bib.BibNumber,
			ParticipantName: reg.Nama,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOutcome("assign_bib", res)
	return res, nil
}

// CollectBib hands a bib over at the checkpoint, keyed by the ticket number
// from the participant's QR code. Collecting an already-collected bib fails
// and leaves the original collection timestamp untouched.
func (s *Service) CollectBib(ctx context.Context, ticketNumber string, staffID *uuid.UUID) (*Result, error) {
	var res *Result
	err := s.store.InTx(ctx, func(tx Store) error {
		reg, err := tx.RegistrationByTicket(ctx, ticketNumber)
		if errors.Is(err, ErrNotFound) {
			res = failure("no registration for ticket %s", ticketNumber)
			return nil
		}
		if err != nil {
			return err
		}

		bib, err := tx.BibByRegistration(ctx, reg.ID)
		if errors.Is(err, ErrNotFound) {
			res = failure("no bib assigned for ticket %s", ticketNumber)
			return nil
		}
		if err != nil {
			return err
		}

		if bib.Status == models.BibCollected {
			res = failure("bib #%d already collected", bib.BibNumber)
			return nil
		}

		now := s.now()
		bib.Status = models.BibCollected
		bib.CollectedAt = &now
		bib.StaffID = staffID
		if err := tx.UpdateBib(ctx, bib); err != nil {
			return err
		}

		res = &Result{
			Success:         true,
			Message:         fmt.Sprintf("bib #%d collected by %s", bib.BibNumber, reg.Nama),
			BibNumber:       bib.BibNumber,
			ParticipantName: reg.Nama,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOutcome("collect_bib", res)
	return res, nil
}

// RecordStart stamps the start time for a bib. The result row is created here
// if the bib has never been timed before.
func (s *Service) RecordStart(ctx context.Context, bibNumber int) (*Result, error) {
	var res *Result
	err := s.store.InTx(ctx, func(tx Store) error {
		bib, err := tx.BibByNumber(ctx, bibNumber)
		if errors.Is(err, ErrNotFound) {
			res = failure("bib #%d is not assigned", bibNumber)
			return nil
		}
		if err != nil {
			return err
		}

		now := s.now()
		existing, err := tx.ResultByBib(ctx, bibNumber)
		switch {
		case errors.Is(err, ErrNotFound):
			created := &models.RaceResult{
				ID:             uuid.New(),
				RegistrationID: bib.RegistrationID,
				BibNumber:      bibNumber,
				StartTime:      &now,
				Status:         models.ResultStarted,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := tx.CreateResult(ctx, created); err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.StartTime != nil:
			res = failure("start already recorded for bib #%d", bibNumber)
			return nil
		default:
			existing.StartTime = &now
			existing.Status = models.ResultStarted
			existing.UpdatedAt = now
			if err := tx.UpdateResult(ctx, existing); err != nil {
				return err
			}
		}

		res = &Result{
			Success:   true,
			Message:   fmt.Sprintf("start recorded for bib #%d", bibNumber),
			BibNumber: bibNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOutcome("record_start", res)
	return res, nil
}

// RecordFinish stamps the finish time, computes the duration and both ranks.
// Overall position is 1 + the number of finishers ranked ahead; category
// position counts only finishers in the same ticket category. Ties on finish
// time break by bib number ascending: recording a finish also shifts down any
// finisher already holding the same timestamp with a higher bib, so stored
// positions stay unique whatever order the station scans them in. A second
// finish for the same bib fails and the first finish stands.
func (s *Service) RecordFinish(ctx context.Context, bibNumber int) (*Result, error) {
	var res *Result
	err := s.store.InTx(ctx, func(tx Store) error {
		result, err := tx.ResultByBib(ctx, bibNumber)
		if errors.Is(err, ErrNotFound) {
			res = failure("no start recorded for bib #%d", bibNumber)
			return nil
		}
		if err != nil {
			return err
		}
		if result.StartTime == nil {
			res = failure("no start recorded for bib #%d", bibNumber)
			return nil
		}
		if result.FinishTime != nil {
			res = failure("finish already recorded for bib #%d", bibNumber)
			return nil
		}

		reg, err := tx.GetRegistration(ctx, result.RegistrationID)
		if err != nil {
			return err
		}

		finish := s.now()
		earlier, err := tx.CountEarlierFinishers(ctx, finish, bibNumber)
		if err != nil {
			return err
		}
		earlierCat, err := tx.CountEarlierCategoryFinishers(ctx, reg.JenisTiket, finish, bibNumber)
		if err != nil {
			return err
		}

		result.FinishTime = &finish
		result.RaceDuration = finish.Sub(*result.StartTime)
		result.Position = earlier + 1
		result.CategoryPosition = earlierCat + 1
		result.Status = models.ResultFinished
		result.UpdatedAt = finish
		if err := tx.UpdateResult(ctx, result); err != nil {
			return err
		}
		if err := tx.ShiftLaterTies(ctx, finish, bibNumber); err != nil {
			return err
		}
		if err := tx.ShiftLaterCategoryTies(ctx, reg.JenisTiket, finish, bibNumber); err != nil {
			return err
		}

		res = &Result{
			Success:          true,
			Message:          fmt.Sprintf("finish recorded for bib #%d, position #%d", bibNumber, result.Position),
			BibNumber:        bibNumber,
			ParticipantName:  reg.Nama,
			Position:         result.Position,
			CategoryPosition: result.CategoryPosition,
			Duration:         models.FormatDuration(result.RaceDuration),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOutcome("record_finish", res)
	return res, nil
}

// SetStatus is the administrative override that marks a result dnf or dsq.
// It never touches recorded times or positions.
func (s *Service) SetStatus(ctx context.Context, bibNumber int, status string) (*Result, error) {
	if status != models.ResultDNF && status != models.ResultDSQ {
		return failure("status must be %s or %s", models.ResultDNF, models.ResultDSQ), nil
	}

	var res *Result
	err := s.store.InTx(ctx, func(tx Store) error {
		result, err := tx.ResultByBib(ctx, bibNumber)
		if errors.Is(err, ErrNotFound) {
			res = failure("no result for bib #%d", bibNumber)
			return nil
		}
		if err != nil {
			return err
		}

		result.Status = status
		result.UpdatedAt = s.now()
		if err := tx.UpdateResult(ctx, result); err != nil {
			return err
		}

		res = &Result{
			Success:   true,
			Message:   fmt.Sprintf("bib #%d marked %s", bibNumber, status),
			BibNumber: bibNumber,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logOutcome("set_status", res)
	return res, nil
}

// Statistics recomputes the aggregate race-day counters.
func (s *Service) Statistics(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

func (s *Service) logOutcome(op string, res *Result) {
	if res == nil {
		return
	}
	if res.Success {
		s.log.Info("race operation", zap.String("op", op), zap.String("message", res.Message))
		return
	}
	s.log.Warn("race operation rejected", zap.String("op", op), zap.String("message", res.Message))
}
