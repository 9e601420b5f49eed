package raceops

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/fatimahgelora/korpri/models"
)

type RaceOpsSuite struct {
	suite.Suite
	store *MemoryStore
	svc   *Service
	clock time.Time
}

func TestRaceOpsSuite(t *testing.T) {
	suite.Run(t, new(RaceOpsSuite))
}

func (s *RaceOpsSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.clock = time.Date(2025, 11, 16, 6, 0, 0, 0, time.UTC)
	s.svc = NewService(s.store, zap.NewNop(), WithNow(func() time.Time { return s.clock }))
}

// advance moves the injected clock forward and returns the new time.
func (s *RaceOpsSuite) advance(d time.Duration) time.Time {
	s.clock = s.clock.Add(d)
	return s.clock
}

func (s *RaceOpsSuite) seedRegistration(jenisTiket string) *models.Registration {
	reg := &models.Registration{
		ID:           uuid.New(),
		UserType:     models.UserTypeUmum,
		NIK:          uuid.NewString(),
		Nama:         "Peserta " + jenisTiket,
		JenisTiket:   jenisTiket,
		TicketNumber: models.NewTicketNumber(),
	}
	s.store.AddRegistration(reg)
	return reg
}

// seedRunner registers, assigns, collects, and starts a runner, returning the
// bib number.
func (s *RaceOpsSuite) seedRunner(jenisTiket string) int {
	ctx := context.Background()
	reg := s.seedRegistration(jenisTiket)

	assigned, err := s.svc.AssignBib(ctx, reg.ID)
	s.Require().NoError(err)
	s.Require().True(assigned.Success)

	collected, err := s.svc.CollectBib(ctx, reg.TicketNumber, nil)
	s.Require().NoError(err)
	s.Require().True(collected.Success)

	started, err := s.svc.RecordStart(ctx, assigned.BibNumber)
	s.Require().NoError(err)
	s.Require().True(started.Success)

	return assigned.BibNumber
}

func (s *RaceOpsSuite) TestAssignBib() {
	ctx := context.Background()

	s.Run("unknown registration fails", func() {
		res, err := s.svc.AssignBib(ctx, uuid.New())
		s.NoError(err)
		s.False(res.Success)
		s.Contains(res.Message, "not found")
	})

	s.Run("numbers are issued monotonically from 1", func() {
		for want := 1; want <= 3; want++ {
			reg := s.seedRegistration(models.TicketFunRun)
			res, err := s.svc.AssignBib(ctx, reg.ID)
			s.Require().NoError(err)
			s.True(res.Success)
			s.Equal(want, res.BibNumber)
		}
	})

	s.Run("second assignment for the same registration fails", func() {
		reg := s.seedRegistration(models.TicketFunRun)
		first, err := s.svc.AssignBib(ctx, reg.ID)
		s.Require().NoError(err)
		s.Require().True(first.Success)

		second, err := s.svc.AssignBib(ctx, reg.ID)
		s.NoError(err)
		s.False(second.Success)
		s.Contains(second.Message, "already has a bib")

		// No second row: the bib lookup still returns the first number.
		bib, err := s.store.BibByRegistration(ctx, reg.ID)
		s.Require().NoError(err)
		s.Equal(first.BibNumber, bib.BibNumber)
	})
}

func (s *RaceOpsSuite) TestCollectBib() {
	ctx := context.Background()

	s.Run("unknown ticket fails", func() {
		res, err := s.svc.CollectBib(ctx, "KR2025ZZZZZZ", nil)
		s.NoError(err)
		s.False(res.Success)
	})

	s.Run("registration without a bib fails", func() {
		reg := s.seedRegistration(models.TicketFunRun)
		res, err := s.svc.CollectBib(ctx, reg.TicketNumber, nil)
		s.NoError(err)
		s.False(res.Success)
		s.Contains(res.Message, "no bib assigned")
	})

	s.Run("collect then re-collect preserves the original timestamp", func() {
		reg := s.seedRegistration(models.TicketHalfMarathon)
		assigned, err := s.svc.AssignBib(ctx, reg.ID)
		s.Require().NoError(err)

		staffID := uuid.New()
		res, err := s.svc.CollectBib(ctx, reg.TicketNumber, &staffID)
		s.Require().NoError(err)
		s.True(res.Success)
		s.Equal(assigned.BibNumber, res.BibNumber)
		s.Equal(reg.Nama, res.ParticipantName)

		firstCollected := s.clock
		s.advance(5 * time.Minute)

		again, err := s.svc.CollectBib(ctx, reg.TicketNumber, &staffID)
		s.NoError(err)
		s.False(again.Success)
		s.Contains(again.Message, "already collected")

		bib, err := s.store.BibByRegistration(ctx, reg.ID)
		s.Require().NoError(err)
		s.Require().NotNil(bib.CollectedAt)
		s.True(bib.CollectedAt.Equal(firstCollected))
	})
}

func (s *RaceOpsSuite) TestRecordStart() {
	ctx := context.Background()

	s.Run("unassigned bib fails", func() {
		res, err := s.svc.RecordStart(ctx, 999)
		s.NoError(err)
		s.False(res.Success)
		s.Contains(res.Message, "not assigned")
	})

	s.Run("start then double start", func() {
		reg := s.seedRegistration(models.TicketFunRun)
		assigned, err := s.svc.AssignBib(ctx, reg.ID)
		s.Require().NoError(err)

		res, err := s.svc.RecordStart(ctx, assigned.BibNumber)
		s.Require().NoError(err)
		s.True(res.Success)

		again, err := s.svc.RecordStart(ctx, assigned.BibNumber)
		s.NoError(err)
		s.False(again.Success)
		s.Contains(again.Message, "already recorded")
	})
}

func (s *RaceOpsSuite) TestRecordFinish() {
	ctx := context.Background()

	s.Run("finish without start fails", func() {
		res, err := s.svc.RecordFinish(ctx, 999)
		s.NoError(err)
		s.False(res.Success)
		s.Contains(res.Message, "no start recorded")
	})

	s.Run("finish computes duration and double finish preserves the first", func() {
		bib := s.seedRunner(models.TicketFunRun)

		s.advance(42 * time.Minute)
		res, err := s.svc.RecordFinish(ctx, bib)
		s.Require().NoError(err)
		s.True(res.Success)
		s.Equal(1, res.Position)
		s.Equal("0:42:00", res.Duration)

		firstFinish := s.clock
		s.advance(10 * time.Minute)

		again, err := s.svc.RecordFinish(ctx, bib)
		s.NoError(err)
		s.False(again.Success)
		s.Contains(again.Message, "already recorded")

		stored, err := s.store.ResultByBib(ctx, bib)
		s.Require().NoError(err)
		s.Require().NotNil(stored.FinishTime)
		s.True(stored.FinishTime.Equal(firstFinish))
		s.Equal(1, stored.Position)
	})
}

func (s *RaceOpsSuite) TestPositionsAreConsistent() {
	ctx := context.Background()

	b1 := s.seedRunner(models.TicketFullMarathon)
	b2 := s.seedRunner(models.TicketFullMarathon)
	b3 := s.seedRunner(models.TicketFullMarathon)

	s.advance(2 * time.Hour)
	r1, err := s.svc.RecordFinish(ctx, b1)
	s.Require().NoError(err)

	s.advance(3 * time.Minute)
	r2, err := s.svc.RecordFinish(ctx, b2)
	s.Require().NoError(err)

	s.advance(3 * time.Minute)
	r3, err := s.svc.RecordFinish(ctx, b3)
	s.Require().NoError(err)

	s.Equal(1, r1.Position)
	s.Equal(2, r2.Position)
	s.Equal(3, r3.Position)
	s.Equal(1, r1.CategoryPosition)
	s.Equal(2, r2.CategoryPosition)
	s.Equal(3, r3.CategoryPosition)
}

func (s *RaceOpsSuite) TestIdenticalFinishTimesBreakByBib() {
	ctx := context.Background()

	b1 := s.seedRunner(models.TicketHalfMarathon)
	b2 := s.seedRunner(models.TicketHalfMarathon)
	s.Require().Less(b1, b2)

	// Clock frozen: both finishes land on the same timestamp, and the higher
	// bib is scanned first. The lower bib still wins the tie; the earlier
	// record is shifted down when the lower bib comes in.
	s.advance(90 * time.Minute)
	r2, err := s.svc.RecordFinish(ctx, b2)
	s.Require().NoError(err)
	s.Equal(1, r2.Position)

	r1, err := s.svc.RecordFinish(ctx, b1)
	s.Require().NoError(err)
	s.Equal(1, r1.Position)
	s.Equal(1, r1.CategoryPosition)

	stored1, err := s.store.ResultByBib(ctx, b1)
	s.Require().NoError(err)
	s.Equal(1, stored1.Position)
	s.Equal(1, stored1.CategoryPosition)

	stored2, err := s.store.ResultByBib(ctx, b2)
	s.Require().NoError(err)
	s.Equal(2, stored2.Position)
	s.Equal(2, stored2.CategoryPosition)
}

func (s *RaceOpsSuite) TestCategoryPositionsAreIndependent() {
	ctx := context.Background()

	funRun := s.seedRunner(models.TicketFunRun)
	full := s.seedRunner(models.TicketFullMarathon)

	s.advance(time.Hour)
	rFun, err := s.svc.RecordFinish(ctx, funRun)
	s.Require().NoError(err)
	rFull, err := s.svc.RecordFinish(ctx, full)
	s.Require().NoError(err)

	// Overall ranking is shared; category ranking is per ticket category.
	s.Equal(1, rFun.Position)
	s.Equal(2, rFull.Position)
	s.Equal(1, rFun.CategoryPosition)
	s.Equal(1, rFull.CategoryPosition)
}

func (s *RaceOpsSuite) TestSetStatus() {
	ctx := context.Background()

	s.Run("only dnf and dsq are accepted", func() {
		res, err := s.svc.SetStatus(ctx, 1, models.ResultFinished)
		s.NoError(err)
		s.False(res.Success)
	})

	s.Run("missing result fails", func() {
		res, err := s.svc.SetStatus(ctx, 999, models.ResultDNF)
		s.NoError(err)
		s.False(res.Success)
	})

	s.Run("started runner can be marked dnf", func() {
		bib := s.seedRunner(models.TicketFunRun)
		res, err := s.svc.SetStatus(ctx, bib, models.ResultDNF)
		s.Require().NoError(err)
		s.True(res.Success)

		stored, err := s.store.ResultByBib(ctx, bib)
		s.Require().NoError(err)
		s.Equal(models.ResultDNF, stored.Status)
	})
}

func (s *RaceOpsSuite) TestStatistics() {
	ctx := context.Background()

	s.seedRegistration(models.TicketFunRun) // registered only

	s.seedRunner(models.TicketHalfMarathon) // started, never finished

	finished := s.seedRunner(models.TicketFunRun)
	s.advance(30 * time.Minute)
	res, err := s.svc.RecordFinish(ctx, finished)
	s.Require().NoError(err)
	s.Require().True(res.Success)

	stats, err := s.svc.Statistics(ctx)
	s.Require().NoError(err)
	s.Equal(3, stats.TotalRegistered)
	s.Equal(2, stats.TotalStarted)
	s.Equal(1, stats.TotalFinished)
	s.Equal(1, stats.FunRunFinished)
	s.Equal(0, stats.HalfMarathonFinished)
	s.Equal(0, stats.FullMarathonFinished)
}
