package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fatimahgelora/korpri/metrics"
	"github.com/fatimahgelora/korpri/models"
)

// bibRow joins a bib assignment with its registration for the staff console.
type bibRow struct {
	ID              uuid.UUID  `bun:"id" json:"id"`
	RegistrationID  uuid.UUID  `bun:"registration_id" json:"registrationID"`
	BibNumber       int        `bun:"bib_number" json:"bibNumber"`
	Status          string     `bun:"status" json:"status"`
	AssignedAt      *time.Time `bun:"assigned_at" json:"assignedAt,omitempty"`
	CollectedAt     *time.Time `bun:"collected_at" json:"collectedAt,omitempty"`
	ParticipantName string     `bun:"nama" json:"participantName"`
	TicketNumber    string     `bun:"ticket_number" json:"ticketNumber"`
	JenisTiket      string     `bun:"jenis_tiket" json:"jenisTiket"`
}

// RaceBibs lists bib assignments with participant details, bib number ascending.
func (h *Handler) RaceBibs(c echo.Context) error {
	var rows []bibRow
	q := `
		SELECT rb.id, rb.registration_id, rb.bib_number, rb.status, rb.assigned_at, rb.collected_at,
		       rg.nama, rg.ticket_number, rg.jenis_tiket
		FROM race_bibs rb
		INNER JOIN registrations rg ON rg.id = rb.registration_id
	`
	args := []interface{}{}
	if search := c.QueryParam("search"); search != "" {
		q += ` WHERE rg.nama ILIKE ? OR rg.ticket_number ILIKE ? OR rb.bib_number::text LIKE ?`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	q += ` ORDER BY rb.bib_number`

	if err := h.db.NewRaw(q, args...).Scan(c.Request().Context(), &rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rows == nil {
		rows = []bibRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

// resultRow joins a race result with its registration for the results board.
type resultRow struct {
	ID               uuid.UUID  `bun:"id" json:"id"`
	RegistrationID   uuid.UUID  `bun:"registration_id" json:"registrationID"`
	BibNumber        int        `bun:"bib_number" json:"bibNumber"`
	StartTime        *time.Time `bun:"start_time" json:"startTime,omitempty"`
	FinishTime       *time.Time `bun:"finish_time" json:"finishTime,omitempty"`
	RaceDuration     *int64     `bun:"race_duration" json:"-"`
	Duration         string     `bun:"-" json:"duration,omitempty"`
	Position         *int       `bun:"position" json:"position,omitempty"`
	CategoryPosition *int       `bun:"category_position" json:"categoryPosition,omitempty"`
	Status           string     `bun:"status" json:"status"`
	ParticipantName  string     `bun:"nama" json:"participantName"`
	JenisTiket       string     `bun:"jenis_tiket" json:"jenisTiket"`
}

// RaceResults lists timing results, finishers first in rank order.
func (h *Handler) RaceResults(c echo.Context) error {
	var rows []resultRow
	q := `
		SELECT rr.id, rr.registration_id, rr.bib_number, rr.start_time, rr.finish_time,
		       rr.race_duration, rr.position, rr.category_position, rr.status,
		       rg.nama, rg.jenis_tiket
		FROM race_results rr
		INNER JOIN registrations rg ON rg.id = rr.registration_id
		ORDER BY rr.position ASC NULLS LAST, rr.bib_number ASC
	`
	if err := h.db.NewRaw(q).Scan(c.Request().Context(), &rows); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	for i := range rows {
		if rows[i].RaceDuration != nil {
			rows[i].Duration = models.FormatDuration(time.Duration(*rows[i].RaceDuration))
		}
	}
	if rows == nil {
		rows = []resultRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

type assignBibRequest struct {
	RegistrationID string `json:"registrationId"`
}

// AssignBib issues the next bib number to a registration.
func (h *Handler) AssignBib(c echo.Context) error {
	var req assignBibRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	regID, err := uuid.Parse(req.RegistrationID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration id")
	}

	res, err := h.race.AssignBib(c.Request().Context(), regID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RaceOperations.WithLabelValues("assign_bib", metrics.Outcome(res.Success)).Inc()
	return c.JSON(http.StatusOK, res)
}

type collectBibRequest struct {
	TicketNumber string `json:"ticketNumber"`
}

// CollectBib marks a bib collected at the checkpoint, keyed by ticket number.
func (h *Handler) CollectBib(c echo.Context) error {
	var req collectBibRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.TicketNumber == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ticketNumber is required")
	}

	var staffID *uuid.UUID
	if s, _ := c.Get("admin_id").(string); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			staffID = &id
		}
	}

	res, err := h.race.CollectBib(c.Request().Context(), req.TicketNumber, staffID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RaceOperations.WithLabelValues("collect_bib", metrics.Outcome(res.Success)).Inc()
	return c.JSON(http.StatusOK, res)
}

type bibNumberRequest struct {
	BibNumber int `json:"bibNumber"`
}

// RecordStart stamps the race start for a bib.
func (h *Handler) RecordStart(c echo.Context) error {
	var req bibNumberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BibNumber <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "bibNumber is required")
	}

	res, err := h.race.RecordStart(c.Request().Context(), req.BibNumber)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RaceOperations.WithLabelValues("record_start", metrics.Outcome(res.Success)).Inc()
	return c.JSON(http.StatusOK, res)
}

// RecordFinish stamps the race finish for a bib and computes its ranks.
func (h *Handler) RecordFinish(c echo.Context) error {
	var req bibNumberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BibNumber <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "bibNumber is required")
	}

	res, err := h.race.RecordFinish(c.Request().Context(), req.BibNumber)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RaceOperations.WithLabelValues("record_finish", metrics.Outcome(res.Success)).Inc()
	return c.JSON(http.StatusOK, res)
}

type setStatusRequest struct {
	BibNumber int    `json:"bibNumber"`
	Status    string `json:"status"`
}

// SetResultStatus is the staff override marking a result dnf or dsq.
func (h *Handler) SetResultStatus(c echo.Context) error {
	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BibNumber <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "bibNumber is required")
	}

	res, err := h.race.SetStatus(c.Request().Context(), req.BibNumber, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	metrics.RaceOperations.WithLabelValues("set_status", metrics.Outcome(res.Success)).Inc()
	return c.JSON(http.StatusOK, res)
}

// RaceStatistics returns the aggregate race-day counters.
func (h *Handler) RaceStatistics(c echo.Context) error {
	stats, err := h.race.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
