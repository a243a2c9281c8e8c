package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Tiliavir/standup/internal/model"
)

// standup is the stored row. Tags are kept as JSON text.
type standup struct {
	Date              string `gorm:"primaryKey"`
	Yesterday         string
	Today             string
	Blockers          string
	IsBlockerResolved bool
	Tags              []string `gorm:"serializer:json"`
	Mood              int
	Productivity      int
	IsHighlight       bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (standup) TableName() string { return "standups" }

func (r *standup) entry() model.Entry {
	created, updated := r.CreatedAt, r.UpdatedAt
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Entry{
		Date:              r.Date,
		Yesterday:         r.Yesterday,
		Today:             r.Today,
		Blockers:          r.Blockers,
		IsBlockerResolved: r.IsBlockerResolved,
		Tags:              tags,
		Mood:              r.Mood,
		Productivity:      r.Productivity,
		IsHighlight:       r.IsHighlight,
		CreatedAt:         &created,
		UpdatedAt:         &updated,
	}
}

// apply copies the fields present in p onto r.
func (r *standup) apply(p model.EntryPayload) {
	if p.Yesterday != nil {
		r.Yesterday = *p.Yesterday
	}
	if p.Today != nil {
		r.Today = *p.Today
	}
	if p.Blockers != nil {
		r.Blockers = *p.Blockers
	}
	if p.IsBlockerResolved != nil {
		r.IsBlockerResolved = *p.IsBlockerResolved
	}
	if p.Tags != nil {
		r.Tags = model.NormalizeTags(p.Tags)
	}
	if p.Mood != nil {
		r.Mood = *p.Mood
	}
	if p.Productivity != nil {
		r.Productivity = *p.Productivity
	}
}

func (s *Server) find(date string) (*standup, error) {
	if err := model.ValidateDate(date); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var r standup
	err := s.db.First(&r, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no standup for %s", date))
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Server) bind(c echo.Context, requireDate bool) (model.EntryPayload, error) {
	var p model.EntryPayload
	if err := c.Bind(&p); err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "bad json")
	}
	if err := p.Validate(requireDate); err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, nil
}

func entries(rows []standup) []model.Entry {
	out := make([]model.Entry, len(rows))
	for i := range rows {
		out[i] = rows[i].entry()
	}
	return out
}

func (s *Server) list(c echo.Context) error {
	q := s.db.Order("date desc")
	if from := c.QueryParam("from"); from != "" {
		q = q.Where("date >= ?", from)
	}
	if to := c.QueryParam("to"); to != "" {
		q = q.Where("date <= ?", to)
	}
	if tag := strings.ToLower(strings.TrimSpace(c.QueryParam("tag"))); tag != "" {
		q = q.Where("tags LIKE ?", `%"`+tag+`"%`)
	}
	if hl, _ := strconv.ParseBool(c.QueryParam("highlight")); hl {
		q = q.Where("is_highlight = ?", true)
	}
	var rows []standup
	if err := q.Find(&rows).Error; err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, entries(rows))
}

func (s *Server) get(c echo.Context) error {
	r, err := s.find(c.Param("date"))
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, r.entry())
}

// create stores a new entry. An existing entry for the same date is
// overwritten, keeping its creation time.
func (s *Server) create(c echo.Context) error {
	p, err := s.bind(c, true)
	if err != nil {
		return err
	}
	now := s.now()
	r := standup{Date: p.Date, Tags: []string{}, CreatedAt: now}
	var existing standup
	if err := s.db.First(&existing, "date = ?", p.Date).Error; err == nil {
		r.CreatedAt = existing.CreatedAt
		r.IsHighlight = existing.IsHighlight
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	r.apply(p)
	r.UpdatedAt = now
	if err := s.db.Save(&r).Error; err != nil {
		return err
	}
	return s.respond(c, http.StatusCreated, r.entry())
}

func (s *Server) update(c echo.Context) error {
	r, err := s.find(c.Param("date"))
	if err != nil {
		return err
	}
	p, err := s.bind(c, false)
	if err != nil {
		return err
	}
	r.apply(p)
	r.UpdatedAt = s.now()
	if err := s.db.Save(r).Error; err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, r.entry())
}

func (s *Server) remove(c echo.Context) error {
	r, err := s.find(c.Param("date"))
	if err != nil {
		return err
	}
	if err := s.db.Delete(r).Error; err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) toggle(c echo.Context) error {
	r, err := s.find(c.Param("date"))
	if err != nil {
		return err
	}
	r.IsHighlight = !r.IsHighlight
	r.UpdatedAt = s.now()
	if err := s.db.Save(r).Error; err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, r.entry())
}

func (s *Server) search(c echo.Context) error {
	kw := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if kw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search keyword")
	}
	like := "%" + kw + "%"
	var rows []standup
	err := s.db.
		Where("LOWER(yesterday) LIKE ? OR LOWER(today) LIKE ? OR LOWER(blockers) LIKE ? OR LOWER(tags) LIKE ?", like, like, like, like).
		Order("date desc").
		Find(&rows).Error
	if err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, entries(rows))
}

func (s *Server) stats(c echo.Context) error {
	var rows []standup
	if err := s.db.Order("date").Find(&rows).Error; err != nil {
		return err
	}
	return s.respond(c, http.StatusOK, summarize(entries(rows), s.now()))
}
