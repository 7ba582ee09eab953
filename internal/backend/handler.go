package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/amoylab/coursechat/internal/backend/answer"
	"github.com/amoylab/coursechat/internal/backend/database"
	"github.com/amoylab/coursechat/internal/common/cnst"
	"github.com/amoylab/coursechat/internal/common/dto"
	"github.com/amoylab/coursechat/internal/common/errorx"
)

const (
	defaultPersonaID = "default"
	courseDateLayout = "2006-01-02"
)

func (s *Server) handleQuery(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errorx.ValidationError("body", err.Error()))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		_ = c.Error(errorx.ErrMissingField.WithDetail("field", "query"))
		return
	}
	if req.PersonaID == "" {
		req.PersonaID = defaultPersonaID
	}
	ctx := c.Request.Context()

	if req.Metadata != nil && req.SessionID != "" {
		stored, err := s.db.SaveSessionMetadata(ctx, req.SessionID, req.Metadata)
		switch {
		case err != nil:
			s.logger.Warn("failed to save session metadata", zap.String("session_id", req.SessionID), zap.Error(err))
		case stored:
			s.metrics.MetadataStored()
		}
	}

	prompt, err := s.db.GetPersonaPrompt(ctx, req.PersonaID, s.cfg.Answerer.PromptKey)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusOK, dto.QueryResponse{
			Error: fmt.Sprintf("No data found for persona '%s' and key '%s'.", req.PersonaID, s.cfg.Answerer.PromptKey),
		})
		return
	}
	if err != nil {
		_ = c.Error(errorx.ErrDatabaseError.WithDetail("original_error", err.Error()))
		return
	}

	name := s.answerer.Name()
	span := s.tracer.Start(ctx, cnst.SpanAnswer).WithAttrs(
		attribute.String(cnst.AttrAnswerer, name),
		attribute.String(cnst.AttrPersona, req.PersonaID),
		attribute.String(cnst.AttrSessionID, req.SessionID),
	)
	start := time.Now()
	reply, err := s.answerer.Answer(span.Ctx, answer.Request{
		Query:        req.Query,
		PersonaID:    req.PersonaID,
		SessionID:    req.SessionID,
		SystemPrompt: prompt.SystemPrompt(),
	})
	span.Fail(err)
	span.End()
	if err != nil {
		s.metrics.AnswerDone(name, start, "error")
		_ = c.Error(errorx.ErrAnswererFailed.WithDetail("original_error", err.Error()))
		return
	}
	s.metrics.AnswerDone(name, start, "ok")

	if err := s.db.SaveExchange(ctx, &database.Exchange{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		PersonaID: req.PersonaID,
		Query:     req.Query,
		Response:  reply,
		Answerer:  name,
	}); err != nil {
		s.logger.Warn("failed to save exchange", zap.String("session_id", req.SessionID), zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.QueryResponse{Response: reply})
}

func (s *Server) handleMediaMatch(c *gin.Context) {
	var req dto.MediaMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errorx.ValidationError("body", err.Error()))
		return
	}
	if req.Type == "" {
		_ = c.Error(errorx.ErrMissingField.WithDetail("field", "type"))
		return
	}

	assets, err := s.db.MatchMedia(c.Request.Context(), req.Type, req.Tag)
	if err != nil {
		_ = c.Error(errorx.ErrDatabaseError.WithDetail("original_error", err.Error()))
		return
	}

	records := make([]dto.MediaRecord, 0, len(assets))
	for _, a := range assets {
		rec := dto.MediaRecord{MediaURL: a.MediaURL, Title: a.Title, Caption: a.Caption}
		if a.SyllabusJSON != "" {
			rec.SyllabusJSON = a.SyllabusJSON
		}
		records = append(records, rec)
	}
	s.metrics.MediaMatched(strings.ToLower(req.Type), len(records))
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleSessionClicks(c *gin.Context) {
	var req dto.SessionClicksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errorx.ValidationError("body", err.Error()))
		return
	}
	if req.SessionID == "" {
		_ = c.Error(errorx.ErrMissingField.WithDetail("field", "session_id"))
		return
	}

	clicks := make([]*database.Click, 0, len(req.Clicks))
	for i, ev := range req.Clicks {
		at, err := time.Parse(time.RFC3339Nano, ev.Time)
		if err != nil {
			_ = c.Error(errorx.ValidationError(fmt.Sprintf("clicks[%d].time", i), err.Error()))
			return
		}
		clicks = append(clicks, &database.Click{SessionID: req.SessionID, Label: ev.Label, ClickedAt: at})
	}

	ctx := c.Request.Context()
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		return s.db.InsertClicks(ctx, clicks)
	})
	if err != nil {
		_ = c.Error(errorx.ErrDatabaseError.WithDetail("original_error", err.Error()))
		return
	}
	s.metrics.EventsIngested("click", len(clicks))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSessionMove(c *gin.Context) {
	var req dto.SessionMovesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errorx.ValidationError("body", err.Error()))
		return
	}
	if req.SessionID == "" {
		_ = c.Error(errorx.ErrMissingField.WithDetail("field", "session_id"))
		return
	}

	moves := make([]*database.Move, 0, len(req.Moves))
	for _, ev := range req.Moves {
		moves = append(moves, &database.Move{SessionID: req.SessionID, X: ev.X, Y: ev.Y, T: ev.T})
	}

	ctx := c.Request.Context()
	err := s.db.Transaction(ctx, func(ctx context.Context) error {
		return s.db.InsertMoves(ctx, moves)
	})
	if err != nil {
		_ = c.Error(errorx.ErrDatabaseError.WithDetail("original_error", err.Error()))
		return
	}
	s.metrics.EventsIngested("move", len(moves))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpcomingClasses(c *gin.Context) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	courses, err := s.db.UpcomingCourses(c.Request.Context(), today)
	if err != nil {
		_ = c.Error(errorx.ErrDatabaseError.WithDetail("original_error", err.Error()))
		return
	}

	classes := make([]dto.UpcomingClass, 0, len(courses))
	for _, course := range courses {
		classes = append(classes, dto.UpcomingClass{
			CourseName:       course.Name,
			CourseLocation:   course.Location,
			CourseLength:     course.Length,
			StartDate:        course.StartDate.UTC().Format(courseDateLayout),
			RegistrationLink: course.RegistrationLink,
		})
	}
	c.JSON(http.StatusOK, classes)
}
