package server

import (
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/app"
	"github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/domain"
	apperrors "github.com/felixdelbarrio/Global-Overview-Radar-sub000/internal/errors"
)

func (s *Server) handleMentions(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	view, err := s.app.Mentions(c.Request().Context(), filter, forceFromQuery(c))
	if err != nil {
		return err
	}

	if err := c.JSON(200, view); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleTimeseries(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	points, err := s.app.Timeseries(c.Request().Context(), filter, c.QueryParam("comparison"))
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{"points": points}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleAnswered(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	view, err := s.app.Answered(c.Request().Context(), filter, c.QueryParam("comparison"))
	if err != nil {
		return err
	}

	if err := c.JSON(200, view); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleResponsesSummary(c echo.Context) error {
	totals, err := s.app.ResponsesSummary(c.Request().Context())
	if err != nil {
		return err
	}

	if err := c.JSON(200, totals); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleMeta(c echo.Context) error {
	ctx := c.Request().Context()

	meta, err := s.app.Meta(ctx, forceFromQuery(c))
	if err != nil {
		return err
	}

	candidates, err := s.app.ComparisonOptions(ctx, c.QueryParam("geo"))
	if err != nil {
		return err
	}

	if err := c.JSON(200, map[string]any{
		"meta":                  meta,
		"comparison_candidates": candidates,
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleInsights(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}

	raw, err := s.app.Insights(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSONBlob(200, raw)
}

func (s *Server) handleOverride(c echo.Context) error {
	var req domain.OverrideRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("malformed override body")
	}
	if len(req.IDs) == 0 {
		return apperrors.ValidationError("override requires at least one item id")
	}
	if !validSentiment(req.Sentiment) {
		return apperrors.ValidationError("unknown sentiment value").WithField("sentiment", string(req.Sentiment))
	}

	updated, err := s.app.Override(c.Request().Context(), req)
	if err != nil {
		return err
	}

	if err := c.JSON(200, domain.OverrideResult{Updated: updated}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleCompare(c echo.Context) error {
	var body struct {
		Filters []filterDTO `json:"filters"`
	}
	if err := c.Bind(&body); err != nil {
		return apperrors.ValidationError("malformed compare body")
	}
	if len(body.Filters) == 0 {
		return apperrors.ValidationError("compare requires at least one filter")
	}

	filters := make([]app.Filter, 0, len(body.Filters))
	for i, dto := range body.Filters {
		f, err := dto.toFilter()
		if err != nil {
			if appErr, ok := err.(*apperrors.Error); ok {
				return appErr.WithField("filter_index", i)
			}
			return err
		}
		filters = append(filters, f)
	}

	raw, err := s.app.Compare(c.Request().Context(), filters)
	if err != nil {
		return err
	}

	return c.JSONBlob(200, raw)
}

// filterDTO is the wire shape of a filter, shared by the compare body and,
// field for field, by the read endpoints' query parameters.
type filterDTO struct {
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	Sentiment string `json:"sentiment"`
	Entity    string `json:"entity"`
	Geo       string `json:"geo"`
	Sources   string `json:"sources"`
}

func (d filterDTO) toFilter() (app.Filter, error) {
	if err := validateDate("from_date", d.FromDate); err != nil {
		return app.Filter{}, err
	}
	if err := validateDate("to_date", d.ToDate); err != nil {
		return app.Filter{}, err
	}
	if d.Sentiment != "" && !validSentiment(domain.Sentiment(d.Sentiment)) {
		return app.Filter{}, apperrors.ValidationError("unknown sentiment value").WithField("sentiment", d.Sentiment)
	}

	return app.Filter{
		FromDate:  d.FromDate,
		ToDate:    d.ToDate,
		Sentiment: d.Sentiment,
		Entity:    d.Entity,
		Geo:       d.Geo,
		Sources:   splitSources(d.Sources),
	}, nil
}

func filterFromQuery(c echo.Context) (app.Filter, error) {
	dto := filterDTO{
		FromDate:  c.QueryParam("from_date"),
		ToDate:    c.QueryParam("to_date"),
		Sentiment: c.QueryParam("sentiment"),
		Entity:    c.QueryParam("entity"),
		Geo:       c.QueryParam("geo"),
		Sources:   c.QueryParam("sources"),
	}
	return dto.toFilter()
}

func forceFromQuery(c echo.Context) bool {
	switch c.QueryParam("force") {
	case "true", "1":
		return true
	}
	return false
}

func validateDate(field, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return apperrors.ValidationError("date must be formatted YYYY-MM-DD").WithField(field, value)
	}
	return nil
}

func validSentiment(s domain.Sentiment) bool {
	switch s {
	case "", domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
		return true
	}
	return false
}

func splitSources(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
