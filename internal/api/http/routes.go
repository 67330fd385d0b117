package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/pest-advisory/internal/advisor"
	"github.com/i474232898/pest-advisory/internal/farm"
	"github.com/i474232898/pest-advisory/internal/risk"
	"github.com/i474232898/pest-advisory/internal/store"
	"github.com/i474232898/pest-advisory/internal/translate"
	"github.com/i474232898/pest-advisory/internal/weather"
)

var validate = validator.New()

// Repository is the persistence the handlers write to and read from.
type Repository interface {
	SaveFarmer(ctx context.Context, uid string, record json.RawMessage) error
	SaveReport(ctx context.Context, report risk.OfficialReport) error
	AlertsForFarmer(ctx context.Context, uid string, limit int) ([]risk.Alert, error)
}

// Scanner runs a scan for one farmer.
type Scanner interface {
	ScanFarmer(ctx context.Context, uid string, opts advisor.ScanOptions) ([]risk.Alert, error)
}

// WeatherReader exposes the cached district weather.
type WeatherReader interface {
	GetLatest(district string) (weather.Snapshot, error)
	GetRange(district string, from, to time.Time) ([]weather.Snapshot, error)
}

// Deps bundles what the routes need. Translator and Weather may be nil.
type Deps struct {
	Repo       Repository
	Scanner    Scanner
	Weather    WeatherReader
	Translator translate.Translator
	Now        func() time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	h := &handlers{deps: deps}

	v1 := app.Group("/api/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "pest-advisory",
		})
	})

	v1.Put("/farmers/:uid", h.putFarmer)
	v1.Post("/reports", h.postReport)
	v1.Post("/scan/farmer/:uid", h.scanFarmer)
	v1.Get("/alerts/:uid", h.listAlerts)

	if deps.Weather != nil {
		v1.Get("/weather/:district", h.latestWeather)
		v1.Get("/weather/:district/history", h.weatherHistory)
	}
}

type handlers struct {
	deps Deps
}

func (h *handlers) putFarmer(c *fiber.Ctx) error {
	uid := strings.TrimSpace(c.Params("uid"))
	body := append(json.RawMessage(nil), c.Body()...)

	farmer, err := farm.Decode(uid, body)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.deps.Repo.SaveFarmer(c.UserContext(), uid, body); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store farmer")
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"uid":      uid,
		"district": farmer.District,
		"crops":    len(farmer.Slots),
	})
}

// reportRequest is the body of POST /reports.
type reportRequest struct {
	ReportID   string   `json:"reportId"`
	District   string   `json:"district" validate:"required"`
	Crop       string   `json:"crop" validate:"required"`
	Pest       string   `json:"pest"`
	Symptoms   string   `json:"symptoms"`
	Confidence *float64 `json:"confidence" validate:"omitempty,gte=0,lte=1"`
	ReportDate string   `json:"reportDate"`
}

func (r reportRequest) toReport(now time.Time) (risk.OfficialReport, error) {
	rep := risk.OfficialReport{
		ID:         r.ReportID,
		District:   strings.TrimSpace(r.District),
		Crop:       strings.TrimSpace(r.Crop),
		Pest:       strings.TrimSpace(r.Pest),
		Symptoms:   r.Symptoms,
		Confidence: 1.0,
		ReportDate: strings.TrimSpace(r.ReportDate),
		CreatedAt:  now.UnixMilli(),
	}
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if r.Confidence != nil {
		rep.Confidence = *r.Confidence
	}
	if rep.ReportDate == "" {
		rep.ReportDate = now.Format("2006-01-02")
	} else if _, ok := risk.ParseDate(rep.ReportDate); !ok {
		return rep, errors.New("reportDate must be YYYY-MM-DD or RFC3339")
	}
	return rep, nil
}

func (h *handlers) postReport(c *fiber.Ctx) error {
	var req reportRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid report body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	report, err := req.toReport(h.deps.Now())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := h.deps.Repo.SaveReport(c.UserContext(), report); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to store report")
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *handlers) scanFarmer(c *fiber.Ctx) error {
	uid := c.Params("uid")
	opts := advisor.ScanOptions{
		Persist: c.QueryBool("persist", true),
		Notify:  c.QueryBool("notify", false),
	}

	alerts, err := h.deps.Scanner.ScanFarmer(c.UserContext(), uid, opts)
	if err != nil {
		return scanError(err)
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"created": len(alerts),
		"alerts":  h.localize(c.UserContext(), alerts, c.Query("lang")),
	})
}

func (h *handlers) listAlerts(c *fiber.Ctx) error {
	uid := c.Params("uid")
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	alerts, err := h.deps.Repo.AlertsForFarmer(c.UserContext(), uid, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load alerts")
	}

	return c.JSON(fiber.Map{
		"uid":    uid,
		"alerts": h.localize(c.UserContext(), alerts, c.Query("lang")),
	})
}

func scanError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "farmer not found")
	case errors.Is(err, risk.ErrDistrictMissing):
		return fiber.NewError(fiber.StatusBadRequest, "farmer district or soil type missing")
	case errors.Is(err, farm.ErrMalformed):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "scan failed")
	}
}

// localizedAlert carries Kannada renderings next to the original fields.
type localizedAlert struct {
	risk.Alert
	SeverityLabel           string   `json:"severityLabel,omitempty"`
	ComplexityLabel         string   `json:"complexityLabel,omitempty"`
	ReasonsLabel            []string `json:"reasonsLabel,omitempty"`
	PreventiveMeasuresLabel []string `json:"preventiveMeasuresLabel,omitempty"`
	CorrectiveMeasuresLabel []string `json:"correctiveMeasuresLabel,omitempty"`
}

func (h *handlers) localize(ctx context.Context, alerts []risk.Alert, lang string) []localizedAlert {
	out := make([]localizedAlert, 0, len(alerts))
	tr := h.deps.Translator
	for _, a := range alerts {
		la := localizedAlert{Alert: a}
		if tr != nil && translate.IsKannada(lang) {
			la.SeverityLabel = tr.Translate(ctx, string(a.Severity))
			la.ComplexityLabel = tr.Translate(ctx, string(a.ComplexityLevel))
			la.ReasonsLabel = translateAll(ctx, tr, a.Reasons)
			la.PreventiveMeasuresLabel = translateAll(ctx, tr, a.PreventiveMeasures)
			la.CorrectiveMeasuresLabel = translateAll(ctx, tr, a.CorrectiveMeasures)
		}
		out = append(out, la)
	}
	return out
}

func translateAll(ctx context.Context, tr translate.Translator, items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = tr.Translate(ctx, s)
	}
	return out
}

func (h *handlers) latestWeather(c *fiber.Ctx) error {
	district, err := districtParam(c)
	if err != nil {
		return err
	}

	snapshot, err := h.deps.Weather.GetLatest(district)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather data for requested district")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}

	return c.JSON(snapshot)
}

func (h *handlers) weatherHistory(c *fiber.Ctx) error {
	district, err := districtParam(c)
	if err != nil {
		return err
	}

	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	snapshots, err := h.deps.Weather.GetRange(district, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}

	return c.JSON(fiber.Map{
		"district":  district,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

func districtParam(c *fiber.Ctx) (string, error) {
	district, err := url.PathUnescape(c.Params("district"))
	if err != nil || strings.TrimSpace(district) == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "invalid district")
	}
	return strings.TrimSpace(district), nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
