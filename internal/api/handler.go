package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vnmchuo/spend-analytics/internal/analytics"
	"github.com/vnmchuo/spend-analytics/internal/audit"
)

// Analytics is the view surface the handler serves.
type Analytics interface {
	TeamTotals(ctx context.Context, startDate, endDate string) (map[string]*analytics.TeamUsage, error)
	TimeSeries(ctx context.Context, startDate, endDate string) ([]analytics.TimeSeriesPoint, error)
	SuccessRate(ctx context.Context, startDate, endDate string) ([]analytics.TeamSuccessRate, error)
	CostEfficiency(ctx context.Context, startDate, endDate string) ([]analytics.CostCell, error)
	ModelUsage(ctx context.Context, startDate, endDate string) ([]analytics.ModelTotal, error)
}

type Handler struct {
	analytics Analytics
	audit     audit.Store
	tracer    trace.Tracer
}

func NewHandler(svc Analytics, store audit.Store, tracer trace.Tracer) *Handler {
	return &Handler{
		analytics: svc,
		audit:     store,
		tracer:    tracer,
	}
}

type teamOut struct {
	Name      string                   `json:"name"`
	Tokens    int                      `json:"tokens"`
	Breakdown *analytics.TeamBreakdown `json:"breakdown"`
}

type teamsOut struct {
	Teams []teamOut `json:"teams"`
}

type timeSeriesOut struct {
	TimeSeries []analytics.TimeSeriesPoint `json:"timeseries"`
}

type modelsOut struct {
	Models []analytics.ModelTotal `json:"models"`
}

type successRateOut struct {
	Teams []analytics.TeamSuccessRate `json:"teams"`
}

type costEfficiencyOut struct {
	Cells []analytics.CostCell `json:"cells"`
}

func (h *Handler) HandleTeamTokens(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "team_totals", func(ctx context.Context, start, end string) (any, error) {
		data, err := h.analytics.TeamTotals(ctx, start, end)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(data))
		for name := range data {
			names = append(names, name)
		}
		sort.Strings(names)

		out := teamsOut{Teams: make([]teamOut, 0, len(names))}
		for _, name := range names {
			out.Teams = append(out.Teams, teamOut{
				Name:      name,
				Tokens:    data[name].TotalTokens,
				Breakdown: data[name].Breakdown,
			})
		}
		return out, nil
	})
}

func (h *Handler) HandleTimeSeries(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "timeseries", func(ctx context.Context, start, end string) (any, error) {
		points, err := h.analytics.TimeSeries(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return timeSeriesOut{TimeSeries: points}, nil
	})
}

func (h *Handler) HandleModelUsage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "model_usage", func(ctx context.Context, start, end string) (any, error) {
		usage, err := h.analytics.ModelUsage(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return modelsOut{Models: usage}, nil
	})
}

func (h *Handler) HandleSuccessRate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "success_rate", func(ctx context.Context, start, end string) (any, error) {
		summary, err := h.analytics.SuccessRate(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return successRateOut{Teams: summary}, nil
	})
}

func (h *Handler) HandleCostEfficiency(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "cost_efficiency", func(ctx context.Context, start, end string) (any, error) {
		cells, err := h.analytics.CostEfficiency(ctx, start, end)
		if err != nil {
			return nil, err
		}
		return costEfficiencyOut{Cells: cells}, nil
	})
}

// HandleRecentQueries exposes the audit trail of served requests.
func (h *Handler) HandleRecentQueries(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := h.audit.RecentQueries(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*audit.QueryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"queries": records})
}

// serve runs the shared date-range endpoint flow: validate the range, call
// the view with gateway-formatted dates, map errors (400 for bad input, 502
// for upstream failure) and record the request in the audit log.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, view string, fn func(ctx context.Context, start, end string) (any, error)) {
	began := time.Now()
	startParam := r.URL.Query().Get("start_date")
	endParam := r.URL.Query().Get("end_date")

	ctx, span := h.tracer.Start(r.Context(), "analytics."+view)
	defer span.End()
	span.SetAttributes(
		attribute.String("view", view),
		attribute.String("start_date", startParam),
		attribute.String("end_date", endParam),
	)

	start, end, err := ParseDateRange(startParam, endParam)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		h.logQuery(r, view, startParam, endParam, http.StatusBadRequest, began)
		return
	}

	payload, err := fn(ctx, FormatGatewayStart(start), FormatGatewayEnd(end))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		h.logQuery(r, view, startParam, endParam, http.StatusBadGateway, began)
		return
	}

	writeJSON(w, http.StatusOK, payload)
	h.logQuery(r, view, startParam, endParam, http.StatusOK, began)
}

// logQuery records the served request asynchronously; the response never
// waits on the audit store.
func (h *Handler) logQuery(r *http.Request, view, startDate, endDate string, status int, began time.Time) {
	requestID := chimiddleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.New().String()
	}
	duration := time.Since(began).Milliseconds()

	go func() {
		err := h.audit.LogQuery(context.Background(), &audit.QueryRecord{
			RequestID:  requestID,
			View:       view,
			StartDate:  startDate,
			EndDate:    endDate,
			Status:     status,
			DurationMs: duration,
		})
		if err != nil {
			log.Printf("audit: failed to log query: %v", err)
		}
	}()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
