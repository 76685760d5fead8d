package analytics

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

var errTest = errors.New("gateway unreachable")

type stubFetcher struct {
	resp       *gateway.ActivityResponse
	err        error
	gotTeamIDs []string
}

func (f *stubFetcher) FetchDailyActivity(ctx context.Context, teamIDs []string, startDate, endDate string) (*gateway.ActivityResponse, error) {
	f.gotTeamIDs = teamIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type stubDirectory struct {
	ids   []string
	names map[string]string
	err   error
}

func (d *stubDirectory) TeamIDs(ctx context.Context) ([]string, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.ids, nil
}

func (d *stubDirectory) DisplayName(teamID string) string {
	if name, ok := d.names[teamID]; ok && name != "" {
		return name
	}
	return teamID
}

type stubNamer struct {
	names map[string]string
}

func (n *stubNamer) DisplayName(ctx context.Context, model string) string {
	if display, ok := n.names[model]; ok {
		return display
	}
	return model
}

func newTestService(days []gateway.DailyActivity, dir *stubDirectory) *Service {
	return NewService(&stubFetcher{resp: &gateway.ActivityResponse{Results: days}}, dir, nil)
}

func metricsFor(m gateway.SpendMetrics) gateway.GroupMetric {
	return gateway.GroupMetric{Metrics: m}
}

func TestSpendMetricsAdd_FieldWise(t *testing.T) {
	a := gateway.SpendMetrics{
		Spend:              0.5,
		PromptTokens:       10,
		CompletionTokens:   20,
		TotalTokens:        30,
		SuccessfulRequests: 2,
		FailedRequests:     1,
		APIRequests:        3,
	}
	b := gateway.SpendMetrics{
		Spend:                    0.25,
		PromptTokens:             1,
		CacheReadInputTokens:     5,
		CacheCreationInputTokens: 7,
		TotalTokens:              1,
	}

	a.Add(b)

	if a.Spend != 0.75 {
		t.Errorf("Expected spend 0.75, got %v", a.Spend)
	}
	if a.PromptTokens != 11 || a.CompletionTokens != 20 || a.TotalTokens != 31 {
		t.Errorf("Unexpected token sums: %+v", a)
	}
	if a.CacheReadInputTokens != 5 || a.CacheCreationInputTokens != 7 {
		t.Errorf("Unexpected cache sums: %+v", a)
	}
	if a.SuccessfulRequests != 2 || a.FailedRequests != 1 || a.APIRequests != 3 {
		t.Errorf("Unexpected request sums: %+v", a)
	}
}

// Folding the same days in any permutation must yield identical totals.
func TestFold_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	days := make([]gateway.SpendMetrics, 8)
	for i := range days {
		days[i] = gateway.SpendMetrics{
			Spend:              float64(rng.Intn(1000)) * 0.25,
			PromptTokens:       rng.Intn(5000),
			CompletionTokens:   rng.Intn(5000),
			TotalTokens:        rng.Intn(10000),
			SuccessfulRequests: rng.Intn(100),
			FailedRequests:     rng.Intn(10),
			APIRequests:        rng.Intn(110),
		}
	}

	fold := func(order []int) gateway.SpendMetrics {
		var acc gateway.SpendMetrics
		for _, i := range order {
			acc.Add(days[i])
		}
		return acc
	}

	base := []int{0, 1, 2, 3, 4, 5, 6, 7}
	want := fold(base)
	for trial := 0; trial < 20; trial++ {
		perm := rng.Perm(len(days))
		if got := fold(perm); !reflect.DeepEqual(got, want) {
			t.Fatalf("Fold not permutation invariant: order %v gave %+v, want %+v", perm, got, want)
		}
	}
}

func TestFetchError_Propagated(t *testing.T) {
	fetcher := &stubFetcher{err: errTest}
	svc := NewService(fetcher, &stubDirectory{ids: []string{"team1"}}, nil)

	if _, err := svc.TeamTotals(context.Background(), "2024.01.15", "2024-01-16T23:59:59Z"); err == nil {
		t.Error("TeamTotals: expected fetch error")
	}
	if _, err := svc.TimeSeries(context.Background(), "2024.01.15", "2024-01-16T23:59:59Z"); err == nil {
		t.Error("TimeSeries: expected fetch error")
	}
	if _, err := svc.SuccessRate(context.Background(), "2024.01.15", "2024-01-16T23:59:59Z"); err == nil {
		t.Error("SuccessRate: expected fetch error")
	}
	if _, err := svc.CostEfficiency(context.Background(), "2024.01.15", "2024-01-16T23:59:59Z"); err == nil {
		t.Error("CostEfficiency: expected fetch error")
	}
	if _, err := svc.ModelUsage(context.Background(), "2024.01.15", "2024-01-16T23:59:59Z"); err == nil {
		t.Error("ModelUsage: expected fetch error")
	}
}
