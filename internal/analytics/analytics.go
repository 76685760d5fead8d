// Package analytics reshapes the gateway's per-day spend breakdown into the
// analytical views served by the API: team totals with drill-down, a daily
// time series, per-team success rates, per-team/model cost efficiency and
// per-model usage.
//
// Every view is a single-pass fold over one fetched activity document.
// Missing counters anywhere in the document fold in as zero; the only error
// path is a failed upstream fetch, which is returned to the caller
// unchanged in meaning.
package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

// ActivityFetcher is the slice of the gateway client the views need.
type ActivityFetcher interface {
	FetchDailyActivity(ctx context.Context, teamIDs []string, startDate, endDate string) (*gateway.ActivityResponse, error)
}

// TeamDirectory resolves the requested team set. TeamIDs populates the
// directory on first use; DisplayName reads the populated cache and always
// returns a non-empty name (the id itself when no alias exists).
type TeamDirectory interface {
	TeamIDs(ctx context.Context) ([]string, error)
	DisplayName(teamID string) string
}

// ModelNamer maps canonical model names to display names. Implementations
// are best-effort and must fall back to the input name.
type ModelNamer interface {
	DisplayName(ctx context.Context, model string) string
}

// Service computes all analytical views. One instance is shared across
// requests; it holds no per-request state.
type Service struct {
	fetcher ActivityFetcher
	teams   TeamDirectory
	models  ModelNamer // optional, nil means identity
}

func NewService(fetcher ActivityFetcher, teams TeamDirectory, models ModelNamer) *Service {
	return &Service{fetcher: fetcher, teams: teams, models: models}
}

// fetchRange resolves the team set and fetches one activity document
// covering the date range. Dates arrive pre-formatted for the gateway.
func (s *Service) fetchRange(ctx context.Context, startDate, endDate string) ([]string, []gateway.DailyActivity, error) {
	teamIDs, err := s.teams.TeamIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	resp, err := s.fetcher.FetchDailyActivity(ctx, teamIDs, startDate, endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch team activity: %w", err)
	}
	return teamIDs, resp.Results, nil
}

func (s *Service) modelDisplayName(ctx context.Context, model string) string {
	if s.models == nil {
		return model
	}
	return s.models.DisplayName(ctx, model)
}

// sortedKeys returns the map's keys in lexical order. The upstream maps
// carry no meaningful order, so folds iterate them deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
