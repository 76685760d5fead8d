package analytics

import (
	"context"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

// DailyTeamTokens is one team's usage on a single day.
type DailyTeamTokens struct {
	Name               string `json:"name"`
	Tokens             int    `json:"tokens"`
	TotalRequests      int    `json:"total_requests"`
	SuccessfulRequests int    `json:"successful_requests"`
	FailedRequests     int    `json:"failed_requests"`
}

// TimeSeriesPoint is one upstream day with a row for every requested team.
type TimeSeriesPoint struct {
	Date  string            `json:"date"`
	Teams []DailyTeamTokens `json:"teams"`
}

// TimeSeries returns one point per upstream day, preserving upstream day
// order. Every point lists every requested team; a team absent from a
// day's entities yields an explicit zero-filled row, never an omission.
// There is no cross-day accumulation.
func (s *Service) TimeSeries(ctx context.Context, startDate, endDate string) ([]TimeSeriesPoint, error) {
	teamIDs, days, err := s.fetchRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	points := make([]TimeSeriesPoint, 0, len(days))
	for _, day := range days {
		var entities map[string]gateway.GroupMetric
		if day.Breakdown != nil {
			entities = day.Breakdown.Entities
		}

		teams := make([]DailyTeamTokens, 0, len(teamIDs))
		for _, teamID := range teamIDs {
			metrics := entities[teamID].Metrics
			teams = append(teams, DailyTeamTokens{
				Name:               s.teams.DisplayName(teamID),
				Tokens:             metrics.TotalTokens,
				TotalRequests:      metrics.APIRequests,
				SuccessfulRequests: metrics.SuccessfulRequests,
				FailedRequests:     metrics.FailedRequests,
			})
		}
		points = append(points, TimeSeriesPoint{Date: day.Date, Teams: teams})
	}

	return points, nil
}
