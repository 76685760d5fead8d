package analytics

import "context"

// TeamSuccessRate is one team's request outcome summary over the range.
type TeamSuccessRate struct {
	Name               string  `json:"name"`
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	SuccessRate        float64 `json:"success_rate"`
}

// SuccessRate folds request counts per team across all days and derives the
// success percentage, rounded to two decimals. A team with no requests
// reports a rate of 0.0 rather than NaN. Output order follows the
// requested team ids, not upstream order.
func (s *Service) SuccessRate(ctx context.Context, startDate, endDate string) ([]TeamSuccessRate, error) {
	teamIDs, days, err := s.fetchRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	type counts struct {
		total, successful, failed int
	}
	folded := make(map[string]*counts, len(teamIDs))
	for _, id := range teamIDs {
		folded[id] = &counts{}
	}

	for _, day := range days {
		if day.Breakdown == nil {
			continue
		}
		for _, teamID := range teamIDs {
			metrics := day.Breakdown.Entities[teamID].Metrics
			c := folded[teamID]
			c.total += metrics.APIRequests
			c.successful += metrics.SuccessfulRequests
			c.failed += metrics.FailedRequests
		}
	}

	summary := make([]TeamSuccessRate, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		c := folded[teamID]
		rate := 0.0
		if c.total > 0 {
			rate = round2(float64(c.successful) / float64(c.total) * 100)
		}
		summary = append(summary, TeamSuccessRate{
			Name:               s.teams.DisplayName(teamID),
			TotalRequests:      c.total,
			SuccessfulRequests: c.successful,
			FailedRequests:     c.failed,
			SuccessRate:        rate,
		})
	}

	return summary, nil
}
