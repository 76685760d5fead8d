package analytics

import (
	"context"
	"sort"
)

// ModelTotal is one model's token total across all teams.
type ModelTotal struct {
	Model  string `json:"model"`
	Tokens int    `json:"tokens"`
}

// ModelUsage folds total tokens per model across all teams and days,
// ignoring team attribution. Models whose accumulated total is zero are
// dropped; the rest sort by token count descending, ties keeping
// first-seen order.
func (s *Service) ModelUsage(ctx context.Context, startDate, endDate string) ([]ModelTotal, error) {
	_, days, err := s.fetchRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	totals := map[string]int{}
	var order []string

	for _, day := range days {
		if day.Breakdown == nil {
			continue
		}
		for _, model := range sortedKeys(day.Breakdown.ModelGroups) {
			display := s.modelDisplayName(ctx, model)
			if _, seen := totals[display]; !seen {
				order = append(order, display)
			}
			totals[display] += day.Breakdown.ModelGroups[model].Metrics.TotalTokens
		}
	}

	usage := make([]ModelTotal, 0, len(order))
	for _, model := range order {
		if totals[model] == 0 {
			continue
		}
		usage = append(usage, ModelTotal{Model: model, Tokens: totals[model]})
	}
	sort.SliceStable(usage, func(i, j int) bool {
		return usage[i].Tokens > usage[j].Tokens
	})

	return usage, nil
}
