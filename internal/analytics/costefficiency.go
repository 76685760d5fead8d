package analytics

import "context"

// CostCell is the derived cost-efficiency projection for one (team, model)
// pair: total spend, total tokens and the spend per 1000 tokens.
type CostCell struct {
	Team            string  `json:"team"`
	Model           string  `json:"model"`
	CostPer1kTokens float64 `json:"cost_per_1k_tokens"`
	TotalCost       float64 `json:"total_cost"`
	TotalTokens     int     `json:"total_tokens"`
}

// CostEfficiency folds spend and tokens per (team, model) pair across the
// range. A pair accumulates whenever one of the team's API keys appears in
// the model group's key breakdown; pairs with no observed intersection are
// omitted entirely, so the output is sparse rather than a zero-filled cross
// product. Cost figures round to four decimals; zero tokens yield a
// cost-per-1k of 0.0.
func (s *Service) CostEfficiency(ctx context.Context, startDate, endDate string) ([]CostCell, error) {
	teamIDs, days, err := s.fetchRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	type accum struct {
		tokens int
		cost   float64
	}
	type teamModels struct {
		order []string
		cells map[string]*accum
	}
	folded := make(map[string]*teamModels, len(teamIDs))
	for _, id := range teamIDs {
		folded[id] = &teamModels{cells: map[string]*accum{}}
	}

	for _, day := range days {
		if day.Breakdown == nil {
			continue
		}
		for _, teamID := range teamIDs {
			entity := day.Breakdown.Entities[teamID]
			if len(entity.APIKeyBreakdown) == 0 {
				continue
			}
			tm := folded[teamID]

			for _, model := range sortedKeys(day.Breakdown.ModelGroups) {
				group := day.Breakdown.ModelGroups[model]
				for key := range entity.APIKeyBreakdown {
					km, ok := group.APIKeyBreakdown[key]
					if !ok {
						continue
					}
					cell, ok := tm.cells[model]
					if !ok {
						cell = &accum{}
						tm.cells[model] = cell
						tm.order = append(tm.order, model)
					}
					cell.tokens += km.Metrics.TotalTokens
					cell.cost += km.Metrics.Spend
				}
			}
		}
	}

	cells := make([]CostCell, 0)
	for _, teamID := range teamIDs {
		tm := folded[teamID]
		for _, model := range tm.order {
			cell := tm.cells[model]
			perThousand := 0.0
			if cell.tokens > 0 {
				perThousand = round4(cell.cost / float64(cell.tokens) * 1000)
			}
			cells = append(cells, CostCell{
				Team:            s.teams.DisplayName(teamID),
				Model:           model,
				CostPer1kTokens: perThousand,
				TotalCost:       round4(cell.cost),
				TotalTokens:     cell.tokens,
			})
		}
	}

	return cells, nil
}
