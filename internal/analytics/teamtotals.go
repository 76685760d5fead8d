package analytics

import (
	"context"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

// ModelTokens is the per-model token triple inside a key's drill-down.
type ModelTokens struct {
	ModelName        string `json:"model_name"`
	TotalTokens      int    `json:"total_tokens"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
}

// APIKeyUsage is one API key's drill-down: which models it used and, when
// known, the key's human alias.
type APIKeyUsage struct {
	APIKey   string         `json:"api_key"`
	KeyAlias string         `json:"key_alias,omitempty"`
	Models   []*ModelTokens `json:"models"`
}

// TeamBreakdown is the two-level (api key -> model) drill-down of a team.
type TeamBreakdown struct {
	APIKeys []*APIKeyUsage `json:"api_keys"`
}

// TeamUsage is the aggregate view of one team over the requested range.
type TeamUsage struct {
	TotalTokens int            `json:"total_tokens"`
	Breakdown   *TeamBreakdown `json:"breakdown"`
}

// allModelsBucket names the synthetic drill-down entry used when a key
// appears in a team's entity breakdown but in no model group, so its usage
// cannot be attributed to specific models.
const allModelsBucket = "All Models"

// TeamTotals aggregates total tokens per team with a per-key, per-model
// drill-down, keyed by team display name. Every requested team appears in
// the result; a team absent from every day keeps zero tokens and an empty
// key list.
func (s *Service) TeamTotals(ctx context.Context, startDate, endDate string) (map[string]*TeamUsage, error) {
	teamIDs, days, err := s.fetchRange(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	result := make(map[string]*TeamUsage, len(teamIDs))
	for _, id := range teamIDs {
		result[s.teams.DisplayName(id)] = &TeamUsage{
			Breakdown: &TeamBreakdown{APIKeys: []*APIKeyUsage{}},
		}
	}

	for _, day := range days {
		if day.Breakdown == nil {
			continue
		}
		for _, teamID := range sortedKeys(day.Breakdown.Entities) {
			usage, ok := result[s.teams.DisplayName(teamID)]
			if !ok {
				continue
			}
			entity := day.Breakdown.Entities[teamID]
			usage.TotalTokens += entity.Metrics.TotalTokens
			mergeBreakdown(usage.Breakdown, extractBreakdown(entity, day.Breakdown))
		}
	}

	return result, nil
}

// extractBreakdown builds one day's drill-down for a single team. The
// team's key set comes from its entity; model attribution comes from the
// top-level model groups, where each group lists the keys that used it.
// Keys with no model-group hit fall back to a single "All Models" entry
// carrying the key's entity-level aggregate.
func extractBreakdown(entity gateway.GroupMetric, top *gateway.Breakdown) *TeamBreakdown {
	breakdown := &TeamBreakdown{APIKeys: []*APIKeyUsage{}}

	teamKeys := sortedKeys(entity.APIKeyBreakdown)
	if len(teamKeys) == 0 {
		return breakdown
	}

	keyModels := make(map[string][]*ModelTokens, len(teamKeys))
	for _, model := range sortedKeys(top.ModelGroups) {
		group := top.ModelGroups[model]
		for _, key := range teamKeys {
			km, ok := group.APIKeyBreakdown[key]
			if !ok {
				continue
			}
			keyModels[key] = append(keyModels[key], &ModelTokens{
				ModelName:        model,
				TotalTokens:      km.Metrics.TotalTokens,
				PromptTokens:     km.Metrics.PromptTokens,
				CompletionTokens: km.Metrics.CompletionTokens,
			})
		}
	}

	for _, key := range teamKeys {
		entry := &APIKeyUsage{
			APIKey:   key,
			KeyAlias: top.APIKeys[key].Metadata.KeyAlias,
			Models:   keyModels[key],
		}
		if len(entry.Models) == 0 {
			m := entity.APIKeyBreakdown[key].Metrics
			entry.Models = []*ModelTokens{{
				ModelName:        allModelsBucket,
				TotalTokens:      m.TotalTokens,
				PromptTokens:     m.PromptTokens,
				CompletionTokens: m.CompletionTokens,
			}}
		}
		breakdown.APIKeys = append(breakdown.APIKeys, entry)
	}

	return breakdown
}

// mergeBreakdown folds one day's drill-down into the running breakdown,
// keyed by (api key, model name). Token counts sum field-wise; an alias
// observed on any day sticks to the key and is never cleared by a day
// without one.
func mergeBreakdown(dst, src *TeamBreakdown) {
	existing := make(map[string]*APIKeyUsage, len(dst.APIKeys))
	for _, k := range dst.APIKeys {
		existing[k.APIKey] = k
	}

	for _, srcKey := range src.APIKeys {
		key, ok := existing[srcKey.APIKey]
		if !ok {
			dst.APIKeys = append(dst.APIKeys, srcKey)
			continue
		}
		if key.KeyAlias == "" {
			key.KeyAlias = srcKey.KeyAlias
		}

		models := make(map[string]*ModelTokens, len(key.Models))
		for _, m := range key.Models {
			models[m.ModelName] = m
		}
		for _, srcModel := range srcKey.Models {
			if m, ok := models[srcModel.ModelName]; ok {
				m.TotalTokens += srcModel.TotalTokens
				m.PromptTokens += srcModel.PromptTokens
				m.CompletionTokens += srcModel.CompletionTokens
			} else {
				key.Models = append(key.Models, srcModel)
			}
		}
	}
}
