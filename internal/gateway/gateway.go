// Package gateway holds the typed wire model of the LiteLLM gateway API and
// an HTTP client for it. The upstream payloads are loosely structured; every
// field here is optional on the wire and decodes to its zero value when
// absent, so downstream aggregation never has to distinguish "missing" from
// "zero".
package gateway

import "context"

// SpendMetrics is the counter block the gateway attaches at every level of a
// daily activity document (day, entity, model group, api key).
type SpendMetrics struct {
	Spend                    float64 `json:"spend"`
	PromptTokens             int     `json:"prompt_tokens"`
	CompletionTokens         int     `json:"completion_tokens"`
	CacheReadInputTokens     int     `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int     `json:"cache_creation_input_tokens"`
	TotalTokens              int     `json:"total_tokens"`
	SuccessfulRequests       int     `json:"successful_requests"`
	FailedRequests           int     `json:"failed_requests"`
	APIRequests              int     `json:"api_requests"`
}

// Add sums every counter of o into m. Addition is field-wise, so folding a
// sequence of metrics is associative and commutative regardless of order.
func (m *SpendMetrics) Add(o SpendMetrics) {
	m.Spend += o.Spend
	m.PromptTokens += o.PromptTokens
	m.CompletionTokens += o.CompletionTokens
	m.CacheReadInputTokens += o.CacheReadInputTokens
	m.CacheCreationInputTokens += o.CacheCreationInputTokens
	m.TotalTokens += o.TotalTokens
	m.SuccessfulRequests += o.SuccessfulRequests
	m.FailedRequests += o.FailedRequests
	m.APIRequests += o.APIRequests
}

// KeyMetadata carries the subset of per-key metadata the service reads.
type KeyMetadata struct {
	KeyAlias string `json:"key_alias"`
}

// KeyMetric is the per-API-key leaf nested under entities and model groups.
type KeyMetric struct {
	Metrics  SpendMetrics `json:"metrics"`
	Metadata KeyMetadata  `json:"metadata"`
}

// GroupMetric is a per-entity or per-model aggregate, broken down by API key.
type GroupMetric struct {
	Metrics         SpendMetrics         `json:"metrics"`
	APIKeyBreakdown map[string]KeyMetric `json:"api_key_breakdown"`
}

// Breakdown is the nested per-day tree. An API key can appear in several
// model groups (it used several models) but is attributed to exactly one
// team through that team's entity-level api_key_breakdown. The served views
// read Entities, ModelGroups and APIKeys; Models and Providers are decoded
// so the struct mirrors the full upstream document.
type Breakdown struct {
	Entities    map[string]GroupMetric `json:"entities"`
	ModelGroups map[string]GroupMetric `json:"model_groups"`
	Models      map[string]GroupMetric `json:"models"`
	Providers   map[string]GroupMetric `json:"providers"`
	APIKeys     map[string]KeyMetric   `json:"api_keys"`
}

// DailyActivity is one calendar day of the activity response.
type DailyActivity struct {
	Date      string       `json:"date"`
	Metrics   SpendMetrics `json:"metrics"`
	Breakdown *Breakdown   `json:"breakdown"`
}

// ActivityMetadata describes pagination state of an activity response.
type ActivityMetadata struct {
	TotalSpend              float64 `json:"total_spend"`
	TotalPromptTokens       int     `json:"total_prompt_tokens"`
	TotalCompletionTokens   int     `json:"total_completion_tokens"`
	TotalTokens             int     `json:"total_tokens"`
	TotalAPIRequests        int     `json:"total_api_requests"`
	TotalSuccessfulRequests int     `json:"total_successful_requests"`
	TotalFailedRequests     int     `json:"total_failed_requests"`
	Page                    int     `json:"page"`
	TotalPages              int     `json:"total_pages"`
	HasMore                 bool    `json:"has_more"`
}

// ActivityResponse is the full /team/daily/activity payload.
type ActivityResponse struct {
	Results  []DailyActivity   `json:"results"`
	Metadata *ActivityMetadata `json:"metadata"`
}

// Team is one entry of the /team/list response. TeamID is the stable
// upstream identifier; TeamAlias is the optional display name.
type Team struct {
	TeamID    string `json:"team_id"`
	TeamAlias string `json:"team_alias"`
}

// ModelParams holds the canonical model name behind a gateway deployment.
type ModelParams struct {
	Model string `json:"model"`
}

// ModelInfoItem is one deployment of the /model/info response.
type ModelInfoItem struct {
	ModelName string       `json:"model_name"`
	Params    *ModelParams `json:"litellm_params"`
}

// ModelInfoResponse is the full /model/info payload.
type ModelInfoResponse struct {
	Data []ModelInfoItem `json:"data"`
}

// API is the full surface of the gateway client. Consumers should depend on
// narrower single-purpose interfaces; this one exists for wiring.
type API interface {
	FetchTeams(ctx context.Context) ([]Team, error)
	FetchDailyActivity(ctx context.Context, teamIDs []string, startDate, endDate string) (*ActivityResponse, error)
	FetchModelInfo(ctx context.Context) (*ModelInfoResponse, error)
}
