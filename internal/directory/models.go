package directory

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

// ModelInfoFetcher is the slice of the gateway client the mapper needs.
type ModelInfoFetcher interface {
	FetchModelInfo(ctx context.Context) (*gateway.ModelInfoResponse, error)
}

// refreshRetryInterval throttles refresh attempts after a failed fetch so an
// extended gateway outage does not cost one upstream call per lookup.
const refreshRetryInterval = 30 * time.Second

// ModelMapper maps canonical model names (the keys of the activity
// breakdown) to the gateway's deployment display names. The mapping is
// refreshed from /model/info at most once per TTL; lookups are best-effort
// and fall back to the input name when no mapping is known. A failed refresh
// keeps serving the previous mapping and is not retried before
// refreshRetryInterval elapses.
type ModelMapper struct {
	fetcher ModelInfoFetcher
	ttl     time.Duration
	group   singleflight.Group

	mu          sync.RWMutex
	mapping     map[string]string
	nextRefresh time.Time
}

func NewModelMapper(fetcher ModelInfoFetcher, ttl time.Duration) *ModelMapper {
	return &ModelMapper{fetcher: fetcher, ttl: ttl}
}

// DisplayName returns the display name for a canonical model name, or the
// name itself when no mapping exists or the mapping cannot be fetched.
func (m *ModelMapper) DisplayName(ctx context.Context, model string) string {
	m.refresh(ctx)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if display, ok := m.mapping[model]; ok && display != "" {
		return display
	}
	return model
}

func (m *ModelMapper) refresh(ctx context.Context) {
	m.mu.RLock()
	fresh := time.Now().Before(m.nextRefresh)
	m.mu.RUnlock()
	if fresh {
		return
	}

	_, _, _ = m.group.Do("model-info", func() (interface{}, error) {
		resp, err := m.fetcher.FetchModelInfo(ctx)
		if err != nil {
			// Keep serving the stale mapping (or identity) on failure.
			log.Printf("model mapper: refresh failed: %v", err)
			m.mu.Lock()
			m.nextRefresh = time.Now().Add(refreshRetryInterval)
			m.mu.Unlock()
			return nil, nil
		}

		mapping := make(map[string]string, len(resp.Data))
		for _, item := range resp.Data {
			if item.Params == nil || item.Params.Model == "" {
				continue
			}
			mapping[item.Params.Model] = item.ModelName
		}

		m.mu.Lock()
		m.mapping = mapping
		m.nextRefresh = time.Now().Add(m.ttl)
		m.mu.Unlock()
		return nil, nil
	})
}
