// Package directory resolves team identifiers to display names and caches
// the gateway's deployment-to-model mapping.
package directory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

// TeamFetcher is the slice of the gateway client the directory needs.
type TeamFetcher interface {
	FetchTeams(ctx context.Context) ([]gateway.Team, error)
}

// TeamDirectory caches the gateway's team list for the process lifetime.
// Population happens at most once; concurrent first use is collapsed into a
// single upstream fetch via singleflight. A failed fetch leaves the
// directory unpopulated so the next call retries.
type TeamDirectory struct {
	fetcher TeamFetcher
	group   singleflight.Group

	mu     sync.RWMutex
	ids    []string
	names  map[string]string
	loaded bool
}

func NewTeamDirectory(fetcher TeamFetcher) *TeamDirectory {
	return &TeamDirectory{fetcher: fetcher}
}

// TeamIDs returns the upstream team identifiers in gateway order, fetching
// the team list on first use.
func (d *TeamDirectory) TeamIDs(ctx context.Context) ([]string, error) {
	if err := d.ensure(ctx); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, len(d.ids))
	copy(ids, d.ids)
	return ids, nil
}

// DisplayName resolves a team id to its alias, falling back to the id
// itself so the result is never empty. It reads only the populated cache;
// an unknown or not-yet-loaded id resolves to itself.
func (d *TeamDirectory) DisplayName(teamID string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if name, ok := d.names[teamID]; ok && name != "" {
		return name
	}
	return teamID
}

func (d *TeamDirectory) ensure(ctx context.Context) error {
	d.mu.RLock()
	loaded := d.loaded
	d.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := d.group.Do("teams", func() (interface{}, error) {
		d.mu.RLock()
		loaded := d.loaded
		d.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		teams, err := d.fetcher.FetchTeams(ctx)
		if err != nil {
			return nil, fmt.Errorf("populate team directory: %w", err)
		}

		ids := make([]string, 0, len(teams))
		names := make(map[string]string, len(teams))
		for _, t := range teams {
			ids = append(ids, t.TeamID)
			if t.TeamAlias != "" {
				names[t.TeamID] = t.TeamAlias
			} else {
				names[t.TeamID] = t.TeamID
			}
		}

		d.mu.Lock()
		d.ids = ids
		d.names = names
		d.loaded = true
		d.mu.Unlock()
		return nil, nil
	})
	return err
}
