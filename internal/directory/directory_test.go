package directory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnmchuo/spend-analytics/internal/gateway"
)

type mockTeamFetcher struct {
	teams []gateway.Team
	err   error
	calls int32
}

func (m *mockTeamFetcher) FetchTeams(ctx context.Context) ([]gateway.Team, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.teams, nil
}

func TestTeamDirectory_LazySingleFetch(t *testing.T) {
	fetcher := &mockTeamFetcher{teams: []gateway.Team{
		{TeamID: "team1", TeamAlias: "Team One"},
		{TeamID: "team2"},
	}}
	dir := NewTeamDirectory(fetcher)

	if got := atomic.LoadInt32(&fetcher.calls); got != 0 {
		t.Fatalf("Expected no fetch before first use, got %d", got)
	}

	ids, err := dir.TeamIDs(context.Background())
	if err != nil {
		t.Fatalf("TeamIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "team1" || ids[1] != "team2" {
		t.Fatalf("Unexpected ids: %v", ids)
	}

	// Repeated reads must not refetch.
	if _, err := dir.TeamIDs(context.Background()); err != nil {
		t.Fatalf("TeamIDs failed: %v", err)
	}
	dir.DisplayName("team1")
	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Errorf("Expected exactly 1 upstream fetch, got %d", got)
	}
}

func TestTeamDirectory_DisplayNameFallback(t *testing.T) {
	fetcher := &mockTeamFetcher{teams: []gateway.Team{
		{TeamID: "team1", TeamAlias: "Team One"},
		{TeamID: "team2"},
	}}
	dir := NewTeamDirectory(fetcher)
	if _, err := dir.TeamIDs(context.Background()); err != nil {
		t.Fatalf("TeamIDs failed: %v", err)
	}

	if got := dir.DisplayName("team1"); got != "Team One" {
		t.Errorf("Expected alias, got %s", got)
	}
	if got := dir.DisplayName("team2"); got != "team2" {
		t.Errorf("Expected id fallback for missing alias, got %s", got)
	}
	if got := dir.DisplayName("unknown"); got != "unknown" {
		t.Errorf("Expected id fallback for unknown team, got %s", got)
	}
}

func TestTeamDirectory_ConcurrentFirstUse(t *testing.T) {
	fetcher := &mockTeamFetcher{teams: []gateway.Team{{TeamID: "team1"}}}
	dir := NewTeamDirectory(fetcher)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := dir.TeamIDs(context.Background()); err != nil {
				t.Errorf("TeamIDs failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Errorf("Expected 1 upstream fetch under concurrent first use, got %d", got)
	}
}

func TestTeamDirectory_RetryAfterFailure(t *testing.T) {
	fetcher := &mockTeamFetcher{err: errors.New("gateway down")}
	dir := NewTeamDirectory(fetcher)

	if _, err := dir.TeamIDs(context.Background()); err == nil {
		t.Fatal("Expected error when fetch fails")
	}

	// A later call retries once the gateway recovers.
	fetcher.err = nil
	fetcher.teams = []gateway.Team{{TeamID: "team1"}}
	ids, err := dir.TeamIDs(context.Background())
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("Unexpected ids after retry: %v", ids)
	}
}

type mockModelInfoFetcher struct {
	resp  *gateway.ModelInfoResponse
	err   error
	calls int32
}

func (m *mockModelInfoFetcher) FetchModelInfo(ctx context.Context) (*gateway.ModelInfoResponse, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestModelMapper_DisplayName(t *testing.T) {
	fetcher := &mockModelInfoFetcher{resp: &gateway.ModelInfoResponse{
		Data: []gateway.ModelInfoItem{
			{ModelName: "GPT-4 (prod)", Params: &gateway.ModelParams{Model: "openai/gpt-4"}},
			{ModelName: "no-params"},
		},
	}}
	mapper := NewModelMapper(fetcher, time.Minute)

	if got := mapper.DisplayName(context.Background(), "openai/gpt-4"); got != "GPT-4 (prod)" {
		t.Errorf("Expected mapped display name, got %s", got)
	}
	if got := mapper.DisplayName(context.Background(), "anthropic/claude-3-opus"); got != "anthropic/claude-3-opus" {
		t.Errorf("Expected identity fallback, got %s", got)
	}
	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Errorf("Expected 1 fetch within TTL, got %d", got)
	}
}

func TestModelMapper_FetchFailureFallsBack(t *testing.T) {
	fetcher := &mockModelInfoFetcher{err: errors.New("gateway down")}
	mapper := NewModelMapper(fetcher, time.Minute)

	if got := mapper.DisplayName(context.Background(), "openai/gpt-4"); got != "openai/gpt-4" {
		t.Errorf("Expected identity on fetch failure, got %s", got)
	}
}

func TestModelMapper_FailedRefreshNotRetriedPerLookup(t *testing.T) {
	fetcher := &mockModelInfoFetcher{err: errors.New("gateway down")}
	mapper := NewModelMapper(fetcher, time.Minute)

	for i := 0; i < 5; i++ {
		mapper.DisplayName(context.Background(), "openai/gpt-4")
	}
	if got := atomic.LoadInt32(&fetcher.calls); got != 1 {
		t.Errorf("Expected 1 fetch during failure back-off, got %d", got)
	}
}
