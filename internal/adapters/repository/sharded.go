package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/okian/formcast/internal/domain/model"
	"github.com/okian/formcast/pkg/metrics"
)

// shard owns every entry of the teams hashed to it.
type shard struct {
	mu     sync.RWMutex
	byTeam map[string]map[time.Time]Entry
	count  int
}

// ShardedStore is an in-memory Store partitioned by team so that per-team
// writers never contend with each other.
type ShardedStore struct {
	shardCount int
	shards     []*shard
}

// NewShardedStore creates an empty store.
func NewShardedStore(opts ...Option) *ShardedStore {
	s := &ShardedStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{byTeam: make(map[string]map[time.Time]Entry)}
	}
	metrics.UpdateStoreShardCount(s.shardCount)
	return s
}

func (s *ShardedStore) shardFor(team string) (*shard, int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(team))
	idx := int(h.Sum32() % uint32(len(s.shards)))
	return s.shards[idx], idx
}

// Put inserts entries; the whole call fails on the first duplicate key
// but entries stored before it are kept.
func (s *ShardedStore) Put(ctx context.Context, entries ...Entry) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	for _, e := range entries {
		sh, idx := s.shardFor(e.Record.Team)
		day := model.Day(e.Record.Date)

		sh.mu.Lock()
		games, ok := sh.byTeam[e.Record.Team]
		if !ok {
			games = make(map[time.Time]Entry)
			sh.byTeam[e.Record.Team] = games
		}
		if _, exists := games[day]; exists {
			sh.mu.Unlock()
			return fmt.Errorf("%w: team=%s date=%s", ErrDuplicate, e.Record.Team, day.Format(time.DateOnly))
		}
		games[day] = e
		sh.count++
		n := sh.count
		sh.mu.Unlock()
		metrics.UpdateStoreRecordsPerShard(strconv.Itoa(idx), n)
	}
	return nil
}

// Get returns the entry stored for team on date.
func (s *ShardedStore) Get(ctx context.Context, team string, date time.Time) (Entry, error) {
	sh, _ := s.shardFor(team)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := sh.byTeam[team][model.Day(date)]
	if !ok {
		return Entry{}, fmt.Errorf("%w: team=%s date=%s", ErrNotFound, team, date.Format(time.DateOnly))
	}
	return e, nil
}

// Timeline returns the team's entries ordered by date.
func (s *ShardedStore) Timeline(ctx context.Context, team string) ([]Entry, error) {
	sh, _ := s.shardFor(team)
	sh.mu.RLock()
	games, ok := sh.byTeam[team]
	out := make([]Entry, 0, len(games))
	for _, e := range games {
		out = append(out, e)
	}
	sh.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: team=%s", ErrNotFound, team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Record.Date.Before(out[j].Record.Date) })
	return out, nil
}

// Teams returns all team ids in sorted order.
func (s *ShardedStore) Teams(ctx context.Context) []string {
	var teams []string
	for _, sh := range s.shards {
		sh.mu.RLock()
		for t := range sh.byTeam {
			teams = append(teams, t)
		}
		sh.mu.RUnlock()
	}
	sort.Strings(teams)
	return teams
}

// Count returns the number of stored entries.
func (s *ShardedStore) Count(ctx context.Context) int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		n += sh.count
		sh.mu.RUnlock()
	}
	return n
}
