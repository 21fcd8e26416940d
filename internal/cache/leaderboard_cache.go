package cache

import (
	"bigbrain/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache keeps final standings of ended sessions in a Redis ZSET
type LeaderboardCache interface {
	Put(ctx context.Context, sessionID string, entries []model.LeaderboardEntry) error
	Get(ctx context.Context, sessionID string) ([]model.LeaderboardEntry, bool, error)
}

// leaderboardMember is the ZSET member; the score carries the points
type leaderboardMember struct {
	PlayerID int64  `json:"playerId"`
	Name     string `json:"name"`
	Correct  int    `json:"correct"`
}

type leaderboardCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client redis.UniversalClient, prefix string) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		prefix: prefix,
		ttl:    24 * time.Hour,
	}
}

func (c *leaderboardCache) key(sessionID string) string {
	return fmt.Sprintf("%ssession:%s:lb", c.prefix, sessionID)
}

func (c *leaderboardCache) Put(ctx context.Context, sessionID string, entries []model.LeaderboardEntry) error {
	key := c.key(sessionID)
	members := make([]redis.Z, 0, len(entries))
	for _, e := range entries {
		b, err := json.Marshal(leaderboardMember{PlayerID: e.PlayerID, Name: e.Name, Correct: e.Correct})
		if err != nil {
			return err
		}
		members = append(members, redis.Z{Score: e.Score, Member: string(b)})
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}

func (c *leaderboardCache) Get(ctx context.Context, sessionID string) ([]model.LeaderboardEntry, bool, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, false, err
	}
	if len(results) == 0 {
		return nil, false, nil
	}

	entries := make([]model.LeaderboardEntry, 0, len(results))
	for _, z := range results {
		s, ok := z.Member.(string)
		if !ok {
			return nil, false, fmt.Errorf("unexpected leaderboard member %T", z.Member)
		}
		var m leaderboardMember
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, false, err
		}
		entries = append(entries, model.LeaderboardEntry{
			PlayerID: m.PlayerID,
			Name:     m.Name,
			Score:    z.Score,
			Correct:  m.Correct,
		})
	}
	model.RankLeaderboard(entries)
	return entries, true, nil
}
