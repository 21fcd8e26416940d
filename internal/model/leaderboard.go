package model

import "sort"

// LeaderboardEntry is one player's standing in a session
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	PlayerID int64   `json:"playerId"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Correct  int     `json:"correct"`
}

// RankLeaderboard orders entries by score, then name, and assigns
// shared ranks to equal scores
func RankLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range entries {
		if i > 0 && entries[i].Score == entries[i-1].Score {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// BuildLeaderboard scores every player of a session. A player earns a
// question's points for each correct answer.
func BuildLeaderboard(s *Session) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(s.Players))
	for _, id := range s.PlayerIDs() {
		p := s.Players[id]
		e := LeaderboardEntry{Name: p.Name, PlayerID: ParseID(id)}
		for i, a := range p.Answers {
			if !a.Correct || i >= len(s.Questions) {
				continue
			}
			e.Correct++
			e.Score += s.Questions[i].PointsValue()
		}
		entries = append(entries, e)
	}
	RankLeaderboard(entries)
	return entries
}
