package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLeaderboard(t *testing.T) {
	s := NewSession("1", []Question{
		{Points: json.RawMessage(`10`)},
		{Points: json.RawMessage(`"5"`)},
	})
	s.Players["200"] = &Player{Name: "Bob", Answers: []PlayerAnswer{{Correct: true}, {Correct: true}}}
	s.Players["100"] = &Player{Name: "Alice", Answers: []PlayerAnswer{{Correct: true}, {Correct: false}}}
	s.Players["300"] = &Player{Name: "Cara", Answers: []PlayerAnswer{{Correct: false}, {Correct: false}}}
	s.Players["400"] = &Player{Name: "Abe", Answers: []PlayerAnswer{{Correct: true}, {}}}

	lb := BuildLeaderboard(s)
	require.Len(t, lb, 4)

	assert.Equal(t, LeaderboardEntry{Rank: 1, PlayerID: 200, Name: "Bob", Score: 15, Correct: 2}, lb[0])
	assert.Equal(t, "Abe", lb[1].Name)
	assert.Equal(t, 2, lb[1].Rank)
	assert.Equal(t, "Alice", lb[2].Name)
	assert.Equal(t, 2, lb[2].Rank)
	assert.Equal(t, LeaderboardEntry{Rank: 4, PlayerID: 300, Name: "Cara"}, lb[3])
}
