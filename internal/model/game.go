package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Game is an admin-authored quiz. Admin-supplied fields beyond owner and
// questions are kept in Extra.
type Game struct {
	Owner     string                     `json:"owner"`
	Questions []Question                 `json:"questions"`
	Extra     map[string]json.RawMessage `json:"-"`
}

type gameFields Game

func (g Game) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(gameFields(g), g.Extra)
}

func (g *Game) UnmarshalJSON(data []byte) error {
	var f gameFields
	extra, err := unmarshalWithExtra(data, &f, "owner", "questions")
	if err != nil {
		return err
	}
	*g = Game(f)
	g.Extra = extra
	return nil
}

// Games is the persisted games document
type Games map[string]*Game

// gameIDKeys are the accepted spellings of a game id in client payloads
var gameIDKeys = []string{"id", "gameId", "gameID"}

// derivedGameKeys are computed on read and never stored
var derivedGameKeys = []string{"active", "oldSessions"}

// TakeRequestedID removes any client-supplied id fields and returns the
// first one that resolves to a decimal id
func (g *Game) TakeRequestedID() (string, bool) {
	id, found := "", false
	for _, k := range gameIDKeys {
		raw, ok := g.Extra[k]
		if !ok {
			continue
		}
		delete(g.Extra, k)
		if found {
			continue
		}
		if v, ok := decimalID(raw); ok {
			id, found = v, true
		}
	}
	return id, found
}

// StripDerived drops fields that are computed from sessions on read
func (g *Game) StripDerived() {
	for _, k := range derivedGameKeys {
		delete(g.Extra, k)
	}
}

func decimalID(raw json.RawMessage) (string, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := strconv.ParseInt(n.String(), 10, 64); err == nil && v >= 0 {
			return strconv.FormatInt(v, 10), true
		}
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || v < 0 {
		return "", false
	}
	return strconv.FormatInt(v, 10), true
}

// GameSummary is a game as listed to its owner
type GameSummary struct {
	ID          int64
	Game        *Game
	Active      *int64
	OldSessions []int64
}

func (s GameSummary) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(s.Game)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]json.RawMessage{}
	}
	old := s.OldSessions
	if old == nil {
		old = []int64{}
	}
	for k, v := range map[string]any{"id": s.ID, "active": s.Active, "oldSessions": old} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = raw
	}
	return json.Marshal(m)
}
