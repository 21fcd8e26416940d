package store

import (
	"context"
	"errors"
)

// Document keys
const (
	KeyAdmins   = "admins"
	KeyGames    = "games"
	KeySessions = "sessions"
)

// Keys lists every document the application persists
var Keys = []string{KeyAdmins, KeyGames, KeySessions}

// ErrConflict is returned by Save when the stored revision moved on
var ErrConflict = errors.New("document revision conflict")

// Document is a stored JSON blob and its revision. Revision 0 means the
// document was never saved through a Store; Data may still hold legacy content.
type Document struct {
	Data     []byte
	Revision int64
}

// Store persists whole JSON documents with optimistic versioning
type Store interface {
	// Load returns the zero Document when key is missing
	Load(ctx context.Context, key string) (Document, error)
	// Save writes data if the stored revision equals expected and returns the new revision
	Save(ctx context.Context, key string, data []byte, expected int64) (int64, error)
	Close() error
}
