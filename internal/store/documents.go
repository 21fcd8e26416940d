package store

import (
	"bigbrain/internal/model"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrAbort can be returned from an update func to skip the save without failing
var ErrAbort = errors.New("update aborted")

// Documents reads and writes the typed application documents
type Documents struct {
	store   Store
	retries int
}

// NewDocuments wraps a Store. retries bounds how often an update re-runs
// its mutation after a revision conflict.
func NewDocuments(s Store, retries int) *Documents {
	if retries < 0 {
		retries = 0
	}
	return &Documents{store: s, retries: retries}
}

func (d *Documents) Admins(ctx context.Context) (model.Admins, error) {
	m, _, err := load[model.Admins](ctx, d.store, KeyAdmins)
	return m, err
}

func (d *Documents) Games(ctx context.Context) (model.Games, error) {
	m, _, err := load[model.Games](ctx, d.store, KeyGames)
	return m, err
}

func (d *Documents) Sessions(ctx context.Context) (model.Sessions, error) {
	m, _, err := load[model.Sessions](ctx, d.store, KeySessions)
	return m, err
}

func (d *Documents) UpdateAdmins(ctx context.Context, fn func(model.Admins) error) error {
	return update(ctx, d, KeyAdmins, fn)
}

func (d *Documents) UpdateGames(ctx context.Context, fn func(model.Games) error) error {
	return update(ctx, d, KeyGames, fn)
}

func (d *Documents) UpdateSessions(ctx context.Context, fn func(model.Sessions) error) error {
	return update(ctx, d, KeySessions, fn)
}

// Init writes an empty document for every key that is missing
func (d *Documents) Init(ctx context.Context) error {
	for _, key := range Keys {
		doc, err := d.store.Load(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		if doc.Revision != 0 || len(bytes.TrimSpace(doc.Data)) > 0 {
			continue
		}
		if _, err := d.store.Save(ctx, key, []byte("{}"), 0); err != nil && !errors.Is(err, ErrConflict) {
			return fmt.Errorf("writing to database failed: %w", err)
		}
	}
	return nil
}

// Reset replaces every document with an empty one
func (d *Documents) Reset(ctx context.Context) error {
	for _, key := range Keys {
		err := update(ctx, d, key, func(m map[string]json.RawMessage) error {
			for k := range m {
				delete(m, k)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// update loads key, applies fn and saves with compare-and-swap.
// fn is re-run against fresh state on conflict.
func update[M ~map[string]V, V any](ctx context.Context, d *Documents, key string, fn func(M) error) error {
	for attempt := 0; ; attempt++ {
		m, rev, err := load[M](ctx, d.store, key)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			if errors.Is(err, ErrAbort) {
				return nil
			}
			return err
		}
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		_, err = d.store.Save(ctx, key, data, rev)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) || attempt >= d.retries {
			return fmt.Errorf("writing to database failed: %w", err)
		}
	}
}

// load decodes key into a map; missing, empty and null documents are {}
func load[M ~map[string]V, V any](ctx context.Context, s Store, key string) (M, int64, error) {
	doc, err := s.Load(ctx, key)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", key, err)
	}
	m := M{}
	data := bytes.TrimSpace(doc.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return m, doc.Revision, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, 0, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if m == nil {
		m = M{}
	}
	return m, doc.Revision, nil
}
