// Package session keeps signed-in console sessions. A session row stores the
// backend access token so it survives page loads without a backend round
// trip; the browser only holds an opaque session id cookie.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"accredify/collections"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session: not found")

type Session struct {
	ID          string
	Username    string
	AccessToken string
	Expires     time.Time
}

// Store persists sessions in the console_sessions collection.
type Store struct {
	app *pocketbase.PocketBase
	ttl time.Duration
	now func() time.Time
}

func NewStore(app *pocketbase.PocketBase, ttl time.Duration) *Store {
	return &Store{app: app, ttl: ttl, now: time.Now}
}

// Create stores a new session for token and returns it.
func (s *Store) Create(username, token string) (*Session, error) {
	if token == "" {
		return nil, errors.New("session: empty access token")
	}

	col, err := s.app.FindCollectionByNameOrId(collections.Sessions)
	if err != nil {
		return nil, fmt.Errorf("session: find collection: %w", err)
	}

	sess := &Session{
		ID:          uuid.NewString(),
		Username:    username,
		AccessToken: token,
		Expires:     s.now().Add(s.ttl).UTC(),
	}

	rec := core.NewRecord(col)
	rec.Set("sid", sess.ID)
	rec.Set("username", sess.Username)
	rec.Set("access_token", sess.AccessToken)
	rec.Set("expires", sess.Expires)
	if err := s.app.Save(rec); err != nil {
		return nil, fmt.Errorf("session: save: %w", err)
	}
	return sess, nil
}

// Load returns the session for sid. Expired sessions are deleted and
// reported as ErrNotFound.
func (s *Store) Load(sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrNotFound
	}

	rec, err := s.app.FindFirstRecordByData(collections.Sessions, "sid", sid)
	if err != nil {
		return nil, ErrNotFound
	}

	expires := rec.GetDateTime("expires").Time()
	if !expires.After(s.now()) {
		if err := s.app.Delete(rec); err != nil {
			return nil, fmt.Errorf("session: delete expired %s: %w", sid, err)
		}
		return nil, ErrNotFound
	}

	return &Session{
		ID:          sid,
		Username:    rec.GetString("username"),
		AccessToken: rec.GetString("access_token"),
		Expires:     expires,
	}, nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *Store) Delete(sid string) error {
	if sid == "" {
		return nil
	}
	rec, err := s.app.FindFirstRecordByData(collections.Sessions, "sid", sid)
	if err != nil {
		return nil
	}
	if err := s.app.Delete(rec); err != nil {
		return fmt.Errorf("session: delete %s: %w", sid, err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many were
// removed. Safe to call on every startup.
func (s *Store) PurgeExpired() (int, error) {
	now, err := types.ParseDateTime(s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("session: purge: %w", err)
	}

	expired, err := s.app.FindRecordsByFilter(
		collections.Sessions,
		"expires <= {:now}",
		"", 0, 0,
		map[string]any{"now": now.String()},
	)
	if err != nil {
		return 0, fmt.Errorf("session: purge: %w", err)
	}

	removed := 0
	for _, rec := range expired {
		if err := s.app.Delete(rec); err != nil {
			return removed, fmt.Errorf("session: purge %s: %w", rec.GetString("sid"), err)
		}
		removed++
	}
	return removed, nil
}
