package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// Holder is the per-request view of one session. The store is read lazily on
// the first Load or Token call and cached for the rest of the request.
type Holder struct {
	store *Store

	mu     sync.Mutex
	sid    string
	loaded bool
	sess   *Session
}

func NewHolder(store *Store, sid string) *Holder {
	return &Holder{store: store, sid: sid}
}

// ID is the current session id, or "" when signed out.
func (h *Holder) ID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sid
}

// Load returns the session, reading the store on first use.
func (h *Holder) Load() (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.loaded {
		sess, err := h.store.Load(h.sid)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		h.sess = sess
		h.loaded = true
	}
	if h.sess == nil {
		return nil, ErrNotFound
	}
	return h.sess, nil
}

// Set starts a new session for token, replacing the current one.
func (h *Holder) Set(username, token string) (*Session, error) {
	sess, err := h.store.Create(username, token)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	old := h.sid
	h.sid, h.sess, h.loaded = sess.ID, sess, true
	h.mu.Unlock()

	if old != "" && old != sess.ID {
		_ = h.store.Delete(old)
	}
	return sess, nil
}

// Clear deletes the session.
func (h *Holder) Clear() error {
	h.mu.Lock()
	sid := h.sid
	h.sid, h.sess, h.loaded = "", nil, true
	h.mu.Unlock()

	return h.store.Delete(sid)
}

// Token implements apiclient.TokenSource.
func (h *Holder) Token(ctx context.Context) (string, bool) {
	sess, err := h.Load()
	if err != nil || sess.AccessToken == "" {
		return "", false
	}
	return sess.AccessToken, true
}

// Manager ties the store to the session cookie.
type Manager struct {
	Store  *Store
	Cookie string
	Secure bool
}

// Holder returns a holder for the session named by r's cookie.
func (m *Manager) Holder(r *http.Request) *Holder {
	var sid string
	if c, err := r.Cookie(m.Cookie); err == nil {
		sid = c.Value
	}
	return NewHolder(m.Store, sid)
}

func (m *Manager) WriteCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Cookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.Expires,
		MaxAge:   int(time.Until(sess.Expires).Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.Cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
