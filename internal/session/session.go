// Package session provides HTTP session management for visitors. Sessions
// are identified by a secure cookie and stored as JSON in a Backend with
// automatic TTL expiry: Valkey in deployments, process memory otherwise.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"testifyhub/internal/editor"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "th_session"

	// DefaultTTL is how long a session lives before automatic expiry.
	DefaultTTL = 24 * time.Hour

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Data holds the session payload: admin login state and the visitor's
// category editor.
type Data struct {
	ID        string          `json:"-"`
	Admin     bool            `json:"admin"`
	Editor    editor.Snapshot `json:"editor"`
	CreatedAt time.Time       `json:"created_at"`
}

// Backend persists serialized session payloads by ID.
type Backend interface {
	// Load returns the payload for id. A missing or expired session
	// returns ok == false and a nil error.
	Load(ctx context.Context, id string) (payload []byte, ok bool, err error)
	// Save stores payload for id, resetting its TTL.
	Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error
	// Delete removes id. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
}

// Store manages session lifecycle on top of a Backend.
type Store struct {
	backend Backend
	ttl     time.Duration
	secure  bool
}

// NewStore creates a session store. When secure is true, cookies are
// marked Secure (production behind TLS).
func NewStore(backend Backend, secure bool) *Store {
	return &Store{
		backend: backend,
		ttl:     DefaultTTL,
		secure:  secure,
	}
}

// Create generates a new session, stores it, and sets the session cookie
// on the response. Returns the session ID, which is also set on data.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.ID = id
	data.CreatedAt = time.Now()

	if err := s.Save(ctx, data); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})

	return id, nil
}

// Get retrieves session data using the session ID from the request cookie.
// Returns nil if no valid session exists.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil // No cookie = no session (not an error)
	}

	payload, ok, err := s.backend.Load(ctx, cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if !ok {
		return nil, nil // Session expired or doesn't exist
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	data.ID = cookie.Value

	return &data, nil
}

// Save writes data under its ID without touching the cookie. Resets the TTL.
func (s *Store) Save(ctx context.Context, data *Data) error {
	if data.ID == "" {
		return fmt.Errorf("session save: missing id")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	if err := s.backend.Save(ctx, data.ID, payload, s.ttl); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Destroy removes the session and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil // No cookie, nothing to destroy
	}

	if err := s.backend.Delete(ctx, cookie.Value); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}

	// Expire the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})

	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
