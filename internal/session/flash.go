package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"
)

// ScopeCookie names the cookie carrying the flash scope. It is independent
// of the login session so messages flashed around login and logout survive
// the boundary.
const ScopeCookie = "pressroom_flash"

const (
	flashKeyPrefix = "flash:"
	// Flash queues only need to survive one redirect hop; the TTL is a
	// backstop against abandoned scopes piling up in Redis.
	flashTTL = 30 * time.Minute

	flashScopeKey = "session.flashScope"
)

// Message is a one-shot status notification carried across a redirect.
type Message struct {
	Category string `json:"category"` // "success" or "danger"
	Text     string `json:"text"`
}

// flashBackend is the slice of the cache client the relay uses.
type flashBackend interface {
	PushList(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DrainList(ctx context.Context, key string) ([][]byte, error)
}

// Flash defines the relay operations used by handlers and middleware.
type Flash interface {
	Push(ctx context.Context, scope, category, text string) error
	Drain(ctx context.Context, scope string) ([]Message, error)
}

// FlashRelay queues messages in a Redis list keyed by flash scope. The scope
// is a cookie independent of the login session, so messages flashed around
// login and logout still reach the next rendered page.
type FlashRelay struct {
	backend flashBackend
}

// Ensure FlashRelay implements Flash
var _ Flash = (*FlashRelay)(nil)

// NewFlashRelay creates a relay over the given backend.
func NewFlashRelay(backend flashBackend) *FlashRelay {
	return &FlashRelay{backend: backend}
}

// Push appends a message to the pending queue for the scope.
func (f *FlashRelay) Push(ctx context.Context, scope, category, text string) error {
	payload, err := json.Marshal(Message{Category: category, Text: text})
	if err != nil {
		return err
	}
	return f.backend.PushList(ctx, flashKeyPrefix+scope, payload, flashTTL)
}

// Drain returns the queued messages in push order and clears the queue.
// A second drain on the same scope returns nothing.
func (f *FlashRelay) Drain(ctx context.Context, scope string) ([]Message, error) {
	items, err := f.backend.DrainList(ctx, flashKeyPrefix+scope)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(items))
	for _, item := range items {
		var m Message
		if err := json.Unmarshal(item, &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// SetScope stashes the resolved flash scope on the request context.
func SetScope(c echo.Context, scope string) {
	c.Set(flashScopeKey, scope)
}

// ScopeFrom returns the flash scope for this request.
func ScopeFrom(c echo.Context) string {
	scope, _ := c.Get(flashScopeKey).(string)
	return scope
}
