package cart

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// SessionKey is the key the signed-in identity is persisted under.
const SessionKey = "userInfo"

// UserInfo is the identity returned by the login and register endpoints.
type UserInfo struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// Session caches the signed-in user in a Storage.
type Session struct {
	storage Storage
}

func NewSession(storage Storage) *Session {
	return &Session{storage: storage}
}

// Load returns the cached user, or nil when nobody is signed in. A corrupt
// entry counts as signed out.
func (s *Session) Load() (*UserInfo, error) {
	raw, ok, err := s.storage.GetItem(SessionKey)
	if err != nil {
		return nil, fmt.Errorf("cart.Session.Load: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var info UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil || info.Token == "" {
		slog.Warn("invalid userInfo in storage", "err", err)
		return nil, nil
	}
	return &info, nil
}

func (s *Session) Save(info UserInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("cart.Session.Save: %w", err)
	}
	return s.storage.SetItem(SessionKey, string(raw))
}

func (s *Session) Clear() error {
	return s.storage.RemoveItem(SessionKey)
}
