package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alexedwards/scs/v2"
	"github.com/ghaggin/growtech/internal/model"
	"go.uber.org/zap"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

var (
	ErrNoSession = errors.New("session not found")
)

// Store mediates every read and write of the token and user slots.
type Store struct {
	impl *scs.SessionManager
	log  *zap.Logger
}

func NewStore(sm *scs.SessionManager, log *zap.Logger) *Store {
	return &Store{
		impl: sm,
		log:  log,
	}
}

// Save overwrites both slots and rotates the session cookie.
func (s *Store) Save(ctx context.Context, token string, user model.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}

	if err := s.impl.RenewToken(ctx); err != nil {
		return err
	}

	s.impl.Put(ctx, tokenKey, token)
	s.impl.Put(ctx, userKey, string(b))
	return nil
}

// Load returns whatever slots are present. A user slot that does not decode,
// or has no known role, is reported as absent.
func (s *Store) Load(ctx context.Context) model.Session {
	sess := model.Session{
		Token: s.impl.GetString(ctx, tokenKey),
	}

	raw := s.impl.GetString(ctx, userKey)
	if raw == "" {
		return sess
	}

	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		s.log.Warn("discarding corrupt user slot", zap.Error(err))
		return sess
	}
	if !u.Role.Valid() {
		s.log.Warn("discarding user slot without a known role", zap.Int64("user_id", u.ID))
		return sess
	}

	sess.User = &u
	return sess
}

// Require is Load for callers that need both slots.
func (s *Store) Require(ctx context.Context) (model.Session, error) {
	sess := s.Load(ctx)
	if !sess.Authenticated() {
		return sess, ErrNoSession
	}
	return sess, nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.impl.Remove(ctx, tokenKey)
	s.impl.Remove(ctx, userKey)
	return s.impl.RenewToken(ctx)
}
