package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/learning-designer/pkg/config"
	"github.com/nikogura/learning-designer/pkg/curriculum"
	"github.com/nikogura/learning-designer/pkg/logging"
	"github.com/pkg/errors"
)

// ErrNotFound means the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is everything one browser has entered and generated so far.
type Session struct {
	ID        string                    `json:"id"`
	CreatedAt time.Time                 `json:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at"`
	Raw       curriculum.RawInputs      `json:"raw"`
	Analysis  *curriculum.Analysis      `json:"analysis,omitempty"`
	Confirmed *curriculum.ConfirmedData `json:"confirmed,omitempty"`
	Build     curriculum.BuildState     `json:"build"`
	Document  string                    `json:"document,omitempty"`
}

// Store persists sessions between requests.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// New creates an empty session with a fresh random ID.
func New(now time.Time) (s Session) {
	s = Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Build:     curriculum.NewState(),
	}
	return s
}

// ValidID reports whether id looks like an ID produced by New.
func ValidID(id string) (valid bool) {
	_, err := uuid.Parse(id)
	valid = err == nil
	return valid
}

// Open builds the store selected by configuration.
func Open(ctx context.Context, cfg config.SessionsConfig, logger *logging.Logger) (store Store, err error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = config.DefaultSessionTTLMinutes * time.Minute
	}

	switch cfg.Backend {
	case config.BackendMemory, "":
		store = NewMemoryStore(ttl)
	case config.BackendFile:
		var fs *FileStore
		fs, err = NewFileStore(cfg.Dir, ttl)
		if err == nil {
			store = fs
		}
	case config.BackendRedis:
		var rs *RedisStore
		rs, err = NewRedisStore(ctx, cfg.RedisAddr, ttl)
		if err == nil {
			store = rs
		}
	default:
		err = errors.Errorf("unknown session backend %q", cfg.Backend)
	}
	if err != nil {
		return store, err
	}

	if logger != nil {
		logger.Info("session store ready", "backend", cfg.Backend, "ttl", ttl.String())
	}

	return store, err
}

// encode serializes a session for the file and redis backends.
func encode(s *Session) (data []byte, err error) {
	data, err = json.Marshal(s)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal session")
		return data, err
	}
	return data, err
}

func decode(data []byte) (s Session, err error) {
	err = json.Unmarshal(data, &s)
	if err != nil {
		err = errors.Wrap(err, "failed to parse session")
		return s, err
	}
	if s.Build.Weeks == nil {
		s.Build.Weeks = map[int]curriculum.Week{}
	}
	return s, err
}
