package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

const (
	storageKey = "userPreferences"
	boltBucket = "preferences"
	redisKey   = "weather-news-mood:" + storageKey
)

// Store persists one preferences blob. Load reports false when nothing
// has been saved yet.
type Store interface {
	Load(ctx context.Context) (UserPreferences, bool, error)
	Save(ctx context.Context, prefs UserPreferences) error
	Close() error
}

// BoltStore keeps preferences as JSON in a bbolt database.
type BoltStore struct {
	db *bolt.DB
}

var _ Store = (*BoltStore)(nil)

func OpenBolt(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create preferences dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open preferences db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create preferences bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(ctx context.Context) (UserPreferences, bool, error) {
	if err := ctx.Err(); err != nil {
		return UserPreferences{}, false, err
	}
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(boltBucket)).Get([]byte(storageKey)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return UserPreferences{}, false, err
	}
	return decodeJSON(raw)
}

func (s *BoltStore) Save(ctx context.Context, prefs UserPreferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(boltBucket)).Put([]byte(storageKey), raw)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// FileStore keeps preferences in a YAML file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (UserPreferences, bool, error) {
	if err := ctx.Err(); err != nil {
		return UserPreferences{}, false, err
	}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return UserPreferences{}, false, nil
	}
	if err != nil {
		return UserPreferences{}, false, fmt.Errorf("read preferences file: %w", err)
	}
	var prefs UserPreferences
	if err := yaml.Unmarshal(raw, &prefs); err != nil {
		return UserPreferences{}, false, fmt.Errorf("parse preferences file: %w", err)
	}
	return prefs, true, nil
}

// Save writes to a temp file and renames it over the old one.
func (s *FileStore) Save(ctx context.Context, prefs UserPreferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := yaml.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write preferences file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Close() error { return nil }

// RedisStore keeps preferences as JSON under a single key.
type RedisStore struct {
	rdb *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Load(ctx context.Context) (UserPreferences, bool, error) {
	raw, err := s.rdb.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return UserPreferences{}, false, nil
	}
	if err != nil {
		return UserPreferences{}, false, err
	}
	return decodeJSON(raw)
}

func (s *RedisStore) Save(ctx context.Context, prefs UserPreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisKey, raw, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func decodeJSON(raw []byte) (UserPreferences, bool, error) {
	if raw == nil {
		return UserPreferences{}, false, nil
	}
	var prefs UserPreferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return UserPreferences{}, false, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, true, nil
}
