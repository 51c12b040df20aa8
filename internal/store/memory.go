package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-news-mood/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
)

// SnapshotHistory holds a time-ordered list of weather snapshots for a location.
type SnapshotHistory struct {
	Snapshots []weather.Snapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.History.
type MemoryStore struct {
	mu sync.RWMutex

	// key: coords key, value: history
	data map[string]*SnapshotHistory

	maxHistory int           // max number of snapshots per location
	maxAge     time.Duration // optional max age for snapshots
	now        func() time.Time
}

var _ weather.History = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a new snapshot for a location and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot weather.Snapshot) {
	key := snapshot.Coords.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots); i++ {
			if !history.Snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Snapshots = history.Snapshots[i:]
	}
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(coords weather.Coords) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coords.Key()]
	if !ok || len(history.Snapshots) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(coords weather.Coords, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[coords.Key()]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Snapshot
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}
