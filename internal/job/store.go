package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mediagrab/backend/internal/store"
)

const (
	// Key layout: one record entry and one artifact-path entry per job,
	// independently expiring.
	keyPrefix     = "download:job:"
	fileKeySuffix = "_file"
)

// ErrNotFound is returned when a job record is absent or expired.
var ErrNotFound = errors.New("job not found")

// Store persists job records in an expiring key-value store. Transient
// records (queued/starting/downloading/error) get the short progress TTL;
// completed records and artifact paths get the longer result TTL.
type Store struct {
	kv          store.Store
	progressTTL time.Duration
	resultTTL   time.Duration
}

// NewStore creates a job store over the given key-value store.
func NewStore(kv store.Store, progressTTL, resultTTL time.Duration) *Store {
	if progressTTL <= 0 {
		progressTTL = 5 * time.Minute
	}
	if resultTTL <= 0 {
		resultTTL = time.Hour
	}
	return &Store{
		kv:          kv,
		progressTTL: progressTTL,
		resultTTL:   resultTTL,
	}
}

// Save writes a job record, overwriting any previous one.
func (s *Store) Save(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal job record: %w", err)
	}

	ttl := s.progressTTL
	if rec.Status == StatusCompleted {
		ttl = s.resultTTL
	}

	return s.kv.Set(ctx, recordKey(rec.ID), data, ttl)
}

// Get retrieves a job record by id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	data, err := s.kv.Get(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to get job record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal job record: %w", err)
	}
	return rec, nil
}

// SaveArtifactPath stores the resolved artifact path for a completed job.
func (s *Store) SaveArtifactPath(ctx context.Context, id, path string) error {
	return s.kv.Set(ctx, fileKey(id), []byte(path), s.resultTTL)
}

// ArtifactPath retrieves the artifact path stored for a completed job.
func (s *Store) ArtifactPath(ctx context.Context, id string) (string, error) {
	data, err := s.kv.Get(ctx, fileKey(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get artifact path: %w", err)
	}
	return string(data), nil
}

func recordKey(id string) string {
	return keyPrefix + id
}

func fileKey(id string) string {
	return keyPrefix + id + fileKeySuffix
}
