package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vendsync/core/storage"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/singleflight"
)

// Store persists one ScanResult per tracked reference-set scope.
type Store interface {
	// Load returns the last snapshot for the scope, or the empty snapshot
	// when none exists or the stored blob cannot be decoded.
	Load(ctx context.Context, scope string) (*ScanResult, error)
	// Save durably replaces the snapshot for the scope. A concurrent Load
	// must never observe a half-written snapshot.
	Save(ctx context.Context, scope string, result *ScanResult) error
	// Delete discards the snapshot for the scope. Deleting a snapshot that
	// does not exist is not an error.
	Delete(ctx context.Context, scope string) error
}

// FileStore keeps snapshots as JSON files under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(scope string) string {
	return filepath.Join(s.dir, scope+".json")
}

// Load reads the snapshot for the scope, returning the empty snapshot on
// missing or corrupt files.
func (s *FileStore) Load(ctx context.Context, scope string) (*ScanResult, error) {
	data, err := os.ReadFile(s.path(scope))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var result ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		// Corrupt state is indistinguishable from no state for the pipeline.
		return Empty(), nil
	}
	if result.Found == nil {
		result.Found = map[string]MatchEntry{}
	}
	if result.NotFound == nil {
		result.NotFound = []string{}
	}
	return &result, nil
}

// Save writes to a temp file and renames it into place so readers never see a
// partial snapshot.
func (s *FileStore) Save(ctx context.Context, scope string, result *ScanResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, scope+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path(scope)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot file for the scope.
func (s *FileStore) Delete(ctx context.Context, scope string) error {
	if err := os.Remove(s.path(scope)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// ObjectStore keeps snapshots as JSON objects in a bucket.
type ObjectStore struct {
	client storage.Client
	bucket string
	prefix string
	sf     singleflight.Group
}

// NewObjectStore creates a bucket-backed store. The bucket is created when it
// does not exist yet.
func NewObjectStore(ctx context.Context, client storage.Client, bucket string) (*ObjectStore, error) {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check snapshot bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create snapshot bucket: %w", err)
		}
	}
	return &ObjectStore{client: client, bucket: bucket, prefix: "snapshots/"}, nil
}

func (s *ObjectStore) objectName(scope string) string {
	return s.prefix + scope + ".json"
}

// Load fetches and decodes the snapshot object. Concurrent loads for the same
// scope are coalesced; a missing or undecodable object yields the empty snapshot.
func (s *ObjectStore) Load(ctx context.Context, scope string) (*ScanResult, error) {
	v, err, _ := s.sf.Do(scope, func() (any, error) {
		reader, err := s.client.GetObject(ctx, s.bucket, s.objectName(scope), minio.GetObjectOptions{})
		if err != nil {
			return Empty(), nil
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			// Object-not-found surfaces here as a read error with minio.
			return Empty(), nil
		}

		var result ScanResult
		if err := json.Unmarshal(data, &result); err != nil {
			return Empty(), nil
		}
		if result.Found == nil {
			result.Found = map[string]MatchEntry{}
		}
		if result.NotFound == nil {
			result.NotFound = []string{}
		}
		return &result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ScanResult), nil
}

// Save uploads the snapshot blob. Object stores replace atomically per key.
func (s *ObjectStore) Save(ctx context.Context, scope string, result *ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, s.objectName(scope),
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return nil
}

// Delete removes the snapshot object for the scope.
func (s *ObjectStore) Delete(ctx context.Context, scope string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, s.objectName(scope), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
