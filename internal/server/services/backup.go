package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/google/uuid"
)

// ObjectStore is the part of the object storage client used for backups.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
}

type BackupResult struct {
	Key     string
	Entries int
}

type backupEntry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Ciphertext []byte    `json:"ciphertext"`
	IV         []byte    `json:"iv"`
	Tag        []byte    `json:"tag"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type backupSnapshot struct {
	UserID    string        `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	Entries   []backupEntry `json:"entries"`
}

// BackupService writes ciphertext-only snapshots of a user's vault to
// object storage. The snapshot is useless without the gateway's key.
type BackupService struct {
	vault   *VaultService
	objects ObjectStore
	now     func() time.Time
	log     logging.Logger
}

// NewBackupService returns a service that reports
// common.ErrServiceUnavailable on every call when objects is nil.
func NewBackupService(vault *VaultService, objects ObjectStore, log logging.Logger) *BackupService {
	return &BackupService{vault: vault, objects: objects, now: time.Now, log: log.With("module", "backup")}
}

func (s *BackupService) Backup(ctx context.Context, userID string) (*BackupResult, error) {
	if s.objects == nil {
		return nil, common.ErrServiceUnavailable
	}

	list, err := s.vault.ListMetadata(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	snap := backupSnapshot{UserID: userID, CreatedAt: now, Entries: make([]backupEntry, 0, len(list))}
	for _, e := range list {
		snap.Entries = append(snap.Entries, backupEntry{
			ID:         e.ID,
			Title:      e.Title,
			Type:       string(e.Type),
			Ciphertext: e.Payload.Ciphertext,
			IV:         e.Payload.IV,
			Tag:        e.Payload.Tag,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
		})
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("error encoding backup: %w", err)
	}

	key := backupKey(userID, now)
	if err := s.objects.PutObject(ctx, key, body, "application/json"); err != nil {
		s.log.Error(ctx, "backup upload failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrServiceUnavailable, err)
	}

	s.log.Info(ctx, "vault backed up", "user_id", userID, "key", key, "entries", len(list))
	return &BackupResult{Key: key, Entries: len(list)}, nil
}

func backupKey(userID string, t time.Time) string {
	return fmt.Sprintf("backups/%s/%04d/%02d/%02d/%s.json", userID, t.Year(), int(t.Month()), t.Day(), uuid.New())
}
