package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securevault/internal/common"
	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/gateway"
	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// EntryInput is the plaintext form of an entry as submitted by a client.
type EntryInput struct {
	Title   string
	Type    models.EntryType
	Content string
}

// EntryView is one row of a listing. Err is common.ErrIntegrity when the
// stored payload failed authentication; Content is then empty.
type EntryView struct {
	Entry   models.Entry
	Content string
	Err     error
}

// VaultService is the only component that reads or writes vault rows.
// Plaintext passes through it on its way to and from the gateway and is
// never stored.
type VaultService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	gateway     gateway.EncryptionProvider
	log         logging.Logger
}

func NewVaultService(store dbx.Store, m repomanager.RepositoryManager, gw gateway.EncryptionProvider, log logging.Logger) *VaultService {
	return &VaultService{
		store:       store,
		repomanager: m,
		gateway:     gw,
		log:         log.With("module", "vault"),
	}
}

// Create encrypts the content and stores a new entry owned by userID.
// Nothing is written if encryption fails.
func (s *VaultService) Create(ctx context.Context, userID string, in EntryInput) (*models.Entry, error) {
	if err := validateEntry(in); err != nil {
		return nil, err
	}

	payload, err := s.encrypt(ctx, in.Content)
	if err != nil {
		return nil, err
	}

	e := &models.Entry{UserID: userID, Title: in.Title, Type: in.Type, Payload: *payload}
	if err := s.repomanager.Entries(s.store.Conn()).Create(ctx, e); err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return e, nil
}

// List returns the caller's entries, newest first, each decrypted
// independently. A row that fails authentication is reported in its own
// EntryView; any other gateway failure aborts the listing.
func (s *VaultService) List(ctx context.Context, userID string) ([]EntryView, error) {
	list, err := s.ListMetadata(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]EntryView, 0, len(list))
	for _, e := range list {
		v := EntryView{Entry: e}

		plaintext, err := s.gateway.Decrypt(ctx, &e.Payload)
		switch {
		case err == nil:
			v.Content = string(plaintext)
			common.WipeByteArray(plaintext)
		case errors.Is(err, common.ErrIntegrity):
			s.log.Warn(ctx, "entry failed integrity check", "entry_id", e.ID, "user_id", userID)
			v.Err = common.ErrIntegrity
		default:
			return nil, wrapGatewayError(err)
		}

		views = append(views, v)
	}
	return views, nil
}

// ListMetadata returns the caller's entries without decrypting them.
func (s *VaultService) ListMetadata(ctx context.Context, userID string) ([]models.Entry, error) {
	list, err := s.repomanager.Entries(s.store.Conn()).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}

// Update replaces title, type and content of an entry the caller owns.
// Missing and foreign entries both yield common.ErrorNotFound.
func (s *VaultService) Update(ctx context.Context, userID, id string, in EntryInput) (*models.Entry, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	if err := validateEntry(in); err != nil {
		return nil, err
	}

	payload, err := s.encrypt(ctx, in.Content)
	if err != nil {
		return nil, err
	}

	e := &models.Entry{ID: id, UserID: userID, Title: in.Title, Type: in.Type, Payload: *payload}
	if err := s.repomanager.Entries(s.store.Conn()).Update(ctx, e); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating entry: %w", err)
	}
	return e, nil
}

// Delete removes an entry the caller owns.
func (s *VaultService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Entries(s.store.Conn()).Delete(ctx, id, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting entry: %w", err)
	}
	return nil
}

func (s *VaultService) encrypt(ctx context.Context, content string) (*gateway.EncryptedPayload, error) {
	plaintext := []byte(content)
	defer common.WipeByteArray(plaintext)

	payload, err := s.gateway.Encrypt(ctx, plaintext)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, wrapGatewayError(err)
	}
	return payload, nil
}

func wrapGatewayError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, common.ErrServiceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrServiceUnavailable, err)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
