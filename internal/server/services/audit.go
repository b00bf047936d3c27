package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/securevault/internal/server/models"
)

const (
	StaleCredentialAge = 90 * 24 * time.Hour
	maxStaleListed     = 3
)

type RiskScore string

const (
	RiskLow    RiskScore = "LOW"
	RiskMedium RiskScore = "MEDIUM"
	RiskHigh   RiskScore = "HIGH"
)

var generalRecommendations = []string{
	"Use unique passwords for every account and never reuse credentials.",
	"Enable two-factor authentication on all critical accounts.",
	"Run breach checks on your stored passwords regularly.",
}

type AuditReport struct {
	UserID          string
	GeneratedAt     time.Time
	TotalEntries    int
	StaleEntries    []string
	Recommendations []string
	RiskScore       RiskScore
}

// AuditService builds a security report from entry metadata. It never
// decrypts content.
type AuditService struct {
	vault *VaultService
	now   func() time.Time
}

func NewAuditService(vault *VaultService) *AuditService {
	return &AuditService{vault: vault, now: time.Now}
}

func (s *AuditService) Report(ctx context.Context, userID string) (*AuditReport, error) {
	list, err := s.vault.ListMetadata(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildReport(userID, list, s.now()), nil
}

func buildReport(userID string, list []models.Entry, now time.Time) *AuditReport {
	r := &AuditReport{
		UserID:       userID,
		GeneratedAt:  now.UTC(),
		TotalEntries: len(list),
	}

	hasNote := false
	for _, e := range list {
		if e.Type == models.EntryTypeNote {
			hasNote = true
		}
		if e.Type == models.EntryTypeCredential && now.Sub(e.UpdatedAt) > StaleCredentialAge {
			r.StaleEntries = append(r.StaleEntries, e.Title)
		}
	}

	if n := len(r.StaleEntries); n > 0 {
		listed := r.StaleEntries[:min(n, maxStaleListed)]
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("Update these credentials, not changed in 90+ days: %s", strings.Join(listed, ", ")))
	}
	if len(list) == 0 {
		r.Recommendations = append(r.Recommendations,
			"Your vault is empty. Start adding your credentials to keep them secure.")
	} else if !hasNote {
		r.Recommendations = append(r.Recommendations,
			"Consider adding secure notes for recovery codes and other sensitive info.")
	}
	r.Recommendations = append(r.Recommendations, generalRecommendations...)

	switch n := len(r.StaleEntries); {
	case n == 0:
		r.RiskScore = RiskLow
	case n <= 2:
		r.RiskScore = RiskMedium
	default:
		r.RiskScore = RiskHigh
	}
	return r
}
