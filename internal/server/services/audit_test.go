package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-100 * 24 * time.Hour)
	recent := now.Add(-24 * time.Hour)

	cred := func(title string, updated time.Time) models.Entry {
		return models.Entry{Title: title, Type: models.EntryTypeCredential, UpdatedAt: updated}
	}
	note := models.Entry{Title: "codes", Type: models.EntryTypeNote, UpdatedAt: old}

	tests := []struct {
		name       string
		entries    []models.Entry
		risk       RiskScore
		stale      []string
		firstTip   string
		tipsLength int
	}{
		{
			name:       "empty vault",
			risk:       RiskLow,
			firstTip:   "Your vault is empty. Start adding your credentials to keep them secure.",
			tipsLength: 4,
		},
		{
			name:       "fresh credentials without notes",
			entries:    []models.Entry{cred("mail", recent)},
			risk:       RiskLow,
			firstTip:   "Consider adding secure notes for recovery codes and other sensitive info.",
			tipsLength: 4,
		},
		{
			name:       "stale notes do not count",
			entries:    []models.Entry{note, cred("mail", recent)},
			risk:       RiskLow,
			firstTip:   generalRecommendations[0],
			tipsLength: 3,
		},
		{
			name:       "two stale",
			entries:    []models.Entry{note, cred("a", old), cred("b", old), cred("c", recent)},
			risk:       RiskMedium,
			stale:      []string{"a", "b"},
			firstTip:   "Update these credentials, not changed in 90+ days: a, b",
			tipsLength: 4,
		},
		{
			name:       "four stale lists three",
			entries:    []models.Entry{note, cred("a", old), cred("b", old), cred("c", old), cred("d", old)},
			risk:       RiskHigh,
			stale:      []string{"a", "b", "c", "d"},
			firstTip:   "Update these credentials, not changed in 90+ days: a, b, c",
			tipsLength: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildReport("u1", tt.entries, now)
			assert.Equal(t, "u1", r.UserID)
			assert.Equal(t, now, r.GeneratedAt)
			assert.Equal(t, len(tt.entries), r.TotalEntries)
			assert.Equal(t, tt.risk, r.RiskScore)
			assert.Equal(t, tt.stale, r.StaleEntries)
			require.Len(t, r.Recommendations, tt.tipsLength)
			assert.Equal(t, tt.firstTip, r.Recommendations[0])
		})
	}
}

func TestAuditService_Report(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	uid := env.register(t, aliceEmail, alicePassword)

	_, err := env.vault.Create(ctx, uid, EntryInput{Title: "mail", Type: models.EntryTypeCredential, Content: "pw"})
	require.NoError(t, err)

	svc := NewAuditService(env.vault)
	svc.now = func() time.Time { return time.Now().Add(91 * 24 * time.Hour) }

	r, err := svc.Report(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalEntries)
	assert.Equal(t, []string{"mail"}, r.StaleEntries)
	assert.Equal(t, RiskMedium, r.RiskScore)
}
