package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securevault/internal/logging"
	"github.com/dmitrijs2005/securevault/internal/server/models"
	"github.com/dmitrijs2005/securevault/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const maxBodySize = 1 << 20

type handler struct {
	auth   AuthService
	vault  VaultService
	audit  AuditService
	backup BackupService
	log    logging.Logger
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type breachRequest struct {
	Password string `json:"password"`
}

type entryRequest struct {
	Title   string `json:"title"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Content   *string   `json:"content,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type auditResponse struct {
	UserID          string    `json:"userId"`
	GeneratedAt     time.Time `json:"generatedAt"`
	TotalEntries    int       `json:"totalEntries"`
	StaleEntries    []string  `json:"staleEntries"`
	Recommendations []string  `json:"recommendations"`
	RiskScore       string    `json:"riskScore"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid request body", "")
		return false
	}
	return true
}

func toTokenResponse(p *services.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int64(p.ExpiresIn / time.Second),
	}
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userId": id})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(pair))
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) breachCheck(w http.ResponseWriter, r *http.Request) {
	var req breachRequest
	if !decode(w, r, &req) {
		return
	}

	v, err := h.auth.CheckBreach(r.Context(), req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"breached": v.Compromised, "count": v.Count})
}

func (h *handler) listEntries(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	views, err := h.vault.List(r.Context(), userID)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	resp := make([]entryResponse, 0, len(views))
	for _, v := range views {
		e := entryResponse{
			ID:        v.Entry.ID,
			Title:     v.Entry.Title,
			Type:      string(v.Entry.Type),
			CreatedAt: v.Entry.CreatedAt,
			UpdatedAt: v.Entry.UpdatedAt,
		}
		if v.Err != nil {
			e.Error = CodeIntegrity
		} else {
			content := v.Content
			e.Content = &content
		}
		resp = append(resp, e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) createEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req entryRequest
	if !decode(w, r, &req) {
		return
	}

	e, err := h.vault.Create(r.Context(), userID, toEntryInput(req))
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": e.ID})
}

func (h *handler) updateEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req entryRequest
	if !decode(w, r, &req) {
		return
	}

	if _, err := h.vault.Update(r.Context(), userID, chi.URLParam(r, "id"), toEntryInput(req)); err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	if err := h.vault.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) auditReport(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	rep, err := h.audit.Report(r.Context(), userID)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	stale := rep.StaleEntries
	if stale == nil {
		stale = []string{}
	}
	writeJSON(w, http.StatusOK, auditResponse{
		UserID:          rep.UserID,
		GeneratedAt:     rep.GeneratedAt,
		TotalEntries:    rep.TotalEntries,
		StaleEntries:    stale,
		Recommendations: rep.Recommendations,
		RiskScore:       string(rep.RiskScore),
	})
}

func (h *handler) backupVault(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	res, err := h.backup.Backup(r.Context(), userID)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": res.Key, "entries": res.Entries})
}

func toEntryInput(req entryRequest) services.EntryInput {
	return services.EntryInput{Title: req.Title, Type: models.EntryType(req.Type), Content: req.Content}
}

