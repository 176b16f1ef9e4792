package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"pvhealth-cloud/internal/audit"
	"pvhealth-cloud/internal/auth"
	"pvhealth-cloud/internal/degradation"
	"pvhealth-cloud/internal/observability/metrics"
	panel "pvhealth-cloud/internal/panel/domain"
	profileapp "pvhealth-cloud/internal/profile/application"
	profileinterfaces "pvhealth-cloud/internal/profile/interfaces"
)

// Handler provides profile HTTP endpoints:
//
//	POST /api/v1/panels/{id}/profiles
//	GET  /api/v1/panels/{id}/profiles
//	GET  /api/v1/panels/{id}/profiles/export.pdf
//	GET  /api/v1/panels/{id}/profiles/export.xlsx
type Handler struct {
	service     *profileapp.ProfileService
	repo        panel.Repository
	reportMeta  profileinterfaces.ReportMeta
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *profileapp.ProfileService, repo panel.Repository, reportMeta profileinterfaces.ReportMeta, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("profile handler: nil service")
	}
	if repo == nil {
		return nil, errors.New("profile handler: nil repository")
	}
	return &Handler{service: service, repo: repo, reportMeta: reportMeta, auditLogger: auditLogger}, nil
}

type profileResponse struct {
	PanelID     string    `json:"panel_id"`
	Degradation float64   `json:"degradation"`
	GeneratedAt time.Time `json:"generated_at"`
	// Presentation figures: degradation as a percentage and the
	// complementary share of original performance.
	DegradationPct float64 `json:"degradation_pct"`
	PerformancePct float64 `json:"performance_pct"`
}

// ServeHTTP routes profile requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/panels/")

	switch {
	case strings.HasSuffix(rest, "/profiles") && r.Method == http.MethodPost:
		h.handleGenerate(w, r, strings.TrimSuffix(rest, "/profiles"))
	case strings.HasSuffix(rest, "/profiles") && r.Method == http.MethodGet:
		h.handleList(w, r, strings.TrimSuffix(rest, "/profiles"))
	case strings.HasSuffix(rest, "/profiles/export.pdf") && r.Method == http.MethodGet:
		h.handleExport(w, r, strings.TrimSuffix(rest, "/profiles/export.pdf"), "pdf")
	case strings.HasSuffix(rest, "/profiles/export.xlsx") && r.Method == http.MethodGet:
		h.handleExport(w, r, strings.TrimSuffix(rest, "/profiles/export.xlsx"), "xlsx")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request, panelID string) {
	started := time.Now()
	profile, err := h.service.GenerateProfile(r.Context(), panelID)
	switch {
	case errors.Is(err, degradation.ErrInsufficientData):
		metrics.ObserveProfileGeneration(metrics.ResultInsufficient, time.Since(started))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	case errors.Is(err, panel.ErrPanelNotFound):
		metrics.ObserveProfileGeneration(metrics.ResultError, time.Since(started))
		http.Error(w, "panel not found", http.StatusNotFound)
		return
	case err != nil:
		metrics.ObserveProfileGeneration(metrics.ResultError, time.Since(started))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.ObserveProfileGeneration(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toProfileResponse(profile))

	h.logAudit(r, "profile.generate", panelID, profile)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request, panelID string) {
	profiles, err := h.service.ListProfiles(r.Context(), panelID)
	if errors.Is(err, panel.ErrPanelNotFound) {
		http.Error(w, "panel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, toProfileResponse(profile))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, panelID, format string) {
	p, err := h.repo.Get(r.Context(), panelID)
	if errors.Is(err, panel.ErrPanelNotFound) {
		metrics.IncProfileExport(format, metrics.ResultError)
		http.Error(w, "panel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		metrics.IncProfileExport(format, metrics.ResultError)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = profileinterfaces.BuildProfilePDF(p, h.reportMeta)
		contentType = "application/pdf"
	case "xlsx":
		data, err = profileinterfaces.BuildProfileXLSX(p, h.reportMeta)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
		return
	}
	if err != nil {
		metrics.IncProfileExport(format, metrics.ResultError)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.IncProfileExport(format, metrics.ResultSuccess)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s-profiles.%s", panelID, format))
	_, _ = w.Write(data)
}

func (h *Handler) logAudit(r *http.Request, action, panelID string, profile panel.Profile) {
	if h.auditLogger == nil {
		return
	}
	meta, _ := json.Marshal(map[string]any{
		"degradation":  profile.Degradation,
		"generated_at": profile.GeneratedAt,
	})
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "profile",
		ResourceID:   panelID,
		Metadata:     meta,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func toProfileResponse(profile panel.Profile) profileResponse {
	return profileResponse{
		PanelID:        profile.PanelID,
		Degradation:    profile.Degradation,
		GeneratedAt:    profile.GeneratedAt,
		DegradationPct: roundTwo(profile.Degradation * 100),
		PerformancePct: roundTwo((1 - profile.Degradation) * 100),
	}
}

func roundTwo(value float64) float64 {
	return math.Round(value*100) / 100
}
