package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"pvhealth-cloud/internal/audit"
	"pvhealth-cloud/internal/auth"
	panelapp "pvhealth-cloud/internal/panel/application"
	panel "pvhealth-cloud/internal/panel/domain"
)

// Handler provides panel HTTP endpoints:
//
//	POST /api/v1/panels
//	GET  /api/v1/panels
//	GET  /api/v1/panels/{id}
//	POST /api/v1/panels/{id}/specifications
//	POST /api/v1/panels/{id}/tests
type Handler struct {
	service     *panelapp.PanelService
	auditLogger audit.Logger
}

// NewHandler constructs a handler.
func NewHandler(service *panelapp.PanelService, auditLogger audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("panel handler: nil service")
	}
	return &Handler{service: service, auditLogger: auditLogger}, nil
}

type panelResponse struct {
	PanelID        string             `json:"panel_id"`
	ModelNumber    string             `json:"model_number,omitempty"`
	Specifications map[string]float64 `json:"specifications"`
	TestCount      int                `json:"test_count"`
	ProfileCount   int                `json:"profile_count"`
}

type testResponse struct {
	MeasuredAt   time.Time `json:"measured_at"`
	PowerOutputW float64   `json:"power_output_w"`
}

// ServeHTTP routes panel requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/panels")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.handleRegister(w, r)
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case rest != "" && !strings.Contains(rest, "/") && r.Method == http.MethodGet:
		h.handleGet(w, r, rest)
	case strings.HasSuffix(rest, "/specifications") && r.Method == http.MethodPost:
		h.handleSpecifications(w, r, strings.TrimSuffix(rest, "/specifications"))
	case strings.HasSuffix(rest, "/tests") && r.Method == http.MethodPost:
		h.handleTests(w, r, strings.TrimSuffix(rest, "/tests"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req panelapp.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	p, err := h.service.RegisterPanel(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toPanelResponse(p))

	h.logAudit(r, "panel.register", p.ID())
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	panels, err := h.service.ListPanels(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]panelResponse, 0, len(panels))
	for _, p := range panels {
		out = append(out, toPanelResponse(p))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, panelID string) {
	p, err := h.service.GetPanel(r.Context(), panelID)
	if err != nil {
		respondPanelError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPanelResponse(p))
}

func (h *Handler) handleSpecifications(w http.ResponseWriter, r *http.Request, panelID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var values map[string]float64
	if err := json.Unmarshal(body, &values); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	p, err := h.service.RecordSpecifications(r.Context(), panelID, values)
	if err != nil {
		respondPanelError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toPanelResponse(p))
}

func (h *Handler) handleTests(w http.ResponseWriter, r *http.Request, panelID string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var req panelapp.RecordTestRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	record, err := h.service.RecordTest(r.Context(), panelID, req)
	if err != nil {
		respondPanelError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(testResponse{MeasuredAt: record.At, PowerOutputW: record.PowerOutputW})

	h.logAudit(r, "panel.test.record", panelID)
}

func (h *Handler) logAudit(r *http.Request, action, panelID string) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "panel",
		ResourceID:   panelID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func toPanelResponse(p *panel.Panel) panelResponse {
	specs := make(map[string]float64)
	for key, value := range p.Specifications() {
		specs[string(key)] = value
	}
	return panelResponse{
		PanelID:        p.ID(),
		ModelNumber:    p.ModelNumber(),
		Specifications: specs,
		TestCount:      len(p.Tests()),
		ProfileCount:   len(p.Profiles()),
	}
}

func respondPanelError(w http.ResponseWriter, err error) {
	if errors.Is(err, panel.ErrPanelNotFound) {
		http.Error(w, "panel not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}
