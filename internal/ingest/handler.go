// Package ingest accepts raw field reports from the measurement UI. Every
// numeric field arrives as a user-entered string; values that fail to parse
// are silently treated as absent rather than rejected, which may surface
// later as an insufficient-data failure from the estimator.
package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"pvhealth-cloud/internal/degradation"
	"pvhealth-cloud/internal/observability/metrics"
	panelapp "pvhealth-cloud/internal/panel/application"
	panel "pvhealth-cloud/internal/panel/domain"
	profileapp "pvhealth-cloud/internal/profile/application"
)

// FieldReport is the raw payload from the field measurement form.
type FieldReport struct {
	ModelNumber        string `json:"model_number"`
	RatedEfficiencyPct string `json:"rated_efficiency_pct"`
	PanelAreaM2        string `json:"panel_area_m2"`
	RatedPmaxW         string `json:"rated_pmax_w"`
	MeasuredVoltageV   string `json:"measured_voltage_v"`
	MeasuredCurrentA   string `json:"measured_current_a"`
}

// Handler handles POST /ingest/field-report: it registers a fresh panel for
// the report, records the measurement, and generates a degradation profile
// in the same request.
type Handler struct {
	panels   *panelapp.PanelService
	profiles *profileapp.ProfileService
	logger   *log.Logger
}

// NewHandler constructs an ingest handler.
func NewHandler(panels *panelapp.PanelService, profiles *profileapp.ProfileService, logger *log.Logger) (*Handler, error) {
	if panels == nil {
		return nil, errors.New("field report ingest: nil panel service")
	}
	if profiles == nil {
		return nil, errors.New("field report ingest: nil profile service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{panels: panels, profiles: profiles, logger: logger}, nil
}

type response struct {
	PanelID        string  `json:"panel_id"`
	Degradation    float64 `json:"degradation"`
	DegradationPct float64 `json:"degradation_pct"`
	PerformancePct float64 `json:"performance_pct"`
}

// ServeHTTP ingests one field report.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	started := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Printf("field report ingest: read body error: %v", err)
		metrics.ObserveIngest(metrics.ResultError, time.Since(started))
		http.Error(w, "read body error", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var report FieldReport
	if err := json.Unmarshal(body, &report); err != nil {
		h.logger.Printf("field report ingest: decode error: %v", err)
		metrics.ObserveIngest(metrics.ResultError, time.Since(started))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	specs, dropped := parseSpecifications(report)
	p, err := h.panels.RegisterPanel(r.Context(), panelapp.RegisterRequest{
		ModelNumber:    report.ModelNumber,
		Specifications: specs,
	})
	if err != nil {
		h.logger.Printf("field report ingest: register error: %v", err)
		metrics.ObserveIngest(metrics.ResultError, time.Since(started))
		http.Error(w, "register error", http.StatusInternalServerError)
		return
	}

	voltage, voltageOK := parseFloat(report.MeasuredVoltageV)
	current, currentOK := parseFloat(report.MeasuredCurrentA)
	if report.MeasuredVoltageV != "" && !voltageOK {
		dropped++
	}
	if report.MeasuredCurrentA != "" && !currentOK {
		dropped++
	}
	if voltageOK && currentOK {
		powerW := voltage * current
		if _, err := h.panels.RecordTest(r.Context(), p.ID(), panelapp.RecordTestRequest{PowerOutputW: &powerW}); err != nil {
			h.logger.Printf("field report ingest: record test error: %v", err)
			metrics.ObserveIngest(metrics.ResultError, time.Since(started))
			http.Error(w, "record test error", http.StatusInternalServerError)
			return
		}
		metrics.IncTestRecorded()
	}
	metrics.AddDroppedFields(dropped)

	profile, err := h.profiles.GenerateProfile(r.Context(), p.ID())
	if errors.Is(err, degradation.ErrInsufficientData) {
		metrics.ObserveIngest(metrics.ResultError, time.Since(started))
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		h.logger.Printf("field report ingest: generate error: %v", err)
		metrics.ObserveIngest(metrics.ResultError, time.Since(started))
		http.Error(w, "generate error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveIngest(metrics.ResultSuccess, time.Since(started))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(response{
		PanelID:        profile.PanelID,
		Degradation:    profile.Degradation,
		DegradationPct: profile.Degradation * 100,
		PerformancePct: (1 - profile.Degradation) * 100,
	})
}

// parseSpecifications converts the report's raw strings into specification
// values, counting how many non-numeric fields were dropped.
func parseSpecifications(report FieldReport) (map[string]float64, int) {
	specs := make(map[string]float64)
	dropped := 0
	set := func(key panel.SpecKey, raw string) {
		if raw == "" {
			return
		}
		value, ok := parseFloat(raw)
		if !ok {
			dropped++
			return
		}
		specs[string(key)] = value
	}
	set(panel.SpecRatedEfficiencyPct, report.RatedEfficiencyPct)
	set(panel.SpecModuleAreaM2, report.PanelAreaM2)
	set(panel.SpecRatedPmaxW, report.RatedPmaxW)
	return specs, dropped
}

func parseFloat(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
