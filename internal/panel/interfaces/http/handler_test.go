package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	panelapp "pvhealth-cloud/internal/panel/application"
	panel "pvhealth-cloud/internal/panel/domain"
	"pvhealth-cloud/internal/panel/infrastructure/memory"
)

func newHandler(t *testing.T) (*Handler, *memory.PanelRepository) {
	t.Helper()
	repo := memory.NewPanelRepository()
	service, err := panelapp.NewPanelService(repo, nil)
	if err != nil {
		t.Fatalf("new panel service: %v", err)
	}
	handler, err := NewHandler(service, nil)
	if err != nil {
		t.Fatalf("new panel handler: %v", err)
	}
	return handler, repo
}

func TestRegisterPanelGeneratesID(t *testing.T) {
	handler, repo := newHandler(t)

	body := `{"model_number":"PX-400","specifications":{"module_area_m2":2.0,"rated_efficiency_pct":20}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/panels", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out panelResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.PanelID == "" {
		t.Fatal("expected generated panel id")
	}
	if out.Specifications["module_area_m2"] != 2.0 {
		t.Fatalf("unexpected specifications: %+v", out.Specifications)
	}

	if _, err := repo.Get(context.Background(), out.PanelID); err != nil {
		t.Fatalf("panel not persisted: %v", err)
	}
}

func TestRegisterPanelRejectsUnknownSpecKey(t *testing.T) {
	handler, _ := newHandler(t)

	body := `{"specifications":{"frame_color":1}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/panels", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestRecordSpecificationsMerges(t *testing.T) {
	handler, repo := newHandler(t)
	seed(t, repo, "panel-1")

	body := `{"module_area_m2":3.0,"rated_efficiency_pct":18}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/panels/panel-1/specifications", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	p, err := repo.Get(context.Background(), "panel-1")
	if err != nil {
		t.Fatalf("get panel: %v", err)
	}
	if area, _ := p.Specification(panel.SpecModuleAreaM2); area != 3.0 {
		t.Fatalf("expected merged area 3.0, got %v", area)
	}
}

func TestRecordTestComputesPowerFromVoltageCurrent(t *testing.T) {
	handler, repo := newHandler(t)
	seed(t, repo, "panel-1")

	body := `{"measured_voltage_v":37.0,"measured_current_a":10.0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/panels/panel-1/tests", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out testResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.PowerOutputW != 370 {
		t.Fatalf("expected power 370 W, got %v", out.PowerOutputW)
	}
}

func TestGetPanelNotFound(t *testing.T) {
	handler, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/panels/missing", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func seed(t *testing.T, repo *memory.PanelRepository, id string) {
	t.Helper()
	p, err := panel.NewPanel(id, "PX-400")
	if err != nil {
		t.Fatalf("new panel: %v", err)
	}
	p.RecordSpecifications(map[panel.SpecKey]float64{panel.SpecModuleAreaM2: 2.0})
	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("save panel: %v", err)
	}
}
