package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	panel "pvhealth-cloud/internal/panel/domain"
)

func exportPanel(t *testing.T) *panel.Panel {
	t.Helper()
	p, err := panel.NewPanel("panel-1", "PX-400")
	if err != nil {
		t.Fatalf("new panel: %v", err)
	}
	p.RecordSpecifications(map[panel.SpecKey]float64{
		panel.SpecModuleAreaM2:       2.0,
		panel.SpecRatedEfficiencyPct: 20,
	})
	record, err := panel.NewTestRecord(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 370)
	if err != nil {
		t.Fatalf("new test record: %v", err)
	}
	p.RecordTest(record)
	p.AppendProfile(panel.Profile{
		PanelID:     "panel-1",
		Degradation: 0.075,
		GeneratedAt: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	})
	return p
}

func TestBuildProfilePDF(t *testing.T) {
	data, err := BuildProfilePDF(exportPanel(t), ReportMeta{Title: "PV Degradation Profile", Issuer: "test"})
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty pdf")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("expected pdf header")
	}
}

func TestBuildProfileXLSX(t *testing.T) {
	data, err := BuildProfileXLSX(exportPanel(t), ReportMeta{Title: "PV Degradation Profile", Issuer: "test"})
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty xlsx")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen xlsx: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("summary", "B3")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if got != "panel-1" {
		t.Fatalf("expected panel id in summary, got %q", got)
	}
	history, err := f.GetCellValue("profiles", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if history == "" {
		t.Fatal("expected degradation value in history sheet")
	}
}
