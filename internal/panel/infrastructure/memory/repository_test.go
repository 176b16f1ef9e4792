package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	panel "pvhealth-cloud/internal/panel/domain"
)

func TestRepositoryGetUnknownPanel(t *testing.T) {
	repo := NewPanelRepository()
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, panel.ErrPanelNotFound) {
		t.Fatalf("expected ErrPanelNotFound, got %v", err)
	}
	if _, err := repo.Get(context.Background(), ""); !errors.Is(err, panel.ErrEmptyPanelID) {
		t.Fatalf("expected ErrEmptyPanelID, got %v", err)
	}
}

func TestRepositorySaveRejectsNil(t *testing.T) {
	repo := NewPanelRepository()
	if err := repo.Save(context.Background(), nil); !errors.Is(err, panel.ErrNilPanel) {
		t.Fatalf("expected ErrNilPanel, got %v", err)
	}
}

func TestRepositoryReturnsDetachedCopies(t *testing.T) {
	repo := NewPanelRepository()

	p, err := panel.NewPanel("panel-1", "PX-400")
	if err != nil {
		t.Fatalf("new panel: %v", err)
	}
	p.RecordSpecifications(map[panel.SpecKey]float64{panel.SpecModuleAreaM2: 2.0})
	if err := repo.Save(context.Background(), p); err != nil {
		t.Fatalf("save panel: %v", err)
	}

	// Mutating the saved pointer must not affect the stored state.
	record, err := panel.NewTestRecord(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), 370)
	if err != nil {
		t.Fatalf("new test record: %v", err)
	}
	p.RecordTest(record)

	loaded, err := repo.Get(context.Background(), "panel-1")
	if err != nil {
		t.Fatalf("get panel: %v", err)
	}
	if len(loaded.Tests()) != 0 {
		t.Fatalf("expected stored panel without tests, got %d", len(loaded.Tests()))
	}

	// Mutating a loaded copy must not affect later loads.
	loaded.RecordTest(record)
	reloaded, err := repo.Get(context.Background(), "panel-1")
	if err != nil {
		t.Fatalf("get panel: %v", err)
	}
	if len(reloaded.Tests()) != 0 {
		t.Fatalf("expected unchanged stored panel, got %d tests", len(reloaded.Tests()))
	}
}

func TestRepositoryListOrdersByID(t *testing.T) {
	repo := NewPanelRepository()
	for _, id := range []string{"panel-b", "panel-a"} {
		p, err := panel.NewPanel(id, "")
		if err != nil {
			t.Fatalf("new panel: %v", err)
		}
		if err := repo.Save(context.Background(), p); err != nil {
			t.Fatalf("save panel: %v", err)
		}
	}

	panels, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list panels: %v", err)
	}
	if len(panels) != 2 || panels[0].ID() != "panel-a" || panels[1].ID() != "panel-b" {
		t.Fatalf("unexpected list order: %+v", panels)
	}
}
