package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"pvhealth-cloud/internal/panel/infrastructure/memory"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

func newService(t *testing.T) (*PanelService, *memory.PanelRepository) {
	t.Helper()
	repo := memory.NewPanelRepository()
	service, err := NewPanelService(repo, fixedClock{at: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)})
	if err != nil {
		t.Fatalf("new panel service: %v", err)
	}
	return service, repo
}

func TestRegisterPanelGeneratesUniqueIDs(t *testing.T) {
	service, _ := newService(t)

	first, err := service.RegisterPanel(context.Background(), RegisterRequest{})
	if err != nil {
		t.Fatalf("register panel: %v", err)
	}
	second, err := service.RegisterPanel(context.Background(), RegisterRequest{})
	if err != nil {
		t.Fatalf("register panel: %v", err)
	}
	if first.ID() == "" || first.ID() == second.ID() {
		t.Fatalf("expected distinct generated ids, got %q and %q", first.ID(), second.ID())
	}
	if !strings.HasPrefix(first.ID(), "panel-") {
		t.Fatalf("unexpected id shape %q", first.ID())
	}
}

func TestRegisterPanelRejectsUnknownKey(t *testing.T) {
	service, _ := newService(t)

	_, err := service.RegisterPanel(context.Background(), RegisterRequest{
		Specifications: map[string]float64{"frame_color": 1},
	})
	if err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestRecordTestPowerWinsOverPair(t *testing.T) {
	service, _ := newService(t)
	p, err := service.RegisterPanel(context.Background(), RegisterRequest{PanelID: "panel-1"})
	if err != nil {
		t.Fatalf("register panel: %v", err)
	}

	power := 350.0
	voltage := 37.0
	current := 10.0
	record, err := service.RecordTest(context.Background(), p.ID(), RecordTestRequest{
		PowerOutputW:     &power,
		MeasuredVoltageV: &voltage,
		MeasuredCurrentA: &current,
	})
	if err != nil {
		t.Fatalf("record test: %v", err)
	}
	if record.PowerOutputW != 350 {
		t.Fatalf("expected explicit power 350, got %v", record.PowerOutputW)
	}
}

func TestRecordTestRequiresMeasurement(t *testing.T) {
	service, _ := newService(t)
	if _, err := service.RegisterPanel(context.Background(), RegisterRequest{PanelID: "panel-1"}); err != nil {
		t.Fatalf("register panel: %v", err)
	}

	if _, err := service.RecordTest(context.Background(), "panel-1", RecordTestRequest{}); err == nil {
		t.Fatal("expected error for missing measurement")
	}
}

func TestRecordTestStampsClockWhenTimeAbsent(t *testing.T) {
	service, repo := newService(t)
	if _, err := service.RegisterPanel(context.Background(), RegisterRequest{PanelID: "panel-1"}); err != nil {
		t.Fatalf("register panel: %v", err)
	}

	power := 370.0
	record, err := service.RecordTest(context.Background(), "panel-1", RecordTestRequest{PowerOutputW: &power})
	if err != nil {
		t.Fatalf("record test: %v", err)
	}
	want := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	if record.At != want {
		t.Fatalf("expected clock stamp %v, got %v", want, record.At)
	}

	p, err := repo.Get(context.Background(), "panel-1")
	if err != nil {
		t.Fatalf("get panel: %v", err)
	}
	if latest, ok := p.LatestTest(); !ok || latest.PowerOutputW != 370 {
		t.Fatalf("expected persisted test, got %+v ok=%v", latest, ok)
	}
}
