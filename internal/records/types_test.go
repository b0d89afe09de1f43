package records

import (
	"encoding/json"
	"testing"
	"time"
)

func withFixedTime(t *testing.T, now time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = orig })
}

func TestNewPatient_Defaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFixedTime(t, now)

	p := NewPatient("Ana", SexFemale, 30)
	if p.ID == "" {
		t.Error("ID should be set")
	}
	if !p.CreatedAt.Equal(now) || !p.UpdatedAt.Equal(now) || !p.CreationDate.Equal(now) {
		t.Errorf("timestamps = %v/%v/%v, want %v", p.CreationDate, p.CreatedAt, p.UpdatedAt, now)
	}
	if p.Sessions == nil || len(p.Sessions) != 0 {
		t.Errorf("Sessions = %v, want empty non-nil", p.Sessions)
	}
	if err := Validate(p); err != nil {
		t.Errorf("new patient should be valid: %v", err)
	}
}

func TestNewSession_IsValid(t *testing.T) {
	s := NewSession("pac-1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600)))
	if s.Date.Location() != time.UTC {
		t.Errorf("Date location = %v, want UTC", s.Date.Location())
	}
	if err := Validate(s); err != nil {
		t.Errorf("new session should be valid: %v", err)
	}
}

func TestNewProcess_UsesDimensionColor(t *testing.T) {
	for _, dim := range Dimensions {
		p := NewProcess("s1", "texto", dim, Position{})
		if p.Color != DimensionColors[dim] {
			t.Errorf("color of %s = %s, want %s", dim, p.Color, DimensionColors[dim])
		}
	}
}

func TestValidDimension(t *testing.T) {
	if len(Dimensions) != 8 {
		t.Fatalf("got %d dimensions, want 8", len(Dimensions))
	}
	if !ValidDimension(DimensionCognition) {
		t.Error("cognição should be valid")
	}
	if ValidDimension("humor") {
		t.Error("humor should be invalid")
	}
}

func TestValidate_RejectsUnknownEnums(t *testing.T) {
	s := NewSession("pac-1", time.Now())
	s.Processes = append(s.Processes, Process{ID: "p1", Dimension: "humor"})
	s.Connections = append(s.Connections, Connection{ID: "c1", From: "p1", To: "p1", Kind: "magic"})
	if err := Validate(s); err == nil {
		t.Error("expected validation error for unknown dimension and kind")
	}
}

func TestDanglingConnections(t *testing.T) {
	s := Session{
		Processes: []Process{{ID: "a"}, {ID: "b"}},
		Connections: []Connection{
			{ID: "ok", From: "a", To: "b"},
			{ID: "bad-to", From: "a", To: "zz"},
			{ID: "bad-from", From: "yy", To: "b"},
		},
	}
	got := DanglingConnections(s)
	if len(got) != 2 || got[0] != "bad-to" || got[1] != "bad-from" {
		t.Errorf("DanglingConnections = %v, want [bad-to bad-from]", got)
	}
}

func TestSessionFileName(t *testing.T) {
	brt := time.FixedZone("BRT", -3*3600)
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), "sessao_2026-01-02.json"},
		{time.Date(2026, 1, 2, 22, 0, 0, 0, brt), "sessao_2026-01-03.json"},
	}
	for _, tt := range tests {
		if got := SessionFileName(tt.date); got != tt.want {
			t.Errorf("SessionFileName(%v) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestSessionJSONShape(t *testing.T) {
	s := NewSession("pac-1", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	for _, key := range []string{"id", "data", "pacienteId", "processos", "conexoes", "createdAt", "updatedAt"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("session JSON missing %q", key)
		}
	}
	if _, ok := raw["observacoes"]; ok {
		t.Error("empty observacoes should be omitted")
	}
	if raw["data"] != "2026-01-02T00:00:00Z" {
		t.Errorf("data = %v, want ISO-8601", raw["data"])
	}
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(EventExport, EntityPatient, "pac-1", map[string]string{"formato": "json"})
	if ev.ID == "" || ev.Timestamp.IsZero() {
		t.Errorf("event not stamped: %+v", ev)
	}
	if string(ev.Data) != `{"formato":"json"}` {
		t.Errorf("Data = %s", ev.Data)
	}
	if NewEvent(EventDelete, EntityProcess, "p", nil).Data != nil {
		t.Error("nil data should leave Data empty")
	}
}
