// Package records defines the clinical documents (patients, sessions and
// the process maps inside them) and the Store that persists them as JSON
// files inside the workspace folder.
//
// Design notes:
//   - One patient folder per sanitized patient name, holding dados.json.
//   - One session file per calendar day: two sessions on the same day
//     share a file and the last save wins.
//   - Standalone session files are the source of truth; the session list
//     embedded in dados.json is a copy refreshed by the application state.
package records

import (
	"time"

	"github.com/google/uuid"
)

// --- Enums ---

// Sex is the patient's declared sex.
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
	SexOther  Sex = "Outro"
)

// Dimension classifies a process in one of eight fixed categories: five
// psychological dimensions and three contextual levels.
type Dimension string

const (
	DimensionAffect        Dimension = "afeto"
	DimensionCognition     Dimension = "cognição"
	DimensionAttention     Dimension = "atenção"
	DimensionMotivation    Dimension = "motivação"
	DimensionSelf          Dimension = "self"
	DimensionBiophysiology Dimension = "biofisiologico"
	DimensionContext       Dimension = "contexto"
	DimensionSociocultural Dimension = "sociocultural"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{
	DimensionAffect,
	DimensionCognition,
	DimensionAttention,
	DimensionMotivation,
	DimensionSelf,
	DimensionBiophysiology,
	DimensionContext,
	DimensionSociocultural,
}

// DimensionColors is the default color of each dimension.
var DimensionColors = map[Dimension]string{
	DimensionAffect:        "#FF6B6B",
	DimensionCognition:     "#4ECDC4",
	DimensionAttention:     "#45B7D1",
	DimensionMotivation:    "#F7DC6F",
	DimensionSelf:          "#BB8FCE",
	DimensionBiophysiology: "#52C41A",
	DimensionContext:       "#FA8C16",
	DimensionSociocultural: "#722ED1",
}

// ValidDimension reports whether d is one of the eight dimensions.
func ValidDimension(d Dimension) bool {
	_, ok := DimensionColors[d]
	return ok
}

// ConnectionKind is the relation a connection expresses.
type ConnectionKind string

const (
	KindCausal        ConnectionKind = "causal"
	KindCorrelational ConnectionKind = "correlacional"
	KindTemporal      ConnectionKind = "temporal"
	KindBidirectional ConnectionKind = "bidirectional"
)

// ValidConnectionKind reports whether k is a known relation kind.
func ValidConnectionKind(k ConnectionKind) bool {
	switch k {
	case KindCausal, KindCorrelational, KindTemporal, KindBidirectional:
		return true
	}
	return false
}

// --- Documents ---

// Position is a point on the session map.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the optional display size of a process node.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Process is one clinical observation placed on a session map.
type Process struct {
	ID        string    `json:"id" validate:"required"`
	Text      string    `json:"texto"`
	Dimension Dimension `json:"dimensao" validate:"required,oneof=afeto cognição atenção motivação self biofisiologico contexto sociocultural"`
	Position  Position  `json:"posicao"`
	Color     string    `json:"cor"`
	CreatedAt time.Time `json:"dataCriacao"`
	SessionID string    `json:"sessaoId"`
	Size      *Size     `json:"tamanho,omitempty"`
}

// Connection is a typed edge between two processes of the same session.
type Connection struct {
	ID        string         `json:"id" validate:"required"`
	From      string         `json:"origem" validate:"required"`
	To        string         `json:"destino" validate:"required"`
	Kind      ConnectionKind `json:"tipo" validate:"required,oneof=causal correlacional temporal bidirectional"`
	SessionID string         `json:"sessaoId"`
	Label     string         `json:"label,omitempty"`
	Color     string         `json:"cor,omitempty"`
}

// Session is one encounter, persisted as Sessões/sessao_<date>.json.
type Session struct {
	ID          string       `json:"id" validate:"required"`
	Date        time.Time    `json:"data" validate:"required"`
	PatientID   string       `json:"pacienteId" validate:"required"`
	Processes   []Process    `json:"processos" validate:"dive"`
	Connections []Connection `json:"conexoes" validate:"dive"`
	Notes       string       `json:"observacoes,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" validate:"gtefield=CreatedAt"`
	// Revision counts successful saves; see Store for the conflict rule.
	Revision int64 `json:"revisao,omitempty"`
}

// Patient is the patient document, persisted as dados.json.
type Patient struct {
	ID           string    `json:"id" validate:"required"`
	Name         string    `json:"nome" validate:"required"`
	Sex          Sex       `json:"sexo" validate:"omitempty,oneof=M F Outro"`
	Age          int       `json:"idade" validate:"gte=0"`
	CreationDate time.Time `json:"datacriacao"`
	Sessions     []Session `json:"sessoes" validate:"dive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" validate:"gtefield=CreatedAt"`
	Revision     int64     `json:"revisao,omitempty"`
}

// --- Constructors ---

// NewPatient creates a patient with a fresh id and no sessions.
func NewPatient(name string, sex Sex, age int) *Patient {
	now := timeNow().UTC()
	return &Patient{
		ID:           uuid.NewString(),
		Name:         name,
		Sex:          sex,
		Age:          age,
		CreationDate: now,
		Sessions:     []Session{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewSession creates an empty session for patientID on the given date.
func NewSession(patientID string, date time.Time) *Session {
	now := timeNow().UTC()
	return &Session{
		ID:          uuid.NewString(),
		Date:        date.UTC(),
		PatientID:   patientID,
		Processes:   []Process{},
		Connections: []Connection{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewProcess creates a process colored after its dimension.
func NewProcess(sessionID, text string, dim Dimension, pos Position) Process {
	return Process{
		ID:        uuid.NewString(),
		Text:      text,
		Dimension: dim,
		Position:  pos,
		Color:     DimensionColors[dim],
		CreatedAt: timeNow().UTC(),
		SessionID: sessionID,
	}
}

// NewConnection creates a connection between two process ids.
func NewConnection(sessionID, from, to string, kind ConnectionKind) Connection {
	return Connection{
		ID:        uuid.NewString(),
		From:      from,
		To:        to,
		Kind:      kind,
		SessionID: sessionID,
	}
}

// DanglingConnections returns the ids of connections whose endpoints are
// not processes of s. The store does not reject such sessions.
func DanglingConnections(s Session) []string {
	ids := make(map[string]struct{}, len(s.Processes))
	for _, p := range s.Processes {
		ids[p.ID] = struct{}{}
	}

	var dangling []string
	for _, c := range s.Connections {
		_, fromOK := ids[c.From]
		_, toOK := ids[c.To]
		if !fromOK || !toOK {
			dangling = append(dangling, c.ID)
		}
	}
	return dangling
}
