package appstate

import (
	"context"
	"fmt"
	"time"

	"github.com/HendryAvila/clinimap/internal/records"
)

// AddProcess places a new process on the active session.
func (s *State) AddProcess(ctx context.Context, text string, dim records.Dimension, pos records.Position) (records.Process, error) {
	if !records.ValidDimension(dim) {
		return records.Process{}, fmt.Errorf("%w: unknown dimension %q", records.ErrInvalidDocument, dim)
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return records.Process{}, ErrNoActiveSession
	}
	p := records.NewProcess(s.session.ID, text, dim, pos)
	s.session.Processes = append(s.session.Processes, p)
	s.touch()
	s.mu.Unlock()

	s.notify(ctx, records.EventCreate, records.EntityProcess, p.ID, p)
	return p, nil
}

// UpdateProcess replaces the text, dimension, position and size of the
// process with p.ID. The color follows the dimension unless p sets one.
func (s *State) UpdateProcess(ctx context.Context, p records.Process) (records.Process, error) {
	if !records.ValidDimension(p.Dimension) {
		return records.Process{}, fmt.Errorf("%w: unknown dimension %q", records.ErrInvalidDocument, p.Dimension)
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return records.Process{}, ErrNoActiveSession
	}
	i := processIndex(s.session, p.ID)
	if i < 0 {
		s.mu.Unlock()
		return records.Process{}, fmt.Errorf("%w: %s", ErrProcessNotFound, p.ID)
	}
	cur := s.session.Processes[i]
	if p.Color == "" || (p.Dimension != cur.Dimension && p.Color == cur.Color) {
		p.Color = records.DimensionColors[p.Dimension]
	}
	p.CreatedAt = cur.CreatedAt
	p.SessionID = cur.SessionID
	s.session.Processes[i] = p
	s.touch()
	s.mu.Unlock()

	s.notify(ctx, records.EventUpdate, records.EntityProcess, p.ID, p)
	return p, nil
}

// DeleteProcess removes a process and every connection touching it.
func (s *State) DeleteProcess(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	i := processIndex(s.session, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProcessNotFound, id)
	}
	procs := make([]records.Process, 0, len(s.session.Processes)-1)
	procs = append(procs, s.session.Processes[:i]...)
	s.session.Processes = append(procs, s.session.Processes[i+1:]...)

	conns := make([]records.Connection, 0, len(s.session.Connections))
	var removed []string
	for _, c := range s.session.Connections {
		if c.From == id || c.To == id {
			removed = append(removed, c.ID)
			continue
		}
		conns = append(conns, c)
	}
	s.session.Connections = conns
	s.touch()
	s.mu.Unlock()

	s.notify(ctx, records.EventDelete, records.EntityProcess, id, nil)
	for _, cid := range removed {
		s.notify(ctx, records.EventDelete, records.EntityConnection, cid, nil)
	}
	return nil
}

// AddConnection links two processes of the active session.
func (s *State) AddConnection(ctx context.Context, from, to string, kind records.ConnectionKind, label string) (records.Connection, error) {
	if !records.ValidConnectionKind(kind) {
		return records.Connection{}, fmt.Errorf("%w: unknown connection kind %q", records.ErrInvalidDocument, kind)
	}

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return records.Connection{}, ErrNoActiveSession
	}
	for _, id := range []string{from, to} {
		if processIndex(s.session, id) < 0 {
			s.mu.Unlock()
			return records.Connection{}, fmt.Errorf("%w: %s", ErrProcessNotFound, id)
		}
	}
	c := records.NewConnection(s.session.ID, from, to, kind)
	c.Label = label
	s.session.Connections = append(s.session.Connections, c)
	s.touch()
	s.mu.Unlock()

	s.notify(ctx, records.EventCreate, records.EntityConnection, c.ID, c)
	return c, nil
}

// DeleteConnection removes one connection.
func (s *State) DeleteConnection(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNoActiveSession
	}
	conns := make([]records.Connection, 0, len(s.session.Connections))
	found := false
	for _, c := range s.session.Connections {
		if c.ID == id {
			found = true
			continue
		}
		conns = append(conns, c)
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
	}
	s.session.Connections = conns
	s.touch()
	s.mu.Unlock()

	s.notify(ctx, records.EventDelete, records.EntityConnection, id, nil)
	return nil
}

// touch must be called with s.mu held.
func (s *State) touch() {
	now := timeNow().UTC()
	if !now.After(s.session.CreatedAt) {
		now = s.session.CreatedAt.Add(time.Nanosecond)
	}
	s.session.UpdatedAt = now
}

func (s *State) notify(ctx context.Context, kind records.EventKind, entity records.EntityKind, id string, data any) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, records.NewEvent(kind, entity, id, data))
}

func processIndex(sess *records.Session, id string) int {
	for i, p := range sess.Processes {
		if p.ID == id {
			return i
		}
	}
	return -1
}
