package pass_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/core/events"
	"github.com/frahmantamala/pass-management/internal/pass"
)

// mockRepository is an in-memory pass store with the same conditional
// decision semantics as the gorm repository.
type mockRepository struct {
	mu          sync.Mutex
	nextID      int64
	passes      map[int64]*pass.Pass
	owners      map[int64][3]string
	createCalls int
	err         error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		passes: map[int64]*pass.Pass{},
		owners: map[int64][3]string{},
	}
}

func (m *mockRepository) addOwner(id int64, name, email, department string) {
	m.owners[id] = [3]string{name, email, department}
}

func (m *mockRepository) snapshot(p *pass.Pass) *pass.Pass {
	cp := *p
	if o, ok := m.owners[p.UserID]; ok {
		cp.UserName, cp.UserEmail, cp.Department = o[0], o[1], o[2]
	}
	if p.ApprovedByID != nil {
		if o, ok := m.owners[*p.ApprovedByID]; ok {
			cp.ApprovedBy = o[0]
		}
	}
	return &cp
}

func (m *mockRepository) Create(_ context.Context, p *pass.Pass) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	if m.err != nil {
		return m.err
	}
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.passes[p.ID] = &cp
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*pass.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.passes[id]
	if !ok {
		return nil, internal.ErrPassNotFound
	}
	return m.snapshot(p), nil
}

func (m *mockRepository) ListByOwner(_ context.Context, ownerID int64) ([]*pass.Pass, error) {
	return m.list(func(p *pass.Pass) bool { return p.UserID == ownerID })
}

func (m *mockRepository) ListAll(_ context.Context) ([]*pass.Pass, error) {
	return m.list(func(*pass.Pass) bool { return true })
}

func (m *mockRepository) list(keep func(*pass.Pass) bool) ([]*pass.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*pass.Pass{}
	for _, p := range m.passes {
		if keep(p) {
			out = append(out, m.snapshot(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out, nil
}

func (m *mockRepository) Decide(_ context.Context, d pass.Decision) (*pass.Pass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.passes[d.PassID]
	if !ok {
		return nil, internal.ErrPassNotFound
	}
	if !p.CanBeDecided() {
		return nil, internal.ErrInvalidPassStatus
	}
	decidedBy, decidedAt := d.DecidedBy, d.DecidedAt
	p.Status = d.Status
	p.ApprovedByID = &decidedBy
	p.ApprovedAt = &decidedAt
	p.RejectionReason = d.Reason
	return m.snapshot(p), nil
}

var errDatabase = errors.New("database unavailable")

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}
