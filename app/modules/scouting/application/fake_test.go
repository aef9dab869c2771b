package scoutingservice

import (
	"context"
	"fmt"
	"sync"

	scoutingdb "github.com/Black-And-White-Club/scout-bot/app/modules/scouting/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Scouting Repo
// ------------------------

type FakeScoutingRepo struct {
	mu    sync.Mutex
	trace []string

	WithMatchLockFunc         func(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, fn func(ctx context.Context, db bun.IDB) error) error
	CountAllianceFunc         func(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, alliance string, excludeID uuid.UUID) (int, error)
	ExistsForOrganizationFunc func(ctx context.Context, db bun.IDB, eventCode string, matchNumber, teamNumber int, organization string, excludeID uuid.UUID) (bool, error)
	InsertFunc                func(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry) error
	UpdateFunc                func(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry) error
	DeleteFunc                func(ctx context.Context, db bun.IDB, id uuid.UUID) error
	GetByIDFunc               func(ctx context.Context, db bun.IDB, id uuid.UUID) (*scoutingdb.Entry, error)
	ListByTeamFunc            func(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) ([]scoutingdb.Entry, error)
	CountByTeamFunc           func(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) (int, error)
	ListAutoPathsFunc         func(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) ([]scoutingdb.AutoPath, error)
}

func NewFakeScoutingRepo() *FakeScoutingRepo {
	return &FakeScoutingRepo{
		trace: []string{},
	}
}

func (f *FakeScoutingRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeScoutingRepo) WithMatchLock(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, fn func(ctx context.Context, db bun.IDB) error) error {
	f.record("WithMatchLock")
	if f.WithMatchLockFunc != nil {
		return f.WithMatchLockFunc(ctx, db, eventCode, matchNumber, fn)
	}
	return fn(ctx, db)
}

func (f *FakeScoutingRepo) CountAlliance(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, alliance string, excludeID uuid.UUID) (int, error) {
	f.record("CountAlliance")
	if f.CountAllianceFunc != nil {
		return f.CountAllianceFunc(ctx, db, eventCode, matchNumber, alliance, excludeID)
	}
	return 0, nil
}

func (f *FakeScoutingRepo) ExistsForOrganization(ctx context.Context, db bun.IDB, eventCode string, matchNumber, teamNumber int, organization string, excludeID uuid.UUID) (bool, error) {
	f.record("ExistsForOrganization")
	if f.ExistsForOrganizationFunc != nil {
		return f.ExistsForOrganizationFunc(ctx, db, eventCode, matchNumber, teamNumber, organization, excludeID)
	}
	return false, nil
}

func (f *FakeScoutingRepo) Insert(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry) error {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, entry)
	}
	return nil
}

func (f *FakeScoutingRepo) Update(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, entry)
	}
	return nil
}

func (f *FakeScoutingRepo) Delete(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeScoutingRepo) GetByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*scoutingdb.Entry, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, scoutingdb.ErrNotFound
}

func (f *FakeScoutingRepo) ListByTeam(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) ([]scoutingdb.Entry, error) {
	f.record("ListByTeam")
	if f.ListByTeamFunc != nil {
		return f.ListByTeamFunc(ctx, db, teamNumber, viewer)
	}
	return nil, nil
}

func (f *FakeScoutingRepo) CountByTeam(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) (int, error) {
	f.record("CountByTeam")
	if f.CountByTeamFunc != nil {
		return f.CountByTeamFunc(ctx, db, teamNumber, viewer)
	}
	return 0, nil
}

func (f *FakeScoutingRepo) ListAutoPaths(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) ([]scoutingdb.AutoPath, error) {
	f.record("ListAutoPaths")
	if f.ListAutoPathsFunc != nil {
		return f.ListAutoPathsFunc(ctx, db, teamNumber, viewer)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakeScoutingRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ scoutingdb.Repository = (*FakeScoutingRepo)(nil)

// ------------------------
// In-memory store
// ------------------------

// memoryStore backs a FakeScoutingRepo with a map and a real per-match lock so that
// concurrent admissions behave like they do against Postgres.
type memoryStore struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	entries map[uuid.UUID]scoutingdb.Entry
}

func newMemoryRepo() (*FakeScoutingRepo, *memoryStore) {
	m := &memoryStore{
		locks:   map[string]*sync.Mutex{},
		entries: map[uuid.UUID]scoutingdb.Entry{},
	}
	f := NewFakeScoutingRepo()

	f.WithMatchLockFunc = func(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, fn func(ctx context.Context, db bun.IDB) error) error {
		l := m.lockFor(eventCode, matchNumber)
		l.Lock()
		defer l.Unlock()
		return fn(ctx, db)
	}
	f.CountAllianceFunc = func(ctx context.Context, db bun.IDB, eventCode string, matchNumber int, alliance string, excludeID uuid.UUID) (int, error) {
		return len(m.filter(func(e scoutingdb.Entry) bool {
			return e.ID != excludeID && e.EventCode == eventCode && e.MatchNumber == matchNumber && e.Alliance == alliance
		})), nil
	}
	f.ExistsForOrganizationFunc = func(ctx context.Context, db bun.IDB, eventCode string, matchNumber, teamNumber int, organization string, excludeID uuid.UUID) (bool, error) {
		return len(m.filter(func(e scoutingdb.Entry) bool {
			return e.ID != excludeID && e.EventCode == eventCode && e.MatchNumber == matchNumber &&
				e.TeamNumber == teamNumber && e.ScouterOrganization == organization
		})) > 0, nil
	}
	f.InsertFunc = func(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.entries[entry.ID] = *entry
		return nil
	}
	f.UpdateFunc = func(ctx context.Context, db bun.IDB, entry *scoutingdb.Entry) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.entries[entry.ID]; !ok {
			return scoutingdb.ErrNotFound
		}
		m.entries[entry.ID] = *entry
		return nil
	}
	f.DeleteFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.entries[id]; !ok {
			return scoutingdb.ErrNotFound
		}
		delete(m.entries, id)
		return nil
	}
	f.GetByIDFunc = func(ctx context.Context, db bun.IDB, id uuid.UUID) (*scoutingdb.Entry, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		e, ok := m.entries[id]
		if !ok {
			return nil, scoutingdb.ErrNotFound
		}
		return &e, nil
	}
	f.ListByTeamFunc = func(ctx context.Context, db bun.IDB, teamNumber int, viewer scoutingdb.Viewer) ([]scoutingdb.Entry, error) {
		return m.filter(func(e scoutingdb.Entry) bool {
			return e.TeamNumber == teamNumber && viewer.CanSee(&e)
		}), nil
	}
	return f, m
}

func (m *memoryStore) lockFor(eventCode string, matchNumber int) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s#%d", eventCode, matchNumber)
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func (m *memoryStore) filter(keep func(scoutingdb.Entry) bool) []scoutingdb.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []scoutingdb.Entry
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
