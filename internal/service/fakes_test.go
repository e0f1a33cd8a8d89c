package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"note-summary-be/internal/entity"
	"note-summary-be/internal/pkg/logger"
	"note-summary-be/internal/repository/contract"
	"note-summary-be/internal/repository/specification"
	"note-summary-be/internal/repository/unitofwork"
	"note-summary-be/internal/testutil"
	"note-summary-be/pkg/events"
	"note-summary-be/pkg/invalidation"

	"github.com/google/uuid"
)

var errStore = errors.New("connection reset by peer")

type recordingBus struct {
	mu      sync.Mutex
	signals []invalidation.Signal
}

func (b *recordingBus) Publish(ctx context.Context, sig invalidation.Signal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = append(b.signals, sig)
	return nil
}

func (b *recordingBus) reasons() []invalidation.Reason {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]invalidation.Reason, 0, len(b.signals))
	for _, s := range b.signals {
		out = append(out, s.Reason)
	}
	return out
}

type recordingEvents struct {
	mu    sync.Mutex
	types []string
	err   error
}

func (e *recordingEvents) Publish(ctx context.Context, evt events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, evt.EventType())
	return e.err
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   []string
}

func (f *fakeSummarizer) Name() string { return "fake" }

func (f *fakeSummarizer) Summarize(ctx context.Context, content string) (string, error) {
	f.calls = append(f.calls, content)
	return f.summary, f.err
}

// brokenNotes fails every call, simulating an unreachable store.
type brokenNotes struct{}

func (brokenNotes) Create(ctx context.Context, note *entity.Note) error { return errStore }
func (brokenNotes) Update(ctx context.Context, note *entity.Note) error { return errStore }
func (brokenNotes) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	return errStore
}
func (brokenNotes) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	return nil, errStore
}
func (brokenNotes) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	return nil, errStore
}

type brokenUow struct{ unitofwork.UnitOfWork }

func (brokenUow) Begin(ctx context.Context) error { return nil }
func (brokenUow) Rollback() error { return nil }
func (brokenUow) NoteRepository() contract.NoteRepository { return brokenNotes{} }
func (u brokenUow) UserRepository() contract.UserRepository { return u.UnitOfWork.UserRepository() }

type brokenFactory struct{ inner unitofwork.RepositoryFactory }

func (f brokenFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return brokenUow{f.inner.NewUnitOfWork(ctx)}
}

// racingUsers misses every lookup, as if a concurrent registration landed
// between the email check and the insert.
type racingUsers struct{ contract.UserRepository }

func (racingUsers) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return nil, nil
}

type racingUow struct{ unitofwork.UnitOfWork }

func (u racingUow) UserRepository() contract.UserRepository {
	return racingUsers{u.UnitOfWork.UserRepository()}
}

type racingFactory struct{ inner unitofwork.RepositoryFactory }

func (f racingFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return racingUow{f.inner.NewUnitOfWork(ctx)}
}

type fixture struct {
	factory unitofwork.RepositoryFactory
	bus     *recordingBus
	events  *recordingEvents
	notes   *noteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	factory := unitofwork.NewRepositoryFactory(testutil.NewTestDB(t))
	bus := &recordingBus{}
	evts := &recordingEvents{}
	notes := NewNoteService(factory, bus, evts, logger.NewNopLogger()).(*noteService)
	return &fixture{factory: factory, bus: bus, events: evts, notes: notes}
}
