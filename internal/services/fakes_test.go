package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/drawhub-backend/internal/catalog/thumbnail"
	"github.com/yungbote/drawhub-backend/internal/data/repos"
	"github.com/yungbote/drawhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/drawhub-backend/internal/domain"
	"github.com/yungbote/drawhub-backend/internal/platform/dbctx"
	"github.com/yungbote/drawhub-backend/internal/platform/objectstore"
	"github.com/yungbote/drawhub-backend/internal/realtime"
)

const testBucket = "drawings"

var errInjected = errors.New("injected failure")

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string

	failPut    func(key string) bool
	failDelete bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Put(ctx context.Context, data []byte, key, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil && s.failPut(key) {
		return "", errInjected
	}
	s.objects[key] = append([]byte(nil), data...)
	s.types[key] = contentType
	return "http://blob.test/" + testBucket + "/" + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileURL)
	if s.failDelete {
		return errInjected
	}
	key, ok := objectstore.KeyFromURL(fileURL, testBucket)
	if !ok {
		return fmt.Errorf("foreign url %q", fileURL)
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) EnsureBucket(ctx context.Context) error { return nil }

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.objects))
	for k := range s.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *fakeStore) contentType(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.types[key]
}

func (s *fakeStore) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

type fakeSplitter struct {
	pages [][]byte
	err   error
	calls int
}

func (f *fakeSplitter) Split(ctx context.Context, data []byte) ([][]byte, error) {
	f.calls++
	return f.pages, f.err
}

type fakeThumbs struct {
	fail bool
}

func (f *fakeThumbs) Generate(ctx context.Context, req thumbnail.Request) ([]byte, error) {
	if f.fail {
		return nil, errInjected
	}
	return []byte("png:" + req.Caption), nil
}

type notification struct {
	Event realtime.SSEEvent
	ID    uuid.UUID
	Data  *types.Drawing
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) DrawingCreated(d *types.Drawing) {
	n.add(notification{Event: realtime.SSEEventDrawingCreated, ID: d.ID, Data: d})
}

func (n *recordingNotifier) DrawingUpdated(d *types.Drawing) {
	n.add(notification{Event: realtime.SSEEventDrawingUpdated, ID: d.ID, Data: d})
}

func (n *recordingNotifier) DrawingDeleted(id uuid.UUID) {
	n.add(notification{Event: realtime.SSEEventDrawingDeleted, ID: id})
}

func (n *recordingNotifier) add(e notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.events...)
}

// failingDrawingRepo injects errors into selected writes.
type failingDrawingRepo struct {
	repos.DrawingRepo
	failCreate       bool
	failSaveAfter    int
	failUpdateFields bool
	saves            int
}

func (r *failingDrawingRepo) Create(dbc dbctx.Context, drawings []*types.Drawing) ([]*types.Drawing, error) {
	if r.failCreate {
		return nil, errInjected
	}
	return r.DrawingRepo.Create(dbc, drawings)
}

func (r *failingDrawingRepo) SaveMetadata(dbc dbctx.Context, d *types.Drawing) error {
	r.saves++
	if r.failSaveAfter > 0 && r.saves > r.failSaveAfter {
		return errInjected
	}
	return r.DrawingRepo.SaveMetadata(dbc, d)
}

func (r *failingDrawingRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, fields map[string]interface{}) error {
	if r.failUpdateFields {
		return errInjected
	}
	return r.DrawingRepo.UpdateFields(dbc, id, fields)
}

type fixture struct {
	db        *gorm.DB
	store     *fakeStore
	notes     *recordingNotifier
	drawings  repos.DrawingRepo
	relations repos.RelationRepo
	revisions repos.RevisionRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	return &fixture{
		db:        db,
		store:     newFakeStore(),
		notes:     &recordingNotifier{},
		drawings:  repos.NewDrawingRepo(db, log),
		relations: repos.NewRelationRepo(db, log),
		revisions: repos.NewRevisionRepo(db, log),
	}
}

func (f *fixture) seed(t *testing.T, seed testutil.DrawingSeed) *types.Drawing {
	t.Helper()
	if seed.CreatedAt.IsZero() {
		seed.CreatedAt = time.Now().UTC()
	}
	return testutil.SeedDrawing(t, f.db, seed)
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	cur := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := cur
		cur = cur.Add(time.Second)
		return now
	}
}

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func dbcFor() dbctx.Context { return dbctx.New(context.Background()) }

func searchAll() repos.SearchFilter { return repos.SearchFilter{Limit: 100} }
