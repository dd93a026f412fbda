package services

import (
	"bytes"
	"context"
	"hash/fnv"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"planner-service/internal/models"
	"planner-service/internal/repository"
)

var errBoom = errors.New("boom")

// fakeDurable is an in-memory durable store. With down set every call
// fails like an unreachable database.
type fakeDurable struct {
	mu       sync.Mutex
	projects map[int64]models.Project
	down     bool
	failOps  map[string]error
	calls    map[string]int
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{
		projects: make(map[int64]models.Project),
		failOps:  make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (f *fakeDurable) check(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if f.down {
		return errors.New("connection refused")
	}
	return f.failOps[op]
}

func (f *fakeDurable) setDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

func (f *fakeDurable) failOn(op string, err error) {
	f.mu.Lock()
	f.failOps[op] = err
	f.mu.Unlock()
}

func (f *fakeDurable) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeDurable) put(p models.Project) {
	f.mu.Lock()
	f.projects[p.ID] = p
	f.mu.Unlock()
}

func (f *fakeDurable) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.check("ping")
}

func (f *fakeDurable) ListProjects(_ context.Context) ([]models.Project, error) {
	if err := f.check("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDurable) GetProject(_ context.Context, id int64) (*models.Project, error) {
	if err := f.check("get"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakeDurable) GetProjectsByIDs(_ context.Context, ids []int64) ([]models.Project, error) {
	if err := f.check("get_many"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, id := range ids {
		if p, ok := f.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeDurable) ProjectExists(_ context.Context, id int64) (bool, error) {
	if err := f.check("exists"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.projects[id]
	return ok, nil
}

func (f *fakeDurable) CreateProject(_ context.Context, p *models.Project) error {
	if err := f.check("create"); err != nil {
		return err
	}
	f.put(*p)
	return nil
}

func (f *fakeDurable) UpdateProject(_ context.Context, p *models.Project) error {
	if err := f.check("update"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[p.ID]; !ok {
		return repository.ErrNotFound
	}
	f.projects[p.ID] = *p
	return nil
}

func (f *fakeDurable) DeleteProject(_ context.Context, id int64) error {
	if err := f.check("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.projects, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeDurable) SearchProjects(_ context.Context, query string) ([]models.Project, error) {
	if err := f.check("search"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Project
	for _, p := range f.projects {
		if matchesText(&p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// wordEmbedder hashes words into a small bag-of-words vector, so texts
// sharing words are similar.
type wordEmbedder struct {
	mu  sync.Mutex
	err error
}

func (e *wordEmbedder) Name() string   { return "words" }
func (e *wordEmbedder) Dimension() int { return 64 }

func (e *wordEmbedder) fail(err error) {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
}

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	err := e.err
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	v := make([]float64, e.Dimension())
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?-")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(len(v))]++
	}
	return v, nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (s *fakeObjectStore) PutObject(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[key] = data
	s.mu.Unlock()
	return nil
}

func (s *fakeObjectStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return "https://objects.test/" + key + "?expires=" + expiry.String(), nil
}

func captureLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
