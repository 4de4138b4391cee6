package chi

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	chiRouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/postforge/postforge/internal/domain"
	"github.com/postforge/postforge/internal/domain/money"
	dompost "github.com/postforge/postforge/internal/domain/post"
	"github.com/postforge/postforge/internal/domain/prompt"
	domusage "github.com/postforge/postforge/internal/domain/usage"
	"github.com/postforge/postforge/internal/usecase/generate"
	healthuc "github.com/postforge/postforge/internal/usecase/health"
	postsuc "github.com/postforge/postforge/internal/usecase/posts"
	publishuc "github.com/postforge/postforge/internal/usecase/publish"
	thumbnailuc "github.com/postforge/postforge/internal/usecase/thumbnail"
	usageuc "github.com/postforge/postforge/internal/usecase/usage"
)

// fakeTextGenerator returns a fixed text.
type fakeTextGenerator struct {
	text string
	err  error
}

func (f *fakeTextGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	return f.text, f.err
}

// fakeImageGenerator returns a fixed URL.
type fakeImageGenerator struct {
	url string
	err error
}

func (f *fakeImageGenerator) GenerateImage(_ context.Context, _ string) (string, error) {
	return f.url, f.err
}

// fakeGuard satisfies every usecase Guard interface.
type fakeGuard struct {
	allowed   bool
	remaining money.Amount
	err       error
	units     []int64
}

func (f *fakeGuard) CheckAndConsume(_ context.Context, _ string, units int64) (domusage.Decision, error) {
	f.units = append(f.units, units)
	if f.err != nil {
		return domusage.Decision{}, f.err
	}
	return domusage.NewDecision(f.allowed, f.remaining), nil
}

// fakePublisher satisfies publish.Publisher.
type fakePublisher struct {
	url string
	err error
}

func (f *fakePublisher) Publish(_ context.Context, _ *dompost.Post) (string, error) {
	return f.url, f.err
}

func (f *fakePublisher) Target() string { return "fake" }

// fakePostRepo is an in-memory posts.Repository.
type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]dompost.Post // userID + "/" + id
	err   error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]dompost.Post)}
}

func (f *fakePostRepo) Save(_ context.Context, p *dompost.Post) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[p.UserID()+"/"+p.ID()] = *p
	return nil
}

func (f *fakePostRepo) Get(_ context.Context, userID, id string) (dompost.Post, error) {
	if f.err != nil {
		return dompost.Post{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[userID+"/"+id]
	if !ok {
		return dompost.Post{}, domain.ErrPostNotFound
	}
	return p, nil
}

func (f *fakePostRepo) List(_ context.Context, userID string, q dompost.Query, cursor string, limit int) (
	[]dompost.Post, string, error,
) {
	if f.err != nil {
		return nil, "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []dompost.Post
	for _, p := range f.posts {
		if p.UserID() == userID && q.Matches(&p) {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return q.Less(&matched[i], &matched[j]) })

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", domain.ErrInvalidInput
		}
		offset = n
	}
	if offset >= len(matched) {
		return nil, "", nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	next := ""
	if end < len(matched) {
		next = strconv.Itoa(end)
	}
	return matched[offset:end], next, nil
}

func (f *fakePostRepo) Delete(_ context.Context, userID, id string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := userID + "/" + id
	if _, ok := f.posts[key]; !ok {
		return domain.ErrPostNotFound
	}
	delete(f.posts, key)
	return nil
}

// fakeUsageReader satisfies usage.UsageReader.
type fakeUsageReader struct {
	record domusage.Record
	cap    money.Amount
	err    error
}

func (f *fakeUsageReader) CurrentUsage(_ context.Context, _ string) (domusage.Record, error) {
	if f.err != nil {
		return domusage.Record{}, f.err
	}
	return f.record, nil
}

func (f *fakeUsageReader) Cap() money.Amount { return f.cap }

// fakePinger satisfies health.DBPinger.
type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

// testDeps bundles the fakes behind a test server so cases can tweak them.
type testDeps struct {
	text        *fakeTextGenerator
	images      *fakeImageGenerator
	guard       *fakeGuard
	platform    *fakePublisher
	repo        *fakePostRepo
	reader      *fakeUsageReader
	db          *fakePinger
	noPublisher bool
}

func defaultDeps() *testDeps {
	return &testDeps{
		text:     &fakeTextGenerator{text: "1. First Title\n2. Second Title\n3. Third Title"},
		images:   &fakeImageGenerator{url: "https://img.example/t.png"},
		guard:    &fakeGuard{allowed: true, remaining: money.MustParse("5")},
		platform: &fakePublisher{url: "https://blog.example/p/1"},
		repo:     newFakePostRepo(),
		reader: &fakeUsageReader{
			record: domusage.NewRecord("user-1", "2026-09-01", 300_000, testUnitPrice()),
			cap:    money.MustParse("8"),
		},
		db: &fakePinger{},
	}
}

func testUnitPrice() money.UnitPrice {
	p, err := money.ParseUnitPrice("0.01")
	if err != nil {
		panic(err)
	}
	return p
}

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

// newTestHandler builds the full router over the fakes with auth disabled,
// so requests identify themselves via X-User-ID.
func newTestHandler(d *testDeps) http.Handler {
	logger := zap.NewNop()

	genSvc := generate.New(d.text, d.guard, d.repo, prompt.NewRegistry(), generate.Options{
		Estimates:   generate.Estimates{Ideas: 1000, Article: 4000},
		MaxAttempts: 2,
		TargetWords: 1,
	}, logger)
	thumbSvc := thumbnailuc.New(d.images, d.guard, d.repo, 4000, logger)

	var platform publishuc.Publisher
	if !d.noPublisher {
		platform = d.platform
	}
	pubSvc := publishuc.New(platform, d.guard, d.repo, 500, logger)

	postSvc := postsuc.New(d.repo, 20, 100)
	usageSvc := usageuc.New(d.reader)
	healthSvc := healthuc.New(d.db, nil)

	srv := NewServer(genSvc, thumbSvc, pubSvc, postSvc, usageSvc, healthSvc, logger)

	r := chiRouter.NewRouter()
	r.Use(BearerAuthMiddleware(nil))
	srv.Routes(r)
	return r
}
