package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/bloom/internal/apperror"
	"github.com/sakif/bloom/internal/model"
	"github.com/sakif/bloom/internal/repository"
	"github.com/sakif/bloom/internal/suggest"
)

var errStoreDown = errors.New("store unreachable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory repository.Store that counts calls and can be
// told to fail.
type fakeStore struct {
	mu       sync.Mutex
	posts    map[string]*model.PostRecord
	users    map[string]model.UserRecord
	featured []model.FeaturedPost
	feedback []model.Feedback
	clock    time.Time

	writes       int // Create, IncrementLikes, AppendComment, Delete
	userLookups  int // GetUsersByIDs calls
	lookedUpIDs  [][]string
	listErr      error
	getErr       error
	writeErr     error
	usersErr     error
	featuredErr  error
	feedbackErr  error
	upsertErr    error
	lastListOpts repository.ListOptions
}

var _ repository.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts: make(map[string]*model.PostRecord),
		users: make(map[string]model.UserRecord),
		clock: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) addUser(id, name string) {
	f.users[id] = model.UserRecord{UID: id, DisplayName: name, PhotoURL: "https://img/" + id, Bio: name + " makes things"}
}

// addPost stores a post directly, each one a minute newer than the last.
func (f *fakeStore) addPost(id, userID string, category model.Category) *model.PostRecord {
	f.clock = f.clock.Add(time.Minute)
	p := &model.PostRecord{ID: id, UserID: userID, Caption: "caption " + id, Category: category, Comments: []model.CommentRecord{}, CreatedAt: f.clock}
	f.posts[id] = p
	return p
}

func (f *fakeStore) Create(_ context.Context, post *model.PostRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.clock = f.clock.Add(time.Minute)
	post.CreatedAt = f.clock
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*model.PostRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, opts repository.ListOptions) ([]model.PostRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastListOpts = opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.PostRecord, 0, len(f.posts))
	for _, p := range f.posts {
		out = append(out, *p)
	}
	repository.SortNewestFirst(out)
	return repository.Filter(out, opts), nil
}

func (f *fakeStore) IncrementLikes(_ context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	p, ok := f.posts[id]
	if !ok {
		return 0, apperror.NotFound("post", id)
	}
	p.Likes++
	return p.Likes, nil
}

func (f *fakeStore) AppendComment(_ context.Context, postID string, c *model.CommentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	p, ok := f.posts[postID]
	if !ok {
		return apperror.NotFound("post", postID)
	}
	f.clock = f.clock.Add(time.Second)
	c.CreatedAt = f.clock
	p.Comments = append(p.Comments, *c)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeStore) Upsert(_ context.Context, u *model.UserRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if old, ok := f.users[u.UID]; ok && u.Bio == "" {
		u.Bio = old.Bio
	}
	f.users[u.UID] = *u
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return &u, nil
}

func (f *fakeStore) GetUsersByIDs(_ context.Context, ids []string) (map[string]model.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userLookups++
	f.lookedUpIDs = append(f.lookedUpIDs, ids)
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	out := make(map[string]model.UserRecord)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (f *fakeStore) ListFeatured(context.Context) ([]model.FeaturedPost, error) {
	if f.featuredErr != nil {
		return nil, f.featuredErr
	}
	return f.featured, nil
}

func (f *fakeStore) AddFeatured(_ context.Context, p *model.FeaturedPost) error {
	if f.featuredErr != nil {
		return f.featuredErr
	}
	f.featured = append(f.featured, *p)
	return nil
}

func (f *fakeStore) CreateFeedback(_ context.Context, fb *model.Feedback) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedback = append(f.feedback, *fb)
	return nil
}

func (f *fakeStore) Close() error { return nil }

// recordingInvalidator remembers every invalidated path.
type recordingInvalidator struct {
	paths []string
	all   int
}

func (r *recordingInvalidator) Invalidate(paths ...string) {
	r.paths = append(r.paths, paths...)
}

func (r *recordingInvalidator) InvalidateAll() {
	r.all++
}

// fakeImages stores uploads in memory.
type fakeImages struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeImages) Upload(_ context.Context, name string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[name] = data
	return "https://cdn.example/" + name, nil
}

// fakeSuggester returns canned suggestions and records its input.
type fakeSuggester struct {
	got  suggest.Input
	out  []string
	err  error
	runs int
}

func (f *fakeSuggester) Suggest(_ context.Context, in suggest.Input) ([]string, error) {
	f.runs++
	f.got = in
	return f.out, f.err
}
