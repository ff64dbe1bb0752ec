package view

import (
	"context"
	"errors"
	"sync"
	"testing"

	"whatsup/internal/model"
)

type fakeSession struct {
	authed bool
	user   string
}

func (f fakeSession) IsAuthenticated() bool { return f.authed }
func (f fakeSession) Username() string      { return f.user }

type fakeFeedBackend struct {
	mu    sync.Mutex
	posts []model.Post
	err   error

	feedCalls        int
	createCalls      int
	updateCalls      int
	deleteCalls      int
	likeCalls        int
	repostCalls      int
	commentCalls     int
	commentListCalls int
}

func (f *fakeFeedBackend) Feed(ctx context.Context) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedCalls++
	return f.posts, f.err
}

func (f *fakeFeedBackend) CreatePost(ctx context.Context, content string, parent *int64) (model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	return model.Post{ID: 99, Content: content}, f.err
}

func (f *fakeFeedBackend) UpdatePost(ctx context.Context, id int64, content string) (model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	return model.Post{ID: id, Content: content}, f.err
}

func (f *fakeFeedBackend) DeletePost(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.err
}

func (f *fakeFeedBackend) ToggleLike(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.likeCalls++
	return f.err
}

func (f *fakeFeedBackend) Repost(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repostCalls++
	return f.err
}

func (f *fakeFeedBackend) Comments(ctx context.Context, id int64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentListCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []model.Comment{{ID: 1, Author: "bob", Content: "nice"}}, nil
}

func (f *fakeFeedBackend) AddComment(ctx context.Context, id int64, content string) (model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentCalls++
	return model.Comment{ID: 1, Content: content}, f.err
}

func TestFeedLoadLoggedOutStaysIdle(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{}, b)

	v.Load(context.Background())
	if v.State() != StateIdle {
		t.Fatalf("state = %v, want idle", v.State())
	}
	if b.feedCalls != 0 {
		t.Fatalf("logged-out load issued %d requests", b.feedCalls)
	}
	if len(v.Posts()) != 0 {
		t.Fatal("logged-out view must hold no posts")
	}
}

func TestFeedLoadSuccess(t *testing.T) {
	b := &fakeFeedBackend{posts: []model.Post{{ID: 1, Author: "alice", Content: "hi"}}}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	v.Load(context.Background())
	if v.State() != StateLoaded {
		t.Fatalf("state = %v, want loaded", v.State())
	}
	posts := v.Posts()
	if len(posts) != 1 || posts[0].ID != 1 {
		t.Fatalf("posts = %+v", posts)
	}
	if v.ErrorMessage() != "" {
		t.Fatalf("unexpected error message %q", v.ErrorMessage())
	}
}

func TestFeedLoadFailure(t *testing.T) {
	b := &fakeFeedBackend{err: errors.New("boom")}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	v.Load(context.Background())
	if v.State() != StateError {
		t.Fatalf("state = %v, want error", v.State())
	}
	if v.ErrorMessage() != "could not load the feed" {
		t.Fatalf("message = %q", v.ErrorMessage())
	}
}

func TestFeedReloadAfterErrorRecovers(t *testing.T) {
	b := &fakeFeedBackend{err: errors.New("boom")}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	v.Load(context.Background())
	if v.State() != StateError {
		t.Fatalf("state = %v, want error", v.State())
	}

	b.mu.Lock()
	b.err = nil
	b.posts = []model.Post{{ID: 2}}
	b.mu.Unlock()

	v.Load(context.Background())
	if v.State() != StateLoaded || v.ErrorMessage() != "" {
		t.Fatalf("state = %v err = %q after recovery", v.State(), v.ErrorMessage())
	}
}

func TestBlankEditIssuesNoRequest(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	if err := v.EditPost(context.Background(), 1, "   \n\t"); err != nil {
		t.Fatalf("blank edit: %v", err)
	}
	if b.updateCalls != 0 || b.feedCalls != 0 {
		t.Fatalf("blank edit issued requests: update=%d feed=%d", b.updateCalls, b.feedCalls)
	}
}

func TestBlankCreateIssuesNoRequest(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	if err := v.CreatePost(context.Background(), ""); err != nil {
		t.Fatalf("blank create: %v", err)
	}
	if b.createCalls != 0 {
		t.Fatalf("blank create issued %d requests", b.createCalls)
	}
}

func TestDeleteDeclinedIssuesNoRequest(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	if err := v.DeletePost(context.Background(), 1, func() bool { return false }); err != nil {
		t.Fatalf("declined delete: %v", err)
	}
	if err := v.DeletePost(context.Background(), 1, nil); err != nil {
		t.Fatalf("nil confirm: %v", err)
	}
	if b.deleteCalls != 0 {
		t.Fatalf("declined delete issued %d requests", b.deleteCalls)
	}
}

func TestDeleteConfirmedRefetches(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	if err := v.DeletePost(context.Background(), 1, func() bool { return true }); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if b.deleteCalls != 1 || b.feedCalls != 1 {
		t.Fatalf("delete=%d feed=%d, want 1/1", b.deleteCalls, b.feedCalls)
	}
}

func TestMutationFailureKeepsPosts(t *testing.T) {
	b := &fakeFeedBackend{posts: []model.Post{{ID: 1, Author: "alice"}}}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)
	v.Load(context.Background())

	b.mu.Lock()
	b.err = errors.New("boom")
	b.mu.Unlock()

	if err := v.ToggleLike(context.Background(), 1); err == nil {
		t.Fatal("expected error")
	}
	if v.State() != StateLoaded || len(v.Posts()) != 1 {
		t.Fatalf("failed mutation disturbed state: %v posts=%d", v.State(), len(v.Posts()))
	}
}

func TestCanModify(t *testing.T) {
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, &fakeFeedBackend{})
	if !v.CanModify(model.Post{Author: "alice"}) {
		t.Fatal("own post must be modifiable")
	}
	if v.CanModify(model.Post{Author: "bob"}) {
		t.Fatal("someone else's post must not be modifiable")
	}
	out := NewFeedView(fakeSession{}, &fakeFeedBackend{})
	if out.CanModify(model.Post{Author: ""}) {
		t.Fatal("logged out can modify nothing")
	}
}

func TestCommentsLoggedOutIssuesNoRequest(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{}, b)

	got, err := v.Comments(context.Background(), 1)
	if err != nil || got != nil {
		t.Fatalf("comments = %v, %v", got, err)
	}
	if b.commentListCalls != 0 {
		t.Fatal("logged-out comments issued a request")
	}
}

func TestCommentsPassthrough(t *testing.T) {
	b := &fakeFeedBackend{}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)

	got, err := v.Comments(context.Background(), 1)
	if err != nil || len(got) != 1 || got[0].Author != "bob" {
		t.Fatalf("comments = %v, %v", got, err)
	}
}

// gatedFeedBackend parks each Feed call on its own channel so the test
// controls which response lands first.
type gatedFeedBackend struct {
	fakeFeedBackend
	mu      sync.Mutex
	gates   []chan []model.Post
	started chan struct{}
}

func (g *gatedFeedBackend) Feed(ctx context.Context) ([]model.Post, error) {
	g.mu.Lock()
	ch := make(chan []model.Post)
	g.gates = append(g.gates, ch)
	g.mu.Unlock()
	g.started <- struct{}{}
	return <-ch, nil
}

func TestOvertakenLoadDiscardsItsResponse(t *testing.T) {
	b := &gatedFeedBackend{started: make(chan struct{}, 2)}
	v := NewFeedView(fakeSession{authed: true, user: "alice"}, b)
	ctx := context.Background()

	old := []model.Post{{ID: 1, Content: "stale"}}
	fresh := []model.Post{{ID: 2, Content: "fresh"}}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); v.Load(ctx) }()
	<-b.started
	go func() { defer wg.Done(); v.Load(ctx) }()
	<-b.started

	// the newer load answers first, then the stale one trickles in
	b.gates[1] <- fresh
	b.gates[0] <- old
	wg.Wait()

	posts := v.Posts()
	if len(posts) != 1 || posts[0].ID != 2 {
		t.Fatalf("stale response overwrote fresh state: %+v", posts)
	}
	if v.State() != StateLoaded {
		t.Fatalf("state = %v, want loaded", v.State())
	}
}
