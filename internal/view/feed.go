package view

import (
	"context"
	"sync"

	"whatsup/internal/model"
	"whatsup/internal/util"
)

// FeedBackend is the slice of the API client the feed uses.
type FeedBackend interface {
	Feed(ctx context.Context) ([]model.Post, error)
	CreatePost(ctx context.Context, content string, parent *int64) (model.Post, error)
	UpdatePost(ctx context.Context, id int64, content string) (model.Post, error)
	DeletePost(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, id int64) error
	Repost(ctx context.Context, id int64) error
	Comments(ctx context.Context, id int64) ([]model.Comment, error)
	AddComment(ctx context.Context, id int64, content string) (model.Comment, error)
}

const feedErrMsg = "could not load the feed"

// FeedView lists the posts addressed to the logged-in user's feed.
// Mutations never touch the list locally; they re-fetch so derived counts
// come from the backend.
type FeedView struct {
	mu      sync.Mutex
	sess    Session
	backend FeedBackend

	state  State
	posts  []model.Post
	errMsg string
	gen    uint64
}

func NewFeedView(sess Session, backend FeedBackend) *FeedView {
	return &FeedView{sess: sess, backend: backend}
}

// Load fetches the feed. Logged out, it settles in StateIdle with no
// request issued. A load that is overtaken by a newer one discards its
// response instead of overwriting fresher state.
func (v *FeedView) Load(ctx context.Context) {
	v.mu.Lock()
	if !v.sess.IsAuthenticated() {
		v.state = StateIdle
		v.posts = nil
		v.errMsg = ""
		v.mu.Unlock()
		return
	}
	v.gen++
	gen := v.gen
	v.state = StateLoading
	v.mu.Unlock()

	posts, err := v.backend.Feed(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		// a newer load owns the state now
		return
	}
	if err != nil {
		v.state = StateError
		v.errMsg = feedErrMsg
		return
	}
	v.state = StateLoaded
	v.posts = posts
	v.errMsg = ""
}

// State returns the view's current lifecycle state.
func (v *FeedView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Posts returns a copy of the loaded posts.
func (v *FeedView) Posts() []model.Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]model.Post, len(v.posts))
	copy(out, v.posts)
	return out
}

// ErrorMessage returns the fixed user-facing message, or "".
func (v *FeedView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// CanModify reports whether the edit/delete controls apply to the post.
// This is presentation only; the backend is the authority on permissions.
func (v *FeedView) CanModify(p model.Post) bool {
	return v.sess.IsAuthenticated() && p.Author == v.sess.Username()
}

// CreatePost publishes new content and re-fetches the feed. Blank content
// cancels without a request.
func (v *FeedView) CreatePost(ctx context.Context, content string) error {
	if util.IsBlank(content) {
		return nil
	}
	if _, err := v.backend.CreatePost(ctx, content, nil); err != nil {
		return err
	}
	v.Load(ctx)
	return nil
}

// EditPost replaces a post's content. Empty or whitespace-only input
// cancels the edit without a network call; on success the feed is
// re-fetched, on failure the prior list is left untouched.
func (v *FeedView) EditPost(ctx context.Context, id int64, content string) error {
	if util.IsBlank(content) {
		return nil
	}
	if _, err := v.backend.UpdatePost(ctx, id, content); err != nil {
		return err
	}
	v.Load(ctx)
	return nil
}

// DeletePost removes a post after explicit confirmation. A declined
// confirmation issues no request and changes nothing.
func (v *FeedView) DeletePost(ctx context.Context, id int64, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return nil
	}
	if err := v.backend.DeletePost(ctx, id); err != nil {
		return err
	}
	v.Load(ctx)
	return nil
}

// ToggleLike flips a like and re-fetches so the count comes from the
// backend, never from local arithmetic.
func (v *FeedView) ToggleLike(ctx context.Context, id int64) error {
	if err := v.backend.ToggleLike(ctx, id); err != nil {
		return err
	}
	v.Load(ctx)
	return nil
}

// Repost quotes a post into the user's timeline and re-fetches.
func (v *FeedView) Repost(ctx context.Context, id int64) error {
	if err := v.backend.Repost(ctx, id); err != nil {
		return err
	}
	v.Load(ctx)
	return nil
}

// Comments lists a post's comments. Read-only; the feed's own state is not
// touched.
func (v *FeedView) Comments(ctx context.Context, id int64) ([]model.Comment, error) {
	if !v.sess.IsAuthenticated() {
		return nil, nil
	}
	return v.backend.Comments(ctx, id)
}

// AddComment attaches a comment and re-fetches for the updated count.
// Blank content cancels without a request.
func (v *FeedView) AddComment(ctx context.Context, id int64, content string) error {
	if util.IsBlank(content) {
		return nil
	}
	if _, err := v.backend.AddComment(ctx, id, content); err != nil {
		return err
	}
	v.Load(ctx)
	return nil
}
