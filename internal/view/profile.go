package view

import (
	"context"
	"io"
	"sync"

	"whatsup/internal/model"
)

// ProfileBackend is the slice of the API client the profile page uses.
type ProfileBackend interface {
	MyProfile(ctx context.Context) (model.Profile, error)
	Profile(ctx context.Context, username string) (model.Profile, error)
	UpdateMyProfile(ctx context.Context, email, bio string, photo io.Reader, photoName string) (model.Profile, error)
	ToggleFollow(ctx context.Context, username string) error
}

const profileErrMsg = "could not load the profile"

// ProfileView renders either "my profile" (edit form, logout) or a third
// party's (follow toggle), depending on the route username.
type ProfileView struct {
	mu      sync.Mutex
	sess    Session
	backend ProfileBackend

	state         State
	routeUsername string
	isMe          bool
	profile       model.Profile
	errMsg        string
	gen           uint64
}

func NewProfileView(sess Session, backend ProfileBackend) *ProfileView {
	return &ProfileView{sess: sess, backend: backend}
}

// Load fetches the profile behind routeUsername; an empty route username
// means "my profile", as does a route username equal to the session's.
// Logged out, it settles in StateIdle and issues no request.
func (v *ProfileView) Load(ctx context.Context, routeUsername string) {
	v.mu.Lock()
	if !v.sess.IsAuthenticated() {
		v.state = StateIdle
		v.profile = model.Profile{}
		v.errMsg = ""
		v.mu.Unlock()
		return
	}
	isMe := routeUsername == "" || routeUsername == v.sess.Username()
	v.gen++
	gen := v.gen
	v.state = StateLoading
	v.routeUsername = routeUsername
	v.isMe = isMe
	v.mu.Unlock()

	var (
		p   model.Profile
		err error
	)
	if isMe {
		p, err = v.backend.MyProfile(ctx)
	} else {
		p, err = v.backend.Profile(ctx, routeUsername)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return
	}
	if err != nil {
		v.state = StateError
		v.errMsg = profileErrMsg
		return
	}
	v.state = StateLoaded
	v.profile = p
	v.errMsg = ""
}

func (v *ProfileView) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// IsMe reports whether the displayed profile belongs to the session user.
func (v *ProfileView) IsMe() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isMe
}

// Profile returns the loaded profile.
func (v *ProfileView) Profile() model.Profile {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.profile
}

func (v *ProfileView) ErrorMessage() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

// IsFollowing reports whether the session user already follows the
// displayed profile, derived from the fetched followers list. There is no
// local toggle; the label only flips after a re-fetch reflects the change.
func (v *ProfileView) IsFollowing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.profile.IsFollowedBy(v.sess.Username())
}

// ToggleFollow sends the follow intent (the backend decides add vs remove)
// and re-fetches the full profile. A no-op on my own profile.
func (v *ProfileView) ToggleFollow(ctx context.Context) error {
	v.mu.Lock()
	isMe, route := v.isMe, v.routeUsername
	v.mu.Unlock()
	if isMe || route == "" {
		return nil
	}
	if err := v.backend.ToggleFollow(ctx, route); err != nil {
		return err
	}
	v.Load(ctx, route)
	return nil
}

// Save patches my email/bio (and optionally a new photo) as one multipart
// request, then re-fetches. A no-op on someone else's profile.
func (v *ProfileView) Save(ctx context.Context, email, bio string, photo io.Reader, photoName string) error {
	v.mu.Lock()
	isMe, route := v.isMe, v.routeUsername
	v.mu.Unlock()
	if !isMe {
		return nil
	}
	if _, err := v.backend.UpdateMyProfile(ctx, email, bio, photo, photoName); err != nil {
		return err
	}
	v.Load(ctx, route)
	return nil
}
