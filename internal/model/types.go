package model

import "time"

// Post is a feed entry. A post with ParentID set is a repost/quote of
// another post; ParentPreview is the denormalized snapshot the backend
// ships alongside it, never fetched separately.
type Post struct {
	ID            int64
	Author        string
	Content       string
	CreatedAt     time.Time
	ParentID      *int64
	ParentPreview *ParentPreview
	LikeCount     int
	CommentCount  int
	RetweetCount  int
}

// ParentPreview is the backend's snapshot of a reposted post.
type ParentPreview struct {
	Author    string
	Content   string
	CreatedAt time.Time
}

// Comment is a reply attached to a post.
type Comment struct {
	ID        int64
	Author    string
	Content   string
	CreatedAt time.Time
}

// MiniUser is the minimal user reference used in follower/following lists.
type MiniUser struct {
	Username string
	PhotoURL string
}

// Profile is a user profile as served by the backend.
type Profile struct {
	Username       string
	Email          string
	Bio            string
	PhotoURL       string
	Following      []MiniUser
	Followers      []MiniUser
	FollowingCount int
	FollowersCount int
	Posts          []Post
}

// IsRepost reports whether the post references a parent post.
func (p Post) IsRepost() bool { return p.ParentID != nil }

// IsFollowedBy reports whether username appears in the profile's followers.
// The follow button derives its state from this; the client never toggles
// the relation locally.
func (p Profile) IsFollowedBy(username string) bool {
	for _, u := range p.Followers {
		if u.Username == username {
			return true
		}
	}
	return false
}
