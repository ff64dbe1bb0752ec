package model

import "testing"

func TestIsRepost(t *testing.T) {
	if (Post{}).IsRepost() {
		t.Fatal("plain post flagged as repost")
	}
	id := int64(3)
	if !(Post{ParentID: &id}).IsRepost() {
		t.Fatal("post with parent not flagged as repost")
	}
}

func TestIsFollowedBy(t *testing.T) {
	p := Profile{
		Username:  "bob",
		Followers: []MiniUser{{Username: "alice"}, {Username: "carol"}},
	}
	if !p.IsFollowedBy("alice") {
		t.Fatal("alice is a follower")
	}
	if p.IsFollowedBy("dave") {
		t.Fatal("dave is not a follower")
	}
	if (Profile{}).IsFollowedBy("alice") {
		t.Fatal("empty followers list")
	}
}
