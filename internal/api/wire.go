package api

import (
	"time"

	"whatsup/internal/model"
)

// Wire shapes follow the backend's serializers verbatim; they are mapped
// into model types right after decoding and never leave this package.

type wireParent struct {
	User      string    `json:"user"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type wirePost struct {
	ID            int64       `json:"id"`
	User          string      `json:"user"`
	Content       string      `json:"content"`
	CreatedAt     time.Time   `json:"created_at"`
	Parent        *int64      `json:"parent"`
	ParentDetail  *wireParent `json:"parent_detail"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	RetweetsCount int         `json:"retweets_count"`
}

type wireComment struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type wireMiniUser struct {
	Username string `json:"username"`
	Photo    string `json:"photo"`
}

type wireProfile struct {
	Username  string         `json:"username"`
	Email     string         `json:"email"`
	Bio       string         `json:"bio"`
	Photo     string         `json:"photo"`
	Following []wireMiniUser `json:"following"`
	Followers []wireMiniUser `json:"followers"`
	// Counts are pointers: the backend may omit them, in which case they
	// default to the length of the corresponding list. Explicit values are
	// preserved even when they disagree with the list.
	FollowingCount *int       `json:"following_count"`
	FollowersCount *int       `json:"followers_count"`
	Posts          []wirePost `json:"posts"`
}

func (w wirePost) toModel() model.Post {
	p := model.Post{
		ID:           w.ID,
		Author:       w.User,
		Content:      w.Content,
		CreatedAt:    w.CreatedAt,
		ParentID:     w.Parent,
		LikeCount:    w.LikesCount,
		CommentCount: w.CommentsCount,
		RetweetCount: w.RetweetsCount,
	}
	if w.ParentDetail != nil {
		p.ParentPreview = &model.ParentPreview{
			Author:    w.ParentDetail.User,
			Content:   w.ParentDetail.Content,
			CreatedAt: w.ParentDetail.CreatedAt,
		}
	}
	return p
}

func (w wireComment) toModel() model.Comment {
	return model.Comment{ID: w.ID, Author: w.Username, Content: w.Content, CreatedAt: w.CreatedAt}
}

func (w wireProfile) toModel() model.Profile {
	p := model.Profile{
		Username: w.Username,
		Email:    w.Email,
		Bio:      w.Bio,
		PhotoURL: w.Photo,
	}
	for _, u := range w.Following {
		p.Following = append(p.Following, model.MiniUser{Username: u.Username, PhotoURL: u.Photo})
	}
	for _, u := range w.Followers {
		p.Followers = append(p.Followers, model.MiniUser{Username: u.Username, PhotoURL: u.Photo})
	}
	p.FollowingCount = len(p.Following)
	if w.FollowingCount != nil {
		p.FollowingCount = *w.FollowingCount
	}
	p.FollowersCount = len(p.Followers)
	if w.FollowersCount != nil {
		p.FollowersCount = *w.FollowersCount
	}
	for _, t := range w.Posts {
		p.Posts = append(p.Posts, t.toModel())
	}
	return p
}

func postsToModel(in []wirePost) []model.Post {
	out := make([]model.Post, 0, len(in))
	for _, w := range in {
		out = append(out, w.toModel())
	}
	return out
}
