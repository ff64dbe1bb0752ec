package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"whatsup/internal/metrics"
	"whatsup/internal/model"
)

// TokenSource yields the current session token, or "" when logged out.
// The session manager implements it; the client stays ignorant of how the
// token is stored.
type TokenSource interface {
	Token() string
}

// Client talks to the WhatsUp REST backend. Every request carries
// "Authorization: Token <value>" when a token is available and goes out
// unauthenticated otherwise. Failures are terminal: no retry, no backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    RateLimiter
	tokens     TokenSource
}

// RateLimiter is the subset of rate.Limiter the client uses.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// New creates a client for the backend at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    newDefaultLimiter(),
	}
}

// SetTokenSource wires the session token into outgoing requests.
func (c *Client) SetTokenSource(ts TokenSource) { c.tokens = ts }

func (c *Client) auth(req *http.Request) {
	if c.tokens != nil {
		if t := c.tokens.Token(); t != "" {
			req.Header.Set("Authorization", "Token "+t)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func (c *Client) do(ctx context.Context, method, endpoint, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	c.auth(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	metrics.IncAPIRequest(method, endpoint)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveAPIDuration(start)
	if err != nil {
		metrics.IncAPIError(method, endpoint)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint, path string, payload any) (*http.Response, error) {
	var body io.Reader
	ct := ""
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
		ct = "application/json"
	}
	return c.do(ctx, method, endpoint, path, ct, body)
}

// statusErr drains the response into an HTTPError and counts the failure.
func (c *Client) statusErr(method, endpoint string, resp *http.Response) error {
	metrics.IncAPIError(method, endpoint)
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// Login exchanges credentials for a token. Any non-success status maps to
// AuthError with a fixed user-facing message.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/login/", "/login/", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		metrics.IncAPIError(http.MethodPost, "/login/")
		io.Copy(io.Discard, resp.Body)
		return "", &AuthError{Message: "invalid username or password"}
	}
	var raw struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	return raw.Token, nil
}

// Register creates an account. On a 400 the backend's field errors are
// mapped to a ValidationError; the returned token is not stored here, the
// caller decides whether to log in.
func (c *Client) Register(ctx context.Context, username, email, password, password2 string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/register/", "/register/", map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password2,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusBadRequest {
		metrics.IncAPIError(http.MethodPost, "/register/")
		var fields map[string][]string
		if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
			return "", &ValidationError{Message: "registration failed, check the submitted fields"}
		}
		return "", mapFieldErrors(fields)
	}
	if resp.StatusCode >= 400 {
		return "", c.statusErr(http.MethodPost, "/register/", resp)
	}
	var raw struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", err
	}
	return raw.Token, nil
}

// Feed lists the posts addressed to the logged-in user's feed.
func (c *Client) Feed(ctx context.Context) ([]model.Post, error) {
	resp, err := c.do(ctx, http.MethodGet, "/posts/feed/", "/posts/feed/", "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, c.statusErr(http.MethodGet, "/posts/feed/", resp)
	}
	var raw []wirePost
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return postsToModel(raw), nil
}

// CreatePost publishes a new post; parent, when set, makes it a repost.
func (c *Client) CreatePost(ctx context.Context, content string, parent *int64) (model.Post, error) {
	payload := map[string]any{"content": content}
	if parent != nil {
		payload["parent"] = *parent
	}
	resp, err := c.doJSON(ctx, http.MethodPost, "/posts/", "/posts/", payload)
	if err != nil {
		return model.Post{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return model.Post{}, c.statusErr(http.MethodPost, "/posts/", resp)
	}
	var raw wirePost
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.Post{}, err
	}
	return raw.toModel(), nil
}

// UpdatePost replaces a post's content.
func (c *Client) UpdatePost(ctx context.Context, id int64, content string) (model.Post, error) {
	path := fmt.Sprintf("/posts/%d/", id)
	resp, err := c.doJSON(ctx, http.MethodPut, "/posts/{id}/", path, map[string]string{"content": content})
	if err != nil {
		return model.Post{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return model.Post{}, c.statusErr(http.MethodPut, "/posts/{id}/", resp)
	}
	var raw wirePost
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.Post{}, err
	}
	return raw.toModel(), nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/posts/%d/", id)
	resp, err := c.do(ctx, http.MethodDelete, "/posts/{id}/", path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return c.statusErr(http.MethodDelete, "/posts/{id}/", resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ToggleLike likes a post, or removes the like if it already exists; the
// backend decides which.
func (c *Client) ToggleLike(ctx context.Context, id int64) error {
	return c.emptyPost(ctx, "/posts/{id}/like/", fmt.Sprintf("/posts/%d/like/", id))
}

// Repost quotes a post into the user's own timeline.
func (c *Client) Repost(ctx context.Context, id int64) error {
	return c.emptyPost(ctx, "/posts/{id}/retweet/", fmt.Sprintf("/posts/%d/retweet/", id))
}

// ToggleFollow flips the follow relation toward username; the backend
// decides add vs remove. Callers re-fetch the profile afterwards.
func (c *Client) ToggleFollow(ctx context.Context, username string) error {
	return c.emptyPost(ctx, "/profile/{username}/follow/", "/profile/"+url.PathEscape(username)+"/follow/")
}

func (c *Client) emptyPost(ctx context.Context, endpoint, path string) error {
	resp, err := c.do(ctx, http.MethodPost, endpoint, path, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return c.statusErr(http.MethodPost, endpoint, resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Comments lists the comments of a post.
func (c *Client) Comments(ctx context.Context, id int64) ([]model.Comment, error) {
	path := fmt.Sprintf("/posts/%d/comments/", id)
	resp, err := c.do(ctx, http.MethodGet, "/posts/{id}/comments/", path, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, c.statusErr(http.MethodGet, "/posts/{id}/comments/", resp)
	}
	var raw []wireComment
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	out := make([]model.Comment, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.toModel())
	}
	return out, nil
}

// AddComment attaches a comment to a post.
func (c *Client) AddComment(ctx context.Context, id int64, content string) (model.Comment, error) {
	path := fmt.Sprintf("/posts/%d/comment/", id)
	resp, err := c.doJSON(ctx, http.MethodPost, "/posts/{id}/comment/", path, map[string]string{"content": content})
	if err != nil {
		return model.Comment{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return model.Comment{}, c.statusErr(http.MethodPost, "/posts/{id}/comment/", resp)
	}
	var raw wireComment
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.Comment{}, err
	}
	return raw.toModel(), nil
}

// UserPosts lists a user's own posts.
func (c *Client) UserPosts(ctx context.Context, username string) ([]model.Post, error) {
	path := "/posts/user/" + url.PathEscape(username) + "/"
	resp, err := c.do(ctx, http.MethodGet, "/posts/user/{username}/", path, "", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, c.statusErr(http.MethodGet, "/posts/user/{username}/", resp)
	}
	var raw []wirePost
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	return postsToModel(raw), nil
}

// MyProfile fetches the logged-in user's profile.
func (c *Client) MyProfile(ctx context.Context) (model.Profile, error) {
	return c.getProfile(ctx, "/profile/me/", "/profile/me/")
}

// Profile fetches another user's profile by username.
func (c *Client) Profile(ctx context.Context, username string) (model.Profile, error) {
	return c.getProfile(ctx, "/profile/{username}/", "/profile/"+url.PathEscape(username)+"/")
}

func (c *Client) getProfile(ctx context.Context, endpoint, path string) (model.Profile, error) {
	resp, err := c.do(ctx, http.MethodGet, endpoint, path, "", nil)
	if err != nil {
		return model.Profile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return model.Profile{}, c.statusErr(http.MethodGet, endpoint, resp)
	}
	var raw wireProfile
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.Profile{}, err
	}
	return raw.toModel(), nil
}

// UpdateMyProfile patches email and bio, optionally uploading a new photo,
// as one multipart form. Returns the updated profile.
func (c *Client) UpdateMyProfile(ctx context.Context, email, bio string, photo io.Reader, photoName string) (model.Profile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("email", email); err != nil {
		return model.Profile{}, err
	}
	if err := mw.WriteField("bio", bio); err != nil {
		return model.Profile{}, err
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", photoName)
		if err != nil {
			return model.Profile{}, err
		}
		if _, err := io.Copy(fw, photo); err != nil {
			return model.Profile{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return model.Profile{}, err
	}
	resp, err := c.do(ctx, http.MethodPatch, "/profile/me/", "/profile/me/", mw.FormDataContentType(), &buf)
	if err != nil {
		return model.Profile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return model.Profile{}, c.statusErr(http.MethodPatch, "/profile/me/", resp)
	}
	var raw wireProfile
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return model.Profile{}, err
	}
	return raw.toModel(), nil
}
