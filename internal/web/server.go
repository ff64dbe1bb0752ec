package web

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"whatsup/internal/api"
	"whatsup/internal/config"
	"whatsup/internal/logging"
	"whatsup/internal/metrics"
	"whatsup/internal/model"
	"whatsup/internal/session"
	"whatsup/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server renders the page application on top of the long-lived view
// controllers. Handlers trigger loads/mutations and redirect; state lives
// in the views, not in the handlers.
type Server struct {
	cfg      config.WebConfig
	sess     *session.Manager
	feed     *view.FeedView
	profile  *view.ProfileView
	login    *view.LoginView
	register *view.RegisterView
	tmpl     *template.Template
}

func NewServer(cfg config.WebConfig, sess *session.Manager, client *api.Client) *Server {
	return &Server{
		cfg:      cfg,
		sess:     sess,
		feed:     view.NewFeedView(sess, client),
		profile:  view.NewProfileView(sess, client),
		login:    view.NewLoginView(sess),
		register: view.NewRegisterView(client),
		tmpl:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Router wires all pages. CORS mirrors the backend's expectations for
// local development.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/", s.handleHome)
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLoginSubmit)
	r.Get("/register", s.handleRegisterPage)
	r.Post("/register", s.handleRegisterSubmit)
	r.Post("/logout", s.handleLogout)

	r.Get("/feed", s.handleFeed)
	r.Post("/posts", s.handleCreatePost)
	r.Post("/posts/{id}/edit", s.handleEditPost)
	r.Get("/posts/{id}/delete", s.handleDeleteConfirm)
	r.Post("/posts/{id}/delete", s.handleDeletePost)
	r.Post("/posts/{id}/like", s.handleLike)
	r.Post("/posts/{id}/repost", s.handleRepost)
	r.Get("/posts/{id}/comments", s.handleComments)
	r.Post("/posts/{id}/comment", s.handleComment)

	r.Get("/profile", s.handleProfile)
	r.Get("/profile/{username}", s.handleProfile)
	r.Post("/profile/save", s.handleProfileSave)
	r.Post("/profile/{username}/follow", s.handleFollow)

	return r
}

func (s *Server) render(w http.ResponseWriter, page string, data any) {
	metrics.IncPageView(page)
	if err := s.tmpl.ExecuteTemplate(w, page+".html", data); err != nil {
		logging.Error("render", map[string]any{"page": page, "error": err.Error()})
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

type basePage struct {
	LoggedIn bool
	Username string
	Notice   string
}

func (s *Server) base(r *http.Request) basePage {
	return basePage{
		LoggedIn: s.sess.IsAuthenticated(),
		Username: s.sess.Username(),
		Notice:   r.URL.Query().Get("notice"),
	}
}

// redirectNotice bounces back to target with a blocking notice; the prior
// view state is untouched, matching the source's alert-and-stay behavior.
func redirectNotice(w http.ResponseWriter, r *http.Request, target, notice string) {
	if notice != "" {
		target += "?notice=" + url.QueryEscape(notice)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home", s.base(r))
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login", struct {
		basePage
		Error string
	}{s.base(r), s.login.ErrorMessage()})
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.login.Submit(r.Context(), r.FormValue("username"), r.FormValue("password")); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register", struct {
		basePage
		Error string
	}{s.base(r), s.register.ErrorMessage()})
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	err := s.register.Submit(r.Context(),
		r.FormValue("username"), r.FormValue("email"),
		r.FormValue("password"), r.FormValue("password2"))
	if err != nil {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	// account created; the user logs in explicitly
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sess.Logout(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type feedPage struct {
	basePage
	State string
	Error string
	Posts []model.Post
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	s.feed.Load(r.Context())
	s.render(w, "feed", feedPage{
		basePage: s.base(r),
		State:    s.feed.State().String(),
		Error:    s.feed.ErrorMessage(),
		Posts:    s.feed.Posts(),
	})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if err := s.feed.CreatePost(r.Context(), r.FormValue("content")); err != nil {
		redirectNotice(w, r, "/feed", "could not publish the post")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.feed.EditPost(r.Context(), id, r.FormValue("content")); err != nil {
		redirectNotice(w, r, "/feed", "could not edit the post")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

// handleDeleteConfirm renders the explicit confirmation step; the delete
// request is only issued by the confirmed POST below.
func (s *Server) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "confirm_delete", struct {
		basePage
		ID int64
	}{s.base(r), id})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	confirmed := r.FormValue("confirmed") == "yes"
	err := s.feed.DeletePost(r.Context(), id, func() bool { return confirmed })
	if err != nil {
		redirectNotice(w, r, "/feed", "could not delete the post")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.feed.ToggleLike(r.Context(), id); err != nil {
		redirectNotice(w, r, "/feed", "could not change the like")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

func (s *Server) handleRepost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.feed.Repost(r.Context(), id); err != nil {
		redirectNotice(w, r, "/feed", "could not repost")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	comments, err := s.feed.Comments(r.Context(), id)
	if err != nil {
		redirectNotice(w, r, "/feed", "could not load the comments")
		return
	}
	s.render(w, "comments", struct {
		basePage
		ID       int64
		Comments []model.Comment
	}{s.base(r), id, comments})
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.feed.AddComment(r.Context(), id, r.FormValue("content")); err != nil {
		redirectNotice(w, r, "/feed", "could not add the comment")
		return
	}
	http.Redirect(w, r, "/feed", http.StatusSeeOther)
}

type profilePage struct {
	basePage
	State       string
	Error       string
	IsMe        bool
	IsFollowing bool
	Profile     model.Profile
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	route := chi.URLParam(r, "username")
	s.profile.Load(r.Context(), route)
	s.render(w, "profile", profilePage{
		basePage:    s.base(r),
		State:       s.profile.State().String(),
		Error:       s.profile.ErrorMessage(),
		IsMe:        s.profile.IsMe(),
		IsFollowing: s.profile.IsFollowing(),
		Profile:     s.profile.Profile(),
	})
}

func (s *Server) handleProfileSave(w http.ResponseWriter, r *http.Request) {
	// modest cap; photos are small avatars
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		redirectNotice(w, r, "/profile", "could not read the form")
		return
	}
	email := r.FormValue("email")
	bio := r.FormValue("bio")
	file, header, err := r.FormFile("photo")
	if err == nil {
		defer file.Close()
		err = s.profile.Save(r.Context(), email, bio, file, header.Filename)
	} else {
		err = s.profile.Save(r.Context(), email, bio, nil, "")
	}
	if err != nil {
		redirectNotice(w, r, "/profile", "could not update the profile")
		return
	}
	redirectNotice(w, r, "/profile", "profile updated")
}

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	// the view only toggles against its currently loaded profile
	s.profile.Load(r.Context(), username)
	if err := s.profile.ToggleFollow(r.Context()); err != nil {
		redirectNotice(w, r, "/profile/"+url.PathEscape(username), "could not change the follow")
		return
	}
	http.Redirect(w, r, "/profile/"+url.PathEscape(username), http.StatusSeeOther)
}
