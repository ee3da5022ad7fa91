package server

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"yatube/internal/config"
	"yatube/internal/logging"
	"yatube/internal/models"
	"yatube/internal/posts"
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	Auth          config.AuthConfig
	Logger        *logging.Logger
	Templates     fs.FS
	ExposeMetrics bool
	Now           func() time.Time
}

type Server struct {
	store   *models.Store
	posts   *posts.Service
	logger  *logging.Logger
	metrics *metrics
	limiter *loginLimiter
	auth    config.AuthConfig
	now     func() time.Time

	tmpl    map[string]*template.Template
	handler http.Handler
}

// New parses the page templates found in opts.Templates (each page is
// combined with layout.html) and builds the route table.
func New(store *models.Store, opts Options) (*Server, error) {
	if opts.Templates == nil {
		return nil, fmt.Errorf("templates are required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	auth := opts.Auth
	if auth.CookieName == "" {
		auth = config.Default().Auth
	}

	templates, err := parseTemplates(opts.Templates)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:   store,
		posts:   posts.NewService(store, opts.Logger),
		logger:  opts.Logger.Named("http"),
		metrics: newMetrics(),
		limiter: newLoginLimiter(auth.LoginRate, auth.LoginBurst),
		auth:    auth,
		now:     opts.Now,
		tmpl:    templates,
	}
	s.handler = s.logRequests(s.routes(opts.ExposeMetrics))
	return s, nil
}

var templateFuncs = template.FuncMap{
	"pubdate": func(t time.Time) string { return t.Format("2 January 2006 15:04") },
	"itoa":    func(id int64) string { return fmt.Sprint(id) },
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	pages, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	templates := map[string]*template.Template{}
	for _, page := range pages {
		if page == "layout.html" {
			continue
		}
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(fsys, "layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[strings.TrimSuffix(path.Base(page), ".html")] = t
	}
	return templates, nil
}

func (s *Server) routes(exposeMetrics bool) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern, route string, h http.Handler) {
		mux.Handle(pattern, s.metrics.instrument(route, h))
	}

	handle("GET /{$}", "index", s.withUser(s.handleIndex))
	handle("GET /group/{slug}/{$}", "group_posts", s.withUser(s.handleGroup))
	handle("GET /new/{$}", "new_post", s.requireAuth(s.handleNewPost))
	handle("POST /new/{$}", "new_post", s.requireAuth(s.handleNewPost))
	handle("GET /{username}/{$}", "profile", s.withUser(s.handleProfile))
	handle("GET /{username}/{postID}/{$}", "post_view", s.withUser(s.handlePost))
	handle("GET /{username}/{postID}/edit/{$}", "post_edit", s.requireAuth(s.handleEditPost))
	handle("POST /{username}/{postID}/edit/{$}", "post_edit", s.requireAuth(s.handleEditPost))

	handle("GET /auth/signup/{$}", "signup", s.withUser(s.handleSignup))
	handle("POST /auth/signup/{$}", "signup", s.withUser(s.handleSignup))
	handle("GET /auth/login/{$}", "login", s.withUser(s.handleLogin))
	handle("POST /auth/login/{$}", "login", s.withUser(s.handleLogin))
	handle("POST /auth/logout/{$}", "logout", http.HandlerFunc(s.handleLogout))

	handle("GET /about/author/{$}", "about_author", s.withUser(s.staticPage("about_author")))
	handle("GET /about/tech/{$}", "about_tech", s.withUser(s.staticPage("about_tech")))

	// registered either way so /metrics never falls through to the
	// profile route's trailing-slash redirect
	if exposeMetrics {
		mux.Handle("GET /metrics", s.metrics.handler())
	} else {
		mux.HandleFunc("GET /metrics", http.NotFound)
	}
	return mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// render executes page name inside the layout. The identity is added to
// data under "user" for the navigation bar.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, user *models.User, data map[string]any) {
	t, ok := s.tmpl[name]
	if !ok {
		s.serverError(w, r, fmt.Errorf("template %q not found", name))
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["user"] = user

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", zap.Error(err), zap.String("path", r.URL.Path))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func (s *Server) staticPage(name string) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, user *models.User) {
		s.render(w, r, http.StatusOK, name, user, nil)
	}
}
