package server

import (
	"errors"
	"net/http"
	"strconv"

	"yatube/internal/models"
	"yatube/internal/posts"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, user *models.User) {
	items, err := s.store.ListAllPosts(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "index", user, map[string]any{
		"page": posts.Paginate(items, r.URL.Query().Get("page")),
	})
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request, user *models.User) {
	group, items, err := s.store.ListPostsByGroupSlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.lookupError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "group", user, map[string]any{
		"group": group,
		"page":  posts.Paginate(items, r.URL.Query().Get("page")),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request, user *models.User) {
	author, items, err := s.store.ListPostsByAuthorUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		s.lookupError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "profile", user, map[string]any{
		"page":        posts.Paginate(items, r.URL.Query().Get("page")),
		"profileUser": author,
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	post, err := s.store.GetPostByAuthorAndID(r.Context(), r.PathValue("username"), id)
	if err != nil {
		s.lookupError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "post", user, map[string]any{
		"post":        post,
		"profileUser": &post.Author,
	})
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	if r.Method == http.MethodGet {
		s.renderPostForm(w, r, user, posts.NewForm(nil), nil)
		return
	}

	text, group := r.PostFormValue("text"), r.PostFormValue("group")
	_, err := s.posts.Create(r.Context(), user, text, group)
	var verr *posts.ValidationError
	switch {
	case errors.As(err, &verr):
		s.renderPostForm(w, r, user, &posts.Form{Text: text, Group: group, Errors: verr.Fields}, nil)
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}
	s.metrics.posts.WithLabelValues("create").Inc()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	username := r.PathValue("username")
	detail := "/" + username + "/" + strconv.FormatInt(id, 10) + "/"

	if r.Method == http.MethodGet {
		post, err := s.posts.Lookup(r.Context(), user, username, id)
		if errors.Is(err, posts.ErrNotOwner) {
			http.Redirect(w, r, detail, http.StatusFound)
			return
		}
		if err != nil {
			s.lookupError(w, r, err)
			return
		}
		s.renderPostForm(w, r, user, posts.NewForm(post), post)
		return
	}

	text, group := r.PostFormValue("text"), r.PostFormValue("group")
	post, err := s.posts.Edit(r.Context(), user, username, id, text, group)
	var verr *posts.ValidationError
	switch {
	case errors.Is(err, posts.ErrNotOwner):
		http.Redirect(w, r, detail, http.StatusFound)
		return
	case errors.As(err, &verr):
		s.renderPostForm(w, r, user, &posts.Form{Text: text, Group: group, Errors: verr.Fields}, post)
		return
	case err != nil:
		s.lookupError(w, r, err)
		return
	}
	s.metrics.posts.WithLabelValues("edit").Inc()
	http.Redirect(w, r, detail, http.StatusSeeOther)
}

// renderPostForm shows the create form when post is nil and the edit form
// otherwise.
func (s *Server) renderPostForm(w http.ResponseWriter, r *http.Request, user *models.User, form *posts.Form, post *models.Post) {
	groups, err := s.store.ListGroups(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	data := map[string]any{
		"form":   form,
		"groups": groups,
		"isNew":  post == nil,
	}
	if post != nil {
		data["post"] = post
	}
	s.render(w, r, http.StatusOK, "new_post", user, data)
}

func (s *Server) lookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.serverError(w, r, err)
}

func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("postID"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
