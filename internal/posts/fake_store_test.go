package posts

import (
	"context"
	"errors"
	"time"

	"yatube/internal/models"
)

// fakeStore is an in-memory Store for exercising the authoring rules.
type fakeStore struct {
	groups  map[int64]*models.Group
	posts   map[int64]*models.Post
	nextID  int64
	creates int
	updates int
	failOn  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{groups: map[int64]*models.Group{}, posts: map[int64]*models.Post{}}
}

func (f *fakeStore) addGroup(id int64, slug string) *models.Group {
	g := &models.Group{ID: id, Title: slug, Slug: slug}
	f.groups[id] = g
	return g
}

func (f *fakeStore) GetGroupByID(_ context.Context, id int64) (*models.Group, error) {
	if f.failOn != nil {
		return nil, f.failOn
	}
	g, ok := f.groups[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) GetPostByAuthorAndID(_ context.Context, username string, id int64) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok || p.Author.Username != username {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CreatePost(_ context.Context, text string, author *models.User, groupID *int64) (*models.Post, error) {
	f.nextID++
	f.creates++
	p := &models.Post{ID: f.nextID, Text: text, PubDate: time.Now(), Author: *author}
	if groupID != nil {
		p.Group = f.groups[*groupID]
	}
	f.posts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeStore) UpdatePost(_ context.Context, post *models.Post, text string, groupID *int64) (*models.Post, error) {
	p, ok := f.posts[post.ID]
	if !ok {
		return nil, errors.New("missing")
	}
	f.updates++
	p.Text = text
	p.Group = nil
	if groupID != nil {
		p.Group = f.groups[*groupID]
	}
	cp := *p
	return &cp, nil
}
