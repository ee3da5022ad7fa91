package posts

import (
	"context"

	"go.uber.org/zap"

	"yatube/internal/logging"
	"yatube/internal/models"
)

// Store is the part of the entity store the authoring rules need.
type Store interface {
	GroupLookup
	GetPostByAuthorAndID(ctx context.Context, username string, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, text string, author *models.User, groupID *int64) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post, text string, groupID *int64) (*models.Post, error)
}

// Service creates and edits posts on behalf of an explicit identity.
type Service struct {
	store  Store
	logger *logging.Logger
}

func NewService(store Store, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: store, logger: logger.Named("posts")}
}

// Create validates text and group and stores a new post written by
// identity. The author is always identity; nothing in the submitted data
// can change it.
func (s *Service) Create(ctx context.Context, identity *models.User, text, group string) (*models.Post, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	in, err := ValidateForm(ctx, s.store, text, group)
	if err != nil {
		return nil, err
	}
	p, err := s.store.CreatePost(ctx, in.Text, identity, in.GroupID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "post created", zap.Int64("post.id", p.ID), zap.String("author", identity.Username))
	return p, nil
}

// Lookup loads username's post id for editing by identity. It fails with
// models.ErrNotFound when the post does not exist under that author and
// with ErrNotOwner when identity is somebody else.
func (s *Service) Lookup(ctx context.Context, identity *models.User, username string, id int64) (*models.Post, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}
	p, err := s.store.GetPostByAuthorAndID(ctx, username, id)
	if err != nil {
		return nil, err
	}
	if p.Author.ID != identity.ID {
		return p, ErrNotOwner
	}
	return p, nil
}

// Edit replaces the text and group of username's post id. Only the author
// may edit; anyone else gets ErrNotOwner and the post is left untouched.
// On ErrNotOwner or a *ValidationError the unchanged post is returned
// with the error so the caller can redirect to it or redisplay the form.
// Concurrent edits are not detected; the last write wins.
func (s *Service) Edit(ctx context.Context, identity *models.User, username string, id int64, text, group string) (*models.Post, error) {
	p, err := s.Lookup(ctx, identity, username, id)
	if err != nil {
		return p, err
	}
	in, err := ValidateForm(ctx, s.store, text, group)
	if err != nil {
		return p, err
	}
	updated, err := s.store.UpdatePost(ctx, p, in.Text, in.GroupID)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "post edited", zap.Int64("post.id", updated.ID), zap.String("author", identity.Username))
	return updated, nil
}
