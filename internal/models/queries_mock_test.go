package models

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database), mock
}

func TestListAllPosts_DBError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT .* FROM posts p\s.* ORDER BY p\.pub_date DESC, p\.id DESC$`).
		WillReturnError(errors.New("db down"))

	_, err := s.ListAllPosts(context.Background())
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`select posts: .*db down`), err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAllPosts_ScansGroupColumns(t *testing.T) {
	s, mock := newStoreWithMock(t)
	when := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "text", "pub_date", "uid", "username", "gid", "title", "slug", "description"}).
		AddRow(int64(2), "with group", when, int64(1), "name", int64(5), "testgroup", "test-slug", "d").
		AddRow(int64(1), "without", when, int64(1), "name", nil, nil, nil, nil)
	mock.ExpectQuery(`(?s)^SELECT .* FROM posts p`).WillReturnRows(rows)

	posts, err := s.ListAllPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "test-slug", posts[0].Group.Slug)
	assert.Nil(t, posts[1].Group)
	assert.Equal(t, "name", posts[1].Author.Username)
}

func TestGetGroupBySlug_NoRows(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`^SELECT id, title, slug, description FROM post_groups WHERE slug = \?$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetGroupBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePost_InsertError(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`^INSERT INTO posts \(text, pub_date, author_id, group_id\) VALUES \(\?, \?, \?, \?\)$`).
		WithArgs("text", sqlmock.AnyArg(), int64(1), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk full"))

	_, err := s.CreatePost(context.Background(), "text", &User{ID: 1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert post: disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
