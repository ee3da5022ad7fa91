package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Store is the single entry point to persisted users, sessions, groups and
// posts. Every read goes to the database; nothing is cached in process.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock returns a copy of the store that stamps new rows using now.
func (s *Store) WithClock(now func() time.Time) *Store {
	return &Store{db: s.db, now: now}
}

const postColumns = `p.id, p.text, p.pub_date, u.id, u.username, g.id, g.title, g.slug, g.description
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

func uniqueViolation(err error, column string) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return false
	}
	return strings.Contains(sqliteErr.Error(), column)
}

func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (*User, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (email, username, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		email, username, passwordHash, s.now())
	if err != nil {
		if uniqueViolation(err, "users.email") {
			return nil, ErrDuplicateEmail
		}
		if uniqueViolation(err, "users.username") {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, email, username, password_hash, created_at FROM users WHERE `+where, arg)
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*User, error) {
	return s.getUser(ctx, "id = ?", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.getUser(ctx, "username = ?", username)
}

func (s *Store) CreateSession(ctx context.Context, userID int64, sessionID string, expires time.Time) error {
	// one live session per user
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL`, s.now(), userID)
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sessionID, userID, s.now(), expires)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id)
	var sess Session
	var revoked sql.NullTime
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt, &revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	if revoked.Valid {
		sess.RevokedAt = &revoked.Time
	}
	return &sess, nil
}

func (s *Store) RevokeSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`, s.now(), id)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Store) CreateGroup(ctx context.Context, title, slug, description string) (*Group, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO post_groups (title, slug, description) VALUES (?, ?, ?)`, title, slug, description)
	if err != nil {
		if uniqueViolation(err, "post_groups.slug") {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	return &Group{ID: id, Title: title, Slug: slug, Description: description}, nil
}

func (s *Store) getGroup(ctx context.Context, where string, arg any) (*Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, slug, description FROM post_groups WHERE `+where, arg)
	var g Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select group: %w", err)
	}
	return &g, nil
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*Group, error) {
	return s.getGroup(ctx, "slug = ?", slug)
}

func (s *Store) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	return s.getGroup(ctx, "id = ?", id)
}

// ListGroups returns every group ordered by title, for form choices.
func (s *Store) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, slug, description FROM post_groups ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("select groups: %w", err)
	}
	defer rows.Close()
	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(sc scanner) (Post, error) {
	var p Post
	var (
		groupID                        sql.NullInt64
		groupTitle, groupSlug, groupDe sql.NullString
	)
	err := sc.Scan(&p.ID, &p.Text, &p.PubDate, &p.Author.ID, &p.Author.Username,
		&groupID, &groupTitle, &groupSlug, &groupDe)
	if err != nil {
		return p, err
	}
	if groupID.Valid {
		p.Group = &Group{ID: groupID.Int64, Title: groupTitle.String, Slug: groupSlug.String, Description: groupDe.String}
	}
	return p, nil
}

func (s *Store) queryPosts(ctx context.Context, q string, args ...any) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` `+q, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()
	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	return posts, nil
}

// ListAllPosts returns every post, newest first.
func (s *Store) ListAllPosts(ctx context.Context) ([]Post, error) {
	return s.queryPosts(ctx, `ORDER BY p.pub_date DESC, p.id DESC`)
}

// ListPostsByGroupSlug returns the group and its posts in insertion order.
func (s *Store) ListPostsByGroupSlug(ctx context.Context, slug string) (*Group, []Post, error) {
	g, err := s.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.queryPosts(ctx, `WHERE p.group_id = ? ORDER BY p.id`, g.ID)
	if err != nil {
		return nil, nil, err
	}
	return g, posts, nil
}

// ListPostsByAuthorUsername returns the author and their posts, newest first.
func (s *Store) ListPostsByAuthorUsername(ctx context.Context, username string) (*User, []Post, error) {
	u, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.queryPosts(ctx, `WHERE p.author_id = ? ORDER BY p.pub_date DESC, p.id DESC`, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, posts, nil
}

func (s *Store) getPost(ctx context.Context, where string, args ...any) (*Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` WHERE `+where, args...)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select post: %w", err)
	}
	return &p, nil
}

func (s *Store) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	return s.getPost(ctx, `p.id = ?`, id)
}

// GetPostByAuthorAndID fails with ErrNotFound when the post is missing or
// was written by someone other than username.
func (s *Store) GetPostByAuthorAndID(ctx context.Context, username string, id int64) (*Post, error) {
	return s.getPost(ctx, `p.id = ? AND u.username = ?`, id, username)
}

func (s *Store) CreatePost(ctx context.Context, text string, author *User, groupID *int64) (*Post, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO posts (text, pub_date, author_id, group_id) VALUES (?, ?, ?, ?)`,
		text, s.now(), author.ID, groupID)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return s.GetPostByID(ctx, id)
}

// UpdatePost rewrites text and group. Author and pub_date are left alone.
func (s *Store) UpdatePost(ctx context.Context, post *Post, text string, groupID *int64) (*Post, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE posts SET text = ?, group_id = ? WHERE id = ?`, text, groupID, post.ID)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetPostByID(ctx, post.ID)
}
