package models

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// Group is a named category a post may belong to. Slug is the URL key.
type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

func (g Group) String() string {
	return g.Title
}

type Post struct {
	ID      int64
	Text    string
	PubDate time.Time
	Author  User
	Group   *Group
}

func (p Post) String() string {
	return p.Text
}

// GroupID returns the id of the post's group, or nil when it has none.
func (p Post) GroupID() *int64 {
	if p.Group == nil {
		return nil
	}
	id := p.Group.ID
	return &id
}
