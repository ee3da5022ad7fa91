package posts

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"yatube/internal/models"
)

const (
	MsgTextRequired = "fill in the comment"
	MsgInvalidGroup = "select a valid group"
)

// GroupLookup resolves a group id submitted with the form.
type GroupLookup interface {
	GetGroupByID(ctx context.Context, id int64) (*models.Group, error)
}

// Form is the raw post form as submitted, plus any errors from validating it.
type Form struct {
	Text   string
	Group  string
	Errors FormErrors
}

// NewForm prefills a form from an existing post, or returns an empty one.
func NewForm(p *models.Post) *Form {
	f := &Form{Errors: FormErrors{}}
	if p != nil {
		f.Text = p.Text
		if p.Group != nil {
			f.Group = strconv.FormatInt(p.Group.ID, 10)
		}
	}
	return f
}

// Input is validated post data ready to persist.
type Input struct {
	Text    string
	GroupID *int64
}

// ValidateForm checks raw text and group fields without touching posts.
// Text is trimmed and must not be empty. Group is optional; when present it
// must be the id of an existing group.
func ValidateForm(ctx context.Context, groups GroupLookup, text, group string) (Input, error) {
	errs := FormErrors{}
	in := Input{Text: strings.TrimSpace(text)}
	if in.Text == "" {
		errs.Add("text", MsgTextRequired)
	}

	if group = strings.TrimSpace(group); group != "" {
		id, err := strconv.ParseInt(group, 10, 64)
		if err != nil {
			errs.Add("group", MsgInvalidGroup)
		} else if _, err := groups.GetGroupByID(ctx, id); err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				return Input{}, err
			}
			errs.Add("group", MsgInvalidGroup)
		} else {
			in.GroupID = &id
		}
	}

	if len(errs) > 0 {
		return Input{}, &ValidationError{Fields: errs}
	}
	return in, nil
}
