package domain

import "time"

type Rating struct {
	ID         string
	UserID     string
	RoomID     *string
	PropertyID *string
	Score      int
	Comment    *string
	CreatedAt  time.Time
}

// Subject is what a rating points at: exactly one room or one property.
type Subject struct {
	Kind SubjectKind
	ID   string
}

type SubjectKind string

const (
	SubjectRoom     SubjectKind = "room"
	SubjectProperty SubjectKind = "property"
)

// Subject returns the referenced subject. Call Validate first; it assumes
// exactly one reference is set.
func (r Rating) Subject() Subject {
	if r.RoomID != nil {
		return Subject{Kind: SubjectRoom, ID: *r.RoomID}
	}
	return Subject{Kind: SubjectProperty, ID: *r.PropertyID}
}

func (r Rating) Validate() error {
	if r.Score < 1 || r.Score > 5 {
		return ErrInvalidInput
	}
	if (r.RoomID == nil) == (r.PropertyID == nil) {
		return ErrInvalidInput
	}
	if r.RoomID != nil && *r.RoomID == "" {
		return ErrInvalidInput
	}
	if r.PropertyID != nil && *r.PropertyID == "" {
		return ErrInvalidInput
	}
	return nil
}
