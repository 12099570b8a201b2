package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	uuid "github.com/gofrs/uuid"
)

// Post is a content record with its nested like and comment collections.
// Likes and Comments are kept newest-first.
type Post struct {
	ObjectId    uuid.UUID `json:"objectId" db:"id"`
	OwnerUserId uuid.UUID `json:"ownerUserId" db:"owner_user_id"`
	Text        string    `json:"text" db:"text"`
	Name        string    `json:"name" db:"name"`
	Avatar      string    `json:"avatar" db:"avatar"`
	Likes       Likes     `json:"likes" db:"likes"`
	Comments    Comments  `json:"comments" db:"comments"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Like records that a user liked a post.
type Like struct {
	User uuid.UUID `json:"user"`
}

// Comment is a single entry of a post's comment collection.
type Comment struct {
	ObjectId  uuid.UUID `json:"objectId"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	User      uuid.UUID `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasLiked reports whether userID is present in the post's likes.
func (p *Post) HasLiked(userID uuid.UUID) bool {
	return p.Likes.IndexOf(userID) >= 0
}

// CommentIndex returns the position of the comment with commentID, or -1.
func (p *Post) CommentIndex(commentID uuid.UUID) int {
	for i, c := range p.Comments {
		if c.ObjectId == commentID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so callers can mutate collections freely.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	out := *p
	out.Likes = append(Likes{}, p.Likes...)
	out.Comments = append(Comments{}, p.Comments...)
	return &out
}

// Normalize replaces nil collections with empty ones so they encode as [].
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = Likes{}
	}
	if p.Comments == nil {
		p.Comments = Comments{}
	}
}

// Likes is the newest-first like collection, stored as JSONB in PostgreSQL.
type Likes []Like

// IndexOf returns the position of userID's like, or -1.
func (l Likes) IndexOf(userID uuid.UUID) int {
	for i, like := range l {
		if like.User == userID {
			return i
		}
	}
	return -1
}

// Value implements driver.Valuer interface
func (l Likes) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner interface
func (l *Likes) Scan(value interface{}) error {
	return scanJSONArray(value, l)
}

// Comments is the newest-first comment collection, stored as JSONB in PostgreSQL.
type Comments []Comment

// Value implements driver.Valuer interface
func (c Comments) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner interface
func (c *Comments) Scan(value interface{}) error {
	return scanJSONArray(value, c)
}

func scanJSONArray(value interface{}, dest interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		data = []byte("[]")
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(data, dest)
}
