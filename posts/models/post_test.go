package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost_HasLikedAndCommentIndex(t *testing.T) {
	u1 := uuid.Must(uuid.NewV4())
	u2 := uuid.Must(uuid.NewV4())
	c1 := uuid.Must(uuid.NewV4())
	c2 := uuid.Must(uuid.NewV4())

	post := &Post{
		Likes:    Likes{{User: u1}},
		Comments: Comments{{ObjectId: c2}, {ObjectId: c1}},
	}

	assert.True(t, post.HasLiked(u1))
	assert.False(t, post.HasLiked(u2))
	assert.Equal(t, 1, post.CommentIndex(c1))
	assert.Equal(t, 0, post.CommentIndex(c2))
	assert.Equal(t, -1, post.CommentIndex(uuid.Must(uuid.NewV4())))
}

func TestPost_CloneIsIndependent(t *testing.T) {
	u1 := uuid.Must(uuid.NewV4())
	post := &Post{Likes: Likes{{User: u1}}, Comments: Comments{{Text: "original text"}}}

	clone := post.Clone()
	clone.Likes = append(Likes{{User: uuid.Must(uuid.NewV4())}}, clone.Likes...)
	clone.Comments[0].Text = "changed"

	assert.Len(t, post.Likes, 1)
	assert.Equal(t, "original text", post.Comments[0].Text)
	assert.Nil(t, (*Post)(nil).Clone())
}

func TestPost_JSONShape(t *testing.T) {
	post := &Post{
		ObjectId:    uuid.Must(uuid.NewV4()),
		OwnerUserId: uuid.Must(uuid.NewV4()),
		Text:        "hello world, this is a post",
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	post.Normalize()

	data, err := json.Marshal(post)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, post.ObjectId.String(), raw["objectId"])
	assert.Equal(t, post.OwnerUserId.String(), raw["ownerUserId"])
	assert.Equal(t, []interface{}{}, raw["likes"])
	assert.Equal(t, []interface{}{}, raw["comments"])
	assert.Equal(t, "2024-01-02T03:04:05Z", raw["createdAt"])
}

func TestLikesAndComments_SQLValues(t *testing.T) {
	u1 := uuid.Must(uuid.NewV4())

	v, err := Likes{{User: u1}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"user":"`+u1.String()+`"}]`, string(v.([]byte)))

	v, err = Likes(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var likes Likes
	require.NoError(t, likes.Scan([]byte(`[{"user":"`+u1.String()+`"}]`)))
	assert.Equal(t, Likes{{User: u1}}, likes)

	var comments Comments
	require.NoError(t, comments.Scan(nil))
	assert.Empty(t, comments)
	assert.Error(t, comments.Scan(42))
}
