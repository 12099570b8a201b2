// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/qolzam/devconnector/internal/database/mongodb"
	"github.com/qolzam/devconnector/posts/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostCollectionName is the MongoDB collection holding posts.
const PostCollectionName = "posts"

// postDocument is the stored form of a post. Identifiers are kept as
// canonical UUID strings so they stay readable and comparable in queries.
type postDocument struct {
	ObjectId    string            `bson:"objectId"`
	OwnerUserId string            `bson:"ownerUserId"`
	Text        string            `bson:"text"`
	Name        string            `bson:"name"`
	Avatar      string            `bson:"avatar"`
	Likes       []likeDocument    `bson:"likes"`
	Comments    []commentDocument `bson:"comments"`
	CreatedAt   time.Time         `bson:"createdAt"`
}

type likeDocument struct {
	User string `bson:"user"`
}

type commentDocument struct {
	ObjectId  string    `bson:"objectId"`
	Text      string    `bson:"text"`
	Name      string    `bson:"name"`
	Avatar    string    `bson:"avatar"`
	User      string    `bson:"user"`
	CreatedAt time.Time `bson:"createdAt"`
}

// mongoRepository implements PostRepository on a MongoDB collection
type mongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a MongoDB repository for posts
func NewMongoRepository(client *mongodb.Client) PostRepository {
	return &mongoRepository{collection: client.Collection(PostCollectionName)}
}

// EnsureMongoIndexes creates the unique id index and the listing index.
func EnsureMongoIndexes(ctx context.Context, client *mongodb.Client) error {
	_, err := client.Collection(PostCollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "objectId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "objectId", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "ownerUserId", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	return nil
}

func (r *mongoRepository) Create(ctx context.Context, post *models.Post) error {
	if _, err := r.collection.InsertOne(ctx, toDocument(post)); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var doc postDocument
	err := r.collection.FindOne(ctx, bson.M{"objectId": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return fromDocument(&doc)
}

func (r *mongoRepository) Find(ctx context.Context, filter models.PostQueryFilter) ([]*models.Post, error) {
	query := bson.M{}
	if filter.Owner != nil {
		query["ownerUserId"] = filter.Owner.String()
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "objectId", Value: -1}})
	if filter.Limit > 0 {
		findOptions.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	result := make([]*models.Post, 0, len(docs))
	for i := range docs {
		post, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"objectId": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) AddLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	filter := bson.M{
		"objectId":   postID.String(),
		"likes.user": bson.M{"$ne": userID.String()},
	}
	update := bson.M{"$push": bson.M{"likes": bson.M{
		"$each":     bson.A{likeDocument{User: userID.String()}},
		"$position": 0,
	}}}
	return r.conditionalUpdate(ctx, postID, filter, update)
}

func (r *mongoRepository) RemoveLike(ctx context.Context, postID, userID uuid.UUID) (*models.Post, error) {
	filter := bson.M{
		"objectId":   postID.String(),
		"likes.user": userID.String(),
	}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID.String()}}}
	return r.conditionalUpdate(ctx, postID, filter, update)
}

func (r *mongoRepository) AddComment(ctx context.Context, postID uuid.UUID, comment models.Comment) (*models.Post, error) {
	filter := bson.M{"objectId": postID.String()}
	update := bson.M{"$push": bson.M{"comments": bson.M{
		"$each":     bson.A{toCommentDocument(comment)},
		"$position": 0,
	}}}
	return r.conditionalUpdate(ctx, postID, filter, update)
}

func (r *mongoRepository) RemoveComment(ctx context.Context, postID, commentID uuid.UUID) (*models.Post, error) {
	filter := bson.M{
		"objectId":          postID.String(),
		"comments.objectId": commentID.String(),
	}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"objectId": commentID.String()}}}
	return r.conditionalUpdate(ctx, postID, filter, update)
}

// conditionalUpdate applies update atomically to the document matching
// filter and returns the post after the update.
func (r *mongoRepository) conditionalUpdate(ctx context.Context, postID uuid.UUID, filter, update bson.M) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc postDocument
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return fromDocument(&doc)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"objectId": postID.String()}, options.Count().SetLimit(1))
	if err != nil {
		return nil, fmt.Errorf("failed to check post existence: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConditionNotMet
}

func toDocument(post *models.Post) *postDocument {
	doc := &postDocument{
		ObjectId:    post.ObjectId.String(),
		OwnerUserId: post.OwnerUserId.String(),
		Text:        post.Text,
		Name:        post.Name,
		Avatar:      post.Avatar,
		Likes:       make([]likeDocument, 0, len(post.Likes)),
		Comments:    make([]commentDocument, 0, len(post.Comments)),
		CreatedAt:   post.CreatedAt,
	}
	for _, like := range post.Likes {
		doc.Likes = append(doc.Likes, likeDocument{User: like.User.String()})
	}
	for _, comment := range post.Comments {
		doc.Comments = append(doc.Comments, toCommentDocument(comment))
	}
	return doc
}

func toCommentDocument(c models.Comment) commentDocument {
	return commentDocument{
		ObjectId:  c.ObjectId.String(),
		Text:      c.Text,
		Name:      c.Name,
		Avatar:    c.Avatar,
		User:      c.User.String(),
		CreatedAt: c.CreatedAt,
	}
}

func fromDocument(doc *postDocument) (*models.Post, error) {
	id, err := uuid.FromString(doc.ObjectId)
	if err != nil {
		return nil, fmt.Errorf("corrupt post id %q: %w", doc.ObjectId, err)
	}
	owner, err := uuid.FromString(doc.OwnerUserId)
	if err != nil {
		return nil, fmt.Errorf("corrupt owner id on post %s: %w", doc.ObjectId, err)
	}

	post := &models.Post{
		ObjectId:    id,
		OwnerUserId: owner,
		Text:        doc.Text,
		Name:        doc.Name,
		Avatar:      doc.Avatar,
		Likes:       make(models.Likes, 0, len(doc.Likes)),
		Comments:    make(models.Comments, 0, len(doc.Comments)),
		CreatedAt:   doc.CreatedAt.UTC(),
	}
	for _, like := range doc.Likes {
		user, err := uuid.FromString(like.User)
		if err != nil {
			return nil, fmt.Errorf("corrupt like on post %s: %w", doc.ObjectId, err)
		}
		post.Likes = append(post.Likes, models.Like{User: user})
	}
	for _, c := range doc.Comments {
		commentID, err := uuid.FromString(c.ObjectId)
		if err != nil {
			return nil, fmt.Errorf("corrupt comment id on post %s: %w", doc.ObjectId, err)
		}
		user, err := uuid.FromString(c.User)
		if err != nil {
			return nil, fmt.Errorf("corrupt comment user on post %s: %w", doc.ObjectId, err)
		}
		post.Comments = append(post.Comments, models.Comment{
			ObjectId:  commentID,
			Text:      c.Text,
			Name:      c.Name,
			Avatar:    c.Avatar,
			User:      user,
			CreatedAt: c.CreatedAt.UTC(),
		})
	}
	return post, nil
}
