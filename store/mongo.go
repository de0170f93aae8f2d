package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"blogd/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps one document per user in the users collection, with the
// user's posts embedded as an array.
type MongoStore struct {
	client *mongo.Client
	users  *mongo.Collection
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	Phone        *string            `bson:"phone"`
	Education    *string            `bson:"education"`
	Occupation   *string            `bson:"occupation"`
	ProfileImage *string            `bson:"profileImage"`
	CreatedAt    time.Time          `bson:"createdAt"`
	Posts        []models.Post      `bson:"posts"`
}

func (d *userDocument) toModel() *models.User {
	u := &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Phone:        d.Phone,
		Education:    d.Education,
		Occupation:   d.Occupation,
		ProfileImage: d.ProfileImage,
		CreatedAt:    d.CreatedAt,
		Posts:        d.Posts,
	}
	if u.Posts == nil {
		u.Posts = []models.Post{}
	}
	for i := range u.Posts {
		u.Posts[i].Normalize()
	}
	return u
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		users:  client.Database(database).Collection("users"),
	}
}

func (s *MongoStore) Name() string { return "mongo" }

func (s *MongoStore) NewID() string { return primitive.NewObjectID().Hex() }

func (s *MongoStore) ValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		Password:     u.PasswordHash,
		Phone:        u.Phone,
		Education:    u.Education,
		Occupation:   u.Occupation,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
		Posts:        []models.Post{},
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}
	return doc.ID.Hex(), nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDocument
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc userDocument
	err = s.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) AppendPost(ctx context.Context, userID string, p models.Post) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}

	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{"posts": p}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrNotModified
	}
	return nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, userID, postID string, patch PostPatch) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}

	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid, "posts.postId": postID},
		bson.M{"$set": bson.M{
			"posts.$.title":     patch.Title,
			"posts.$.content":   patch.Content,
			"posts.$.image":     patch.Image,
			"posts.$.updatedAt": patch.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return s.missingUserOrPost(ctx, oid)
	}
	return nil
}

func (s *MongoStore) RemovePost(ctx context.Context, userID, postID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidID
	}

	result, err := s.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"posts": bson.M{"postId": postID}}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoStore) AllPosts(ctx context.Context) ([]models.Post, error) {
	return s.aggregatePosts(ctx, nil)
}

func (s *MongoStore) SearchPosts(ctx context.Context, title string) ([]models.Post, error) {
	match := bson.D{{Key: "title", Value: bson.D{
		{Key: "$regex", Value: regexp.QuoteMeta(title)},
		{Key: "$options", Value: "i"},
	}}}
	return s.aggregatePosts(ctx, match)
}

// aggregatePosts flattens the embedded posts of every user into one stream,
// optionally filtered after flattening.
func (s *MongoStore) aggregatePosts(ctx context.Context, match bson.D) ([]models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$posts"}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$posts"}}}},
	}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	cursor, err := s.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts, nil
}

func (s *MongoStore) FindPost(ctx context.Context, postID string) (*models.Post, error) {
	var doc struct {
		Posts []models.Post `bson:"posts"`
	}
	err := s.users.FindOne(ctx,
		bson.M{"posts.postId": postID},
		options.FindOne().SetProjection(bson.M{"posts.$": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(doc.Posts) == 0 {
		return nil, ErrPostNotFound
	}
	p := doc.Posts[0]
	p.Normalize()
	return &p, nil
}

func (s *MongoStore) AppendComment(ctx context.Context, postID string, c models.Comment) error {
	result, err := s.users.UpdateOne(ctx,
		bson.M{"posts.postId": postID},
		bson.M{"$push": bson.M{"posts.$.comments": c}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrPostNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrNotModified
	}
	return nil
}

// AppendReply targets the comment by both the post id and the comment id
// through array filters, so replies never land on a sibling comment.
func (s *MongoStore) AppendReply(ctx context.Context, postID, commentID string, r models.Reply) error {
	filter := bson.M{"posts": bson.M{"$elemMatch": bson.M{
		"postId":             postID,
		"comments.commentId": commentID,
	}}}
	update := bson.M{"$push": bson.M{"posts.$[post].comments.$[comment].replies": r}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"post.postId": postID},
			bson.M{"comment.commentId": commentID},
		},
	})

	result, err := s.users.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		n, err := s.users.CountDocuments(ctx, bson.M{"posts.postId": postID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrPostNotFound
		}
		return ErrCommentNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrNotModified
	}
	return nil
}

// ToggleReaction runs as two guarded single-document updates. The first one
// removes the user from their own set when present; otherwise the second one
// adds the user to their own set and pulls them from the opposite set in the
// same update, so the sets stay disjoint under concurrent toggles.
func (s *MongoStore) ToggleReaction(ctx context.Context, postID, userID string, r models.Reaction) (*models.Post, error) {
	own, other := "likedBy", "dislikedBy"
	if r == models.ReactionDislike {
		own, other = other, own
	}

	result, err := s.users.UpdateOne(ctx,
		bson.M{"posts": bson.M{"$elemMatch": bson.M{"postId": postID, own: userID}}},
		bson.M{"$pull": bson.M{"posts.$." + own: userID}},
	)
	if err != nil {
		return nil, err
	}

	if result.ModifiedCount == 0 {
		_, err = s.users.UpdateOne(ctx,
			bson.M{"posts": bson.M{"$elemMatch": bson.M{
				"postId": postID,
				own:      bson.M{"$ne": userID},
			}}},
			bson.M{
				"$addToSet": bson.M{"posts.$." + own: userID},
				"$pull":     bson.M{"posts.$." + other: userID},
			},
		)
		if err != nil {
			return nil, err
		}
	}

	return s.FindPost(ctx, postID)
}

func (s *MongoStore) AddView(ctx context.Context, postID, userID string) (*models.Post, error) {
	_, err := s.users.UpdateOne(ctx,
		bson.M{"posts": bson.M{"$elemMatch": bson.M{
			"postId":   postID,
			"viewedBy": bson.M{"$ne": userID},
		}}},
		bson.M{"$addToSet": bson.M{"posts.$.viewedBy": userID}},
	)
	if err != nil {
		return nil, err
	}
	return s.FindPost(ctx, postID)
}

// Migrate creates the unique email index and the index used to locate a
// post across all user documents.
func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{
			Keys:    bson.D{{Key: "posts.postId", Value: 1}},
			Options: options.Index().SetName("posts_post_id"),
		},
	})
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) missingUserOrPost(ctx context.Context, oid primitive.ObjectID) error {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return ErrPostNotFound
}
