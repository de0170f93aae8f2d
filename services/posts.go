package services

import (
	"context"
	"strings"
	"time"

	"blogd/models"
	"blogd/store"
)

type PostInput struct {
	Title   string
	Content string
	Image   *string
}

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return newError(ErrValidation, "Title and content are required")
	}
	return nil
}

// PostService owns the lifecycle of posts embedded in a user document.
type PostService struct {
	store    store.Store
	identity *IdentityService
	now      func() time.Time
}

func NewPostService(st store.Store, identity *IdentityService) *PostService {
	return &PostService{
		store:    st,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost appends a new post to the user's document. The author name is
// copied from the user at this moment and never refreshed.
func (s *PostService) CreatePost(ctx context.Context, userID string, in PostInput) (string, error) {
	u, err := s.identity.lookup(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := in.validate(); err != nil {
		return "", err
	}

	post := models.NewPost(s.store.NewID(), in.Title, in.Content, normalizeImage(in.Image), u.Name, s.now())
	if err := s.store.AppendPost(ctx, u.ID, post); err != nil {
		return "", translate(err)
	}
	return post.PostID, nil
}

// UpdatePost rewrites title, content and image of a post owned by userID.
// Author, timestamp, engagement and comments are left as they are.
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, in PostInput) error {
	if !s.store.ValidID(userID) {
		return newError(ErrInvalidID, "Invalid user ID format")
	}
	if err := in.validate(); err != nil {
		return err
	}

	err := s.store.UpdatePost(ctx, userID, postID, store.PostPatch{
		Title:     in.Title,
		Content:   in.Content,
		Image:     normalizeImage(in.Image),
		UpdatedAt: s.now(),
	})
	return translate(err)
}

// DeletePost removes the post and its whole comment subtree. Only the owning
// user id can delete a post.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	if !s.store.ValidID(userID) {
		return newError(ErrInvalidID, "Invalid user ID format")
	}
	return translate(s.store.RemovePost(ctx, userID, postID))
}

func normalizeImage(image *string) *string {
	if image == nil || strings.TrimSpace(*image) == "" {
		return nil
	}
	return image
}
