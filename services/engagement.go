package services

import (
	"context"
	"strings"
	"time"

	"blogd/models"
	"blogd/store"
)

// EngagementService handles comments, replies and the per-user like,
// dislike and view sets of a post.
type EngagementService struct {
	store    store.Store
	identity *IdentityService
	now      func() time.Time
}

func NewEngagementService(st store.Store, identity *IdentityService) *EngagementService {
	return &EngagementService{
		store:    st,
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// requirePost reports a missing post before the request body is looked at.
func (s *EngagementService) requirePost(ctx context.Context, postID string) error {
	if _, err := s.store.FindPost(ctx, postID); err != nil {
		return translate(err)
	}
	return nil
}

// AddComment appends a comment to the post. The commenter name comes from
// the acting user, never from the request.
func (s *EngagementService) AddComment(ctx context.Context, postID, actingUserID, content string) (models.Comment, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return models.Comment{}, err
	}
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, newError(ErrValidation, "Comment content is required")
	}
	u, err := s.identity.lookup(ctx, actingUserID)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.NewComment(s.store.NewID(), u.Name, content, s.now())
	if err := s.store.AppendComment(ctx, postID, comment); err != nil {
		return models.Comment{}, translate(err)
	}
	return comment, nil
}

// AddReply appends a reply to one comment of one post.
func (s *EngagementService) AddReply(ctx context.Context, postID, commentID, actingUserID, content string) (models.Reply, error) {
	if err := s.requirePost(ctx, postID); err != nil {
		return models.Reply{}, err
	}
	if commentID == "" || strings.TrimSpace(content) == "" {
		return models.Reply{}, newError(ErrValidation, "Comment ID and reply content are required")
	}
	u, err := s.identity.lookup(ctx, actingUserID)
	if err != nil {
		return models.Reply{}, err
	}

	reply := models.Reply{
		ReplyID:        s.store.NewID(),
		ReplyCommenter: u.Name,
		ReplyContent:   content,
		Timestamp:      s.now(),
	}
	if err := s.store.AppendReply(ctx, postID, commentID, reply); err != nil {
		return models.Reply{}, translate(err)
	}
	return reply, nil
}

// ToggleLike flips userID between liked and not liked. Liking clears an
// existing dislike.
func (s *EngagementService) ToggleLike(ctx context.Context, postID, userID string) (models.Engagement, error) {
	return s.toggle(ctx, postID, userID, models.ReactionLike)
}

// ToggleDislike flips userID between disliked and not disliked. Disliking
// clears an existing like.
func (s *EngagementService) ToggleDislike(ctx context.Context, postID, userID string) (models.Engagement, error) {
	return s.toggle(ctx, postID, userID, models.ReactionDislike)
}

func (s *EngagementService) toggle(ctx context.Context, postID, userID string, r models.Reaction) (models.Engagement, error) {
	if userID == "" {
		return models.Engagement{}, newError(ErrValidation, "User ID is required")
	}
	p, err := s.store.ToggleReaction(ctx, postID, userID, r)
	if err != nil {
		return models.Engagement{}, translate(err)
	}
	return p.EngagementFor(userID), nil
}

// AddView counts userID as a viewer at most once and returns the resulting
// view count.
func (s *EngagementService) AddView(ctx context.Context, postID, userID string) (int, error) {
	if userID == "" {
		return 0, newError(ErrValidation, "User ID is required")
	}
	p, err := s.store.AddView(ctx, postID, userID)
	if err != nil {
		return 0, translate(err)
	}
	p.Normalize()
	return p.Views, nil
}
