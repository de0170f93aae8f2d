// Package store holds the persistence backends for user documents and their
// embedded posts. Every mutating method is a single atomic update of one user
// document (or one SQL transaction for the relational backend).
package store

import (
	"context"
	"errors"
	"time"

	"blogd/models"
)

var (
	ErrInvalidID       = errors.New("invalid id format")
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrNotModified     = errors.New("no document modified")
)

// PostPatch carries the editable fields of a post.
type PostPatch struct {
	Title     string
	Content   string
	Image     *string
	UpdatedAt time.Time
}

type Store interface {
	// NewID returns a fresh identifier in the backend's native format.
	NewID() string
	// ValidID reports whether id is syntactically a user identifier.
	ValidID(id string) bool

	CreateUser(ctx context.Context, u *models.User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)

	AppendPost(ctx context.Context, userID string, p models.Post) error
	UpdatePost(ctx context.Context, userID, postID string, patch PostPatch) error
	RemovePost(ctx context.Context, userID, postID string) error

	AllPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, title string) ([]models.Post, error)
	FindPost(ctx context.Context, postID string) (*models.Post, error)

	AppendComment(ctx context.Context, postID string, c models.Comment) error
	AppendReply(ctx context.Context, postID, commentID string, r models.Reply) error
	ToggleReaction(ctx context.Context, postID, userID string, r models.Reaction) (*models.Post, error)
	AddView(ctx context.Context, postID, userID string) (*models.Post, error)

	// Migrate creates indexes or tables the backend relies on.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
	Name() string
}
