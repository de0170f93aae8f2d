package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"blogd/models"

	"github.com/google/uuid"
)

// MemoryStore keeps user documents in process memory. A single mutex plays
// the role of the document store's per-document atomic update.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*models.User)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) NewID() string { return uuid.NewString() }

func (s *MemoryStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return "", ErrDuplicateEmail
		}
	}

	doc := *u
	doc.ID = s.NewID()
	doc.Posts = []models.Post{}
	s.users[doc.ID] = &doc
	s.order = append(s.order, doc.ID)
	return doc.ID, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.order {
		if u := s.users[id]; u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) FindUserByID(_ context.Context, id string) (*models.User, error) {
	if !s.ValidID(id) {
		return nil, ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) AppendPost(_ context.Context, userID string, p models.Post) error {
	if !s.ValidID(userID) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Posts = append(u.Posts, p.Clone())
	return nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, userID, postID string, patch PostPatch) error {
	if !s.ValidID(userID) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	i := postIndex(u.Posts, postID)
	if i < 0 {
		return ErrPostNotFound
	}
	p := &u.Posts[i]
	p.Title = patch.Title
	p.Content = patch.Content
	p.Image = patch.Image
	at := patch.UpdatedAt
	p.UpdatedAt = &at
	return nil
}

func (s *MemoryStore) RemovePost(_ context.Context, userID, postID string) error {
	if !s.ValidID(userID) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	i := postIndex(u.Posts, postID)
	if i < 0 {
		return ErrPostNotFound
	}
	u.Posts = slices.Delete(u.Posts, i, i+1)
	return nil
}

func (s *MemoryStore) AllPosts(_ context.Context) ([]models.Post, error) {
	return s.collect(func(models.Post) bool { return true }), nil
}

func (s *MemoryStore) SearchPosts(_ context.Context, title string) ([]models.Post, error) {
	q := strings.ToLower(title)
	return s.collect(func(p models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), q)
	}), nil
}

func (s *MemoryStore) FindPost(_ context.Context, postID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.locate(postID)
	if p == nil {
		return nil, ErrPostNotFound
	}
	out := p.Clone()
	out.Normalize()
	return &out, nil
}

func (s *MemoryStore) AppendComment(_ context.Context, postID string, c models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.locate(postID)
	if p == nil {
		return ErrPostNotFound
	}
	c.Replies = slices.Clone(c.Replies)
	p.Comments = append(p.Comments, c)
	return nil
}

func (s *MemoryStore) AppendReply(_ context.Context, postID, commentID string, r models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.locate(postID)
	if p == nil {
		return ErrPostNotFound
	}
	i := p.CommentIndex(commentID)
	if i < 0 {
		return ErrCommentNotFound
	}
	p.Comments[i].Replies = append(p.Comments[i].Replies, r)
	return nil
}

func (s *MemoryStore) ToggleReaction(_ context.Context, postID, userID string, r models.Reaction) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.locate(postID)
	if p == nil {
		return nil, ErrPostNotFound
	}
	p.Toggle(userID, r)
	out := p.Clone()
	return &out, nil
}

func (s *MemoryStore) AddView(_ context.Context, postID, userID string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.locate(postID)
	if p == nil {
		return nil, ErrPostNotFound
	}
	p.View(userID)
	out := p.Clone()
	out.Normalize()
	return &out, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }

// locate must be called with s.mu held.
func (s *MemoryStore) locate(postID string) *models.Post {
	for _, id := range s.order {
		u := s.users[id]
		if i := postIndex(u.Posts, postID); i >= 0 {
			return &u.Posts[i]
		}
	}
	return nil
}

func (s *MemoryStore) collect(match func(models.Post) bool) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Post{}
	for _, id := range s.order {
		for _, p := range s.users[id].Posts {
			if match(p) {
				c := p.Clone()
				c.Normalize()
				out = append(out, c)
			}
		}
	}
	return out
}

func postIndex(posts []models.Post, postID string) int {
	return slices.IndexFunc(posts, func(p models.Post) bool { return p.PostID == postID })
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.Posts = make([]models.Post, len(u.Posts))
	for i, p := range u.Posts {
		out.Posts[i] = p.Clone()
		out.Posts[i].Normalize()
	}
	return &out
}
