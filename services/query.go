package services

import (
	"context"
	"math/rand/v2"

	"blogd/models"
	"blogd/store"
)

const DefaultListLimit = 10

// QueryService answers read-only questions across every user's posts.
type QueryService struct {
	store   store.Store
	shuffle func(n int, swap func(i, j int))
}

func NewQueryService(st store.Store) *QueryService {
	return &QueryService{store: st, shuffle: rand.Shuffle}
}

// ListRandom returns up to limit posts sampled uniformly from all posts.
// Every call samples again.
func (s *QueryService) ListRandom(ctx context.Context, limit int) ([]models.Post, error) {
	posts, err := s.store.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return s.sample(posts, limit), nil
}

// SearchByTitle samples up to limit posts whose title contains query,
// ignoring case. The query is matched as given; only an empty query behaves
// like ListRandom.
func (s *QueryService) SearchByTitle(ctx context.Context, query string, limit int) ([]models.Post, error) {
	if query == "" {
		return s.ListRandom(ctx, limit)
	}
	posts, err := s.store.SearchPosts(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.sample(posts, limit), nil
}

func (s *QueryService) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	p, err := s.store.FindPost(ctx, postID)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *QueryService) sample(posts []models.Post, limit int) []models.Post {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	s.shuffle(len(posts), func(i, j int) { posts[i], posts[j] = posts[j], posts[i] })
	if len(posts) > limit {
		posts = posts[:limit]
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts
}
