// Package services implements the blog operations on top of a store.Store.
package services

import "blogd/store"

// Services bundles every service built over one shared store handle.
type Services struct {
	Identity   *IdentityService
	Posts      *PostService
	Query      *QueryService
	Engagement *EngagementService
}

func New(st store.Store, hasher Hasher) *Services {
	identity := NewIdentityService(st, hasher)
	return &Services{
		Identity:   identity,
		Posts:      NewPostService(st, identity),
		Query:      NewQueryService(st),
		Engagement: NewEngagementService(st, identity),
	}
}
