package models

import (
	"slices"
	"time"
)

// Reaction is one user's engagement state on a post.
type Reaction string

const (
	ReactionNone    Reaction = "none"
	ReactionLike    Reaction = "liked"
	ReactionDislike Reaction = "disliked"
)

// Post is embedded inside the owning user's document. Likes, Dislikes and
// Views are never stored; they always mirror the size of their sets.
type Post struct {
	PostID     string     `bson:"postId" json:"postId"`
	Title      string     `bson:"title" json:"title"`
	Content    string     `bson:"content" json:"content"`
	Image      *string    `bson:"image" json:"image"`
	Timestamp  time.Time  `bson:"timestamp" json:"timestamp"`
	UpdatedAt  *time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
	Author     string     `bson:"author" json:"author"`
	Likes      int        `bson:"-" json:"likes"`
	Dislikes   int        `bson:"-" json:"dislikes"`
	Views      int        `bson:"-" json:"views"`
	LikedBy    []string   `bson:"likedBy" json:"likedBy"`
	DislikedBy []string   `bson:"dislikedBy" json:"dislikedBy"`
	ViewedBy   []string   `bson:"viewedBy" json:"viewedBy"`
	Comments   []Comment  `bson:"comments" json:"comments"`
}

type Comment struct {
	CommentID string    `bson:"commentId" json:"commentId"`
	Commenter string    `bson:"commenter" json:"commenter"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Replies   []Reply   `bson:"replies" json:"replies"`
}

type Reply struct {
	ReplyID        string    `bson:"replyId" json:"replyId"`
	ReplyCommenter string    `bson:"replyCommenter" json:"replyCommenter"`
	ReplyContent   string    `bson:"replyContent" json:"replyContent"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// NewPost builds a post with every set initialized so array updates on the
// stored document never hit a null field.
func NewPost(id, title, content string, image *string, author string, now time.Time) Post {
	return Post{
		PostID:     id,
		Title:      title,
		Content:    content,
		Image:      image,
		Timestamp:  now,
		Author:     author,
		LikedBy:    []string{},
		DislikedBy: []string{},
		ViewedBy:   []string{},
		Comments:   []Comment{},
	}
}

func NewComment(id, commenter, content string, now time.Time) Comment {
	return Comment{
		CommentID: id,
		Commenter: commenter,
		Content:   content,
		Timestamp: now,
		Replies:   []Reply{},
	}
}

// Normalize replaces nil collections with empty ones and recomputes the
// derived counters. Stores call it on every post they hand out.
func (p *Post) Normalize() {
	if p.LikedBy == nil {
		p.LikedBy = []string{}
	}
	if p.DislikedBy == nil {
		p.DislikedBy = []string{}
	}
	if p.ViewedBy == nil {
		p.ViewedBy = []string{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	for i := range p.Comments {
		if p.Comments[i].Replies == nil {
			p.Comments[i].Replies = []Reply{}
		}
	}
	p.Likes = len(p.LikedBy)
	p.Dislikes = len(p.DislikedBy)
	p.Views = len(p.ViewedBy)
}

// ReactionOf reports the engagement state of userID on the post.
func (p *Post) ReactionOf(userID string) Reaction {
	switch {
	case slices.Contains(p.LikedBy, userID):
		return ReactionLike
	case slices.Contains(p.DislikedBy, userID):
		return ReactionDislike
	default:
		return ReactionNone
	}
}

// Toggle applies a like or dislike toggle for userID. Toggling the current
// state clears it; toggling the opposite state moves the user across sets.
func (p *Post) Toggle(userID string, r Reaction) {
	own, other := &p.LikedBy, &p.DislikedBy
	if r == ReactionDislike {
		own, other = other, own
	}
	if slices.Contains(*own, userID) {
		*own = remove(*own, userID)
	} else {
		*own = append(*own, userID)
		*other = remove(*other, userID)
	}
	p.Normalize()
}

// View records userID as a viewer. It reports false when the user had
// already viewed the post.
func (p *Post) View(userID string) bool {
	if slices.Contains(p.ViewedBy, userID) {
		return false
	}
	p.ViewedBy = append(p.ViewedBy, userID)
	p.Normalize()
	return true
}

// CommentIndex returns the position of the comment with the given id, or -1.
func (p *Post) CommentIndex(commentID string) int {
	return slices.IndexFunc(p.Comments, func(c Comment) bool { return c.CommentID == commentID })
}

// Clone returns a deep copy of the post.
func (p Post) Clone() Post {
	out := p
	out.LikedBy = slices.Clone(p.LikedBy)
	out.DislikedBy = slices.Clone(p.DislikedBy)
	out.ViewedBy = slices.Clone(p.ViewedBy)
	if p.Image != nil {
		img := *p.Image
		out.Image = &img
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		out.UpdatedAt = &t
	}
	out.Comments = make([]Comment, len(p.Comments))
	for i, c := range p.Comments {
		c.Replies = slices.Clone(c.Replies)
		out.Comments[i] = c
	}
	return out
}

// Engagement is the like/dislike/view summary returned by toggle and view
// operations.
type Engagement struct {
	PostID     string   `json:"postId"`
	Likes      int      `json:"likes"`
	Dislikes   int      `json:"dislikes"`
	Views      int      `json:"views"`
	LikedBy    []string `json:"likedBy"`
	DislikedBy []string `json:"dislikedBy"`
	State      Reaction `json:"state"`
}

// EngagementFor summarizes the post from userID's point of view.
func (p *Post) EngagementFor(userID string) Engagement {
	p.Normalize()
	return Engagement{
		PostID:     p.PostID,
		Likes:      p.Likes,
		Dislikes:   p.Dislikes,
		Views:      p.Views,
		LikedBy:    p.LikedBy,
		DislikedBy: p.DislikedBy,
		State:      p.ReactionOf(userID),
	}
}

func remove(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}
