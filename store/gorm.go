package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"blogd/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the relational backend. Posts, comments and replies live in
// their own tables keyed by foreign keys; each operation that the document
// backend performs as one update runs here as one transaction.
type GormStore struct {
	db *gorm.DB
}

type userRow struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Phone        *string
	Education    *string
	Occupation   *string
	ProfileImage *string
	CreatedAt    time.Time
	Posts        []postRow `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userRow) TableName() string { return "users" }

type postRow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"index;not null;type:varchar(36)"`
	Title     string `gorm:"not null"`
	Content   string `gorm:"not null"`
	Image     *string
	Author    string `gorm:"not null"`
	CreatedAt time.Time
	EditedAt  *time.Time
	Comments  []commentRow  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Reactions []reactionRow `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Views     []viewRow     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (postRow) TableName() string { return "posts" }

type commentRow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	PostID    string `gorm:"index;not null;type:varchar(36)"`
	Commenter string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
	Replies   []replyRow `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

func (commentRow) TableName() string { return "comments" }

type replyRow struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	CommentID string `gorm:"index;not null;type:varchar(36)"`
	Commenter string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt time.Time
}

func (replyRow) TableName() string { return "replies" }

// reactionRow holds at most one reaction per user and post, which keeps the
// like and dislike sets disjoint by construction.
type reactionRow struct {
	PostID    string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"primaryKey"`
	Kind      string `gorm:"not null"`
	CreatedAt time.Time
}

func (reactionRow) TableName() string { return "post_reactions" }

type viewRow struct {
	PostID    string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func (viewRow) TableName() string { return "post_views" }

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Name() string { return "postgres" }

func (s *GormStore) NewID() string { return uuid.NewString() }

func (s *GormStore) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	row := userRow{
		ID:           s.NewID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Education:    u.Education,
		Occupation:   u.Occupation,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}
	return row.ID, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if !s.ValidID(id) {
		return nil, ErrInvalidID
	}
	return s.findUser(ctx, "id = ?", id)
}

func (s *GormStore) findUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var row userRow
	err := s.preloadPosts(s.db.WithContext(ctx), "Posts.").
		Preload("Posts", orderByCreated).
		Where(query, arg).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	u := &models.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Phone:        row.Phone,
		Education:    row.Education,
		Occupation:   row.Occupation,
		ProfileImage: row.ProfileImage,
		CreatedAt:    row.CreatedAt,
		Posts:        make([]models.Post, 0, len(row.Posts)),
	}
	for _, p := range row.Posts {
		u.Posts = append(u.Posts, p.toModel())
	}
	return u, nil
}

func (s *GormStore) AppendPost(ctx context.Context, userID string, p models.Post) error {
	if !s.ValidID(userID) {
		return ErrInvalidID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").Take(&userRow{}, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		row := postRow{
			ID:        p.PostID,
			UserID:    userID,
			Title:     p.Title,
			Content:   p.Content,
			Image:     p.Image,
			Author:    p.Author,
			CreatedAt: p.Timestamp,
		}
		return tx.Omit(clause.Associations).Create(&row).Error
	})
}

func (s *GormStore) UpdatePost(ctx context.Context, userID, postID string, patch PostPatch) error {
	if !s.ValidID(userID) {
		return ErrInvalidID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&postRow{}).
			Where("id = ? AND user_id = ?", postID, userID).
			Updates(map[string]interface{}{
				"title":     patch.Title,
				"content":   patch.Content,
				"image":     patch.Image,
				"edited_at": patch.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.missingUserOrPost(tx, userID)
		}
		return nil
	})
}

func (s *GormStore) RemovePost(ctx context.Context, userID, postID string) error {
	if !s.ValidID(userID) {
		return ErrInvalidID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND user_id = ?", postID, userID).Delete(&postRow{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return s.missingUserOrPost(tx, userID)
		}
		return nil
	})
}

func (s *GormStore) AllPosts(ctx context.Context) ([]models.Post, error) {
	return s.findPosts(s.db.WithContext(ctx))
}

func (s *GormStore) SearchPosts(ctx context.Context, title string) ([]models.Post, error) {
	pattern := "%" + escapeLike(strings.ToLower(title)) + "%"
	return s.findPosts(s.db.WithContext(ctx).Where("LOWER(title) LIKE ?", pattern))
}

func (s *GormStore) findPosts(db *gorm.DB) ([]models.Post, error) {
	var rows []postRow
	if err := s.preloadPosts(db, "").Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, r.toModel())
	}
	return posts, nil
}

func (s *GormStore) FindPost(ctx context.Context, postID string) (*models.Post, error) {
	return s.findPost(s.db.WithContext(ctx), postID)
}

func (s *GormStore) findPost(db *gorm.DB, postID string) (*models.Post, error) {
	var row postRow
	err := s.preloadPosts(db, "").Take(&row, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

func (s *GormStore) AppendComment(ctx context.Context, postID string, c models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}
		row := commentRow{
			ID:        c.CommentID,
			PostID:    postID,
			Commenter: c.Commenter,
			Content:   c.Content,
			CreatedAt: c.Timestamp,
		}
		return tx.Omit(clause.Associations).Create(&row).Error
	})
}

func (s *GormStore) AppendReply(ctx context.Context, postID, commentID string, r models.Reply) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}
		err := tx.Select("id").Take(&commentRow{}, "id = ? AND post_id = ?", commentID, postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		if err != nil {
			return err
		}
		row := replyRow{
			ID:        r.ReplyID,
			CommentID: commentID,
			Commenter: r.ReplyCommenter,
			Content:   r.ReplyContent,
			CreatedAt: r.Timestamp,
		}
		return tx.Create(&row).Error
	})
}

func (s *GormStore) ToggleReaction(ctx context.Context, postID, userID string, r models.Reaction) (*models.Post, error) {
	var out *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}

		var existing reactionRow
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			err = tx.Create(&reactionRow{PostID: postID, UserID: userID, Kind: string(r)}).Error
		case err != nil:
		case existing.Kind == string(r):
			err = tx.Delete(&existing).Error
		default:
			err = tx.Model(&existing).Updates(map[string]interface{}{
				"kind":       string(r),
				"created_at": time.Now().UTC(),
			}).Error
		}
		if err != nil {
			return err
		}

		out, err = s.findPost(tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) AddView(ctx context.Context, postID, userID string) (*models.Post, error) {
	var out *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return err
		}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&viewRow{PostID: postID, UserID: userID}).Error
		if err != nil {
			return err
		}
		out, err = s.findPost(tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&userRow{},
		&postRow{},
		&commentRow{},
		&replyRow{},
		&reactionRow{},
		&viewRow{},
	)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// preloadPosts loads the subtree of a post relation rooted at prefix.
func (s *GormStore) preloadPosts(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix+"Comments", orderByCreated).
		Preload(prefix+"Comments.Replies", orderByCreated).
		Preload(prefix+"Reactions", orderByCreated).
		Preload(prefix+"Views", orderByCreated)
}

func (s *GormStore) missingUserOrPost(tx *gorm.DB, userID string) error {
	var n int64
	if err := tx.Model(&userRow{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return ErrPostNotFound
}

// lockPost takes a row lock on the post for the rest of the transaction.
func lockPost(tx *gorm.DB, postID string) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Take(&postRow{}, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPostNotFound
	}
	return err
}

func orderByCreated(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r postRow) toModel() models.Post {
	p := models.NewPost(r.ID, r.Title, r.Content, r.Image, r.Author, r.CreatedAt)
	p.UpdatedAt = r.EditedAt
	for _, re := range r.Reactions {
		switch models.Reaction(re.Kind) {
		case models.ReactionLike:
			p.LikedBy = append(p.LikedBy, re.UserID)
		case models.ReactionDislike:
			p.DislikedBy = append(p.DislikedBy, re.UserID)
		}
	}
	for _, v := range r.Views {
		p.ViewedBy = append(p.ViewedBy, v.UserID)
	}
	for _, c := range r.Comments {
		comment := models.NewComment(c.ID, c.Commenter, c.Content, c.CreatedAt)
		for _, rp := range c.Replies {
			comment.Replies = append(comment.Replies, models.Reply{
				ReplyID:        rp.ID,
				ReplyCommenter: rp.Commenter,
				ReplyContent:   rp.Content,
				Timestamp:      rp.CreatedAt,
			})
		}
		p.Comments = append(p.Comments, comment)
	}
	p.Normalize()
	return p
}
