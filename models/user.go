package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Phone        *string   `json:"phone"`
	Education    *string   `json:"education"`
	Occupation   *string   `json:"occupation"`
	ProfileImage *string   `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	Posts        []Post    `json:"posts"`
}

// UserView is the public profile; it never carries the password hash.
type UserView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        *string `json:"phone"`
	Education    *string `json:"education"`
	Occupation   *string `json:"occupation"`
	ProfileImage *string `json:"profileImage"`
	Posts        []Post  `json:"posts"`
}

func (u *User) View() UserView {
	posts := u.Posts
	if posts == nil {
		posts = []Post{}
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return UserView{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Education:    u.Education,
		Occupation:   u.Occupation,
		ProfileImage: u.ProfileImage,
		Posts:        posts,
	}
}
