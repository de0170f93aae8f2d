package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"blogd/models"
	"blogd/store"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name         string `validate:"required"`
	Email        string `validate:"required"`
	Password     string `validate:"required"`
	Phone        *string
	Education    *string
	Occupation   *string
	ProfileImage *string
}

type IdentityService struct {
	store    store.Store
	hasher   Hasher
	validate *validator.Validate
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewIdentityService(st store.Store, hasher Hasher) *IdentityService {
	return &IdentityService{
		store:    st,
		hasher:   hasher,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register stores a new user and returns its id. Only the password hash is
// persisted.
func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return "", registerValidationError(err)
	}

	if _, err := s.store.FindUserByEmail(ctx, in.Email); err == nil {
		return "", newError(ErrConflict, "User already exists")
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return "", err
	}

	hashed, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", newError(ErrValidation, "Password is too long")
	}
	if err != nil {
		return "", err
	}

	id, err := s.store.CreateUser(ctx, &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Phone:        in.Phone,
		Education:    in.Education,
		Occupation:   in.Occupation,
		ProfileImage: in.ProfileImage,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return "", translate(err)
	}
	return id, nil
}

// Authenticate returns the id of the user owning email when password
// matches. Unknown email and wrong password fail with the same error.
func (s *IdentityService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", newError(ErrValidation, "Missing email or password")
	}

	u, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		// Spend the same hashing work as a real check.
		s.hasher.Verify(s.dummy(), password)
		return "", newError(ErrAuth, "Invalid email or password")
	}
	if err != nil {
		return "", err
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		return "", newError(ErrAuth, "Invalid email or password")
	}
	return u.ID, nil
}

func (s *IdentityService) GetProfile(ctx context.Context, userID string) (models.UserView, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	return u.View(), nil
}

// lookup resolves a user id, distinguishing a malformed id from an absent one.
func (s *IdentityService) lookup(ctx context.Context, userID string) (*models.User, error) {
	if !s.store.ValidID(userID) {
		return nil, newError(ErrInvalidID, "Invalid user ID format")
	}
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (s *IdentityService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}

func registerValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return newError(ErrValidation, "Missing required fields: name, email, and password")
	}
	return err
}
