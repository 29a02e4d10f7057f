package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrBadCredentials = errors.New("invalid username or password")

type StaffStore interface {
	Create(ctx context.Context, s *Staff) error
	GetByUsername(ctx context.Context, username string) (*Staff, error)
	List(ctx context.Context) ([]Staff, error)
	Deactivate(ctx context.Context, id string) error
}

type Service struct {
	Staff      StaffStore
	Tokens     *TokenMaker
	BcryptCost int
}

func (s *Service) Login(ctx context.Context, username, password string) (string, *Staff, error) {
	st, err := s.Staff.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, err
	}
	if !st.Active {
		return "", nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(st.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrBadCredentials
	}
	token, err := s.Tokens.Issue(st, time.Now())
	if err != nil {
		return "", nil, err
	}
	return token, st, nil
}

func (s *Service) Register(ctx context.Context, username, password string, role Role) (*Staff, error) {
	if username == "" || len(password) < 8 {
		return nil, errors.New("username required, password min 8 chars")
	}
	if !role.Valid() {
		return nil, errors.New("invalid role")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, err
	}
	st := &Staff{Username: username, PasswordHash: string(hash), Role: role}
	if err := s.Staff.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}
