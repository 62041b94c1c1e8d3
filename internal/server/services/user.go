// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and user lookup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/solarauth/internal/common"
	"github.com/dmitrijs2005/solarauth/internal/dbx"
	"github.com/dmitrijs2005/solarauth/internal/server/auth"
	"github.com/dmitrijs2005/solarauth/internal/server/hasher"
	"github.com/dmitrijs2005/solarauth/internal/server/models"
	"github.com/dmitrijs2005/solarauth/internal/server/repositories/repomanager"
)

const (
	// MinCredentialLen is the minimum length, in characters, of a login and
	// of a password.
	MinCredentialLen = 3

	MsgBadRequest = "bad request"
	MsgLoginTaken = "User with this login already exists"
)

var errLoginTaken = errors.New("login taken")

// UserService provides authentication-related operations:
// - Register: validate and create users, returning a token
// - Login: verify credentials and mint a token
// - GetUserByID: resolve a user for token verification
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *hasher.Hasher
	codec       *auth.Codec
}

// NewUserService constructs a UserService.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, h *hasher.Hasher, c *auth.Codec) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      h,
		codec:       c,
	}
}

// Login checks the credentials and returns a token for the matching user.
// Wrong credentials are not an error: the returned token is empty.
func (s *UserService) Login(ctx context.Context, login, password string) (*models.Token, error) {
	var matched *models.User
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		candidates, err := s.repomanager.Users(tx).FindByLogin(ctx, login)
		if err != nil {
			return err
		}
		for _, u := range candidates {
			if s.hasher.Matches(password, u.Password) {
				matched = u
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, internal("error searching user", err)
	}
	if matched == nil {
		return &models.Token{}, nil
	}

	token, err := s.codec.Issue(matched.ID)
	if err != nil {
		return nil, internal("error issuing token", err)
	}
	return &models.Token{Data: token}, nil
}

// Register creates a user and returns a token for it. Validation and
// duplicate-login failures are reported in the result, not as errors.
func (s *UserService) Register(ctx context.Context, login, password, title string) (*models.Register, error) {
	if utf8.RuneCountInString(login) < MinCredentialLen || utf8.RuneCountInString(password) < MinCredentialLen {
		return &models.Register{ErrorMessage: MsgBadRequest}, nil
	}
	if title == "" {
		title = login
	}

	var token string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		existing, err := repo.FindByLogin(ctx, login)
		if err != nil {
			return fmt.Errorf("error searching user: %w", err)
		}
		if len(existing) > 0 {
			return errLoginTaken
		}

		u, err := repo.Create(ctx, &models.User{
			Login:    login,
			Password: s.hasher.Hash(password),
			Title:    title,
		})
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return errLoginTaken
			}
			return fmt.Errorf("error creating user: %w", err)
		}

		token, err = s.codec.Issue(u.ID)
		if err != nil {
			return fmt.Errorf("error issuing token: %w", err)
		}
		return nil
	})
	switch {
	case errors.Is(err, errLoginTaken):
		return &models.Register{ErrorMessage: MsgLoginTaken}, nil
	case err != nil:
		return nil, internal("error registering user", err)
	}

	return &models.Register{Success: true, TokenData: token}, nil
}

// GetUserByID returns the user with the given id, or common.ErrorNotFound.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(tx).GetByID(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal("error loading user", err)
	}
	return user, nil
}

func internal(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}
