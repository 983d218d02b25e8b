package user

import (
	"context"
	"errors"

	"papeleria-be/internal/auth"
	"papeleria-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, params RegisterParams) (*User, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	GetByID(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
		zap.String("email", params.Email),
	)

	if params.Email == "" || params.Password == "" {
		return nil, errors.New("email and password are required")
	}

	// Public registration may only create customer accounts; administrator
	// accounts are provisioned out of band.
	tier := params.Tier
	if tier == 0 {
		tier = TierRetail
	}
	if tier != TierRetail && tier != TierWholesale {
		log.Warn("rejected registration tier", zap.Int("tier", int(tier)))
		return nil, ErrTierNotAllowed
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Email:    params.Email,
		Password: hash,
		Name:     params.Name,
		Tier:     tier,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID))
	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPasswordHash(password, u.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(u.ID, u.Email, int(u.Tier))
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
