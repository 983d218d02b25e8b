package address

import (
	"context"
	"errors"

	"papeleria-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, userID uint) ([]*Address, error)
	Get(ctx context.Context, id uuid.UUID) (*Address, error)
	Create(ctx context.Context, input CreateAddressInput) (*Address, error)
	Remove(ctx context.Context, userID uint, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID uint) ([]*Address, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Address, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateAddressInput) (*Address, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateAddress"),
		zap.Uint("user_id", input.UserID),
	)

	if input.AddressLine1 == "" || input.City == "" {
		return nil, errors.New("address line and city are required")
	}

	if input.SetAsDefault {
		if err := s.repo.ClearDefault(ctx, input.UserID); err != nil {
			log.Error("failed to clear default address", zap.Error(err))
			return nil, err
		}
	}

	addr := &Address{
		ID:        uuid.New(),
		UserID:    input.UserID,
		Name:      input.Name,
		Phone:     input.Phone,
		Address1:  input.AddressLine1,
		Address2:  input.AddressLine2,
		City:      input.City,
		Province:  input.Province,
		Postal:    input.PostalCode,
		Country:   input.Country,
		IsDefault: input.SetAsDefault,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, addr); err != nil {
		return nil, err
	}

	log.Info("address created", zap.String("address_id", addr.ID.String()))
	return addr, nil
}

func (s *service) Remove(ctx context.Context, userID uint, id uuid.UUID) error {
	addr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if addr.UserID != userID {
		return ErrAddressNotFound
	}

	return s.repo.Deactivate(ctx, id)
}
