package address

import (
	"context"
	"database/sql"

	"papeleria-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uint) ([]*Address, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)

	Create(ctx context.Context, addr *Address) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	ClearDefault(ctx context.Context, userID uint) error
	SetDefault(ctx context.Context, userID uint, addressID uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID uint,
) ([]*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "GetByUserID"),
		zap.Uint("user_id", userID),
	)

	const q = `
		SELECT
			id, user_id,
			name, phone,
			address_line1, address_line2,
			city, province, postal_code, country,
			is_default, is_active, created_at
		FROM addresses
		WHERE user_id = $1
		  AND is_active = true
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Address

	for rows.Next() {
		var a Address
		if err := rows.Scan(
			&a.ID, &a.UserID,
			&a.Name, &a.Phone,
			&a.Address1, &a.Address2,
			&a.City, &a.Province, &a.Postal, &a.Country,
			&a.IsDefault, &a.IsActive, &a.CreatedAt,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return res, nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*Address, error) {

	const q = `
		SELECT
			id, user_id,
			name, phone,
			address_line1, address_line2,
			city, province, postal_code, country,
			is_default, is_active, created_at
		FROM addresses
		WHERE id = $1
		  AND is_active = true
	`

	var a Address
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.UserID,
		&a.Name, &a.Phone,
		&a.Address1, &a.Address2,
		&a.City, &a.Province, &a.Postal, &a.Country,
		&a.IsDefault, &a.IsActive, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *repository) Create(ctx context.Context, addr *Address) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Create"),
		zap.Uint("user_id", addr.UserID),
	)

	const q = `
		INSERT INTO addresses (
			id, user_id, name, phone,
			address_line1, address_line2,
			city, province, postal_code, country,
			is_default, is_active
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,true)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, q,
		addr.ID, addr.UserID, addr.Name, addr.Phone,
		addr.Address1, addr.Address2,
		addr.City, addr.Province, addr.Postal, addr.Country,
		addr.IsDefault,
	).Scan(&addr.CreatedAt)
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return nil
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET is_active = false
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

func (r *repository) ClearDefault(ctx context.Context, userID uint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = false
		WHERE user_id = $1
	`, userID)
	return err
}

func (r *repository) SetDefault(ctx context.Context, userID uint, addressID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET is_default = true
		WHERE id = $1 AND user_id = $2
	`, addressID, userID)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAddressNotFound
	}

	return nil
}
