package product

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"papeleria-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetList(ctx context.Context, opts ProductQueryOptions) ([]*Product, error)
	Create(ctx context.Context, input NewProductInput) (*Product, error)
	Update(ctx context.Context, id uint, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, id uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	const q = `
		SELECT
			id, name, description,
			price, wholesale_price,
			category_id, image_url,
			created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Name, &p.Description,
		&p.Price, &p.WholesalePrice,
		&p.CategoryID, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetList(
	ctx context.Context,
	opts ProductQueryOptions,
) ([]*Product, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "GetList"),
	)

	start := time.Now()

	// ---------- pagination ----------
	finalLimit := int32(20)
	if opts.Limit != nil && *opts.Limit > 0 {
		finalLimit = *opts.Limit
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	finalPage := int32(1)
	if opts.Page != nil && *opts.Page > 0 {
		finalPage = *opts.Page
	}

	offset := (finalPage - 1) * finalLimit

	// ---------- where ----------
	where := []string{"1=1"}
	args := []any{}

	if opts.Search != nil && *opts.Search != "" {
		where = append(where,
			fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)",
				len(args)+1, len(args)+1),
		)
		args = append(args, "%"+*opts.Search+"%")
	}

	if opts.CategoryID != nil {
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)+1))
		args = append(args, *opts.CategoryID)
	}

	// ---------- sort ----------
	orderBy := "created_at DESC"
	if opts.SortField != "" {
		field := "created_at"
		switch opts.SortField {
		case "price":
			field = "price"
		case "name":
			field = "name"
		}

		dir := "ASC"
		if opts.SortDesc {
			dir = "DESC"
		}
		orderBy = field + " " + dir
	}

	query := `
	SELECT
		id, name, description,
		price, wholesale_price,
		category_id, image_url,
		created_at, updated_at
	FROM products
	WHERE ` + strings.Join(where, " AND ") + `
	ORDER BY ` + orderBy + `
	LIMIT $` + fmt.Sprint(len(args)+1) + `
	OFFSET $` + fmt.Sprint(len(args)+2)

	args = append(args, finalLimit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer rows.Close()

	result := make([]*Product, 0, finalLimit)

	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description,
			&p.Price, &p.WholesalePrice,
			&p.CategoryID, &p.ImageURL,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(result)),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (r *repository) Create(ctx context.Context, input NewProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "Create"),
		zap.String("name", input.Name),
	)

	const q = `
		INSERT INTO products (
			name, description, price, wholesale_price, category_id, image_url
		) VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING
			id, name, description,
			price, wholesale_price,
			category_id, image_url,
			created_at, updated_at
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q,
		input.Name, input.Description,
		input.Price, input.WholesalePrice,
		input.CategoryID, input.ImageURL,
	).Scan(
		&p.ID, &p.Name, &p.Description,
		&p.Price, &p.WholesalePrice,
		&p.CategoryID, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.Uint("product_id", p.ID))
	return &p, nil
}

func (r *repository) Update(ctx context.Context, id uint, input UpdateProductInput) (*Product, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{}

	add := func(col string, val any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)+1))
		args = append(args, val)
	}

	if input.Name != nil {
		add("name", *input.Name)
	}
	if input.Description != nil {
		add("description", *input.Description)
	}
	if input.Price != nil {
		add("price", *input.Price)
	}
	if input.WholesalePrice != nil {
		add("wholesale_price", *input.WholesalePrice)
	}
	if input.CategoryID != nil {
		add("category_id", *input.CategoryID)
	}
	if input.ImageURL != nil {
		add("image_url", *input.ImageURL)
	}

	query := `
		UPDATE products
		SET ` + strings.Join(set, ", ") + `
		WHERE id = $` + fmt.Sprint(len(args)+1) + `
		RETURNING
			id, name, description,
			price, wholesale_price,
			category_id, image_url,
			created_at, updated_at
	`
	args = append(args, id)

	var p Product
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Description,
		&p.Price, &p.WholesalePrice,
		&p.CategoryID, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrProductNotFound
	}

	return nil
}
