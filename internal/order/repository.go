package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"papeleria-be/internal/logger"
	"papeleria-be/internal/product"
	"papeleria-be/internal/user"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order) error
	SaveOrderTx(ctx context.Context, o *Order) error

	GetOrderWithLines(ctx context.Context, orderID uint) (*Order, error)
	GetCartByUser(ctx context.Context, userID uint) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]*Order, error)

	UpdateLineTx(ctx context.Context, lineID uint, patch LinePatch, actor Actor) (*LineUpdateResult, error)
	DeleteLineTx(ctx context.Context, lineID uint, actor Actor) (*LineUpdateResult, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// CreateOrderTx persists the order row and all its lines in one transaction.
// Either every row exists afterwards or none do.
func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CreateOrderTx"),
		zap.Uint("user_id", o.UserID),
		zap.Int("line_count", len(o.Lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, address_id, status, total)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, o.UserID, o.AddressID, o.Status, o.Total).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == user.PgUniqueViolation {
			log.Warn("draft order already exists")
			return ErrCartExists
		}
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Lines {
		line := &o.Lines[i]
		line.OrderID = o.ID

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal).
			Scan(&line.ID)
		if err != nil {
			log.Error("failed to insert order line",
				zap.Int("line_index", i),
				zap.Uint("product_id", line.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order created", zap.Uint("order_id", o.ID), zap.Int64("total", o.Total))

	return nil
}

// SaveOrderTx writes the order row and every line back in one transaction.
// Lines with a zero ID are inserted, the rest updated in place.
func (r *repository) SaveOrderTx(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "SaveOrderTx"),
		zap.Uint("order_id", o.ID),
		zap.Int("line_count", len(o.Lines)),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, address_id = $2, total = $3, updated_at = NOW()
		WHERE id = $4
	`, o.Status, o.AddressID, o.Total, o.ID)
	if err != nil {
		log.Error("failed to update order", zap.Error(err))
		return err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}

	for i := range o.Lines {
		line := &o.Lines[i]

		if line.ID == 0 {
			line.OrderID = o.ID
			err = tx.QueryRowContext(ctx, `
				INSERT INTO order_lines (order_id, product_id, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id
			`, line.OrderID, line.ProductID, line.Quantity, line.UnitPrice, line.LineTotal).
				Scan(&line.ID)
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE order_lines
				SET quantity = $1, unit_price = $2, line_total = $3
				WHERE id = $4
			`, line.Quantity, line.UnitPrice, line.LineTotal, line.ID)
		}
		if err != nil {
			log.Error("failed to save order line",
				zap.Uint("product_id", line.ProductID),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	log.Info("order saved", zap.Int64("total", o.Total))

	return nil
}

func (r *repository) GetOrderWithLines(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, address_id, status, total, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.getLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines

	return &o, nil
}

// GetCartByUser returns the user's draft order. At most one draft per user is
// expected; more than one is a data-integrity anomaly and the newest wins.
func (r *repository) GetCartByUser(ctx context.Context, userID uint) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "GetCartByUser"),
		zap.Uint("user_id", userID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, address_id, status, total, created_at, updated_at
		FROM orders
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
	`, userID, StatusCart)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var carts []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		carts = append(carts, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(carts) == 0 {
		return nil, ErrCartNotFound
	}
	if len(carts) > 1 {
		log.Warn("multiple draft orders for user", zap.Int("count", len(carts)))
	}

	cart := carts[0]

	lines, err := r.getLines(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines

	return cart, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, address_id, status, total, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.AddressID, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *repository) getLines(ctx context.Context, orderID uint) ([]Line, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.id, l.order_id, l.product_id, p.name, l.quantity, l.unit_price, l.line_total
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// UpdateLineTx edits a single line and keeps the order total consistent.
// The old line and order values are read inside the same transaction so the
// delta adjustment never works from stale data, and the ownership check can
// not race with the edit.
func (r *repository) UpdateLineTx(ctx context.Context, lineID uint, patch LinePatch, actor Actor) (*LineUpdateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "UpdateLineTx"),
		zap.Uint("line_id", lineID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	line, owner, status, err := r.lockLine(ctx, tx, lineID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && owner != actor.UserID {
		return nil, ErrNotOrderOwner
	}

	// Quantity zero or below means removal.
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		result, err := r.removeLine(ctx, tx, line, status)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			log.Error("failed to commit line removal", zap.Error(err))
			return nil, err
		}
		committed = true
		return result, nil
	}

	qty := line.Quantity
	if patch.Quantity != nil {
		qty = *patch.Quantity
	}

	// Effective unit price: explicit patch value, else the product's
	// current catalog price.
	var unit int64
	if patch.UnitPrice != nil {
		unit = *patch.UnitPrice
	} else {
		err = tx.QueryRowContext(ctx, `
			SELECT price FROM products WHERE id = $1
		`, line.ProductID).Scan(&unit)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %d: %w", line.ProductID, product.ErrProductNotFound)
		}
		if err != nil {
			return nil, err
		}
	}

	newLineTotal := unit * int64(qty)
	delta := newLineTotal - line.LineTotal

	_, err = tx.ExecContext(ctx, `
		UPDATE order_lines
		SET quantity = $1, unit_price = $2, line_total = $3
		WHERE id = $4
	`, qty, unit, newLineTotal, line.ID)
	if err != nil {
		log.Error("failed to update line", zap.Error(err))
		return nil, err
	}

	var orderTotal int64
	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET total = total + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING total
	`, delta, line.OrderID).Scan(&orderTotal)
	if err != nil {
		log.Error("failed to adjust order total", zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit line update", zap.Error(err))
		return nil, err
	}
	committed = true

	line.Quantity = qty
	line.UnitPrice = unit
	line.LineTotal = newLineTotal

	log.Info("line updated",
		zap.Int64("delta", delta),
		zap.Int64("order_total", orderTotal),
	)

	return &LineUpdateResult{Line: line, OrderTotal: orderTotal}, nil
}

// DeleteLineTx removes a line, subtracts its total from the order and deletes
// the order itself when it was the last line of a draft.
func (r *repository) DeleteLineTx(ctx context.Context, lineID uint, actor Actor) (*LineUpdateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "DeleteLineTx"),
		zap.Uint("line_id", lineID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	line, owner, status, err := r.lockLine(ctx, tx, lineID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && owner != actor.UserID {
		return nil, ErrNotOrderOwner
	}

	result, err := r.removeLine(ctx, tx, line, status)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit line deletion", zap.Error(err))
		return nil, err
	}
	committed = true

	return result, nil
}

// lockLine reads a line plus its order's owner and status inside the
// transaction, locking both rows for the rest of the read-modify-write
// sequence.
func (r *repository) lockLine(ctx context.Context, tx *sql.Tx, lineID uint) (*Line, uint, Status, error) {
	var (
		line   Line
		owner  uint
		status Status
	)
	err := tx.QueryRowContext(ctx, `
		SELECT l.id, l.order_id, l.product_id, l.quantity, l.unit_price, l.line_total, o.user_id, o.status
		FROM order_lines l
		JOIN orders o ON o.id = l.order_id
		WHERE l.id = $1
		FOR UPDATE
	`, lineID).Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity, &line.UnitPrice, &line.LineTotal, &owner, &status)
	if err == sql.ErrNoRows {
		return nil, 0, 0, ErrLineNotFound
	}
	if err != nil {
		return nil, 0, 0, err
	}

	return &line, owner, status, nil
}

func (r *repository) removeLine(ctx context.Context, tx *sql.Tx, line *Line, status Status) (*LineUpdateResult, error) {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM order_lines WHERE id = $1
	`, line.ID); err != nil {
		return nil, err
	}

	var remaining int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM order_lines WHERE order_id = $1
	`, line.OrderID).Scan(&remaining)
	if err != nil {
		return nil, err
	}

	// Only a draft order is deleted when its last line goes; any other
	// status persists as order history, even emptied.
	if remaining == 0 && status == StatusCart {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM orders WHERE id = $1
		`, line.OrderID); err != nil {
			return nil, err
		}
		return &LineUpdateResult{Removed: true, OrderDeleted: true}, nil
	}

	var orderTotal int64
	err = tx.QueryRowContext(ctx, `
		UPDATE orders
		SET total = total - $1, updated_at = NOW()
		WHERE id = $2
		RETURNING total
	`, line.LineTotal, line.OrderID).Scan(&orderTotal)
	if err != nil {
		return nil, err
	}

	return &LineUpdateResult{Removed: true, OrderTotal: orderTotal}, nil
}
