package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"papeleria-be/internal/product"
	"papeleria-be/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_CreateOrderTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		o := &Order{
			UserID: 2,
			Status: StatusCart,
			Total:  3000,
			Lines: []Line{
				{ProductID: 10, Quantity: 3, UnitPrice: 1000, LineTotal: 3000},
			},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(o.UserID, nil, o.Status, o.Total).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(7, time.Now(), time.Now()))
		mock.ExpectQuery("INSERT INTO order_lines").
			WithArgs(uint(7), uint(10), 3, int64(1000), int64(3000)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(70))
		mock.ExpectCommit()

		err := repo.CreateOrderTx(context.Background(), o)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), o.ID)
		assert.Equal(t, uint(70), o.Lines[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SecondDraftConflict", func(t *testing.T) {
		o := &Order{
			UserID: 2,
			Status: StatusCart,
			Total:  3000,
			Lines: []Line{
				{ProductID: 10, Quantity: 3, UnitPrice: 1000, LineTotal: 3000},
			},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: pq.ErrorCode(user.PgUniqueViolation)})
		mock.ExpectRollback()

		err := repo.CreateOrderTx(context.Background(), o)

		assert.ErrorIs(t, err, ErrCartExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LineInsertFailureRollsBack", func(t *testing.T) {
		o := &Order{
			UserID: 2,
			Status: StatusCart,
			Total:  3000,
			Lines: []Line{
				{ProductID: 10, Quantity: 3, UnitPrice: 1000, LineTotal: 3000},
			},
		}

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(8, time.Now(), time.Now()))
		mock.ExpectQuery("INSERT INTO order_lines").
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err := repo.CreateOrderTx(context.Background(), o)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateLineTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	lockCols := []string{"id", "order_id", "product_id", "quantity", "unit_price", "line_total", "user_id", "status"}
	owner := Actor{UserID: 2}

	t.Run("QuantityChangeAdjustsTotalByDelta", func(t *testing.T) {
		// Line 50: qty 2 at 1000 (total 2000). Patch to qty 5: line total
		// 5000, order total moves by +3000.
		qty := 5

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(50, 5, 10, 2, 1000, 2000, 2, int(StatusCart)))
		mock.ExpectQuery("SELECT price FROM products").
			WithArgs(uint(10)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(1000))
		mock.ExpectExec("UPDATE order_lines").
			WithArgs(5, int64(1000), int64(5000), uint(50)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE orders").
			WithArgs(int64(3000), uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(5000))
		mock.ExpectCommit()

		res, err := repo.UpdateLineTx(context.Background(), 50, LinePatch{Quantity: &qty}, owner)

		assert.NoError(t, err)
		assert.False(t, res.Removed)
		assert.Equal(t, 5, res.Line.Quantity)
		assert.Equal(t, int64(5000), res.Line.LineTotal)
		assert.Equal(t, int64(5000), res.OrderTotal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExplicitUnitPriceSkipsCatalogLookup", func(t *testing.T) {
		qty := 2
		price := int64(750)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(50, 5, 10, 2, 1000, 2000, 2, int(StatusCart)))
		mock.ExpectExec("UPDATE order_lines").
			WithArgs(2, int64(750), int64(1500), uint(50)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("UPDATE orders").
			WithArgs(int64(-500), uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1500))
		mock.ExpectCommit()

		res, err := repo.UpdateLineTx(context.Background(), 50, LinePatch{Quantity: &qty, UnitPrice: &price}, owner)

		assert.NoError(t, err)
		assert.Equal(t, int64(750), res.Line.UnitPrice)
		assert.Equal(t, int64(1500), res.OrderTotal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ZeroQuantityRemovesLineAndDeletesEmptyDraft", func(t *testing.T) {
		qty := 0

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(51)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(51, 5, 10, 2, 1000, 2000, 2, int(StatusCart)))
		mock.ExpectExec("DELETE FROM order_lines").
			WithArgs(uint(51)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectExec("DELETE FROM orders").
			WithArgs(uint(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		res, err := repo.UpdateLineTx(context.Background(), 51, LinePatch{Quantity: &qty}, owner)

		assert.NoError(t, err)
		assert.True(t, res.Removed)
		assert.True(t, res.OrderDeleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptiedDeliveredOrderPersistsWithZeroTotal", func(t *testing.T) {
		qty := 0

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(52)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(52, 6, 10, 2, 1000, 2000, 2, int(StatusDelivered)))
		mock.ExpectExec("DELETE FROM order_lines").
			WithArgs(uint(52)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint(6)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("UPDATE orders").
			WithArgs(int64(2000), uint(6)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0))
		mock.ExpectCommit()

		res, err := repo.UpdateLineTx(context.Background(), 52, LinePatch{Quantity: &qty}, owner)

		assert.NoError(t, err)
		assert.True(t, res.Removed)
		assert.False(t, res.OrderDeleted)
		assert.Equal(t, int64(0), res.OrderTotal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ForeignLineRejected", func(t *testing.T) {
		qty := 5

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(50, 5, 10, 2, 1000, 2000, 2, int(StatusCart)))
		mock.ExpectRollback()

		_, err := repo.UpdateLineTx(context.Background(), 50, LinePatch{Quantity: &qty}, Actor{UserID: 42})

		assert.ErrorIs(t, err, ErrNotOrderOwner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AdminMayEditAnyLine", func(t *testing.T) {
		qty := 0

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(50, 5, 10, 2, 1000, 2000, 2, int(StatusCart)))
		mock.ExpectExec("DELETE FROM order_lines").
			WithArgs(uint(50)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("UPDATE orders").
			WithArgs(int64(2000), uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(500))
		mock.ExpectCommit()

		res, err := repo.UpdateLineTx(context.Background(), 50, LinePatch{Quantity: &qty}, Actor{UserID: 99, Admin: true})

		assert.NoError(t, err)
		assert.True(t, res.Removed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingCatalogProduct", func(t *testing.T) {
		qty := 3

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(50)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(50, 5, 10, 2, 1000, 2000, 2, int(StatusCart)))
		mock.ExpectQuery("SELECT price FROM products").
			WithArgs(uint(10)).
			WillReturnRows(sqlmock.NewRows([]string{"price"}))
		mock.ExpectRollback()

		_, err := repo.UpdateLineTx(context.Background(), 50, LinePatch{Quantity: &qty}, owner)

		assert.ErrorIs(t, err, product.ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LineNotFound", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows(lockCols))
		mock.ExpectRollback()

		_, err := repo.UpdateLineTx(context.Background(), 99, LinePatch{}, owner)

		assert.ErrorIs(t, err, ErrLineNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_DeleteLineTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	lockCols := []string{"id", "order_id", "product_id", "quantity", "unit_price", "line_total", "user_id", "status"}
	owner := Actor{UserID: 2}

	t.Run("SubtractsLineTotalWhenLinesRemain", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(60)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(60, 5, 10, 1, 500, 500, 2, int(StatusCart)))
		mock.ExpectExec("DELETE FROM order_lines").
			WithArgs(uint(60)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery("UPDATE orders").
			WithArgs(int64(500), uint(5)).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1500))
		mock.ExpectCommit()

		res, err := repo.DeleteLineTx(context.Background(), 60, owner)

		assert.NoError(t, err)
		assert.True(t, res.Removed)
		assert.False(t, res.OrderDeleted)
		assert.Equal(t, int64(1500), res.OrderTotal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ForeignLineRejected", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT l.id, l.order_id").
			WithArgs(uint(60)).
			WillReturnRows(sqlmock.NewRows(lockCols).
				AddRow(60, 5, 10, 1, 500, 500, 2, int(StatusCart)))
		mock.ExpectRollback()

		_, err := repo.DeleteLineTx(context.Background(), 60, Actor{UserID: 42})

		assert.ErrorIs(t, err, ErrNotOrderOwner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetCartByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	orderCols := []string{"id", "user_id", "address_id", "status", "total", "created_at", "updated_at"}
	lineCols := []string{"id", "order_id", "product_id", "name", "quantity", "unit_price", "line_total"}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, address_id, status, total").
			WithArgs(uint(2), StatusCart).
			WillReturnRows(sqlmock.NewRows(orderCols).
				AddRow(5, 2, nil, int(StatusCart), 2000, time.Now(), time.Now()))
		mock.ExpectQuery("SELECT l.id, l.order_id, l.product_id, p.name").
			WithArgs(uint(5)).
			WillReturnRows(sqlmock.NewRows(lineCols).
				AddRow(50, 5, 10, "Washi tape", 2, 1000, 2000))

		cart, err := repo.GetCartByUser(context.Background(), 2)

		assert.NoError(t, err)
		assert.Equal(t, uint(5), cart.ID)
		assert.Len(t, cart.Lines, 1)
		assert.Equal(t, "Washi tape", cart.Lines[0].ProductName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, address_id, status, total").
			WithArgs(uint(2), StatusCart).
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetCartByUser(context.Background(), 2)

		assert.ErrorIs(t, err, ErrCartNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_GetOrderWithLines(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	orderCols := []string{"id", "user_id", "address_id", "status", "total", "created_at", "updated_at"}

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, user_id, address_id, status, total").
			WithArgs(uint(99)).
			WillReturnRows(sqlmock.NewRows(orderCols))

		_, err := repo.GetOrderWithLines(context.Background(), 99)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestRepository_SaveOrderTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("UpdatesExistingAndInsertsNewLines", func(t *testing.T) {
		o := &Order{
			ID:     5,
			UserID: 2,
			Status: StatusCart,
			Total:  8000,
			Lines: []Line{
				{ID: 50, OrderID: 5, ProductID: 10, Quantity: 5, UnitPrice: 1200, LineTotal: 6000},
				{ProductID: 11, Quantity: 2, UnitPrice: 1000, LineTotal: 2000},
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE orders").
			WithArgs(o.Status, nil, o.Total, o.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE order_lines").
			WithArgs(5, int64(1200), int64(6000), uint(50)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO order_lines").
			WithArgs(uint(5), uint(11), 2, int64(1000), int64(2000)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(51))
		mock.ExpectCommit()

		err := repo.SaveOrderTx(context.Background(), o)

		assert.NoError(t, err)
		assert.Equal(t, uint(51), o.Lines[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingOrder", func(t *testing.T) {
		o := &Order{ID: 99, Status: StatusCart}

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE orders").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveOrderTx(context.Background(), o)

		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
