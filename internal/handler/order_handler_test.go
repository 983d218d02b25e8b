package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"papeleria-be/internal/auth"
	"papeleria-be/internal/order"
	"papeleria-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, params order.CreateOrderParams) (*order.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) GetCart(ctx context.Context, userID uint) (*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, userID uint) ([]*order.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, orderID uint, params order.UpdateOrderParams) (*order.Order, error) {
	args := m.Called(ctx, orderID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateLine(ctx context.Context, lineID uint, patch order.LinePatch, actor order.Actor) (*order.LineUpdateResult, error) {
	args := m.Called(ctx, lineID, patch, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.LineUpdateResult), args.Error(1)
}

func (m *MockOrderService) DeleteLine(ctx context.Context, lineID uint, actor order.Actor) (*order.LineUpdateResult, error) {
	args := m.Called(ctx, lineID, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.LineUpdateResult), args.Error(1)
}

func lineEditContext(t *testing.T, method string, userID uint, tier int, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(method, "/order-lines/50", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := auth.SetUserContext(req.Context(), userID, "mika@example.com", tier)
	c.Request = req.WithContext(ctx)
	c.Params = gin.Params{{Key: "id", Value: "50"}}

	return c, w
}

func TestOrderHandler_UpdateLine(t *testing.T) {
	t.Run("ActorTakenFromToken", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc)

		qty := 5
		svc.On("UpdateLine", mock.Anything, uint(50),
			order.LinePatch{Quantity: &qty},
			order.Actor{UserID: 42}).
			Return(&order.LineUpdateResult{
				Line:       &order.Line{ID: 50, Quantity: 5, UnitPrice: 1000, LineTotal: 5000},
				OrderTotal: 5000,
			}, nil)

		c, w := lineEditContext(t, http.MethodPatch, 42, int(user.TierRetail), `{"quantity":5}`)
		h.UpdateLine(c)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("ForeignLineRejected", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc)

		qty := 5
		svc.On("UpdateLine", mock.Anything, uint(50),
			order.LinePatch{Quantity: &qty},
			order.Actor{UserID: 42}).
			Return(nil, order.ErrNotOrderOwner)

		c, w := lineEditContext(t, http.MethodPatch, 42, int(user.TierRetail), `{"quantity":5}`)
		h.UpdateLine(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_DeleteLine(t *testing.T) {
	t.Run("AdminActor", func(t *testing.T) {
		svc := new(MockOrderService)
		h := NewOrderHandler(svc)

		svc.On("DeleteLine", mock.Anything, uint(50),
			order.Actor{UserID: 7, Admin: true}).
			Return(&order.LineUpdateResult{Removed: true, OrderTotal: 0}, nil)

		c, w := lineEditContext(t, http.MethodDelete, 7, int(user.TierAdmin), "")
		h.DeleteLine(c)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}
