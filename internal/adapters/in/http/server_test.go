package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "orders/internal/adapters/in/http"
	"orders/internal/core/application/usecases/commands"
	"orders/internal/core/application/usecases/queries"
	"orders/internal/core/domain/model/kernel"
	"orders/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCreateOrderHandler struct{ mock.Mock }

func (m *MockCreateOrderHandler) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (kernel.UUID, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockProcessOrderHandler struct{ mock.Mock }

func (m *MockProcessOrderHandler) Handle(ctx context.Context, cmd commands.ProcessOrderCommand) (commands.Result, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.Result), args.Error(1)
}

type MockShipOrderHandler struct{ mock.Mock }

func (m *MockShipOrderHandler) Handle(ctx context.Context, cmd commands.ShipOrderCommand) (commands.Result, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.Result), args.Error(1)
}

type MockCompleteOrderHandler struct{ mock.Mock }

func (m *MockCompleteOrderHandler) Handle(ctx context.Context, cmd commands.CompleteOrderCommand) (commands.Result, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.Result), args.Error(1)
}

type MockCancelOrderHandler struct{ mock.Mock }

func (m *MockCancelOrderHandler) Handle(ctx context.Context, cmd commands.CancelOrderCommand) (commands.Result, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.Result), args.Error(1)
}

type MockGetOrderByIDHandler struct{ mock.Mock }

func (m *MockGetOrderByIDHandler) Handle(
	ctx context.Context,
	query queries.GetOrderByIDQuery,
) (queries.GetOrderByIDQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetOrderByIDQueryResponse), args.Error(1)
}

type fixture struct {
	create   *MockCreateOrderHandler
	process  *MockProcessOrderHandler
	ship     *MockShipOrderHandler
	complete *MockCompleteOrderHandler
	cancel   *MockCancelOrderHandler
	get      *MockGetOrderByIDHandler
	handler  http.Handler
}

func newFixture() fixture {
	f := fixture{
		create:   new(MockCreateOrderHandler),
		process:  new(MockProcessOrderHandler),
		ship:     new(MockShipOrderHandler),
		complete: new(MockCompleteOrderHandler),
		cancel:   new(MockCancelOrderHandler),
		get:      new(MockGetOrderByIDHandler),
	}

	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateOrder:   f.create,
		ProcessOrder:  f.process,
		ShipOrder:     f.ship,
		CompleteOrder: f.complete,
		CancelOrder:   f.cancel,
		GetOrderByID:  f.get,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.handler = server.NewEcho()

	return f
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func Test_Health(t *testing.T) {
	rec := newFixture().do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func Test_CreateOrder_Created(t *testing.T) {
	// Arrange
	f := newFixture()
	orderID := kernel.NewUUID()
	f.create.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		items := cmd.Items()
		return cmd.CustomerID() == "customer-7" &&
			len(items) == 1 &&
			items[0].ProductID == "sku-1" &&
			items[0].Quantity == 2 &&
			items[0].UnitPrice.Equal(decimal.RequireFromString("9.99"))
	})).Return(orderID, nil).Once()

	// Act
	rec := f.do(http.MethodPost, "/api/orders",
		`{"customerId":"customer-7","productItems":[{"productId":"sku-1","quantity":2,"unitPrice":9.99}]}`)

	// Assert
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, orderID.String(), decode[httpadapter.CreateOrderResponse](t, rec).ID)
	f.create.AssertExpectations(t)
}

func Test_CreateOrder_BadRequest(t *testing.T) {
	tests := map[string]string{
		"malformed json":   `{"customerId":`,
		"missing items":    `{"customerId":"customer-7","productItems":[]}`,
		"missing customer": `{"productItems":[{"productId":"sku-1","quantity":1,"unitPrice":"1"}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()

			rec := f.do(http.MethodPost, "/api/orders", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, http.StatusBadRequest, decode[httpadapter.Error](t, rec).Code)
			f.create.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}

func Test_CreateOrder_InvalidItem(t *testing.T) {
	f := newFixture()
	f.create.On("Handle", mock.Anything, mock.Anything).
		Return(kernel.UUID{}, errs.NewValueIsInvalidError("quantity is invalid")).Once()

	rec := f.do(http.MethodPost, "/api/orders",
		`{"customerId":"customer-7","productItems":[{"productId":"sku-1","quantity":0,"unitPrice":"1"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[httpadapter.Error](t, rec).Message, "quantity is invalid")
}

func Test_CreateOrder_EventPublishFailed(t *testing.T) {
	f := newFixture()
	orderID := kernel.NewUUID()
	f.create.On("Handle", mock.Anything, mock.Anything).
		Return(orderID, commands.ErrEventPublishFailed).Once()

	rec := f.do(http.MethodPost, "/api/orders",
		`{"customerId":"customer-7","productItems":[{"productId":"sku-1","quantity":1,"unitPrice":"1"}]}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, orderID.String(), decode[httpadapter.CreateOrderResponse](t, rec).ID)
}

func Test_CreateOrder_InfrastructureError(t *testing.T) {
	f := newFixture()
	f.create.On("Handle", mock.Anything, mock.Anything).
		Return(kernel.UUID{}, errors.New("connection refused")).Once()

	rec := f.do(http.MethodPost, "/api/orders",
		`{"customerId":"customer-7","productItems":[{"productId":"sku-1","quantity":1,"unitPrice":"1"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to create order", decode[httpadapter.Error](t, rec).Message)
}

func Test_GetOrder(t *testing.T) {
	// Arrange
	f := newFixture()
	orderID := kernel.NewUUID()
	orderDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.get.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderByIDQuery) bool {
		return q.OrderID().IsEqual(orderID)
	})).Return(queries.GetOrderByIDQueryResponse{
		ID:          orderID,
		CustomerID:  "customer-7",
		OrderDate:   orderDate,
		Status:      "Shipped",
		Final:       false,
		TotalAmount: decimal.RequireFromString("19.98"),
		Items: []queries.OrderItemView{
			{ProductID: "sku-1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		},
		TrackingNumber: "TRK-1",
	}, nil).Once()

	// Act
	rec := f.do(http.MethodGet, "/api/orders/"+orderID.String(), "")

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[httpadapter.Order](t, rec)
	assert.Equal(t, orderID.String(), got.ID)
	assert.Equal(t, "Shipped", got.Status)
	assert.Equal(t, "TRK-1", got.TrackingNumber)
	assert.True(t, orderDate.Equal(got.OrderDate))
	assert.True(t, decimal.RequireFromString("19.98").Equal(got.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "sku-1", got.Items[0].ProductID)
	assert.NotContains(t, rec.Body.String(), "cancellationReason")
	assert.Contains(t, rec.Body.String(), `"final":false`)
}

func Test_GetOrder_NotFound(t *testing.T) {
	f := newFixture()
	f.get.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetOrderByIDQueryResponse{}, errs.NewObjectNotFoundError("order", "x")).Once()

	rec := f.do(http.MethodGet, "/api/orders/"+kernel.NewUUID().String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_GetOrder_MalformedID(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/orders/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.get.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func Test_Transitions_StatusMapping(t *testing.T) {
	tests := map[string]struct {
		result   commands.Result
		err      error
		expected int
	}{
		"applied":              {result: commands.Applied, expected: http.StatusOK},
		"unchanged":            {result: commands.Unchanged, expected: http.StatusOK},
		"not found":            {result: commands.NotFound, expected: http.StatusNotFound},
		"not allowed":          {result: commands.NotAllowed, expected: http.StatusConflict},
		"concurrency conflict": {err: errs.NewConcurrencyConflictError("order", "x", 1), expected: http.StatusConflict},
		"event publish failed": {result: commands.Applied, err: commands.ErrEventPublishFailed, expected: http.StatusBadGateway},
		"infrastructure error": {err: errors.New("timeout"), expected: http.StatusInternalServerError},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.process.On("Handle", mock.Anything, mock.Anything).Return(test.result, test.err).Once()

			rec := f.do(http.MethodPut, "/api/orders/"+kernel.NewUUID().String()+"/process", "")

			assert.Equal(t, test.expected, rec.Code)
			if test.expected == http.StatusOK {
				assert.Equal(t, test.result.String(), decode[httpadapter.TransitionResponse](t, rec).Result)
			}
		})
	}
}

func Test_ShipOrder_PassesTrackingNumber(t *testing.T) {
	f := newFixture()
	orderID := kernel.NewUUID()
	f.ship.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ShipOrderCommand) bool {
		return cmd.OrderID().IsEqual(orderID) && cmd.TrackingNumber() == "TRK-42"
	})).Return(commands.Applied, nil).Once()

	rec := f.do(http.MethodPut, "/api/orders/"+orderID.String()+"/ship", `{"trackingNumber":"TRK-42"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.ship.AssertExpectations(t)
}

func Test_ShipOrder_WithoutBody(t *testing.T) {
	f := newFixture()
	f.ship.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ShipOrderCommand) bool {
		return cmd.TrackingNumber() == ""
	})).Return(commands.Applied, nil).Once()

	rec := f.do(http.MethodPut, "/api/orders/"+kernel.NewUUID().String()+"/ship", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	f.ship.AssertExpectations(t)
}

func Test_CompleteOrder(t *testing.T) {
	f := newFixture()
	f.complete.On("Handle", mock.Anything, mock.Anything).Return(commands.NotAllowed, nil).Once()

	rec := f.do(http.MethodPut, "/api/orders/"+kernel.NewUUID().String()+"/complete", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	f.complete.AssertExpectations(t)
}

func Test_CancelOrder_PassesReason(t *testing.T) {
	f := newFixture()
	f.cancel.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CancelOrderCommand) bool {
		return cmd.Reason() == "changed my mind"
	})).Return(commands.Unchanged, nil).Once()

	rec := f.do(http.MethodPut, "/api/orders/"+kernel.NewUUID().String()+"/cancel", `{"reason":"changed my mind"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Unchanged", decode[httpadapter.TransitionResponse](t, rec).Result)
	f.cancel.AssertExpectations(t)
}
