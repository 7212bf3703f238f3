package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"
	"orders/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderByIDQueryHandler reads orders straight from the tables, bypassing
// the aggregate.
type GetOrderByIDQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderByIDQueryHandler(db *gorm.DB) GetOrderByIDQueryHandler {
	return GetOrderByIDQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound when no order has the id.
func (h GetOrderByIDQueryHandler) Handle(
	ctx context.Context,
	query GetOrderByIDQuery,
) (GetOrderByIDQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderByIDQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)

	var (
		id        uuid.UUID
		status    int
		orderDate time.Time
		resp      GetOrderByIDQueryResponse
	)

	err := db.Raw(`
		SELECT
			id,
			customer_id,
			created_at,
			status,
			tracking_number,
			cancellation_reason
		FROM orders
		WHERE id = ?
	`, query.OrderID().Google()).Row().Scan(
		&id,
		&resp.CustomerID,
		&orderDate,
		&status,
		&resp.TrackingNumber,
		&resp.CancellationReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return GetOrderByIDQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}
	if err != nil {
		return GetOrderByIDQueryResponse{}, err
	}

	orderID, err := kernel.FromGoogleUUID(id)
	if err != nil {
		return GetOrderByIDQueryResponse{}, err
	}
	resp.ID = orderID
	resp.OrderDate = orderDate.UTC()
	resp.Status = order.Status(status).String()
	resp.Final = order.Status(status).IsFinal()

	rows, err := db.Raw(`
		SELECT
			product_id,
			quantity,
			unit_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, id).Rows()
	if err != nil {
		return GetOrderByIDQueryResponse{}, err
	}
	defer rows.Close()

	resp.Items = make([]OrderItemView, 0)
	resp.TotalAmount = decimal.Zero
	for rows.Next() {
		var item OrderItemView
		if err = rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return GetOrderByIDQueryResponse{}, err
		}

		resp.Items = append(resp.Items, item)
		resp.TotalAmount = resp.TotalAmount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if err = rows.Err(); err != nil {
		return GetOrderByIDQueryResponse{}, err
	}

	return resp, nil
}
