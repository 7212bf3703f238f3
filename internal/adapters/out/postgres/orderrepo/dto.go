// Package orderrepo maps the order aggregate to the orders and order_items
// tables and implements ports.OrderRepository on top of GORM.
package orderrepo

import (
	"time"

	"orders/internal/core/domain/model/kernel"
	"orders/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is one row of the orders table. Version backs optimistic
// concurrency and grows by one on every update.
type OrderDTO struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID         string    `gorm:"not null;index"`
	Status             int       `gorm:"not null;index"`
	TrackingNumber     string    `gorm:"not null;default:''"`
	CancellationReason string    `gorm:"not null;default:''"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
	Version            int       `gorm:"not null;default:0"`

	Items []OrderItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one line item row. Position keeps the placement order.
type OrderItemDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(aggregate *order.Order) OrderDTO {
	orderID := aggregate.ID().Google()

	items := aggregate.Items()
	dtoItems := make([]OrderItemDTO, 0, len(items))
	for i, item := range items {
		dtoItems = append(dtoItems, OrderItemDTO{
			ID:        item.ID().Google(),
			OrderID:   orderID,
			Position:  i,
			ProductID: item.ProductID(),
			Quantity:  item.Quantity(),
			UnitPrice: item.UnitPrice(),
		})
	}

	return OrderDTO{
		ID:                 orderID,
		CustomerID:         aggregate.CustomerID(),
		Status:             int(aggregate.Status()),
		TrackingNumber:     aggregate.TrackingNumber(),
		CancellationReason: aggregate.CancellationReason(),
		CreatedAt:          aggregate.CreatedAt(),
		Version:            aggregate.Version(),
		Items:              dtoItems,
	}
}

// toDomain rebuilds the aggregate through RestoreOrder, so rows that break an
// invariant surface as validation errors.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.FromGoogleUUID(dto.ID)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		itemID, err := kernel.FromGoogleUUID(itemDTO.ID)
		if err != nil {
			return nil, err
		}

		item, err := order.NewLineItem(itemID, itemDTO.ProductID, itemDTO.Quantity, itemDTO.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id,
		dto.CustomerID,
		items,
		dto.CreatedAt,
		order.Status(dto.Status),
		dto.TrackingNumber,
		dto.CancellationReason,
		dto.Version,
	)
}
