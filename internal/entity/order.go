package entity

import "time"

// OrderStatus is the lifecycle state of an order. Only OrderStatusPaid is
// produced today; pending and shipped are reserved.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusShipped OrderStatus = "shipped"
)

// DbOrder records one purchase of one product.
type DbOrder struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	UserID    uint        `gorm:"column:user_id;index;not null" json:"user_id"`
	ProductID uint        `gorm:"column:product_id;index;not null" json:"product_id"`
	Status    OrderStatus `gorm:"column:status;type:varchar(20);not null" json:"status"`
}

// TableName overrides default naming.
func (DbOrder) TableName() string {
	return "orders"
}

type OrderSummary struct {
	ID        uint        `json:"id"`
	UserID    uint        `json:"user_id"`
	ProductID uint        `json:"product_id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

type PurchaseResponse struct {
	Message string       `json:"message"`
	Order   OrderSummary `json:"order"`
}
