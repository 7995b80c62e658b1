package sql

import (
	"context"
	"fmt"

	"marketplace/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrder checks that the product exists and inserts the order in the
// same transaction. A missing product yields gorm.ErrRecordNotFound and no
// row is written.
func (r *GormRepository) CreateOrder(ctx context.Context, order *entity.DbOrder) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if order == nil {
		return fmt.Errorf("order is nil")
	}
	if order.ProductID == 0 {
		return gorm.ErrRecordNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lookup := tx.Select("id")
		if r.supportsRowLocks(tx) {
			lookup = lookup.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var product entity.DbProduct
		if err := lookup.First(&product, order.ProductID).Error; err != nil {
			return err
		}
		return tx.Create(order).Error
	})
}

// ListOrdersByUser returns a user's orders oldest first.
func (r *GormRepository) ListOrdersByUser(ctx context.Context, userID uint) ([]entity.DbOrder, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	orders := make([]entity.DbOrder, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
