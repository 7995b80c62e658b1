package service

import (
	"context"
	"errors"

	"marketplace/internal/entity"
	"marketplace/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// OrderService records purchases.
type OrderService struct {
	repo model.Repository
}

func NewOrderService(repo model.Repository) *OrderService {
	return &OrderService{repo: repo}
}

// CreateOrder buys one product for userID. Every call creates a new paid
// order; there is no deduplication.
func (s *OrderService) CreateOrder(ctx context.Context, userID, productID uint) (*entity.DbOrder, error) {
	order := &entity.DbOrder{
		UserID:    userID,
		ProductID: productID,
		Status:    entity.OrderStatusPaid,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":   order.ID,
		"user_id":    userID,
		"product_id": productID,
	}).Info("order created")
	return order, nil
}

// ListForUser returns the user's orders oldest first.
func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]entity.DbOrder, error) {
	return s.repo.ListOrdersByUser(ctx, userID)
}
