package model

import (
	"context"

	"marketplace/internal/entity"
)

// Repository defines every storage operation the service needs. Lookups
// return gorm.ErrRecordNotFound for missing rows and gorm.ErrDuplicatedKey
// for unique index violations.
type Repository interface {
	Ping(ctx context.Context) error

	// users
	CreateUser(ctx context.Context, user *entity.DbUser) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByID(ctx context.Context, id uint) (*entity.DbUser, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.DbUser, error)
	GetUserByUsername(ctx context.Context, username string) (*entity.DbUser, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*entity.DbUser, error)
	ListUsers(ctx context.Context, params *entity.UserQuery) ([]entity.DbUser, *entity.Meta, error)
	DeleteUserCascade(ctx context.Context, id uint) error
	CountUsers(ctx context.Context) (int64, error)

	// catalog
	CreateProduct(ctx context.Context, product *entity.DbProduct) error
	GetProduct(ctx context.Context, id uint) (*entity.DbProduct, error)
	ListProducts(ctx context.Context, params *entity.ProductQuery) ([]entity.DbProduct, error)
	UpdateProduct(ctx context.Context, id uint, updates entity.ProductUpdates) error
	DeleteProduct(ctx context.Context, id uint) error

	// orders
	CreateOrder(ctx context.Context, order *entity.DbOrder) error
	ListOrdersByUser(ctx context.Context, userID uint) ([]entity.DbOrder, error)
}
