package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/auth"
	"marketplace/internal/config"
	"marketplace/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const demoSellerUsername = "demo_seller"

type productSeed struct {
	Name        string
	Price       string
	Description string
}

var demoProducts = []productSeed{
	{Name: "Laptop", Price: "500.00", Description: "Powerful gaming laptop"},
	{Name: "Smartphone", Price: "300.00", Description: "Brand new smartphone"},
}

// SeedDemoCatalog creates a demo seller with a small catalog when
// SEED_DEMO_DATA is set. It never creates an admin account and does nothing
// if the seller already exists.
func SeedDemoCatalog(ctx context.Context, repo Repository, cfg config.Config) error {
	if repo == nil || !cfg.SeedDemoData {
		return nil
	}

	password := strings.TrimSpace(cfg.SeedSellerPassword)
	if password == "" {
		return fmt.Errorf("SEED_SELLER_PASSWORD is required when SEED_DEMO_DATA is enabled")
	}

	_, err := repo.GetUserByUsername(ctx, demoSellerUsername)
	switch {
	case err == nil:
		logrus.WithField("username", demoSellerUsername).Debug("demo catalog already seeded")
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := auth.HashPasswordWithCost(password, cfg.BcryptCost)
	if err != nil {
		return err
	}
	seller := &entity.DbUser{
		Username:     demoSellerUsername,
		PasswordHash: hash,
		Role:         entity.RoleSeller,
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, seller); err != nil {
		return fmt.Errorf("create demo seller: %w", err)
	}

	for _, seed := range demoProducts {
		product := &entity.DbProduct{
			Name:        seed.Name,
			Price:       decimal.RequireFromString(seed.Price),
			Description: seed.Description,
			OwnerID:     seller.ID,
		}
		if err := repo.CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("create demo product %q: %w", seed.Name, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"seller_id": seller.ID,
		"products":  len(demoProducts),
	}).Info("seeded demo catalog")
	return nil
}
