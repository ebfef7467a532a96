package main

import (
	"database/sql"

	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/storage/postgres"
	"gorm.io/gorm"
)

func postgresStores(db *sql.DB, gdb *gorm.DB, cfg config.Config) stores {
	return stores{
		catalog:       postgres.NewCatalogStore(gdb),
		carts:         postgres.NewCartRepo(db),
		wishlist:      postgres.NewWishlistStore(db),
		notifications: postgres.NewNotificationStore(db),
		orders:        postgres.NewOrderStore(db, cfg.Database.StatementTimeout),
		users:         postgres.NewUserStore(db),
		ping:          db.PingContext,
		close:         db.Close,
	}
}
