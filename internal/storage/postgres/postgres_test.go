package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/logger"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notifications"
	"github.com/01moynul/storefront-golang/internal/orders"
	"github.com/01moynul/storefront-golang/internal/storage/postgres"
	"github.com/01moynul/storefront-golang/internal/users"
	"github.com/shopspring/decimal"
)

// openTestDB connects to TEST_DATABASE_URL and resets every table. Tests
// are skipped when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := database.OpenDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 10, MaxIdleConns: 5, ConnMaxLifetime: time.Minute})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := db.ExecContext(ctx, `TRUNCATE notifications, order_items, orders, cart, wishlist,
		user_settings, user_addresses, users, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return db
}

func insertProduct(t *testing.T, db *sql.DB, name, price string, stock int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	err := db.QueryRowContext(context.Background(),
		`INSERT INTO products (name, price, stock) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Price, p.Stock,
	).Scan(&p.ID)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return p
}

func createUser(t *testing.T, store *postgres.UserStore, email string) models.User {
	t.Helper()
	u := models.User{Name: "Ada", Email: email, PasswordHash: "x"}
	if err := store.Create(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func orderService(db *sql.DB, retention int) *orders.Service {
	return orders.NewService(postgres.NewOrderStore(db, 5*time.Second), nil, orders.Options{
		Pricing: orders.Pricing{
			FreeShippingThreshold: decimal.RequireFromString("50.00"),
			ShippingFee:           decimal.RequireFromString("9.99"),
			TaxRate:               decimal.RequireFromString("0.10"),
		},
		PricePolicy: config.PricePolicyStrict,
		TxTimeout:   5 * time.Second,
		Retention:   retention,
	}, logger.Discard())
}

var address = models.ShippingAddress{Name: "Ada", Street: "1 Loop Rd", City: "Nairobi", Country: "KE"}

func TestUserStore(t *testing.T) {
	db := openTestDB(t)
	store := postgres.NewUserStore(db)
	ctx := context.Background()

	u := createUser(t, store, "ada@example.com")
	dup := models.User{Name: "Imposter", Email: "ADA@example.com", PasswordHash: "x"}
	if err := store.Create(ctx, &dup); !errors.Is(err, users.ErrEmailTaken) {
		t.Fatalf("duplicate create err = %v", err)
	}

	got, err := store.ByEmail(ctx, "Ada@Example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("ByEmail = %+v, %v", got, err)
	}
	if _, err := store.ByID(ctx, u.ID+1000); !errors.Is(err, users.ErrUserNotFound) {
		t.Fatalf("ByID unknown err = %v", err)
	}

	st, err := store.Settings(ctx, u.ID)
	if err != nil || st.Theme != "light" || !st.Notifications.Push {
		t.Fatalf("Settings = %+v, %v", st, err)
	}
	st.Theme = "dark"
	if err := store.SaveSettings(ctx, &st); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if again, _ := store.Settings(ctx, u.ID); again.Theme != "dark" {
		t.Fatalf("theme not saved: %+v", again)
	}

	home := models.Address{UserID: u.ID, Type: "home", Street: "a", City: "b", Country: "c", IsDefault: true}
	work := models.Address{UserID: u.ID, Type: "work", Street: "d", City: "e", Country: "f", IsDefault: true}
	for _, a := range []*models.Address{&home, &work} {
		if err := store.SaveAddress(ctx, a); err != nil {
			t.Fatalf("SaveAddress: %v", err)
		}
	}
	list, err := store.Addresses(ctx, u.ID)
	if err != nil || len(list) != 2 || list[0].ID != work.ID || list[1].IsDefault {
		t.Fatalf("Addresses = %+v, %v", list, err)
	}
}

func TestCartAndWishlist(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, postgres.NewUserStore(db), "ada@example.com")
	p := insertProduct(t, db, "Coffee Mug", "12.50", 5)

	carts := postgres.NewCartRepo(db)
	owner := cart.User(u.ID)
	if _, err := carts.Add(ctx, owner, p.ID, 2); err != nil {
		t.Fatalf("Add: %v", err)
	}
	line, err := carts.Add(ctx, owner, p.ID, 3)
	if err != nil || line.Quantity != 5 || line.Name != "Coffee Mug" {
		t.Fatalf("Add again = %+v, %v", line, err)
	}
	if line, err := carts.Add(ctx, owner, p.ID, cart.MaxQuantity); err != nil || line.Quantity != cart.MaxQuantity {
		t.Fatalf("Add past the cap = %+v, %v", line, err)
	}
	if _, err := carts.Add(ctx, owner, p.ID+99, 1); !errors.Is(err, catalog.ErrProductNotFound) {
		t.Fatalf("unknown product err = %v", err)
	}
	if _, err := carts.SetQuantity(ctx, owner, p.ID+99, 1); !errors.Is(err, cart.ErrLineNotFound) {
		t.Fatalf("SetQuantity missing err = %v", err)
	}

	wl := postgres.NewWishlistStore(db)
	added, err := wl.Add(ctx, u.ID, p.ID)
	if err != nil || !added {
		t.Fatalf("wishlist Add = %v, %v", added, err)
	}
	if added, _ := wl.Add(ctx, u.ID, p.ID); added {
		t.Fatal("second wishlist add reported a new row")
	}
	entries, err := wl.List(ctx, u.ID)
	if err != nil || len(entries) != 1 || entries[0].Product.ID != p.ID {
		t.Fatalf("wishlist List = %+v, %v", entries, err)
	}
}

func TestNotificationRetention(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, postgres.NewUserStore(db), "ada@example.com")

	svc := notifications.NewService(postgres.NewNotificationStore(db), nil, 5, logger.Discard())
	for i := 0; i < 8; i++ {
		if _, err := svc.Add(ctx, u.ID, "t", "m", "", ""); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	list, err := svc.ListRecent(ctx, u.ID, 50)
	if err != nil || len(list) != 5 {
		t.Fatalf("kept %d (%v), want 5", len(list), err)
	}
	if _, err := svc.MarkRead(ctx, u.ID+1, list[0].ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("MarkRead by another user err = %v", err)
	}
}

func TestPlaceOrder(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, postgres.NewUserStore(db), "ada@example.com")
	mug := insertProduct(t, db, "Coffee Mug", "12.50", 5)
	if _, err := postgres.NewCartRepo(db).Add(ctx, cart.User(u.ID), mug.ID, 2); err != nil {
		t.Fatal(err)
	}

	svc := orderService(db, 50)
	placed, err := svc.PlaceOrder(ctx, orders.PlaceOrderInput{
		UserID:          u.ID,
		ShippingAddress: address,
		PaymentMethod:   models.PaymentCard,
		Lines:           []models.OrderLine{{ProductID: mug.ID, Quantity: 2, Price: mug.Price}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if placed.Order.Total.StringFixed(2) != "37.49" || placed.Order.ShippingAddress != address {
		t.Fatalf("order = %+v", placed.Order)
	}

	var stock, cartRows, notes int
	db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, mug.ID).Scan(&stock)
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart WHERE user_id = $1`, u.ID).Scan(&cartRows)
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, u.ID).Scan(&notes)
	if stock != 3 || cartRows != 0 || notes != 1 {
		t.Fatalf("stock %d, cart rows %d, notifications %d", stock, cartRows, notes)
	}

	got, err := svc.Get(ctx, u.ID, placed.Order.ID)
	if err != nil || len(got.Items) != 1 || got.Order.ItemsCount != 1 {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if _, err := svc.UpdateStatus(ctx, u.ID, placed.Order.ID, models.OrderStatusDelivered); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, u.ID, placed.Order.ID, models.OrderStatusCancelled); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("cancel after delivery err = %v", err)
	}
}

func TestPlaceOrderRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	u := createUser(t, postgres.NewUserStore(db), "ada@example.com")
	mug := insertProduct(t, db, "Coffee Mug", "12.50", 5)
	lamp := insertProduct(t, db, "Desk Lamp", "34.99", 1)

	svc := orderService(db, 50)
	_, err := svc.PlaceOrder(ctx, orders.PlaceOrderInput{
		UserID:          u.ID,
		ShippingAddress: address,
		PaymentMethod:   models.PaymentCard,
		Lines: []models.OrderLine{
			{ProductID: mug.ID, Quantity: 1, Price: mug.Price},
			{ProductID: lamp.ID, Quantity: 2, Price: lamp.Price},
		},
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	var stock, orderRows int
	db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, mug.ID).Scan(&stock)
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&orderRows)
	if stock != 5 || orderRows != 0 {
		t.Fatalf("partial write: mug stock %d, orders %d", stock, orderRows)
	}
}

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userStore := postgres.NewUserStore(db)
	lamp := insertProduct(t, db, "Desk Lamp", "34.99", 3)
	svc := orderService(db, 50)

	const buyers = 6
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		u := createUser(t, userStore, "buyer"+string(rune('a'+i))+"@example.com")
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(ctx, orders.PlaceOrderInput{
				UserID:          u.ID,
				ShippingAddress: address,
				PaymentMethod:   models.PaymentCOD,
				Lines:           []models.OrderLine{{ProductID: lamp.ID, Quantity: 1, Price: lamp.Price}},
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var placed, conflicts int
	for err := range results {
		switch {
		case err == nil:
			placed++
		case apperr.Is(err, apperr.KindConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if placed != 3 || conflicts != 3 {
		t.Fatalf("placed %d, conflicts %d; want 3 and 3", placed, conflicts)
	}
	var stock int
	db.QueryRowContext(ctx, `SELECT stock FROM products WHERE id = $1`, lamp.ID).Scan(&stock)
	if stock != 0 {
		t.Fatalf("stock = %d, want 0", stock)
	}
}

func TestCatalogStore(t *testing.T) {
	db := openTestDB(t)
	gdb, err := database.OpenGorm(db)
	if err != nil {
		t.Fatal(err)
	}
	if err := database.Seed(context.Background(), gdb); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	svc := catalog.NewService(postgres.NewCatalogStore(gdb))
	ctx := context.Background()
	page, err := svc.List(ctx, models.ProductFilter{Sort: models.SortPriceAsc, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Products) != 3 || page.Total != int64(len(database.SampleProducts())) {
		t.Fatalf("page: %d products, total %d", len(page.Products), page.Total)
	}
	for i := 1; i < len(page.Products); i++ {
		if page.Products[i].Price.LessThan(page.Products[i-1].Price) {
			t.Fatalf("not sorted by price: %+v", page.Products)
		}
	}

	cats, err := svc.Categories(ctx)
	if err != nil || len(cats) == 0 || cats[0].Slug == "" || cats[0].Count == 0 {
		t.Fatalf("Categories = %+v, %v", cats, err)
	}
	if _, err := svc.Get(ctx, 999999); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Get unknown err = %v", err)
	}
}
