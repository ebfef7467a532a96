package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/cart"
	"github.com/01moynul/storefront-golang/internal/catalog"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/logger"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notifications"
	"github.com/01moynul/storefront-golang/internal/orders"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/internal/storage/memory"
	"github.com/01moynul/storefront-golang/internal/users"
	"github.com/01moynul/storefront-golang/internal/wishlist"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t      *testing.T
	router *gin.Engine
	db     *memory.DB
	mug    models.Product
	tee    models.Product
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log := logger.Discard()
	d := decimal.RequireFromString
	cfg := config.Config{
		AppEnv:      "test",
		BaseURL:     "http://localhost:8080",
		UploadDir:   t.TempDir(),
		StoreDriver: config.DriverMemory,
	}

	db := memory.New()
	mug := db.PutProduct(models.Product{Name: "Coffee Mug", Category: "Kitchen", Price: d("12.50"), Stock: 5})
	tee := db.PutProduct(models.Product{Name: "Cotton Tee", Category: "Apparel", Price: d("20.00"), OriginalPrice: d("25.00"), Stock: 2})

	tokens := auth.NewTokenManager("routes-test", time.Hour)
	hub := notifications.NewHub(nil, log)
	t.Cleanup(hub.Close)

	catalogSvc := catalog.NewService(db.Catalog())
	wishlistSvc := wishlist.NewService(db.Wishlist())
	notifySvc := notifications.NewService(db.Notifications(), hub, 50, log)
	orderSvc := orders.NewService(db.Orders(), hub, orders.Options{
		Pricing: orders.Pricing{
			FreeShippingThreshold: d("50.00"),
			ShippingFee:           d("9.99"),
			TaxRate:               d("0.10"),
		},
		PricePolicy: config.PricePolicyStrict,
		TxTimeout:   5 * time.Second,
		Retention:   50,
	}, log)

	h := &handlers.Handlers{
		Catalog:       catalogSvc,
		Cart:          cart.NewService(db.Carts(), cart.NewSessionRepository(db.Catalog(), time.Hour), log),
		Wishlist:      wishlistSvc,
		Orders:        orderSvc,
		Notifications: notifySvc,
		Users: users.NewService(db.Users(), tokens, users.StatsSources{
			Orders:   orderSvc.Count,
			Wishlist: wishlistSvc.Count,
			Unread:   notifySvc.UnreadCount,
		}, log),
		Hub:    hub,
		Config: cfg,
		Log:    log,
	}
	router := routes.SetupRouter(h, routes.Deps{
		Tokens:      tokens,
		AuthLimiter: middleware.NewRateLimiter(5, 15*time.Minute),
		Log:         log,
	})
	return &api{t: t, router: router, db: db, mug: mug, tee: tee}
}

type call struct {
	method, path string
	body         any
	token        string
	headers      map[string]string
}

func (a *api) do(c call) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		if err := json.NewEncoder(&buf).Encode(c.body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func expect(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d; body %s", w.Code, status, w.Body.String())
	}
}

func (a *api) register(email string) string {
	a.t.Helper()
	w := a.do(call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"name": "Ada", "email": email, "password": "Passw0rdOK",
	}})
	expect(a.t, w, http.StatusCreated)
	return decode[users.AuthResult](a.t, w).Token
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	w := a.do(call{method: http.MethodGet, path: "/api/health"})
	expect(t, w, http.StatusOK)
	body := decode[map[string]any](t, w)
	if body["status"] != "ok" || body["store"] != config.DriverMemory {
		t.Fatalf("health = %v", body)
	}
	if w.Header().Get(middleware.HeaderRequestID) == "" {
		t.Fatal("missing request id header")
	}
}

func TestProducts(t *testing.T) {
	a := newAPI(t)

	w := a.do(call{method: http.MethodGet, path: "/api/products?category=Kitchen"})
	expect(t, w, http.StatusOK)
	page := decode[catalog.Page](t, w)
	if page.Total != 1 || page.Products[0].ID != a.mug.ID {
		t.Fatalf("page = %+v", page)
	}

	expect(t, a.do(call{method: http.MethodGet, path: "/api/products/abc"}), http.StatusBadRequest)
	expect(t, a.do(call{method: http.MethodGet, path: "/api/products/9999"}), http.StatusNotFound)

	w = a.do(call{method: http.MethodGet, path: "/api/products/meta/deals"})
	expect(t, w, http.StatusOK)
	if deals := decode[[]models.Product](t, w); len(deals) != 1 || deals[0].ID != a.tee.ID {
		t.Fatalf("deals = %+v", deals)
	}

	w = a.do(call{method: http.MethodGet, path: "/api/products/meta/categories"})
	expect(t, w, http.StatusOK)
	if cats := decode[[]models.Category](t, w); len(cats) != 2 || cats[0].Slug != "apparel" {
		t.Fatalf("categories = %+v", cats)
	}
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	dup := a.do(call{method: http.MethodPost, path: "/api/auth/register", body: map[string]string{
		"name": "Ada", "email": "ADA@example.com", "password": "Passw0rdOK",
	}})
	expect(t, dup, http.StatusConflict)

	w := a.do(call{method: http.MethodGet, path: "/api/auth/me", token: token})
	expect(t, w, http.StatusOK)
	if me := decode[users.Profile](t, w); me.Email != "ada@example.com" {
		t.Fatalf("me = %+v", me)
	}

	expect(t, a.do(call{method: http.MethodGet, path: "/api/auth/me"}), http.StatusUnauthorized)

	bad := a.do(call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
		"email": "ada@example.com", "password": "nope",
	}})
	expect(t, bad, http.StatusUnauthorized)
	if got := decode[map[string]string](t, bad)["error"]; got != "Invalid email or password" {
		t.Fatalf("login error = %q", got)
	}
}

func TestLoginRateLimit(t *testing.T) {
	a := newAPI(t)
	login := call{method: http.MethodPost, path: "/api/auth/login", body: map[string]string{
		"email": "ghost@example.com", "password": "Passw0rdOK",
	}}
	for i := 1; i <= 5; i++ {
		expect(t, a.do(login), http.StatusUnauthorized)
	}
	w := a.do(login)
	expect(t, w, http.StatusTooManyRequests)
	if got := decode[map[string]string](t, w)["error"]; got != "Too many attempts, please try again later" {
		t.Fatalf("error = %q", got)
	}
}

func TestGuestCartAndMerge(t *testing.T) {
	a := newAPI(t)

	w := a.do(call{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": a.mug.ID, "quantity": 2}})
	expect(t, w, http.StatusCreated)
	session := w.Header().Get(middleware.HeaderCartSession)
	if session == "" {
		t.Fatal("guest was not issued a cart session")
	}
	guest := map[string]string{middleware.HeaderCartSession: session}

	w = a.do(call{method: http.MethodPost, path: "/api/cart", body: map[string]any{"productId": a.mug.ID}, headers: guest})
	expect(t, w, http.StatusCreated)

	w = a.do(call{method: http.MethodGet, path: "/api/cart", headers: guest})
	expect(t, w, http.StatusOK)
	if lines := decode[[]models.CartLine](t, w); len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("guest cart = %+v", lines)
	}

	token := a.register("ada@example.com")
	w = a.do(call{method: http.MethodPost, path: "/api/cart/merge", token: token, headers: guest})
	expect(t, w, http.StatusOK)
	if lines := decode[[]models.CartLine](t, w); len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("merged cart = %+v", lines)
	}

	w = a.do(call{method: http.MethodGet, path: "/api/cart", headers: guest})
	if lines := decode[[]models.CartLine](t, w); len(lines) != 0 {
		t.Fatalf("guest cart survived merge: %+v", lines)
	}

	w = a.do(call{method: http.MethodPut, path: "/api/cart/" + itoa(a.mug.ID), token: token, body: map[string]int{"quantity": 0}})
	expect(t, w, http.StatusOK)
	if removed := decode[map[string]any](t, w)["removed"]; removed != true {
		t.Fatalf("zero quantity did not remove: %s", w.Body.String())
	}
	expect(t, a.do(call{method: http.MethodDelete, path: "/api/cart/" + itoa(a.mug.ID), token: token}), http.StatusNotFound)
}

func TestCheckout(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")
	expect(t, a.do(call{method: http.MethodPost, path: "/api/cart", token: token, body: map[string]any{"productId": a.mug.ID, "quantity": 2}}), http.StatusCreated)

	order := map[string]any{
		"items": []map[string]any{{"productId": a.mug.ID, "quantity": 2, "price": 12.50}},
		"shippingAddress": map[string]string{
			"name": "Ada", "street": "1 Loop Rd", "city": "Nairobi", "country": "KE",
		},
		"paymentMethod": "mpesa",
	}
	w := a.do(call{method: http.MethodPost, path: "/api/orders", token: token, body: order})
	expect(t, w, http.StatusCreated)
	placed := decode[orders.Placement](t, w)
	// 25.00 + 9.99 shipping + 2.50 tax
	if placed.Order.Total.StringFixed(2) != "37.49" || len(placed.Items) != 1 {
		t.Fatalf("placement = %+v", placed)
	}
	if !strings.HasPrefix(placed.Order.OrderNumber, "ORD-") {
		t.Fatalf("order number = %q", placed.Order.OrderNumber)
	}

	w = a.do(call{method: http.MethodGet, path: "/api/cart", token: token})
	if lines := decode[[]models.CartLine](t, w); len(lines) != 0 {
		t.Fatalf("cart not emptied by checkout: %+v", lines)
	}

	stale := map[string]any{
		"items":           []map[string]any{{"productId": a.tee.ID, "quantity": 1, "price": 25.00}},
		"shippingAddress": order["shippingAddress"],
		"paymentMethod":   "card",
	}
	expect(t, a.do(call{method: http.MethodPost, path: "/api/orders", token: token, body: stale}), http.StatusConflict)

	orderPath := "/api/orders/" + itoa(placed.Order.ID)
	expect(t, a.do(call{method: http.MethodGet, path: orderPath, token: token}), http.StatusOK)
	other := a.register("bob@example.com")
	expect(t, a.do(call{method: http.MethodGet, path: orderPath, token: other}), http.StatusNotFound)

	expect(t, a.do(call{method: http.MethodPut, path: orderPath + "/status", token: token, body: map[string]string{"status": "shipped"}}), http.StatusOK)
	expect(t, a.do(call{method: http.MethodPut, path: orderPath + "/status", token: token, body: map[string]string{"status": "pending"}}), http.StatusConflict)

	w = a.do(call{method: http.MethodGet, path: "/api/notifications/unread-count", token: token})
	expect(t, w, http.StatusOK)
	if n := decode[map[string]int](t, w)["count"]; n != 2 {
		t.Fatalf("unread = %d, want 2", n)
	}

	w = a.do(call{method: http.MethodGet, path: "/api/orders/export", token: token})
	expect(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("export content type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty export")
	}

	w = a.do(call{method: http.MethodGet, path: "/api/users/stats", token: token})
	expect(t, w, http.StatusOK)
	if st := decode[models.UserStats](t, w); st.Orders != 1 || st.Unread != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestQueryTokenOnlyOnStream(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	expect(t, a.do(call{method: http.MethodGet, path: "/api/orders?token=" + token}), http.StatusUnauthorized)
	expect(t, a.do(call{method: http.MethodGet, path: "/api/notifications/stream"}), http.StatusUnauthorized)
	// Authenticated, but a plain GET is not a websocket handshake.
	expect(t, a.do(call{method: http.MethodGet, path: "/api/notifications/stream?token=" + token}), http.StatusBadRequest)
}

func TestWishlistToggle(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")
	body := map[string]any{"productId": a.tee.ID}

	w := a.do(call{method: http.MethodPost, path: "/api/wishlist/toggle", token: token, body: body})
	expect(t, w, http.StatusOK)
	if in := decode[map[string]bool](t, w)["inWishlist"]; !in {
		t.Fatal("toggle did not add")
	}
	expect(t, a.do(call{method: http.MethodPost, path: "/api/wishlist", token: token, body: body}), http.StatusOK)

	w = a.do(call{method: http.MethodGet, path: "/api/wishlist", token: token})
	if entries := decode[[]models.WishlistEntry](t, w); len(entries) != 1 {
		t.Fatalf("wishlist = %+v", entries)
	}
	expect(t, a.do(call{method: http.MethodGet, path: "/api/wishlist"}), http.StatusUnauthorized)
}

func TestAssistantDisabled(t *testing.T) {
	a := newAPI(t)
	w := a.do(call{method: http.MethodPost, path: "/api/assistant/chat", body: map[string]string{"message": "any mugs?"}})
	expect(t, w, http.StatusServiceUnavailable)
}

func TestSettingsRoundTrip(t *testing.T) {
	a := newAPI(t)
	token := a.register("ada@example.com")

	w := a.do(call{method: http.MethodPut, path: "/api/users/settings", token: token, body: map[string]any{
		"theme":         "dark",
		"notifications": map[string]bool{"promotions": false},
	}})
	expect(t, w, http.StatusOK)

	w = a.do(call{method: http.MethodGet, path: "/api/users/settings", token: token})
	expect(t, w, http.StatusOK)
	st := decode[models.UserSettings](t, w)
	if st.Theme != "dark" || st.Notifications.Promotions || !st.Notifications.Push {
		t.Fatalf("settings = %+v", st)
	}
	expect(t, a.do(call{method: http.MethodPut, path: "/api/users/settings", token: token, body: map[string]string{"currency": "XYZ"}}), http.StatusBadRequest)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
