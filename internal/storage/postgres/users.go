package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/users"
)

type UserStore struct {
	db *sql.DB
}

var _ users.Store = (*UserStore)(nil)

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, name, email, password_hash, phone, avatar, join_date, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Avatar,
		&u.JoinDate, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, users.ErrUserNotFound
	}
	return u, err
}

// Create inserts the user and the default settings row in one transaction.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return execTX(ctx, s.db, 0, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO users (name, email, password_hash, phone)
			VALUES ($1, $2, $3, $4)
			RETURNING id, join_date, created_at, updated_at`,
			u.Name, u.Email, u.PasswordHash, u.Phone,
		).Scan(&u.ID, &u.JoinDate, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return users.ErrEmailTaken
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_settings (user_id, version) VALUES ($1, $2)`,
			u.ID, models.SettingsVersion); err != nil {
			return fmt.Errorf("insert default settings: %w", err)
		}
		return nil
	})
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

func (s *UserStore) ByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateProfile writes only the fields set in p.
func (s *UserStore) UpdateProfile(ctx context.Context, id int64, p users.ProfilePatch) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, p.Name, p.Email, p.Phone))
	if database.IsUniqueViolation(err) {
		return models.User{}, users.ErrEmailTaken
	}
	return u, err
}

func (s *UserStore) SetPassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	n, err := affected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) SetAvatar(ctx context.Context, id int64, url string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		UPDATE users SET avatar = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, url))
}

const addressColumns = `id, user_id, type, name, street, city, state, zip, country, phone, is_default, created_at`

func (s *UserStore) Addresses(ctx context.Context, userID int64) ([]models.Address, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM user_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query addresses: %w", err)
	}
	defer rows.Close()

	list := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Name, &a.Street, &a.City,
			&a.State, &a.Zip, &a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (s *UserStore) SaveAddress(ctx context.Context, a *models.Address) error {
	return execTX(ctx, s.db, 0, func(tx *sql.Tx) error {
		if a.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE user_addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`,
				a.UserID, a.ID); err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}

		if a.ID == 0 {
			err := tx.QueryRowContext(ctx, `
				INSERT INTO user_addresses (user_id, type, name, street, city, state, zip, country, phone, is_default)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				RETURNING id, created_at`,
				a.UserID, a.Type, a.Name, a.Street, a.City, a.State, a.Zip, a.Country, a.Phone, a.IsDefault,
			).Scan(&a.ID, &a.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert address: %w", err)
			}
			return nil
		}

		err := tx.QueryRowContext(ctx, `
			UPDATE user_addresses SET
				type = $3, name = $4, street = $5, city = $6, state = $7,
				zip = $8, country = $9, phone = $10, is_default = $11
			WHERE id = $1 AND user_id = $2
			RETURNING created_at`,
			a.ID, a.UserID, a.Type, a.Name, a.Street, a.City, a.State, a.Zip, a.Country, a.Phone, a.IsDefault,
		).Scan(&a.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return users.ErrAddressNotFound
		}
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		return nil
	})
}

func (s *UserStore) DeleteAddress(ctx context.Context, userID, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete address: %w", err)
	}
	n, err := affected(res)
	return n > 0, err
}

func (s *UserStore) CountAddresses(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_addresses WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return n, nil
}

// Settings lazily creates the default row for users registered before
// settings existed.
func (s *UserStore) Settings(ctx context.Context, userID int64) (models.UserSettings, error) {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, version) VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING`, userID, models.SettingsVersion); err != nil {
		if database.IsForeignKeyViolation(err) {
			return models.UserSettings{}, users.ErrUserNotFound
		}
		return models.UserSettings{}, fmt.Errorf("ensure settings: %w", err)
	}

	var st models.UserSettings
	n := &st.Notifications
	err := s.db.QueryRowContext(ctx, `
		SELECT version, user_id, theme, language, currency,
			notifications_push, notifications_order_updates, notifications_promotions,
			notifications_price_drops, notifications_back_in_stock, updated_at
		FROM user_settings WHERE user_id = $1`, userID,
	).Scan(&st.Version, &st.UserID, &st.Theme, &st.Language, &st.Currency,
		&n.Push, &n.OrderUpdates, &n.Promotions, &n.PriceDrops, &n.BackInStock, &st.UpdatedAt)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("get settings: %w", err)
	}
	return st, nil
}

func (s *UserStore) SaveSettings(ctx context.Context, st *models.UserSettings) error {
	n := st.Notifications
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_settings (user_id, version, theme, language, currency,
			notifications_push, notifications_order_updates, notifications_promotions,
			notifications_price_drops, notifications_back_in_stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			version = EXCLUDED.version,
			theme = EXCLUDED.theme,
			language = EXCLUDED.language,
			currency = EXCLUDED.currency,
			notifications_push = EXCLUDED.notifications_push,
			notifications_order_updates = EXCLUDED.notifications_order_updates,
			notifications_promotions = EXCLUDED.notifications_promotions,
			notifications_price_drops = EXCLUDED.notifications_price_drops,
			notifications_back_in_stock = EXCLUDED.notifications_back_in_stock,
			updated_at = NOW()
		RETURNING updated_at`,
		st.UserID, st.Version, st.Theme, st.Language, st.Currency,
		n.Push, n.OrderUpdates, n.Promotions, n.PriceDrops, n.BackInStock,
	).Scan(&st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
