package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/users"
)

type UserStore struct {
	db *DB
}

var _ users.Store = (*UserStore)(nil)

func (s *UserStore) emailTaken(email string, except int64) bool {
	for _, u := range s.db.st.users {
		if u.ID != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.emailTaken(u.Email, 0) {
		return users.ErrEmailTaken
	}
	now := s.db.now()
	u.ID = s.db.st.id()
	u.JoinDate, u.CreatedAt, u.UpdatedAt = now, now, now
	s.db.st.users[u.ID] = *u

	st := models.DefaultSettings(u.ID)
	st.UpdatedAt = now
	s.db.st.settings[u.ID] = st
	return nil
}

func (s *UserStore) ByEmail(_ context.Context, email string) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	for _, u := range s.db.st.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, users.ErrUserNotFound
}

func (s *UserStore) ByID(_ context.Context, id int64) (models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	u, ok := s.db.st.users[id]
	if !ok {
		return models.User{}, users.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) UpdateProfile(_ context.Context, id int64, p users.ProfilePatch) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.st.users[id]
	if !ok {
		return models.User{}, users.ErrUserNotFound
	}
	if p.Email != nil {
		if s.emailTaken(*p.Email, id) {
			return models.User{}, users.ErrEmailTaken
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		phone := *p.Phone
		u.Phone = &phone
	}
	u.UpdatedAt = s.db.now()
	s.db.st.users[id] = u
	return u, nil
}

func (s *UserStore) SetPassword(_ context.Context, id int64, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.st.users[id]
	if !ok {
		return users.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.db.now()
	s.db.st.users[id] = u
	return nil
}

func (s *UserStore) SetAvatar(_ context.Context, id int64, url string) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.st.users[id]
	if !ok {
		return models.User{}, users.ErrUserNotFound
	}
	u.Avatar = &url
	u.UpdatedAt = s.db.now()
	s.db.st.users[id] = u
	return u, nil
}

func (s *UserStore) Addresses(_ context.Context, userID int64) ([]models.Address, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var out []models.Address
	for _, a := range s.db.st.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	// Default first, then newest.
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *UserStore) SaveAddress(_ context.Context, a *models.Address) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if a.ID != 0 {
		existing, ok := s.db.st.addresses[a.ID]
		if !ok || existing.UserID != a.UserID {
			return users.ErrAddressNotFound
		}
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = s.db.st.id()
		a.CreatedAt = s.db.now()
	}
	if a.IsDefault {
		for id, other := range s.db.st.addresses {
			if other.UserID == a.UserID && other.IsDefault {
				other.IsDefault = false
				s.db.st.addresses[id] = other
			}
		}
	}
	s.db.st.addresses[a.ID] = *a
	return nil
}

func (s *UserStore) DeleteAddress(_ context.Context, userID, id int64) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	a, ok := s.db.st.addresses[id]
	if !ok || a.UserID != userID {
		return false, nil
	}
	delete(s.db.st.addresses, id)
	return true, nil
}

func (s *UserStore) CountAddresses(_ context.Context, userID int64) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	var n int64
	for _, a := range s.db.st.addresses {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *UserStore) Settings(_ context.Context, userID int64) (models.UserSettings, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st, ok := s.db.st.settings[userID]
	if !ok {
		st = models.DefaultSettings(userID)
		st.UpdatedAt = s.db.now()
		s.db.st.settings[userID] = st
	}
	return st, nil
}

func (s *UserStore) SaveSettings(_ context.Context, st *models.UserSettings) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	st.UpdatedAt = s.db.now()
	s.db.st.settings[st.UserID] = *st
	return nil
}
