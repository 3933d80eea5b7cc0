package app_test

import (
	"context"
	"fmt"
	"sync"

	"renthub/internal/domain"
)

// fakeStore is an in-memory Store with the same conditional-insert and
// atomic-increment semantics as the MySQL repo, so concurrency tests exercise
// the services against a faithful contract.
type fakeStore struct {
	mu          sync.Mutex
	seq         int
	codes       map[string]string // unique_code -> property id
	props       map[string]domain.Property
	rooms       map[string]domain.Room
	ratings     []domain.Rating
	users       map[string]domain.User // keyed by email
	rentals     map[string]domain.Rental
	payments    map[string]*domain.Payment
	maintenance []domain.MaintenanceRequest
	emails      []domain.EmailLog
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		codes:    map[string]string{},
		props:    map[string]domain.Property{},
		rooms:    map[string]domain.Room{},
		users:    map[string]domain.User{},
		rentals:  map[string]domain.Rental{},
		payments: map[string]*domain.Payment{},
	}
}

// nextID must be called with mu held.
func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) CreateUser(ctx context.Context, u domain.User) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return "", fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	u.ID = f.nextID("user")
	f.users[u.Email] = u
	return u.ID, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (f *fakeStore) FindUserByCredentials(ctx context.Context, email, password string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.Password != password {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) CreateProperty(ctx context.Context, p domain.Property) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.codes[p.UniqueCode]; taken {
		return "", fmt.Errorf("unique_code %s: %w", p.UniqueCode, domain.ErrConflict)
	}
	p.ID = f.nextID("prop")
	f.codes[p.UniqueCode] = p.ID
	f.props[p.ID] = p
	return p.ID, nil
}

func (f *fakeStore) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return domain.Property{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) FindPropertyByCode(ctx context.Context, code, ownerID string) (domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.props {
		if p.UniqueCode == code && p.OwnerID == ownerID {
			return p, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}

func (f *fakeStore) ListProperties(ctx context.Context, q domain.PropertiesQuery) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Property
	for _, p := range f.props {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) CreateRoom(ctx context.Context, rm domain.Room) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm.ID = f.nextID("room")
	f.rooms[rm.ID] = rm
	return rm.ID, nil
}

func (f *fakeStore) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rm, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return rm, nil
}

func (f *fakeStore) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	return nil, nil
}

func (f *fakeStore) CreateRating(ctx context.Context, r domain.Rating) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subj := r.Subject()
	switch subj.Kind {
	case domain.SubjectRoom:
		rm, ok := f.rooms[subj.ID]
		if !ok {
			return "", fmt.Errorf("room %s: %w", subj.ID, domain.ErrNotFound)
		}
		rm.Ratings.Sum += int64(r.Score)
		rm.Ratings.Count++
		f.rooms[subj.ID] = rm
	case domain.SubjectProperty:
		p, ok := f.props[subj.ID]
		if !ok {
			return "", fmt.Errorf("property %s: %w", subj.ID, domain.ErrNotFound)
		}
		p.Ratings.Sum += int64(r.Score)
		p.Ratings.Count++
		f.props[subj.ID] = p
	}
	r.ID = f.nextID("rating")
	f.ratings = append(f.ratings, r)
	return r.ID, nil
}

func (f *fakeStore) RecomputeAggregate(ctx context.Context, s domain.Subject) error { return nil }
func (f *fakeStore) ListSubjects(ctx context.Context) ([]domain.Subject, error)     { return nil, nil }

func (f *fakeStore) CreateRental(ctx context.Context, r domain.Rental) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID("rental")
	f.rentals[r.ID] = r
	return r.ID, nil
}

func (f *fakeStore) GetRental(ctx context.Context, id string) (domain.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok {
		return domain.Rental{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListRentals(ctx context.Context, q domain.RentalsQuery) ([]domain.Rental, error) {
	return nil, nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, p domain.Payment) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID("payment")
	f.payments[p.ID] = &p
	return p.ID, nil
}

func (f *fakeStore) MarkPaymentEmailed(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Emailed = true
	return nil
}

func (f *fakeStore) CreateMaintenance(ctx context.Context, m domain.MaintenanceRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.nextID("maint")
	f.maintenance = append(f.maintenance, m)
	return m.ID, nil
}

func (f *fakeStore) ListMaintenance(ctx context.Context, q domain.MaintenanceQuery) ([]domain.MaintenanceRequest, error) {
	return nil, nil
}

func (f *fakeStore) LogEmail(ctx context.Context, e domain.EmailLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, e)
	return nil
}
