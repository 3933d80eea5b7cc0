package app

import (
	"context"
	"errors"
	"fmt"

	"renthub/internal/domain"
)

// MaxCodeProbes caps the unique-code suffix probe so a pathological store
// state fails with ErrStoreExhausted instead of looping forever.
const MaxCodeProbes = 1000

type ListingService struct {
	store    domain.Store
	probeCap int
}

func NewListingService(store domain.Store) *ListingService {
	return &ListingService{store: store, probeCap: MaxCodeProbes}
}

// CreateProperty assigns the property its unique code and persists it. The
// candidate code and the insert are a single conditional write against the
// store's uniqueness constraint, so concurrent creations with colliding
// canonical addresses serialize on the constraint rather than in process.
func (s *ListingService) CreateProperty(ctx context.Context, p domain.Property) (domain.Property, error) {
	if p.OwnerID == "" || p.HouseNumber == "" || p.Street == "" || p.City == "" || p.State == "" {
		return domain.Property{}, fmt.Errorf("create property: %w", domain.ErrInvalidInput)
	}

	base := GenerateCode(p.HouseNumber, p.Street, p.City, p.State)
	for i := 0; i <= s.probeCap; i++ {
		p.UniqueCode = SuffixCode(base, i)
		id, err := s.store.CreateProperty(ctx, p)
		if errors.Is(err, domain.ErrConflict) {
			continue // code taken, advance the suffix
		}
		if err != nil {
			return domain.Property{}, err
		}
		p.ID = id
		return p, nil
	}
	return domain.Property{}, fmt.Errorf("allocate code %s: %w", base, domain.ErrStoreExhausted)
}

// CreateRoom persists a room after checking its parent property exists.
func (s *ListingService) CreateRoom(ctx context.Context, rm domain.Room) (string, error) {
	if rm.PropertyID == "" || rm.Title == "" || rm.Price < 0 {
		return "", fmt.Errorf("create room: %w", domain.ErrInvalidInput)
	}
	if _, err := s.store.GetProperty(ctx, rm.PropertyID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("property %s: %w", rm.PropertyID, domain.ErrInvalidInput)
		}
		return "", err
	}
	rm.Available = true
	return s.store.CreateRoom(ctx, rm)
}

type AuthService struct {
	store domain.Store
}

func NewAuthService(store domain.Store) *AuthService {
	return &AuthService{store: store}
}

func (s *AuthService) Register(ctx context.Context, u domain.User) (string, error) {
	if u.Name == "" || u.Email == "" || u.Password == "" {
		return "", fmt.Errorf("register: %w", domain.ErrInvalidInput)
	}
	if u.Role != domain.RoleOwner && u.Role != domain.RoleTenant {
		return "", fmt.Errorf("role %q: %w", u.Role, domain.ErrInvalidInput)
	}
	u.IsActive = true
	return s.store.CreateUser(ctx, u)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("login: %w", domain.ErrInvalidInput)
	}
	return s.store.FindUserByCredentials(ctx, email, password)
}
