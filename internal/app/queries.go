package app

import (
	"context"
	"time"

	"renthub/internal/domain"
)

type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(store domain.Store, cache domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, cacheTTL: ttl}
}

func (s *QueryService) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	key := SubjectCacheKey(domain.Subject{Kind: domain.SubjectProperty, ID: id})
	var p domain.Property
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}

func (s *QueryService) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	key := SubjectCacheKey(domain.Subject{Kind: domain.SubjectRoom, ID: id})
	var rm domain.Room
	if ok, _ := s.cache.Get(ctx, key, &rm); ok {
		return rm, nil
	}
	rm, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	_ = s.cache.Set(ctx, key, rm, int(s.cacheTTL.Seconds()))
	return rm, nil
}

// List reads hit the store directly; their filters are too varied to be
// worth a cache key scheme.

func (s *QueryService) ListProperties(ctx context.Context, q domain.PropertiesQuery) ([]domain.Property, error) {
	return s.store.ListProperties(ctx, q)
}

func (s *QueryService) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	return s.store.ListRooms(ctx, q)
}

func (s *QueryService) ListRentals(ctx context.Context, q domain.RentalsQuery) ([]domain.Rental, error) {
	return s.store.ListRentals(ctx, q)
}

func (s *QueryService) ListMaintenance(ctx context.Context, q domain.MaintenanceQuery) ([]domain.MaintenanceRequest, error) {
	return s.store.ListMaintenance(ctx, q)
}
