package app

import (
	"context"
	"fmt"

	"renthub/internal/domain"
)

type RatingService struct {
	store domain.Store
	cache domain.Cache
}

func NewRatingService(store domain.Store, cache domain.Cache) *RatingService {
	return &RatingService{store: store, cache: cache}
}

// RecordRating persists a rating and folds its score into the subject's
// running sum/count. Both commit atomically in the store, so a rating is
// either fully applied (row + aggregate) or not at all; there is no
// read-modify-write to race against concurrent raters.
func (s *RatingService) RecordRating(ctx context.Context, r domain.Rating) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("rating: %w", err)
	}
	id, err := s.store.CreateRating(ctx, r)
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		s.invalidateSubject(ctx, r.Subject())
	}
	return id, nil
}

func (s *RatingService) invalidateSubject(ctx context.Context, subj domain.Subject) {
	_ = s.cache.Del(ctx, SubjectCacheKey(subj))
}

func SubjectCacheKey(s domain.Subject) string {
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}
