package domain

import "time"

type Property struct {
	ID          string
	OwnerID     string
	HouseNumber string
	Street      string
	City        string
	State       string
	Pincode     *string
	Description *string
	UniqueCode  string
	Ratings     RatingAggregate
	CreatedAt   time.Time
}

type Room struct {
	ID         string
	PropertyID string
	Title      string
	Price      float64
	Photos     []string
	Available  bool
	Ratings    RatingAggregate
	CreatedAt  time.Time
}

// RatingAggregate keeps the running sum and count; the average is always
// derived, never stored.
type RatingAggregate struct {
	Sum   int64
	Count int64
}

func (a RatingAggregate) Avg() float64 {
	if a.Count == 0 {
		return 0
	}
	return float64(a.Sum) / float64(a.Count)
}
