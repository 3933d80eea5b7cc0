package domain

import (
	"context"
	"time"
)

type Store interface {
	// Users
	CreateUser(ctx context.Context, u User) (string, error) // ErrConflict on duplicate email
	GetUser(ctx context.Context, id string) (User, error)
	FindUserByCredentials(ctx context.Context, email, password string) (User, error)

	// Properties. CreateProperty is a conditional insert: the row commits
	// only if no property already holds p.UniqueCode (ErrConflict otherwise).
	CreateProperty(ctx context.Context, p Property) (string, error)
	GetProperty(ctx context.Context, id string) (Property, error)
	FindPropertyByCode(ctx context.Context, code, ownerID string) (Property, error)
	ListProperties(ctx context.Context, q PropertiesQuery) ([]Property, error)

	// Rooms
	CreateRoom(ctx context.Context, rm Room) (string, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context, q RoomsQuery) ([]Room, error)

	// Ratings. CreateRating commits the rating row and the subject's
	// sum/count increments atomically; ErrNotFound if the subject is missing.
	CreateRating(ctx context.Context, r Rating) (string, error)
	RecomputeAggregate(ctx context.Context, s Subject) error
	ListSubjects(ctx context.Context) ([]Subject, error)

	// Rentals & payments
	CreateRental(ctx context.Context, r Rental) (string, error)
	GetRental(ctx context.Context, id string) (Rental, error)
	ListRentals(ctx context.Context, q RentalsQuery) ([]Rental, error)
	CreatePayment(ctx context.Context, p Payment) (string, error)
	MarkPaymentEmailed(ctx context.Context, id string) error

	// Maintenance
	CreateMaintenance(ctx context.Context, m MaintenanceRequest) (string, error)
	ListMaintenance(ctx context.Context, q MaintenanceQuery) ([]MaintenanceRequest, error)

	// Email trace, best-effort
	LogEmail(ctx context.Context, e EmailLog) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type PropertiesQuery struct {
	City    *string // matched case-insensitively
	OwnerID *string
}

type RoomsQuery struct {
	PropertyID *string
	City       *string
	Available  *bool
}

type RentalsQuery struct {
	OwnerID *string
	UserID  *string
	From    *time.Time
	To      *time.Time
}

type MaintenanceQuery struct {
	RentalID *string
	OwnerID  *string
}

type EmailLog struct {
	ID         string
	Recipients []string
	Subject    string
	Body       string
	SentAt     time.Time
}
