package domain

import "time"

type RentalStatus string

const (
	RentalActive RentalStatus = "active"
	RentalEnded  RentalStatus = "ended"
)

type Rental struct {
	ID             string
	RoomID         string
	UserID         string
	OwnerID        string
	PropertyID     string
	PropertyCode   string
	RentDayOfMonth int // 1..28
	StartDate      *string
	Status         RentalStatus
	AadhaarNumber  *string
	AgreementURL   *string
	CreatedAt      time.Time
}

func (r Rental) Validate() error {
	if r.RoomID == "" || r.UserID == "" || r.OwnerID == "" || r.PropertyCode == "" {
		return ErrInvalidInput
	}
	if r.RentDayOfMonth < 1 || r.RentDayOfMonth > 28 {
		return ErrInvalidInput
	}
	return nil
}

type Payment struct {
	ID                string
	RentalID          string
	Amount            float64
	PaidAt            time.Time
	OwnerSignatureURL *string
	UserSignatureURL  *string
	Emailed           bool
}

// Receipt is the read model returned to the payer after a payment commits.
type Receipt struct {
	PaymentID         string
	PaidAt            time.Time
	OwnerSignatureURL *string
	UserSignatureURL  *string
}

type MaintenanceStatus string

const (
	MaintenanceOpen       MaintenanceStatus = "open"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceClosed     MaintenanceStatus = "closed"
)

type MaintenanceRequest struct {
	ID          string
	RentalID    string
	UserID      string
	Description string
	Status      MaintenanceStatus
	CreatedAt   time.Time
}
