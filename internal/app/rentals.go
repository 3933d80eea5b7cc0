package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"renthub/internal/domain"
)

type RentalService struct {
	store  domain.Store
	mailer domain.Mailer
}

func NewRentalService(store domain.Store, mailer domain.Mailer) *RentalService {
	return &RentalService{store: store, mailer: mailer}
}

// CreateRental checks the property code really belongs to the claimed owner
// before committing the rental.
func (s *RentalService) CreateRental(ctx context.Context, r domain.Rental) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("rental: %w", err)
	}
	prop, err := s.store.FindPropertyByCode(ctx, r.PropertyCode, r.OwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("property code %s for owner %s: %w", r.PropertyCode, r.OwnerID, domain.ErrInvalidInput)
		}
		return "", err
	}
	r.PropertyID = prop.ID
	r.Status = domain.RentalActive
	return s.store.CreateRental(ctx, r)
}

// RecordPayment commits the payment, then emails the receipt. The payment is
// must-succeed; the email (and its trace row) is best-effort and never fails
// the operation.
func (s *RentalService) RecordPayment(ctx context.Context, p domain.Payment) (domain.Receipt, error) {
	if p.RentalID == "" || p.Amount <= 0 {
		return domain.Receipt{}, fmt.Errorf("payment: %w", domain.ErrInvalidInput)
	}
	p.PaidAt = time.Now().UTC()
	id, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return domain.Receipt{}, err
	}

	s.emailReceipt(ctx, id, p)

	return domain.Receipt{
		PaymentID:         id,
		PaidAt:            p.PaidAt,
		OwnerSignatureURL: p.OwnerSignatureURL,
		UserSignatureURL:  p.UserSignatureURL,
	}, nil
}

func (s *RentalService) emailReceipt(ctx context.Context, paymentID string, p domain.Payment) {
	if s.mailer == nil {
		return
	}
	to := s.receiptRecipients(ctx, p.RentalID)
	if len(to) == 0 {
		log.Warn().Str("payment_id", paymentID).Str("rental_id", p.RentalID).Msg("no receipt recipients resolved")
		return
	}
	subject := "Rent Receipt"
	body := fmt.Sprintf("Payment %s received: %.2f", paymentID, p.Amount)

	if err := s.mailer.Send(ctx, to, subject, body); err != nil {
		log.Warn().Str("payment_id", paymentID).Err(err).Msg("receipt email failed")
		return
	}
	if err := s.store.LogEmail(ctx, domain.EmailLog{Recipients: to, Subject: subject, Body: body, SentAt: time.Now().UTC()}); err != nil {
		log.Warn().Str("payment_id", paymentID).Err(err).Msg("email log write failed")
	}
	if err := s.store.MarkPaymentEmailed(ctx, paymentID); err != nil {
		log.Warn().Str("payment_id", paymentID).Err(err).Msg("mark payment emailed failed")
	}
}

// receiptRecipients resolves the rental's owner and tenant addresses. A
// missing user or rental just shrinks the list; the payment itself has
// already committed.
func (s *RentalService) receiptRecipients(ctx context.Context, rentalID string) []string {
	rental, err := s.store.GetRental(ctx, rentalID)
	if err != nil {
		log.Warn().Str("rental_id", rentalID).Err(err).Msg("rental lookup for receipt failed")
		return nil
	}
	var to []string
	for _, id := range []string{rental.OwnerID, rental.UserID} {
		u, err := s.store.GetUser(ctx, id)
		if err != nil {
			log.Warn().Str("user_id", id).Err(err).Msg("user lookup for receipt failed")
			continue
		}
		to = append(to, u.Email)
	}
	return to
}

func (s *RentalService) FileMaintenance(ctx context.Context, m domain.MaintenanceRequest) (string, error) {
	if m.RentalID == "" || m.UserID == "" || m.Description == "" {
		return "", fmt.Errorf("maintenance: %w", domain.ErrInvalidInput)
	}
	m.Status = domain.MaintenanceOpen
	return s.store.CreateMaintenance(ctx, m)
}
