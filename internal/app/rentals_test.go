package app_test

import (
	"context"
	"errors"
	"testing"

	"renthub/internal/app"
	"renthub/internal/domain"
)

type fakeMailer struct {
	sent []string // subjects
	to   [][]string
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if m.fail {
		return errors.New("provider down")
	}
	m.sent = append(m.sent, subject)
	m.to = append(m.to, to)
	return nil
}

// seedRental registers an owner and a tenant and opens a rental between them.
func seedRental(t *testing.T, store *fakeStore) string {
	t.Helper()
	ctx := context.Background()
	ownerID, err := store.CreateUser(ctx, domain.User{Name: "Olive", Email: "olive@example.com", Password: "pw", Role: domain.RoleOwner})
	if err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	tenantID, err := store.CreateUser(ctx, domain.User{Name: "Tom", Email: "tom@example.com", Password: "pw", Role: domain.RoleTenant})
	if err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	id, err := store.CreateRental(ctx, domain.Rental{
		RoomID: "room-1", UserID: tenantID, OwnerID: ownerID,
		PropertyID: "prop-1", PropertyCode: "SPR-IL-42-AB12CD",
		RentDayOfMonth: 5, Status: domain.RentalActive,
	})
	if err != nil {
		t.Fatalf("seed rental: %v", err)
	}
	return id
}

func seedProperty(t *testing.T, store *fakeStore) domain.Property {
	t.Helper()
	p, err := app.NewListingService(store).CreateProperty(context.Background(), springfield())
	if err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return p
}

func TestCreateRental_ValidatesPropertyCode(t *testing.T) {
	store := newFakeStore()
	p := seedProperty(t, store)
	svc := app.NewRentalService(store, nil)

	rental := domain.Rental{
		RoomID: "room-1", UserID: "tenant-1", OwnerID: p.OwnerID,
		PropertyCode: p.UniqueCode, RentDayOfMonth: 5,
	}
	id, err := svc.CreateRental(context.Background(), rental)
	if err != nil || id == "" {
		t.Fatalf("create rental: id=%q err=%v", id, err)
	}
	if got := store.rentals[id]; got.PropertyID != p.ID || got.Status != domain.RentalActive {
		t.Fatalf("unexpected rental: %+v", got)
	}

	// wrong owner for the code
	rental.OwnerID = "someone-else"
	if _, err := svc.CreateRental(context.Background(), rental); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// rent day out of range
	rental.OwnerID = p.OwnerID
	rental.RentDayOfMonth = 29
	if _, err := svc.CreateRental(context.Background(), rental); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for day 29, got %v", err)
	}
}

func TestRecordPayment_EmailsReceipt(t *testing.T) {
	store := newFakeStore()
	rentalID := seedRental(t, store)
	mail := &fakeMailer{}
	svc := app.NewRentalService(store, mail)

	receipt, err := svc.RecordPayment(context.Background(), domain.Payment{RentalID: rentalID, Amount: 500})
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if receipt.PaymentID == "" || receipt.PaidAt.IsZero() {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "Rent Receipt" {
		t.Fatalf("expected one receipt email, got %v", mail.sent)
	}
	// recipients are the rental's owner and tenant, in that order
	if want := []string{"olive@example.com", "tom@example.com"}; len(mail.to) != 1 ||
		len(mail.to[0]) != 2 || mail.to[0][0] != want[0] || mail.to[0][1] != want[1] {
		t.Fatalf("unexpected recipients: %v", mail.to)
	}
	if !store.payments[receipt.PaymentID].Emailed {
		t.Fatalf("payment should be marked emailed")
	}
	if len(store.emails) != 1 {
		t.Fatalf("expected one email log row, got %d", len(store.emails))
	}
}

func TestRecordPayment_EmailFailureIsBestEffort(t *testing.T) {
	store := newFakeStore()
	rentalID := seedRental(t, store)
	mail := &fakeMailer{fail: true}
	svc := app.NewRentalService(store, mail)

	receipt, err := svc.RecordPayment(context.Background(), domain.Payment{RentalID: rentalID, Amount: 500})
	if err != nil {
		t.Fatalf("payment must succeed despite email failure: %v", err)
	}
	if store.payments[receipt.PaymentID].Emailed {
		t.Fatalf("payment must not be marked emailed")
	}
}

func TestRecordPayment_UnresolvableRecipientsSkipsEmail(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{}
	svc := app.NewRentalService(store, mail)

	// no rental (and so no users) behind the payment
	receipt, err := svc.RecordPayment(context.Background(), domain.Payment{RentalID: "rental-missing", Amount: 500})
	if err != nil {
		t.Fatalf("payment must succeed without recipients: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("expected no email, got %v", mail.sent)
	}
	if store.payments[receipt.PaymentID].Emailed {
		t.Fatalf("payment must not be marked emailed")
	}
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	svc := app.NewRentalService(newFakeStore(), nil)
	if _, err := svc.RecordPayment(context.Background(), domain.Payment{RentalID: "r", Amount: 0}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFileMaintenance(t *testing.T) {
	store := newFakeStore()
	svc := app.NewRentalService(store, nil)

	id, err := svc.FileMaintenance(context.Background(), domain.MaintenanceRequest{
		RentalID: "rental-1", UserID: "tenant-1", Description: "leaky tap",
	})
	if err != nil || id == "" {
		t.Fatalf("maintenance: id=%q err=%v", id, err)
	}
	if store.maintenance[0].Status != domain.MaintenanceOpen {
		t.Fatalf("new request should be open, got %s", store.maintenance[0].Status)
	}

	if _, err := svc.FileMaintenance(context.Background(), domain.MaintenanceRequest{RentalID: "r"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
