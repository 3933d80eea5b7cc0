package httpserver

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"renthub/internal/domain"
)

// ---- rentals ----

type rentalIn struct {
	RoomID         string  `json:"room_id"`
	UserID         string  `json:"user_id"`
	OwnerID        string  `json:"owner_id"`
	PropertyCode   string  `json:"property_code"`
	RentDayOfMonth int     `json:"rent_day_of_month"`
	StartDate      *string `json:"start_date"`
	AadhaarNumber  *string `json:"aadhaar_number"`
	AgreementURL   *string `json:"agreement_url"`
}

func (h *Handlers) createRental(w http.ResponseWriter, r *http.Request) {
	var in rentalIn
	if !decode(w, r, &in) {
		return
	}
	id, err := h.Rentals.CreateRental(r.Context(), domain.Rental{
		RoomID: in.RoomID, UserID: in.UserID, OwnerID: in.OwnerID,
		PropertyCode: in.PropertyCode, RentDayOfMonth: in.RentDayOfMonth,
		StartDate: in.StartDate, AadhaarNumber: in.AadhaarNumber, AgreementURL: in.AgreementURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type rentalResp struct {
	ID             string  `json:"id"`
	RoomID         string  `json:"room_id"`
	UserID         string  `json:"user_id"`
	OwnerID        string  `json:"owner_id"`
	PropertyID     string  `json:"property_id"`
	PropertyCode   string  `json:"property_code"`
	RentDayOfMonth int     `json:"rent_day_of_month"`
	StartDate      *string `json:"start_date,omitempty"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

func toRentalResp(rt domain.Rental) rentalResp {
	return rentalResp{
		ID: rt.ID, RoomID: rt.RoomID, UserID: rt.UserID, OwnerID: rt.OwnerID,
		PropertyID: rt.PropertyID, PropertyCode: rt.PropertyCode,
		RentDayOfMonth: rt.RentDayOfMonth, StartDate: rt.StartDate,
		Status: string(rt.Status), CreatedAt: rt.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handlers) listRentalsBy(w http.ResponseWriter, r *http.Request, q domain.RentalsQuery) {
	rentals, err := h.Q.ListRentals(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]rentalResp, 0, len(rentals))
	for _, rt := range rentals {
		out = append(out, toRentalResp(rt))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) ownerRentals(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner_id")
	if owner == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "owner_id is required")
		return
	}
	h.listRentalsBy(w, r, domain.RentalsQuery{OwnerID: &owner})
}

func (h *Handlers) userRentals(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user_id")
	if user == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "user_id is required")
		return
	}
	h.listRentalsBy(w, r, domain.RentalsQuery{UserID: &user})
}

// parseDate accepts a date or RFC3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (h *Handlers) exportRentals(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner_id")
	if owner == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "owner_id is required")
		return
	}
	q := domain.RentalsQuery{OwnerID: &owner}
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Input", "from must be a date or RFC3339 timestamp")
			return
		}
		q.From = &t
	}
	if s := r.URL.Query().Get("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Input", "to must be a date or RFC3339 timestamp")
			return
		}
		q.To = &t
	}

	rentals, err := h.Q.ListRentals(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=rentals_%s.csv", owner))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"rental_id", "user_id", "room_id", "property_id", "property_code", "status", "rent_day_of_month", "start_date", "created_at"})
	for _, rt := range rentals {
		start := ""
		if rt.StartDate != nil {
			start = *rt.StartDate
		}
		_ = cw.Write([]string{
			rt.ID, rt.UserID, rt.RoomID, rt.PropertyID, rt.PropertyCode,
			string(rt.Status), strconv.Itoa(rt.RentDayOfMonth), start,
			rt.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Error().Err(err).Msg("failed to write rentals CSV")
	}
}

// ---- payments ----

type paymentIn struct {
	RentalID          string  `json:"rental_id"`
	Amount            float64 `json:"amount"`
	OwnerSignatureURL *string `json:"owner_signature_url"`
	UserSignatureURL  *string `json:"user_signature_url"`
}

type receiptResp struct {
	PaymentID         string  `json:"payment_id"`
	PaidAt            string  `json:"paid_at"`
	OwnerSignatureURL *string `json:"owner_signature_url,omitempty"`
	UserSignatureURL  *string `json:"user_signature_url,omitempty"`
}

func (h *Handlers) createPayment(w http.ResponseWriter, r *http.Request) {
	var in paymentIn
	if !decode(w, r, &in) {
		return
	}
	receipt, err := h.Rentals.RecordPayment(r.Context(), domain.Payment{
		RentalID: in.RentalID, Amount: in.Amount,
		OwnerSignatureURL: in.OwnerSignatureURL, UserSignatureURL: in.UserSignatureURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id": receipt.PaymentID,
		"receipt": receiptResp{
			PaymentID: receipt.PaymentID, PaidAt: receipt.PaidAt.UTC().Format(time.RFC3339),
			OwnerSignatureURL: receipt.OwnerSignatureURL, UserSignatureURL: receipt.UserSignatureURL,
		},
	})
}

// ---- maintenance ----

type maintenanceIn struct {
	RentalID    string `json:"rental_id"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
}

func (h *Handlers) createMaintenance(w http.ResponseWriter, r *http.Request) {
	var in maintenanceIn
	if !decode(w, r, &in) {
		return
	}
	id, err := h.Rentals.FileMaintenance(r.Context(), domain.MaintenanceRequest{
		RentalID: in.RentalID, UserID: in.UserID, Description: in.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

type maintenanceResp struct {
	ID          string `json:"id"`
	RentalID    string `json:"rental_id"`
	UserID      string `json:"user_id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

func (h *Handlers) listMaintenance(w http.ResponseWriter, r *http.Request) {
	var q domain.MaintenanceQuery
	if rid := r.URL.Query().Get("rental_id"); rid != "" {
		q.RentalID = &rid
	}
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		q.OwnerID = &owner
	}
	items, err := h.Q.ListMaintenance(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]maintenanceResp, 0, len(items))
	for _, m := range items {
		out = append(out, maintenanceResp{
			ID: m.ID, RentalID: m.RentalID, UserID: m.UserID,
			Description: m.Description, Status: string(m.Status),
			CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
