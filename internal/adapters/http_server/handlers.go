package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"renthub/internal/app"
	"renthub/internal/domain"
)

type Handlers struct {
	Auth     *app.AuthService
	Listings *app.ListingService
	Ratings  *app.RatingService
	Rentals  *app.RentalService
	Q        *app.QueryService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/properties", h.createProperty)
		r.Get("/properties", h.listProperties)
		r.Get("/properties/{id}", h.getProperty)
		r.Post("/rooms", h.createRoom)
		r.Get("/rooms", h.listRooms)
		r.Get("/rooms/{id}", h.getRoom)
		r.Post("/ratings", h.createRating)
		r.Post("/rentals", h.createRental)
		r.Get("/owner/rentals", h.ownerRentals)
		r.Get("/user/rentals", h.userRentals)
		r.Get("/rentals/export", h.exportRentals)
		r.Post("/payments", h.createPayment)
		r.Post("/maintenance", h.createMaintenance)
		r.Get("/maintenance", h.listMaintenance)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps domain errors to their HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrStoreExhausted), errors.Is(err, domain.ErrUnavailable):
		w.Header().Set("Retry-After", "1")
		writeProblem(w, http.StatusServiceUnavailable, "Store Unavailable", "transient store failure, retry the request")
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "malformed request body")
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- auth ----

type registerIn struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // owner|tenant
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var in registerIn
	if !decode(w, r, &in) {
		return
	}
	id, err := h.Auth.Register(r.Context(), domain.User{
		Name: in.Name, Email: in.Email, Password: in.Password, Role: domain.Role(in.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id, "email": in.Email, "role": in.Role})
}

type loginIn struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var in loginIn
	if !decode(w, r, &in) {
		return
	}
	u, err := h.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id": u.ID, "name": u.Name, "email": u.Email, "role": string(u.Role),
	})
}

// ---- properties ----

type propertyIn struct {
	OwnerID     string  `json:"owner_id"`
	HouseNumber string  `json:"house_number"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Pincode     *string `json:"pincode"`
	Description *string `json:"description"`
}

type propertyResp struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	HouseNumber string  `json:"house_number"`
	Street      string  `json:"street"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Pincode     *string `json:"pincode,omitempty"`
	Description *string `json:"description,omitempty"`
	UniqueCode  string  `json:"unique_code"`
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int64   `json:"rating_count"`
}

func toPropertyResp(p domain.Property) propertyResp {
	return propertyResp{
		ID: p.ID, OwnerID: p.OwnerID, HouseNumber: p.HouseNumber,
		Street: p.Street, City: p.City, State: p.State,
		Pincode: p.Pincode, Description: p.Description, UniqueCode: p.UniqueCode,
		RatingAvg: p.Ratings.Avg(), RatingCount: p.Ratings.Count,
	}
}

func (h *Handlers) createProperty(w http.ResponseWriter, r *http.Request) {
	var in propertyIn
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Listings.CreateProperty(r.Context(), domain.Property{
		OwnerID: in.OwnerID, HouseNumber: in.HouseNumber, Street: in.Street,
		City: in.City, State: in.State, Pincode: in.Pincode, Description: in.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID, "unique_code": p.UniqueCode})
}

func (h *Handlers) getProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.Q.GetProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, toPropertyResp(p))
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	var q domain.PropertiesQuery
	if city := r.URL.Query().Get("city"); city != "" {
		q.City = &city
	}
	if owner := r.URL.Query().Get("owner_id"); owner != "" {
		q.OwnerID = &owner
	}
	props, err := h.Q.ListProperties(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]propertyResp, 0, len(props))
	for _, p := range props {
		out = append(out, toPropertyResp(p))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- rooms ----

type roomIn struct {
	PropertyID string   `json:"property_id"`
	Title      string   `json:"title"`
	Price      float64  `json:"price"`
	Photos     []string `json:"photos"`
}

type roomResp struct {
	ID          string   `json:"id"`
	PropertyID  string   `json:"property_id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Photos      []string `json:"photos,omitempty"`
	Available   bool     `json:"available"`
	RatingAvg   float64  `json:"rating_avg"`
	RatingCount int64    `json:"rating_count"`
}

func toRoomResp(rm domain.Room) roomResp {
	return roomResp{
		ID: rm.ID, PropertyID: rm.PropertyID, Title: rm.Title, Price: rm.Price,
		Photos: rm.Photos, Available: rm.Available,
		RatingAvg: rm.Ratings.Avg(), RatingCount: rm.Ratings.Count,
	}
}

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	var in roomIn
	if !decode(w, r, &in) {
		return
	}
	id, err := h.Listings.CreateRoom(r.Context(), domain.Room{
		PropertyID: in.PropertyID, Title: in.Title, Price: in.Price, Photos: in.Photos,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handlers) getRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := h.Q.GetRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCacheable(w, r, toRoomResp(rm))
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	var q domain.RoomsQuery
	if city := r.URL.Query().Get("city"); city != "" {
		q.City = &city
	}
	if pid := r.URL.Query().Get("property_id"); pid != "" {
		q.PropertyID = &pid
	}
	available := true
	if s := r.URL.Query().Get("available"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid Input", "available must be a boolean")
			return
		}
		available = v
	}
	q.Available = &available

	rooms, err := h.Q.ListRooms(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]roomResp, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, toRoomResp(rm))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- ratings ----

type ratingIn struct {
	UserID     string  `json:"user_id"`
	RoomID     *string `json:"room_id"`
	PropertyID *string `json:"property_id"`
	Score      int     `json:"score"`
	Comment    *string `json:"comment"`
}

func (h *Handlers) createRating(w http.ResponseWriter, r *http.Request) {
	var in ratingIn
	if !decode(w, r, &in) {
		return
	}
	id, err := h.Ratings.RecordRating(r.Context(), domain.Rating{
		UserID: in.UserID, RoomID: in.RoomID, PropertyID: in.PropertyID,
		Score: in.Score, Comment: in.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
