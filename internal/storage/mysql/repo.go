package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"renthub/internal/adapters/observability"
	"renthub/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valJSON(v any) any {
	b, _ := json.Marshal(v)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return string(b)
}

func ptrStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// isDuplicate reports whether err is a MySQL duplicate-key violation (1062),
// i.e. a conditional insert losing to an existing row.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// storeErr classifies transport-level failures as ErrUnavailable so callers
// can retry the whole operation.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) || errors.As(err, &ne) {
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- users ----

func (r *Repo) CreateUser(ctx context.Context, u domain.User) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, insertUserSQL, id, u.Name, u.Email, u.Password, string(u.Role), u.IsActive)
	if isDuplicate(err) {
		observability.ObserveConflict("user_email")
		return "", fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	if err != nil {
		return "", storeErr("insert user", err)
	}
	return id, nil
}

func (r *Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, getUserSQL, id)
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &u.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, storeErr("get user", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *Repo) FindUserByCredentials(ctx context.Context, email, password string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, findUserByCredentialsSQL, email, password)
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &u.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, storeErr("find user", err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

// ---- properties ----

func (r *Repo) CreateProperty(ctx context.Context, p domain.Property) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, insertPropertySQL,
		id, p.OwnerID, p.HouseNumber, p.Street, p.City, p.State,
		valStr(p.Pincode), valStr(p.Description), p.UniqueCode,
	)
	if isDuplicate(err) {
		observability.ObserveConflict("property_code")
		return "", fmt.Errorf("unique_code %s: %w", p.UniqueCode, domain.ErrConflict)
	}
	if err != nil {
		return "", storeErr("insert property", err)
	}
	return id, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanProperty(row rowScanner) (domain.Property, error) {
	var p domain.Property
	var pincode, desc sql.NullString
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.HouseNumber, &p.Street, &p.City, &p.State,
		&pincode, &desc, &p.UniqueCode, &p.Ratings.Sum, &p.Ratings.Count, &p.CreatedAt,
	); err != nil {
		return domain.Property{}, err
	}
	p.Pincode = ptrStr(pincode)
	p.Description = ptrStr(desc)
	return p, nil
}

func (r *Repo) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, getPropertySQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Property{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Property{}, storeErr("get property", err)
	}
	return p, nil
}

func (r *Repo) FindPropertyByCode(ctx context.Context, code, ownerID string) (domain.Property, error) {
	p, err := scanProperty(r.db.QueryRowContext(ctx, findPropertyByCodeSQL, code, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Property{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Property{}, storeErr("find property by code", err)
	}
	return p, nil
}

func (r *Repo) ListProperties(ctx context.Context, q domain.PropertiesQuery) ([]domain.Property, error) {
	sel := `SELECT` + propertyColumns + ` FROM properties WHERE 1=1`
	var args []any
	if q.City != nil {
		sel += ` AND LOWER(city) = LOWER(?)`
		args = append(args, *q.City)
	}
	if q.OwnerID != nil {
		sel += ` AND owner_id = ?`
		args = append(args, *q.OwnerID)
	}
	sel += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, storeErr("list properties", err)
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, storeErr("scan property", err)
		}
		out = append(out, p)
	}
	return out, storeErr("list properties", rows.Err())
}

// ---- rooms ----

func (r *Repo) CreateRoom(ctx context.Context, rm domain.Room) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, insertRoomSQL,
		id, rm.PropertyID, rm.Title, rm.Price, valJSON(rm.Photos), rm.Available,
	)
	if err != nil {
		return "", storeErr("insert room", err)
	}
	return id, nil
}

func scanRoom(row rowScanner) (domain.Room, error) {
	var rm domain.Room
	var photos []byte
	if err := row.Scan(
		&rm.ID, &rm.PropertyID, &rm.Title, &rm.Price, &photos,
		&rm.Available, &rm.Ratings.Sum, &rm.Ratings.Count, &rm.CreatedAt,
	); err != nil {
		return domain.Room{}, err
	}
	_ = json.Unmarshal(photos, &rm.Photos)
	return rm, nil
}

func (r *Repo) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	rm, err := scanRoom(r.db.QueryRowContext(ctx, getRoomSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, storeErr("get room", err)
	}
	return rm, nil
}

func (r *Repo) ListRooms(ctx context.Context, q domain.RoomsQuery) ([]domain.Room, error) {
	sel := `SELECT r.id, r.property_id, r.title, r.price, r.photos, r.available,
  r.rating_sum, r.rating_count, r.created_at
FROM rooms r`
	var where []string
	var args []any
	if q.City != nil {
		sel += ` JOIN properties p ON p.id = r.property_id`
		where = append(where, `LOWER(p.city) = LOWER(?)`)
		args = append(args, *q.City)
	}
	if q.PropertyID != nil {
		where = append(where, `r.property_id = ?`)
		args = append(args, *q.PropertyID)
	}
	if q.Available != nil {
		where = append(where, `r.available = ?`)
		args = append(args, *q.Available)
	}
	if len(where) > 0 {
		sel += ` WHERE ` + strings.Join(where, ` AND `)
	}
	sel += ` ORDER BY r.created_at, r.id`

	rows, err := r.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, storeErr("list rooms", err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, storeErr("scan room", err)
		}
		out = append(out, rm)
	}
	return out, storeErr("list rooms", rows.Err())
}

// ---- ratings ----

// CreateRating inserts the rating row and applies the subject's sum/count
// increments in one transaction. The increment is a single atomic UPDATE, so
// concurrent raters of the same subject serialize at the row, not in process.
func (r *Repo) CreateRating(ctx context.Context, rt domain.Rating) (string, error) {
	subj := rt.Subject()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storeErr("begin rating tx", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertRatingSQL,
		id, rt.UserID, valStr(rt.RoomID), valStr(rt.PropertyID), rt.Score, valStr(rt.Comment),
	); err != nil {
		return "", storeErr("insert rating", err)
	}

	incSQL := incPropertyAggregateSQL
	if subj.Kind == domain.SubjectRoom {
		incSQL = incRoomAggregateSQL
	}
	res, err := tx.ExecContext(ctx, incSQL, rt.Score, subj.ID)
	if err != nil {
		return "", storeErr("apply rating delta", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", fmt.Errorf("%s %s: %w", subj.Kind, subj.ID, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return "", storeErr("commit rating", err)
	}
	return id, nil
}

func (r *Repo) RecomputeAggregate(ctx context.Context, s domain.Subject) error {
	sqlStr := recomputePropertyAggregateSQL
	if s.Kind == domain.SubjectRoom {
		sqlStr = recomputeRoomAggregateSQL
	}
	res, err := r.db.ExecContext(ctx, sqlStr, s.ID)
	if err != nil {
		return storeErr("recompute aggregate", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", s.Kind, s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	var out []domain.Subject
	for _, src := range []struct {
		kind domain.SubjectKind
		sel  string
	}{
		{domain.SubjectProperty, `SELECT id FROM properties ORDER BY id`},
		{domain.SubjectRoom, `SELECT id FROM rooms ORDER BY id`},
	} {
		rows, err := r.db.QueryContext(ctx, src.sel)
		if err != nil {
			return nil, storeErr("list subjects", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, storeErr("scan subject", err)
			}
			out = append(out, domain.Subject{Kind: src.kind, ID: id})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, storeErr("list subjects", err)
		}
		rows.Close()
	}
	return out, nil
}

// ---- rentals & payments ----

func (r *Repo) CreateRental(ctx context.Context, rt domain.Rental) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, insertRentalSQL,
		id, rt.RoomID, rt.UserID, rt.OwnerID, rt.PropertyID, rt.PropertyCode,
		rt.RentDayOfMonth, valStr(rt.StartDate), string(rt.Status),
		valStr(rt.AadhaarNumber), valStr(rt.AgreementURL),
	)
	if err != nil {
		return "", storeErr("insert rental", err)
	}
	return id, nil
}

func scanRental(row rowScanner) (domain.Rental, error) {
	var rt domain.Rental
	var start, aadhaar, agreement sql.NullString
	var status string
	if err := row.Scan(
		&rt.ID, &rt.RoomID, &rt.UserID, &rt.OwnerID, &rt.PropertyID, &rt.PropertyCode,
		&rt.RentDayOfMonth, &start, &status, &aadhaar, &agreement, &rt.CreatedAt,
	); err != nil {
		return domain.Rental{}, err
	}
	rt.StartDate = ptrStr(start)
	rt.Status = domain.RentalStatus(status)
	rt.AadhaarNumber = ptrStr(aadhaar)
	rt.AgreementURL = ptrStr(agreement)
	return rt, nil
}

func (r *Repo) GetRental(ctx context.Context, id string) (domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, getRentalSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rental{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Rental{}, storeErr("get rental", err)
	}
	return rt, nil
}

func (r *Repo) ListRentals(ctx context.Context, q domain.RentalsQuery) ([]domain.Rental, error) {
	sel := `SELECT` + rentalColumns + ` FROM rentals WHERE 1=1`
	var args []any
	if q.OwnerID != nil {
		sel += ` AND owner_id = ?`
		args = append(args, *q.OwnerID)
	}
	if q.UserID != nil {
		sel += ` AND user_id = ?`
		args = append(args, *q.UserID)
	}
	if q.From != nil {
		sel += ` AND created_at >= ?`
		args = append(args, *q.From)
	}
	if q.To != nil {
		sel += ` AND created_at < ?`
		args = append(args, *q.To)
	}
	sel += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, storeErr("list rentals", err)
	}
	defer rows.Close()

	var out []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, storeErr("scan rental", err)
		}
		out = append(out, rt)
	}
	return out, storeErr("list rentals", rows.Err())
}

func (r *Repo) CreatePayment(ctx context.Context, p domain.Payment) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, insertPaymentSQL,
		id, p.RentalID, p.Amount, p.PaidAt, valStr(p.OwnerSignatureURL), valStr(p.UserSignatureURL),
	)
	if err != nil {
		return "", storeErr("insert payment", err)
	}
	return id, nil
}

func (r *Repo) MarkPaymentEmailed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, markPaymentEmailedSQL, id)
	if err != nil {
		return storeErr("mark payment emailed", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---- maintenance ----

func (r *Repo) CreateMaintenance(ctx context.Context, m domain.MaintenanceRequest) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, insertMaintenanceSQL,
		id, m.RentalID, m.UserID, m.Description, string(m.Status),
	)
	if err != nil {
		return "", storeErr("insert maintenance", err)
	}
	return id, nil
}

func (r *Repo) ListMaintenance(ctx context.Context, q domain.MaintenanceQuery) ([]domain.MaintenanceRequest, error) {
	sel := `SELECT` + maintenanceColumns + ` FROM maintenance_requests WHERE 1=1`
	var args []any
	if q.RentalID != nil {
		sel += ` AND rental_id = ?`
		args = append(args, *q.RentalID)
	}
	if q.OwnerID != nil {
		sel += ` AND rental_id IN (SELECT id FROM rentals WHERE owner_id = ?)`
		args = append(args, *q.OwnerID)
	}
	sel += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, sel, args...)
	if err != nil {
		return nil, storeErr("list maintenance", err)
	}
	defer rows.Close()

	var out []domain.MaintenanceRequest
	for rows.Next() {
		var m domain.MaintenanceRequest
		var status string
		if err := rows.Scan(&m.ID, &m.RentalID, &m.UserID, &m.Description, &status, &m.CreatedAt); err != nil {
			return nil, storeErr("scan maintenance", err)
		}
		m.Status = domain.MaintenanceStatus(status)
		out = append(out, m)
	}
	return out, storeErr("list maintenance", rows.Err())
}

// ---- email trace ----

func (r *Repo) LogEmail(ctx context.Context, e domain.EmailLog) error {
	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, insertEmailLogSQL, id, valJSON(e.Recipients), e.Subject, e.Body, e.SentAt)
	return storeErr("insert email log", err)
}
