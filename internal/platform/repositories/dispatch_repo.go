package repositories

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"alidayu/internal/platform/models"
)

const dispatchColumns = `id, client_id, method, receiver, biz_id, status, error, response, created_at, reconciled_at`

type DispatchRepository struct {
	db *sql.DB
}

func NewDispatchRepository(db *sql.DB) *DispatchRepository {
	return &DispatchRepository{db: db}
}

func (r *DispatchRepository) Create(d *models.Dispatch) error {
	if d.ID == "" {
		d.ID = "dsp_" + uuid.New().String()
	}
	if d.CreatedAt == 0 {
		d.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO dispatches (id, client_id, method, receiver, biz_id, status, error, response, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, d.ID, d.ClientID, d.Method, nullString(d.Receiver), nullString(d.BizID), d.Status, nullString(d.Error), nullString(string(d.Response)), d.CreatedAt)
	return err
}

func (r *DispatchRepository) GetByID(id string) (*models.Dispatch, error) {
	row := r.db.QueryRow(`SELECT `+dispatchColumns+` FROM dispatches WHERE id = ?`, id)
	return scanDispatch(row)
}

// List returns the newest dispatches first. An empty clientID lists every
// client's dispatches.
func (r *DispatchRepository) List(clientID string, limit, offset int) ([]*models.Dispatch, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if clientID == "" {
		rows, err = r.db.Query(`SELECT `+dispatchColumns+` FROM dispatches ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	} else {
		rows, err = r.db.Query(`SELECT `+dispatchColumns+` FROM dispatches WHERE client_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, clientID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDispatches(rows)
}

// ListPendingSMS returns sent SMS dispatches created before the given unix
// time that have a biz id to query by. Rows never checked come first, then
// the least recently checked, so a row that keeps failing cannot hold the
// head of every batch.
func (r *DispatchRepository) ListPendingSMS(method string, before int64, limit int) ([]*models.Dispatch, error) {
	query := `SELECT ` + dispatchColumns + ` FROM dispatches
		WHERE method = ? AND status = ? AND biz_id IS NOT NULL AND biz_id != '' AND created_at < ?
		ORDER BY COALESCE(checked_at, 0) ASC, created_at ASC LIMIT ?`
	rows, err := r.db.Query(query, method, models.DispatchSent, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDispatches(rows)
}

func (r *DispatchRepository) MarkReconciled(id, status string, response []byte) error {
	_, err := r.db.Exec(`UPDATE dispatches SET status = ?, response = ?, reconciled_at = ? WHERE id = ?`,
		status, nullString(string(response)), time.Now().Unix(), id)
	return err
}

// MarkChecked records a reconciliation attempt that left the dispatch
// pending.
func (r *DispatchRepository) MarkChecked(id string, at int64) error {
	_, err := r.db.Exec(`UPDATE dispatches SET checked_at = ? WHERE id = ?`, at, id)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDispatch(row scanner) (*models.Dispatch, error) {
	var d models.Dispatch
	var receiver, bizID, errStr, response sql.NullString
	var reconciledAt sql.NullInt64

	err := row.Scan(&d.ID, &d.ClientID, &d.Method, &receiver, &bizID, &d.Status, &errStr, &response, &d.CreatedAt, &reconciledAt)
	if err != nil {
		return nil, err
	}

	d.Receiver = receiver.String
	d.BizID = bizID.String
	d.Error = errStr.String
	if response.Valid && response.String != "" {
		d.Response = []byte(response.String)
	}
	if reconciledAt.Valid {
		d.ReconciledAt = new(int64)
		*d.ReconciledAt = reconciledAt.Int64
	}
	return &d, nil
}

func scanDispatches(rows *sql.Rows) ([]*models.Dispatch, error) {
	var out []*models.Dispatch
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
