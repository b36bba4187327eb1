package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/medtrack/medication-reminder/internal/model"
)

// MedicationRepo provides data access to the `medications` table. All
// timestamps are stored in UTC; callers must pass UTC times. Due-time
// mutations go through AdvanceDueTime, which enforces optimistic
// concurrency via the version column so a background reschedule and a
// user take/snooze racing on the same row cannot overwrite each other
// unnoticed.
type MedicationRepo struct{ DB *sql.DB }

func NewMedicationRepo(db *sql.DB) *MedicationRepo { return &MedicationRepo{DB: db} }

const medicationCols = "id, user_id, name, dosage_form, attributes, dosages_per_day, next_due_at, version, created_at, updated_at"

// sqlTime renders a time in the DB-friendly DATETIME format.
func sqlTime(t time.Time) string { return t.UTC().Format("2006-01-02 15:04:05") }

func scanMedication(row *sql.Rows) (model.Medication, error) {
	var m model.Medication
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.DosageForm, &m.Attributes,
		&m.DosagesPerDay, &m.NextDueAt, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// Create inserts a medication and populates its ID and Version.
func (r *MedicationRepo) Create(ctx context.Context, m *model.Medication) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO medications (user_id, name, dosage_form, attributes, dosages_per_day, next_due_at, version)
		 VALUES (?,?,?,?,?,?,1)`,
		m.UserID, m.Name, m.DosageForm, m.Attributes, m.DosagesPerDay, sqlTime(m.NextDueAt))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.Version = 1
	return nil
}

// FindAll returns every medication across all users. The reminder scan
// uses this each tick; ordering follows the primary key but callers must
// not rely on it.
func (r *MedicationRepo) FindAll(ctx context.Context) ([]model.Medication, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+medicationCols+" FROM medications")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var meds []model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// FindByUser returns all medications owned by the given user.
func (r *MedicationRepo) FindByUser(ctx context.Context, userID uint64) ([]model.Medication, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+medicationCols+" FROM medications WHERE user_id=?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var meds []model.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

// FindByID fetches a single medication. Returns ErrMedicationNotFound
// when the id does not exist.
func (r *MedicationRepo) FindByID(ctx context.Context, id uint64) (model.Medication, error) {
	var m model.Medication
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+medicationCols+" FROM medications WHERE id=? LIMIT 1", id).
		Scan(&m.ID, &m.UserID, &m.Name, &m.DosageForm, &m.Attributes,
			&m.DosagesPerDay, &m.NextDueAt, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Medication{}, ErrMedicationNotFound
	}
	return m, err
}

// ExistsByID reports whether a medication row exists.
func (r *MedicationRepo) ExistsByID(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM medications WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update rewrites the editable fields (name, dosage form, dosages per
// day) of a medication. The due time and version are untouched. Returns
// ErrMedicationNotFound when no row matches.
func (r *MedicationRepo) Update(ctx context.Context, id uint64, name, dosageForm string, dosagesPerDay int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE medications SET name=?, dosage_form=?, dosages_per_day=?, updated_at=NOW() WHERE id=?`,
		name, dosageForm, dosagesPerDay, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows both for a missing id and for a
		// no-op update with identical values; disambiguate via existence.
		exists, exErr := r.ExistsByID(ctx, id)
		if exErr != nil {
			return exErr
		}
		if !exists {
			return ErrMedicationNotFound
		}
	}
	return nil
}

// AdvanceDueTime moves the due time of a medication to next, but only if
// the row still carries the version the caller read. On success the
// version is bumped. Returns ErrVersionConflict when another writer got
// there first and ErrMedicationNotFound when the row is gone.
func (r *MedicationRepo) AdvanceDueTime(ctx context.Context, id, version uint64, next time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE medications SET next_due_at=?, version=version+1, updated_at=NOW() WHERE id=? AND version=?`,
		sqlTime(next), id, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		exists, exErr := r.ExistsByID(ctx, id)
		if exErr != nil {
			return exErr
		}
		if !exists {
			return ErrMedicationNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// DeleteByID removes a medication regardless of its due-cycle phase.
// Returns ErrMedicationNotFound when the id does not exist.
func (r *MedicationRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM medications WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMedicationNotFound
	}
	return nil
}
