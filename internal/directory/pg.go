package directory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the read side of a pgx pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Beginner opens transactions for Save.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store reads and writes the roster. *pgxpool.Pool satisfies it.
type Store interface {
	Querier
	Beginner
}

// LoadOrSeed returns the stored roster. An empty table is filled with fallback first so that
// appointment rows always reference a stored doctor. seeded reports whether that happened.
func LoadOrSeed(ctx context.Context, db Store, fallback []Doctor) (doctors []Doctor, seeded bool, err error) {
	doctors, err = Load(ctx, db)
	if err != nil {
		return nil, false, err
	}
	if len(doctors) > 0 {
		return doctors, false, nil
	}
	if len(fallback) == 0 {
		return nil, false, ErrEmptyDirectory
	}
	if err := Save(ctx, db, fallback); err != nil {
		return nil, false, fmt.Errorf("seed doctors: %w", err)
	}
	return fallback, true, nil
}

// Load reads the doctor roster from Postgres in id order. An empty table yields an empty slice.
func Load(ctx context.Context, q Querier) ([]Doctor, error) {
	rows, err := q.Query(ctx, `
		SELECT id, name, specialty, qualifications, experience, location, contact_number
		FROM doctors
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query doctors: %w", err)
	}

	var doctors []Doctor
	index := make(map[int]int)
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.Specialty,
			&d.Qualifications,
			&d.Experience,
			&d.Location,
			&d.ContactNumber,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		index[d.ID] = len(doctors)
		doctors = append(doctors, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate doctors: %w", err)
	}

	if len(doctors) == 0 {
		return doctors, nil
	}

	rows, err = q.Query(ctx, `
		SELECT doctor_id, day, slots
		FROM doctor_availability
		ORDER BY doctor_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query availability: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			doctorID int
			a        Availability
		)
		if err := rows.Scan(&doctorID, &a.Day, &a.Slots); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		idx, ok := index[doctorID]
		if !ok {
			continue
		}
		doctors[idx].Availability = append(doctors[idx].Availability, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availability: %w", err)
	}

	return doctors, nil
}

// Save upserts doctors and replaces their availability in a single transaction.
func Save(ctx context.Context, db Beginner, doctors []Doctor) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range doctors {
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctors (id, name, specialty, qualifications, experience, location, contact_number, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name,
			    specialty = EXCLUDED.specialty,
			    qualifications = EXCLUDED.qualifications,
			    experience = EXCLUDED.experience,
			    location = EXCLUDED.location,
			    contact_number = EXCLUDED.contact_number,
			    updated_at = now()
		`, d.ID, d.Name, d.Specialty, d.Qualifications, d.Experience, d.Location, d.ContactNumber); err != nil {
			return fmt.Errorf("upsert doctor %d: %w", d.ID, err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM doctor_availability WHERE doctor_id = $1`, d.ID); err != nil {
			return fmt.Errorf("clear availability for doctor %d: %w", d.ID, err)
		}

		for pos, a := range d.Availability {
			if _, err := tx.Exec(ctx, `
				INSERT INTO doctor_availability (doctor_id, position, day, slots)
				VALUES ($1, $2, $3, $4)
			`, d.ID, pos, a.Day, a.Slots); err != nil {
				return fmt.Errorf("insert availability for doctor %d: %w", d.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
