package repository

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const seedMarkerDemoData = "demo_data_v1"

// Seeder installs the demo catalog once per database. The guard is a
// persisted marker row, not an in-memory flag, so multiple process instances
// agree on whether seeding already happened.
type Seeder struct {
	db *sqlx.DB
}

func NewSeeder(db *sqlx.DB) *Seeder {
	return &Seeder{db: db}
}

// EnsureSeeded is idempotent; it is meant to run once at process startup,
// never lazily inside a request path.
func (s *Seeder) EnsureSeeded(ctx context.Context) error {
	var seeded bool
	err := s.db.GetContext(ctx, &seeded,
		`SELECT EXISTS(SELECT 1 FROM seed_markers WHERE name = $1)`, seedMarkerDemoData)
	if err != nil {
		return err
	}
	if seeded {
		return nil
	}

	log.Println("Seeding demo data...")

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	adminID := uuid.New()
	userID := uuid.New()
	userQuery := `INSERT INTO users (id, email, name, role, phone, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = tx.ExecContext(ctx, userQuery, adminID, "admin@example.com", "Admin User", "admin", "+1234567890", now); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, userQuery, userID, "john@example.com", "John Doe", "end_user", "+1234567891", now); err != nil {
		return err
	}

	schoolQuery := `
		INSERT INTO schools (id, name, type, gender, area, address, description, tuition_fee, is_visible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $9)
	`
	schools := []struct {
		name, area, address, description string
		tuitionFee                       int64
	}{
		{"Harvard University", "Boston", "Cambridge, MA 02138", "Prestigious Ivy League university", 50000},
		{"MIT", "Cambridge", "77 Massachusetts Ave, Cambridge, MA 02139", "Leading technology institute", 55000},
		{"Stanford University", "Palo Alto", "Stanford, CA 94305", "Premier research university", 52000},
	}
	firstSchoolID := uuid.Nil
	for _, sc := range schools {
		id := uuid.New()
		if firstSchoolID == uuid.Nil {
			firstSchoolID = id
		}
		if _, err = tx.ExecContext(ctx, schoolQuery,
			id, sc.name, "university", "mixed", sc.area, sc.address, sc.description,
			decimal.NewFromInt(sc.tuitionFee), now); err != nil {
			return err
		}
	}

	appQuery := `
		INSERT INTO applications (id, user_id, school_id, status, requested_amount, number_of_installments, created_at, updated_at)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $6)
	`
	if _, err = tx.ExecContext(ctx, appQuery,
		uuid.New(), userID, firstSchoolID, decimal.NewFromInt(50000), 12, now); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO seed_markers (name, created_at) VALUES ($1, $2)`, seedMarkerDemoData, now); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	log.Println("Demo data seeded")
	return nil
}
