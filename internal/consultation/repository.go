package consultation

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Repository mirrors records into Postgres so they can be queried outside
// the JSON file. The table is append-only like the file; seq keeps the
// insertion order for rows sharing a timestamp.
type Repository interface {
	Append(ctx context.Context, identity string, rec Record) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

// OpenDatabase connects to Postgres, retrying while the server starts up.
func OpenDatabase(ctx context.Context, dsn string, attempts int) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			return db, nil
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}

// Migrate applies the embedded schema migrations.
func Migrate(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

func (r *postgresRepo) Append(ctx context.Context, identity string, rec Record) error {
	var patientJSON []byte
	if rec.PatientInfo != nil {
		var err error
		patientJSON, err = json.Marshal(rec.PatientInfo)
		if err != nil {
			return err
		}
	}

	recordedAt, err := time.ParseInLocation(TimestampLayout, rec.Timestamp, time.Local)
	if err != nil {
		recordedAt = time.Now()
	}

	query := `
		INSERT INTO consultation_records (
			id, patient_identity, is_followup, symptoms, original_symptoms, response, translated_response,
			followup_question, original_followup, followup_response, translated_followup_response,
			patient_info, language, input_method, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID, identity, rec.IsFollowup(), rec.Symptoms, rec.OriginalSymptoms, rec.Response, rec.TranslatedResponse,
		rec.FollowupQuestion, rec.OriginalFollowup, rec.FollowupResponse, rec.TranslatedFollowupResponse,
		nullableJSON(patientJSON), rec.Language, string(rec.InputMethod), recordedAt)
	if err != nil {
		return fmt.Errorf("insert consultation record: %w", err)
	}
	return nil
}

// nullableJSON passes JSON as text so lib/pq does not encode it as bytea.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
