// Package archive keeps every generated record in SQLite, independent of the
// capped buffer file.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"feedsim/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const queryTimeout = 30 * time.Second

type Archive struct {
	db *sql.DB
}

func connection(database string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", database))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(time.Hour)

	return db, nil
}

// Open migrates the database at path and opens it for reading and writing
func Open(ctx context.Context, path string) (*Archive, error) {
	if err := Migrate(path); err != nil {
		return nil, err
	}

	db, err := connection(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Publish stores a record. Records whose id is already archived are ignored.
func (a *Archive) Publish(ctx context.Context, record models.Record) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ib := sqlbuilder.SQLite.NewInsertBuilder()
	ib.InsertIgnoreInto("records").
		Cols("id", "title", "content", "url", "source_name", "created_at").
		Values(record.Id, record.Title, record.Content, record.Url, record.SourceName, record.CreatedAt.UnixNano())
	query, args := ib.Build()

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	log.WithFields(log.Fields{
		"id": record.Id,
	}).Debug("Archived record")

	return nil
}

// Recent returns up to limit of the newest records, oldest first
func (a *Archive) Recent(ctx context.Context, limit int) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("id", "title", "content", "url", "source_name", "created_at").
		From("records").
		OrderBy("row_id").Desc().
		Limit(limit)
	query, args := sb.Build()

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select error: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var record models.Record
		var createdAt int64
		if err := rows.Scan(&record.Id, &record.Title, &record.Content, &record.Url, &record.SourceName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		record.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select error: %w", err)
	}

	return lo.Reverse(records), nil
}

func (a *Archive) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("COUNT(*)").From("records")
	query, args := sb.Build()

	var count int64
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count error: %w", err)
	}

	return count, nil
}

// Tidy removes records created before cutoff and returns how many were removed
func (a *Archive) Tidy(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	deleteRecords := sqlbuilder.SQLite.NewDeleteBuilder()
	deleteRecords.DeleteFrom("records").Where(deleteRecords.LessThan("created_at", cutoff.UnixNano()))
	query, args := deleteRecords.Build()

	log.WithFields(log.Fields{
		"sql":    query,
		"cutoff": cutoff.Format(time.RFC3339),
	}).Info("Tidying archive")

	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete error: %w", err)
	}

	return res.RowsAffected()
}
