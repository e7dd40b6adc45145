// Package archive copies closed days into MySQL for reporting outside
// the device.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Tiliavir/field-day-tracker/internal/model"
)

// Client writes day log entries to MySQL.
type Client struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to dsn and brings the schema up to date.
// Example DSN: user:pass@tcp(host:3306)/fdt?parseTime=true&multiStatements=true
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Client, error) {
	if dsn == "" {
		return nil, errors.New("archive: DSN is required")
	}
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: opening mysql: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	if err := migrate(ctx, db, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return &Client{db: db, log: log}, nil
}

// Archive upserts e with its activities, items and trip legs. Archiving
// the same entry twice leaves one copy.
func (c *Client) Archive(ctx context.Context, e model.DayLogEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("archive: encoding %s: %w", e.ID, err)
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := writeEntry(ctx, tx, e, payload); err != nil {
		rollback(tx, c.log, e.ID)
		return fmt.Errorf("archive: %s: %w", e.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Info("archived day", slog.String("id", e.ID), slog.String("date", e.Date))
	return nil
}

// rollback aborts tx after a failed write. The write error is what the
// caller reports, so a failing rollback is only logged.
func rollback(tx interface{ Rollback() error }, log *slog.Logger, id string) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Debug("archive rollback failed", slog.String("id", id), slog.String("error", err.Error()))
	}
}

func writeEntry(ctx context.Context, tx *sql.Tx, e model.DayLogEntry, payload []byte) error {
	day, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", e.Date, err)
	}
	const qDay = `
INSERT INTO fdt_days (id, user_id, day, project, total_ms, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  user_id=VALUES(user_id),
  day=VALUES(day),
  project=VALUES(project),
  total_ms=VALUES(total_ms),
  payload=VALUES(payload);
`
	if _, err := tx.ExecContext(ctx, qDay, e.ID, e.User, day, e.Project, e.TotalMs, string(payload), e.CreatedAt.UTC()); err != nil {
		return err
	}

	names := make([]string, 0, len(e.PerActivity))
	for name := range e.PerActivity {
		names = append(names, name)
	}
	sort.Strings(names)

	const qAct = `
INSERT INTO fdt_day_activities (day_id, activity, ms) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE ms=VALUES(ms);
`
	const qItem = `
INSERT INTO fdt_split_items (id, day_id, activity, title, minutes, billable, wbso, start_at, end_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title=VALUES(title),
  minutes=VALUES(minutes),
  billable=VALUES(billable),
  wbso=VALUES(wbso);
`
	for _, name := range names {
		act := e.PerActivity[name]
		if _, err := tx.ExecContext(ctx, qAct, e.ID, name, act.Ms); err != nil {
			return err
		}
		for _, it := range act.Items {
			if _, err := tx.ExecContext(ctx, qItem, it.ID, e.ID, name, it.Title, it.Minutes, it.Billable, it.WBSO, it.StartAt.UTC(), it.EndAt.UTC()); err != nil {
				return err
			}
		}
	}

	const qLeg = `
INSERT INTO fdt_trip_legs (id, day_id, start_name, end_name, start_time, end_time, km, note)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  end_name=VALUES(end_name),
  end_time=VALUES(end_time),
  km=VALUES(km),
  note=VALUES(note);
`
	for _, leg := range e.Trips {
		var end interface{}
		if leg.EndTime != nil {
			end = leg.EndTime.UTC()
		}
		if _, err := tx.ExecContext(ctx, qLeg, leg.ID, e.ID, leg.StartName, leg.EndName, leg.StartTime.UTC(), end, leg.Km, leg.Note); err != nil {
			return err
		}
	}
	return nil
}

// Days returns the number of archived days of userID.
func (c *Client) Days(ctx context.Context, userID string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fdt_days WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// Close closes the underlying DB.
func (c *Client) Close() error { return c.db.Close() }
