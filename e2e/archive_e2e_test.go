//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tiliavir/field-day-tracker/internal/archive"
	"github.com/Tiliavir/field-day-tracker/internal/model"
)

func startMySQL(t *testing.T, ctx context.Context) string {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8.0",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_DATABASE":      "fdt",
			"MYSQL_ROOT_PASSWORD": "secret",
			"MYSQL_USER":          "fdt",
			"MYSQL_PASSWORD":      "pass",
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(90 * time.Second),
	}
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := c.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("fdt:pass@tcp(%s:%s)/fdt?parseTime=true&multiStatements=true", host, port.Port())
}

// openWithRetry waits for MySQL to accept logins; the port opens before
// the server finishes initializing.
func openWithRetry(t *testing.T, ctx context.Context, dsn string, log *slog.Logger) *archive.Client {
	t.Helper()
	var lastErr error
	for i := 0; i < 30; i++ {
		c, err := archive.Open(ctx, dsn, log)
		if err == nil {
			return c
		}
		lastErr = err
		time.Sleep(2 * time.Second)
	}
	t.Fatalf("archive open: %v", lastErr)
	return nil
}

func TestArchiveDayLogEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping in short mode")
	}
	ctx := context.Background()
	dsn := startMySQL(t, ctx)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	client := openWithRetry(t, ctx, dsn, logger)
	t.Cleanup(func() { _ = client.Close() })

	start := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	entry := model.DayLogEntry{
		ID:      "20250314-170000-abcde",
		Date:    "2025-03-14",
		Project: "RDM Retrofit",
		User:    "u-daan",
		TotalMs: 3000000,
		PerActivity: map[string]model.ActivityTotal{
			"Engineering": {Ms: 1800000, Items: []model.SplitItem{{ID: "i-1", Title: "Pump layout", Minutes: 30, Billable: true, StartAt: start, EndAt: start.Add(30 * time.Minute)}}},
			"Travel":      {Ms: 1200000},
		},
		Trips:     []model.TripLeg{{ID: "l-1", StartName: "Werkplaats", StartTime: start, EndName: "Huis Daan", EndTime: &end, Km: 2.71, Date: "2025-03-14"}},
		CreatedAt: start.Add(9 * time.Hour),
	}

	for i := 0; i < 2; i++ {
		if err := client.Archive(ctx, entry); err != nil {
			t.Fatalf("archive run %d: %v", i+1, err)
		}
	}

	n, err := client.Days(ctx, "u-daan")
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 archived day after upsert, got %d", n)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()
	var items, legs int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fdt_split_items").Scan(&items); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fdt_trip_legs").Scan(&legs); err != nil {
		t.Fatalf("count legs: %v", err)
	}
	if items != 1 || legs != 1 {
		t.Fatalf("expected 1 item and 1 leg, got %d and %d", items, legs)
	}
}
