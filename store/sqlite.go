package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lfmotta/cargobot/core"
)

// SQLiteStore persists customers, history, job applications and supplier
// registrations in a single SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and creates if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL keeps reads from blocking the single writer.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS customers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		external_id TEXT NOT NULL UNIQUE,
		branch TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(id),
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_customer ON history(customer_id, id);

	CREATE TABLE IF NOT EXISTS openings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		city TEXT NOT NULL,
		requirements TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS applications (
		protocol TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		area TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS suppliers (
		protocol TEXT PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		company_name TEXT NOT NULL,
		tax_id TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		portfolio_url TEXT NOT NULL DEFAULT '',
		site_url TEXT NOT NULL DEFAULT '',
		cities TEXT NOT NULL DEFAULT '',
		contact TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_suppliers_customer ON suppliers(customer_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetOrCreateCustomer implements core.CustomerStore.
func (s *SQLiteStore) GetOrCreateCustomer(ctx context.Context, externalID string) (core.CustomerID, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (external_id, created_at) VALUES (?, ?)
		 ON CONFLICT(external_id) DO NOTHING`,
		externalID, time.Now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("create customer: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE external_id = ?`, externalID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("load customer: %w", err)
	}
	return core.CustomerID(id), nil
}

// AppendHistory implements core.CustomerStore.
func (s *SQLiteStore) AppendHistory(ctx context.Context, id core.CustomerID, role, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (customer_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		int64(id), role, text, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// GetRecentHistory implements core.CustomerStore. Entries come back in
// chronological order.
func (s *SQLiteStore) GetRecentHistory(ctx context.Context, id core.CustomerID, limit int) ([]core.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, text, created_at FROM history
		 WHERE customer_id = ? ORDER BY id DESC LIMIT ?`,
		int64(id), limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var entry core.HistoryEntry
		var millis int64
		if err := rows.Scan(&entry.Role, &entry.Text, &millis); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entry.Timestamp = time.UnixMilli(millis)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	// Newest-first from the query, flip to chronological.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// GetCustomerProfile implements core.CustomerStore.
func (s *SQLiteStore) GetCustomerProfile(ctx context.Context, id core.CustomerID) (core.CustomerProfile, error) {
	var profile core.CustomerProfile
	var rawID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, branch FROM customers WHERE id = ?`, int64(id)).Scan(&rawID, &profile.Branch)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CustomerProfile{}, core.ErrNotFound
	}
	if err != nil {
		return core.CustomerProfile{}, fmt.Errorf("load profile: %w", err)
	}
	profile.ID = core.CustomerID(rawID)
	return profile, nil
}

// UpdateCustomerBranch implements core.CustomerStore.
func (s *SQLiteStore) UpdateCustomerBranch(ctx context.Context, id core.CustomerID, branch string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET branch = ? WHERE id = ?`, branch, int64(id))
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// AddOpening publishes a job opening.
func (s *SQLiteStore) AddOpening(ctx context.Context, opening core.Opening) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO openings (title, city, requirements, link) VALUES (?, ?, ?, ?)`,
		opening.Title, opening.City, opening.Requirements, opening.Link)
	if err != nil {
		return 0, fmt.Errorf("add opening: %w", err)
	}
	return res.LastInsertId()
}

// ListOpenings implements core.RecruitingStore.
func (s *SQLiteStore) ListOpenings(ctx context.Context) ([]core.Opening, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, city, requirements, link FROM openings WHERE active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list openings: %w", err)
	}
	defer rows.Close()

	var openings []core.Opening
	for rows.Next() {
		var o core.Opening
		if err := rows.Scan(&o.ID, &o.Title, &o.City, &o.Requirements, &o.Link); err != nil {
			return nil, fmt.Errorf("scan opening: %w", err)
		}
		openings = append(openings, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate openings: %w", err)
	}
	return openings, nil
}

// SaveApplication implements core.RecruitingStore.
func (s *SQLiteStore) SaveApplication(ctx context.Context, record core.Application) (string, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO applications (protocol, name, city, area, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.Protocol, record.Name, record.City, record.Area, time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("save application: %w", err)
	}
	return record.Protocol, nil
}

// GetApplication returns a stored application by protocol.
func (s *SQLiteStore) GetApplication(ctx context.Context, protocol string) (core.Application, error) {
	var app core.Application
	err := s.db.QueryRowContext(ctx,
		`SELECT protocol, name, city, area FROM applications WHERE protocol = ?`,
		protocol).Scan(&app.Protocol, &app.Name, &app.City, &app.Area)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Application{}, core.ErrNotFound
	}
	if err != nil {
		return core.Application{}, fmt.Errorf("load application: %w", err)
	}
	return app, nil
}

// SaveSupplier implements core.SupplierStore.
func (s *SQLiteStore) SaveSupplier(ctx context.Context, id core.CustomerID, record core.SupplierRecord) (core.SupplierRecord, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO suppliers
		 (protocol, customer_id, company_name, tax_id, category, portfolio_url, site_url, cities, contact, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Protocol, int64(id), record.CompanyName, record.TaxID, record.Category,
		record.PortfolioURL, record.SiteURL, record.Cities, record.Contact, time.Now().UnixMilli())
	if err != nil {
		return core.SupplierRecord{}, fmt.Errorf("save supplier: %w", err)
	}
	return record, nil
}

// GetSupplier returns a stored supplier registration by protocol.
func (s *SQLiteStore) GetSupplier(ctx context.Context, protocol string) (core.SupplierRecord, error) {
	var record core.SupplierRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT protocol, company_name, tax_id, category, portfolio_url, site_url, cities, contact
		 FROM suppliers WHERE protocol = ?`,
		protocol).Scan(&record.Protocol, &record.CompanyName, &record.TaxID, &record.Category,
		&record.PortfolioURL, &record.SiteURL, &record.Cities, &record.Contact)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SupplierRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.SupplierRecord{}, fmt.Errorf("load supplier: %w", err)
	}
	return record, nil
}
