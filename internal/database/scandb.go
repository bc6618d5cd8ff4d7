package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/seiran-lab/domainscan/internal/model"
)

// ScanDB provides SQLite-based storage for scan executions and their
// findings.
//
// Design decision: one database file holds every execution rather than
// a file per target. Historical executions against the same target stay
// queryable side by side, which is what makes re-scans comparable.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "domainscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite accepts mode in the DSN query string; rw
	// prevents implicit file creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// Path returns the location of the database file.
func (sdb *ScanDB) Path() string {
	return sdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- One row per scan run
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		status TEXT NOT NULL
	);

	-- Domains discovered for an execution
	CREATE TABLE IF NOT EXISTS domain_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		source TEXT,
		status TEXT,
		UNIQUE (execution_id, domain)
	);

	-- DNS answers
	CREATE TABLE IF NOT EXISTS resolved_domain_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		ip TEXT NOT NULL,
		source TEXT,
		UNIQUE (execution_id, domain, ip)
	);

	-- WHOIS lookups, one row per domain queried
	CREATE TABLE IF NOT EXISTS whois_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		domain TEXT NOT NULL,
		registrar TEXT,
		creation_date TEXT,
		expiration_date TEXT,
		updated_date TEXT,
		name_servers TEXT,
		status TEXT,
		emails TEXT,
		raw_text TEXT
	);

	-- Unified email findings; first technique to find an address wins
	CREATE TABLE IF NOT EXISTS email_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		email TEXT NOT NULL,
		domain TEXT,
		technique TEXT,
		source TEXT,
		context TEXT,
		UNIQUE (execution_id, email)
	);

	-- Per-page crawl traces, kept for debugging and attribution review
	CREATE TABLE IF NOT EXISTS crawler_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		url TEXT NOT NULL,
		emails TEXT,
		links TEXT,
		scripts TEXT
	);

	-- Per-script static-analysis traces
	CREATE TABLE IF NOT EXISTS js_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		script_url TEXT NOT NULL,
		emails TEXT,
		urls TEXT
	);

	-- Exposed credentials; first technique to find a value wins
	CREATE TABLE IF NOT EXISTS credential_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		technique TEXT,
		source TEXT,
		context TEXT,
		UNIQUE (execution_id, type, value)
	);

	-- Summary metrics computed at the end of an execution
	CREATE TABLE IF NOT EXISTS execution_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		execution_id TEXT NOT NULL,
		metric TEXT NOT NULL,
		value REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_emails_execution ON email_results(execution_id);
	CREATE INDEX IF NOT EXISTS idx_credentials_execution ON credential_results(execution_id);
	CREATE INDEX IF NOT EXISTS idx_domains_execution ON domain_results(execution_id);
	`

	if _, err := sdb.db.ExecContext(context.Background(), schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// InsertExecution records the start of a scan run.
func (sdb *ScanDB) InsertExecution(ctx context.Context, exec *model.Execution) error {
	query := `
	INSERT INTO executions (id, target, start_time, end_time, status)
	VALUES (?, ?, ?, ?, ?)`

	var end sql.NullString
	if !exec.End.IsZero() {
		end = sql.NullString{String: exec.End.Format(time.RFC3339), Valid: true}
	}
	_, err := sdb.db.ExecContext(ctx, query,
		exec.ID, exec.Target, exec.Start.Format(time.RFC3339), end, string(exec.Status))
	if err != nil {
		return fmt.Errorf("failed to insert execution: %w", err)
	}
	return nil
}

// UpdateExecution records the end time and final status of a run.
func (sdb *ScanDB) UpdateExecution(ctx context.Context, exec *model.Execution) error {
	query := `
	UPDATE executions
	SET end_time = ?, status = ?
	WHERE id = ?`

	var end sql.NullString
	if !exec.End.IsZero() {
		end = sql.NullString{String: exec.End.Format(time.RFC3339), Valid: true}
	}
	_, err := sdb.db.ExecContext(ctx, query, end, string(exec.Status), exec.ID)
	if err != nil {
		return fmt.Errorf("failed to update execution: %w", err)
	}
	return nil
}

// InsertDomain records a discovered domain. Duplicate domains within
// the same execution are silently ignored.
func (sdb *ScanDB) InsertDomain(ctx context.Context, executionID, domain, source, status string) error {
	query := `
	INSERT INTO domain_results (execution_id, domain, source, status)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (execution_id, domain) DO NOTHING`

	if _, err := sdb.db.ExecContext(ctx, query, executionID, domain, source, status); err != nil {
		return fmt.Errorf("failed to insert domain: %w", err)
	}
	return nil
}

// UpdateDomainStatus sets the resolution status of a discovered domain.
func (sdb *ScanDB) UpdateDomainStatus(ctx context.Context, executionID, domain, status string) error {
	query := `
	UPDATE domain_results
	SET status = ?
	WHERE execution_id = ? AND domain = ?`

	if _, err := sdb.db.ExecContext(ctx, query, status, executionID, domain); err != nil {
		return fmt.Errorf("failed to update domain status: %w", err)
	}
	return nil
}

// InsertResolvedDomain records one DNS answer. Duplicate (domain, ip)
// pairs within the same execution are silently ignored.
func (sdb *ScanDB) InsertResolvedDomain(ctx context.Context, executionID string, addr model.ResolvedAddress, source string) error {
	query := `
	INSERT INTO resolved_domain_results (execution_id, domain, ip, source)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (execution_id, domain, ip) DO NOTHING`

	if _, err := sdb.db.ExecContext(ctx, query, executionID, addr.Domain, addr.IP, source); err != nil {
		return fmt.Errorf("failed to insert resolved domain: %w", err)
	}
	return nil
}

// InsertWhois records the parsed WHOIS data for a domain. List fields
// are stored comma-joined; the raw response is kept verbatim.
func (sdb *ScanDB) InsertWhois(ctx context.Context, executionID, domain string, rec *model.WhoisRecord) error {
	query := `
	INSERT INTO whois_results (
		execution_id, domain, registrar, creation_date, expiration_date,
		updated_date, name_servers, status, emails, raw_text
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := sdb.db.ExecContext(ctx, query,
		executionID, domain, rec.Registrar, rec.CreationDate, rec.ExpirationDate,
		rec.UpdatedDate,
		strings.Join(rec.NameServers, ", "),
		strings.Join(rec.Status, ", "),
		strings.Join(rec.Emails, ", "),
		rec.Raw)
	if err != nil {
		return fmt.Errorf("failed to insert whois result: %w", err)
	}
	return nil
}

// InsertEmail records a unique email finding with its attribution.
// A later insert of the same address within the execution is silently
// ignored, which is what keeps the first-finder attribution stable.
func (sdb *ScanDB) InsertEmail(ctx context.Context, executionID, email, domain, technique, source, context string) error {
	query := `
	INSERT INTO email_results (execution_id, email, domain, technique, source, context)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (execution_id, email) DO NOTHING`

	if _, err := sdb.db.ExecContext(ctx, query, executionID, email, domain, technique, source, context); err != nil {
		return fmt.Errorf("failed to insert email: %w", err)
	}
	return nil
}

// InsertCrawlPage records one crawled page for traceability.
func (sdb *ScanDB) InsertCrawlPage(ctx context.Context, executionID string, page model.Page) error {
	query := `
	INSERT INTO crawler_results (execution_id, url, emails, links, scripts)
	VALUES (?, ?, ?, ?, ?)`

	_, err := sdb.db.ExecContext(ctx, query,
		executionID, page.URL,
		strings.Join(page.Emails, ","),
		strings.Join(page.Links, ","),
		strings.Join(page.Scripts, ","))
	if err != nil {
		return fmt.Errorf("failed to insert crawl page: %w", err)
	}
	return nil
}

// InsertScriptResult records one analyzed script for traceability.
func (sdb *ScanDB) InsertScriptResult(ctx context.Context, executionID string, res model.ScriptResult) error {
	query := `
	INSERT INTO js_results (execution_id, script_url, emails, urls)
	VALUES (?, ?, ?, ?)`

	_, err := sdb.db.ExecContext(ctx, query,
		executionID, res.ScriptURL,
		strings.Join(res.Emails, ","),
		strings.Join(res.URLs, ","))
	if err != nil {
		return fmt.Errorf("failed to insert script result: %w", err)
	}
	return nil
}

// InsertCredential records a unique credential finding. A later insert
// of the same (type, value) pair within the execution is silently
// ignored.
func (sdb *ScanDB) InsertCredential(ctx context.Context, executionID string, cred model.Credential) error {
	query := `
	INSERT INTO credential_results (execution_id, type, value, technique, source, context)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (execution_id, type, value) DO NOTHING`

	_, err := sdb.db.ExecContext(ctx, query,
		executionID, string(cred.Kind), cred.Value, cred.Technique, cred.Source, cred.Context)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// InsertMetric records one summary metric for an execution.
func (sdb *ScanDB) InsertMetric(ctx context.Context, executionID, metric string, value float64) error {
	query := `
	INSERT INTO execution_metrics (execution_id, metric, value)
	VALUES (?, ?, ?)`

	if _, err := sdb.db.ExecContext(ctx, query, executionID, metric, value); err != nil {
		return fmt.Errorf("failed to insert metric: %w", err)
	}
	return nil
}

// CountEmails returns the number of unique emails stored for an execution.
func (sdb *ScanDB) CountEmails(ctx context.Context, executionID string) (int, error) {
	var n int
	err := sdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM email_results WHERE execution_id = ?`, executionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count emails: %w", err)
	}
	return n, nil
}

// CountCredentials returns the number of unique credentials stored for
// an execution.
func (sdb *ScanDB) CountCredentials(ctx context.Context, executionID string) (int, error) {
	var n int
	err := sdb.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credential_results WHERE execution_id = ?`, executionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return n, nil
}

// EmailTechnique returns the technique attributed to a stored email, or
// sql.ErrNoRows when the address is not recorded for the execution.
func (sdb *ScanDB) EmailTechnique(ctx context.Context, executionID, email string) (string, error) {
	var technique string
	err := sdb.db.QueryRowContext(ctx,
		`SELECT technique FROM email_results WHERE execution_id = ? AND email = ?`,
		executionID, email).Scan(&technique)
	if err != nil {
		return "", err
	}
	return technique, nil
}

// Metrics returns the stored metrics for an execution, keyed by name.
func (sdb *ScanDB) Metrics(ctx context.Context, executionID string) (map[string]float64, error) {
	rows, err := sdb.db.QueryContext(ctx,
		`SELECT metric, value FROM execution_metrics WHERE execution_id = ?`, executionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query metrics: %w", err)
	}
	defer rows.Close()

	metrics := make(map[string]float64)
	for rows.Next() {
		var (
			name  string
			value float64
		)
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric: %w", err)
		}
		metrics[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metrics: %w", err)
	}
	return metrics, nil
}
