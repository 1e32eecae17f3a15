package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"updatescan/internal/models"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pages (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	change_threshold INTEGER NOT NULL DEFAULT 100,
	ignore_numbers INTEGER NOT NULL DEFAULT 0,
	content_mode TEXT NOT NULL DEFAULT 'text',
	scan_rate_minutes INTEGER NOT NULL DEFAULT 0 CHECK (scan_rate_minutes >= 0),
	last_autoscan_time INTEGER,
	old_scan_time INTEGER,
	new_scan_time INTEGER,
	state TEXT NOT NULL DEFAULT 'init',
	error_message TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS folders (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS folder_children (
	folder_id TEXT NOT NULL,
	child_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (folder_id, child_id),
	FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_folder_children_child ON folder_children(child_id);

CREATE TABLE IF NOT EXISTS page_content (
	page_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	content TEXT NOT NULL,
	PRIMARY KEY (page_id, kind),
	FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
);
`

// SQLiteStore persists the collection in SQLite. Every write is its own
// statement so autoscan time updates land page by page.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// a single connection keeps PRAGMA foreign_keys in effect for every statement
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO folders (id, title) VALUES (?, 'root')`, models.RootFolderID); err != nil {
		db.Close()
		return nil, fmt.Errorf("create root folder: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.Collection, error) {
	collection := models.NewCollection()
	if err := s.loadPages(ctx, collection); err != nil {
		return nil, err
	}
	if err := s.loadFolders(ctx, collection); err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

const pageColumns = `id, title, url, change_threshold, ignore_numbers, content_mode,
	scan_rate_minutes, last_autoscan_time, old_scan_time, new_scan_time, state, error_message`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPageRow(row rowScanner) (*models.Page, error) {
	var page models.Page
	var ignoreNumbers int
	var contentMode, state string
	var lastAutoscan, oldScan, newScan sql.NullInt64
	if err := row.Scan(&page.ID, &page.Title, &page.URL, &page.ChangeThreshold, &ignoreNumbers, &contentMode,
		&page.ScanRateMinutes, &lastAutoscan, &oldScan, &newScan, &state, &page.ErrorMessage); err != nil {
		return nil, err
	}
	page.IgnoreNumbers = ignoreNumbers != 0
	page.ContentMode = models.ContentMode(contentMode)
	page.State = models.PageState(state)
	page.LastAutoscanTime = fromNull(lastAutoscan)
	page.OldScanTime = fromNull(oldScan)
	page.NewScanTime = fromNull(newScan)
	return &page, nil
}

func (s *SQLiteStore) loadPages(ctx context.Context, collection *models.Collection) error {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages`)
	if err != nil {
		return fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		page, err := scanPageRow(rows)
		if err != nil {
			return fmt.Errorf("scan page: %w", err)
		}
		collection.Pages[page.ID] = page
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pages: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadFolders(ctx context.Context, collection *models.Collection) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title FROM folders`)
	if err != nil {
		return fmt.Errorf("query folders: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		folder := &models.PageFolder{}
		if err := rows.Scan(&folder.ID, &folder.Title); err != nil {
			return fmt.Errorf("scan folder: %w", err)
		}
		collection.Folders[folder.ID] = folder
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate folders: %w", err)
	}
	return nil
}

func (s *SQLiteStore) loadChildren(ctx context.Context, collection *models.Collection) error {
	rows, err := s.db.QueryContext(ctx, `SELECT folder_id, child_id FROM folder_children ORDER BY folder_id, position`)
	if err != nil {
		return fmt.Errorf("query folder children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var folderID, childID string
		if err := rows.Scan(&folderID, &childID); err != nil {
			return fmt.Errorf("scan folder child: %w", err)
		}
		if folder, ok := collection.Folders[folderID]; ok {
			folder.Children = append(folder.Children, childID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate folder children: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateAutoscanTimes(ctx context.Context, updates []models.TimingUpdate) error {
	var errs []error
	for _, u := range updates {
		res, err := s.db.ExecContext(ctx, `UPDATE pages SET last_autoscan_time = ? WHERE id = ?`, u.LastAutoscanTime, u.PageID)
		if err != nil {
			errs = append(errs, fmt.Errorf("update autoscan time of page %s: %w", u.PageID, err))
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrPageNotFound, u.PageID))
		}
	}
	return errors.Join(errs...)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writePageRow(ctx context.Context, db execer, page *models.Page) error {
	res, err := db.ExecContext(ctx, `UPDATE pages SET title = ?, url = ?, change_threshold = ?, ignore_numbers = ?,
		content_mode = ?, scan_rate_minutes = ?, last_autoscan_time = ?, old_scan_time = ?, new_scan_time = ?,
		state = ?, error_message = ? WHERE id = ?`,
		page.Title, page.URL, page.ChangeThreshold, boolToInt(page.IgnoreNumbers), string(page.ContentMode),
		page.ScanRateMinutes, toNull(page.LastAutoscanTime), toNull(page.OldScanTime), toNull(page.NewScanTime),
		string(page.State), page.ErrorMessage, page.ID)
	if err != nil {
		return fmt.Errorf("save page %s: %w", page.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, page.ID)
	}
	return nil
}

func (s *SQLiteStore) SavePage(ctx context.Context, page *models.Page) error {
	return writePageRow(ctx, s.db, page)
}

func (s *SQLiteStore) UpdatePage(ctx context.Context, id string, update func(page *models.Page)) (*models.Page, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	page, err := scanPageRow(tx.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", id, err)
	}

	update(page)
	page.ID = id
	if err := writePageRow(ctx, tx, page); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit page %s: %w", id, err)
	}
	return page, nil
}

func (s *SQLiteStore) AddPage(ctx context.Context, page *models.Page, parentID string) error {
	if parentID == "" {
		parentID = models.RootFolderID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM folders WHERE id = ?`, parentID).Scan(&exists); err != nil {
		return fmt.Errorf("check folder %s: %w", parentID, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrFolderNotFound, parentID)
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE id = ?`, page.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check page %s: %w", page.ID, err)
	}
	if exists != 0 {
		return fmt.Errorf("%w: %s", ErrPageExists, page.ID)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO pages (id, title, url, change_threshold, ignore_numbers, content_mode,
		scan_rate_minutes, last_autoscan_time, old_scan_time, new_scan_time, state, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.ID, page.Title, page.URL, page.ChangeThreshold, boolToInt(page.IgnoreNumbers), string(page.ContentMode),
		page.ScanRateMinutes, toNull(page.LastAutoscanTime), toNull(page.OldScanTime), toNull(page.NewScanTime),
		string(page.State), page.ErrorMessage)
	if err != nil {
		return fmt.Errorf("insert page %s: %w", page.ID, err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO folder_children (folder_id, child_id, position)
		SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM folder_children WHERE folder_id = ?`,
		parentID, page.ID, parentID)
	if err != nil {
		return fmt.Errorf("attach page %s to folder %s: %w", page.ID, parentID, err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) DeletePage(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete page %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM folder_children WHERE child_id = ?`, id); err != nil {
		return fmt.Errorf("detach page %s: %w", id, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadContent(ctx context.Context, id string, kind ContentKind) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM page_content WHERE page_id = ? AND kind = ?`, id, string(kind)).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s content of page %s: %w", kind, id, err)
	}
	return content, nil
}

func (s *SQLiteStore) SaveContent(ctx context.Context, id string, kind ContentKind, content string) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO page_content (page_id, kind, content)
		SELECT ?, ?, ? WHERE EXISTS (SELECT 1 FROM pages WHERE id = ?)
		ON CONFLICT(page_id, kind) DO UPDATE SET content = excluded.content`, id, string(kind), content, id)
	if err != nil {
		return fmt.Errorf("save %s content of page %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNull(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
