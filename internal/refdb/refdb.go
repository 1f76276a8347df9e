package refdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/peptiscan/internal/model"
)

// ErrCatalogFormat is returned when the catalog JSON cannot be interpreted.
var ErrCatalogFormat = errors.New("invalid peptide catalog format")

// minAmidationLookupLength is the shortest sequence for which the
// trimmed-glycine fallback lookup is attempted. Below this the trimmed
// sequence is too short to be a meaningful catalog key.
const minAmidationLookupLength = 4

// DB provides SQLite-backed lookups against the known-peptide catalog.
//
// Design decision: We keep the catalog in one SQLite file per data
// directory rather than loading the JSON distribution into memory on every
// run. Import happens once, lookups are indexed point queries, and the
// file survives between runs.
type DB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the catalog database under dbDir.
// If CreateIfNotExists is false and no database exists, an error is returned.
func Open(dbDir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dbDir, "peptiscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite dsn: mode=rw refuses to create a new file,
	// mode=rwc allows it.
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

	// SQLite supports one writer; imports are bulk inserts on a single
	// connection and lookups are cheap enough to share it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &DB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *DB) Close() error {
	return rdb.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (rdb *DB) createTables() error {
	schema := `
	-- Known peptides observed in brain tissue, keyed by exact sequence
	CREATE TABLE IF NOT EXISTS known_peptides (
		sequence TEXT PRIMARY KEY,
		protein_name TEXT NOT NULL,
		accession TEXT,
		msms_count INTEGER DEFAULT 0,
		mascot_score REAL DEFAULT 0,
		is_amidated INTEGER DEFAULT 0,
		is_prohormone INTEGER DEFAULT 0
	);

	-- Catalog provenance, one row per import
	CREATE TABLE IF NOT EXISTS catalog_meta (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT,
		doi TEXT,
		reference TEXT,
		peptide_count INTEGER,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// catalogFile mirrors the JSON distribution of the brain peptide dataset.
type catalogFile struct {
	Source    string                  `json:"source"`
	DOI       string                  `json:"doi"`
	Reference string                  `json:"reference"`
	Peptides  map[string]catalogEntry `json:"peptides"`
}

// catalogEntry is one peptide record in the JSON distribution.
type catalogEntry struct {
	ProteinName  string  `json:"proteinName"`
	UniProt      string  `json:"uniprot"`
	MSMSCount    int     `json:"msmsCount"`
	MascotScore  float64 `json:"mascotScore"`
	IsAmidated   bool    `json:"isAmidated"`
	IsProhormone bool    `json:"isProhormone"`
}

// ImportJSON loads a catalog distribution into the database. Existing
// entries with the same sequence are replaced, so re-importing a newer
// distribution is safe.
func (rdb *DB) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	var catalog catalogFile
	if err := json.NewDecoder(r).Decode(&catalog); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCatalogFormat, err)
	}
	if len(catalog.Peptides) == 0 {
		return 0, fmt.Errorf("%w: no peptides in catalog", ErrCatalogFormat)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO known_peptides (sequence, protein_name, accession, msms_count, mascot_score, is_amidated, is_prohormone)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(sequence) DO UPDATE SET
		protein_name = excluded.protein_name,
		accession = excluded.accession,
		msms_count = excluded.msms_count,
		mascot_score = excluded.mascot_score,
		is_amidated = excluded.is_amidated,
		is_prohormone = excluded.is_prohormone
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close() //nolint:errcheck // read-only cleanup

	imported := 0
	for sequence, entry := range catalog.Peptides {
		sequence = strings.ToUpper(strings.TrimSpace(sequence))
		if sequence == "" {
			continue
		}

		if _, err := stmt.ExecContext(ctx,
			sequence,
			entry.ProteinName,
			entry.UniProt,
			entry.MSMSCount,
			entry.MascotScore,
			entry.IsAmidated,
			entry.IsProhormone,
		); err != nil {
			return 0, fmt.Errorf("failed to import peptide %s: %w", sequence, err)
		}
		imported++
	}

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO catalog_meta (source, doi, reference, peptide_count)
	VALUES (?, ?, ?, ?)
	`, catalog.Source, catalog.DOI, catalog.Reference, imported); err != nil {
		return 0, fmt.Errorf("failed to record catalog metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return imported, nil
}

// Lookup checks whether a fragment sequence was observed in brain tissue.
//
// Two probes run in order. First an exact match on the sequence. Then, for
// sequences ending in glycine, a match with the glycine removed: amidated
// peptides lose their terminal G during maturation, so the extractor finds
// YGGFMRFG where the catalog recorded YGGFMRF. The trimmed match only
// counts when the catalog entry is itself amidated.
//
// A miss returns (nil, nil).
func (rdb *DB) Lookup(ctx context.Context, sequence string) (*model.KnownPeptide, error) {
	sequence = strings.ToUpper(strings.TrimSpace(sequence))
	if sequence == "" {
		return nil, nil
	}

	known, err := rdb.lookupExact(ctx, sequence)
	if err != nil {
		return nil, err
	}
	if known != nil {
		return known, nil
	}

	if len(sequence) < minAmidationLookupLength || !strings.HasSuffix(sequence, "G") {
		return nil, nil
	}

	trimmed, err := rdb.lookupExact(ctx, sequence[:len(sequence)-1])
	if err != nil {
		return nil, err
	}
	if trimmed == nil || !trimmed.IsAmidated {
		return nil, nil
	}

	trimmed.MatchNote = "matched after removing the C-terminal glycine consumed by amidation"
	return trimmed, nil
}

// lookupExact runs one point query against the catalog.
func (rdb *DB) lookupExact(ctx context.Context, sequence string) (*model.KnownPeptide, error) {
	query := `
	SELECT protein_name, accession, msms_count, mascot_score, is_amidated, is_prohormone
	FROM known_peptides
	WHERE sequence = ?
	`

	var known model.KnownPeptide
	err := rdb.db.QueryRowContext(ctx, query, sequence).Scan(
		&known.ProteinName,
		&known.Accession,
		&known.MSMSCount,
		&known.MascotScore,
		&known.IsAmidated,
		&known.IsProhormone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up peptide: %w", err)
	}

	return &known, nil
}

// Count returns the number of peptides in the catalog.
func (rdb *DB) Count(ctx context.Context) (int, error) {
	var count int
	if err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM known_peptides").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count peptides: %w", err)
	}
	return count, nil
}

// Annotate runs Lookup for every fragment and attaches matches in place.
// Lookup misses leave fragments untouched; the first database error stops
// the pass.
func (rdb *DB) Annotate(ctx context.Context, fragments []*model.PeptideFragment) error {
	for _, fragment := range fragments {
		known, err := rdb.Lookup(ctx, fragment.Sequence)
		if err != nil {
			return err
		}
		if known != nil {
			fragment.Known = known
		}
	}
	return nil
}
