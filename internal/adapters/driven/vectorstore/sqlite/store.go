// Package sqlite provides a SQLite-backed vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO, enabling easy cross-compilation. Embeddings are
// stored as little-endian float32 blobs and similarity is computed in
// process; at submission scale (hundreds of chunks per document) a full
// scan of the filtered candidate set beats maintaining an ANN index.
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. By default the database is stored at
// ~/.cnteval/data/chunks.db. All operations are thread-safe through
// SQLite's WAL-mode locking.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Hybrid ranking weights.
const (
	keywordWeight = 0.3
	vectorWeight  = 0.7
)

// Store is a SQLite-backed chunk index.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite vector store at the specified data
// directory. If dataDir is empty, defaults to ~/.cnteval/data/chunks.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cnteval", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chunks.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_chunks.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Index records the given embedded chunks. Chunks without a usable
// vector are skipped; re-indexing a (tech id, chunk index) pair
// overwrites the previous row.
func (s *Store) Index(ctx context.Context, chunks []domain.EmbeddedChunk) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin index transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (tech_id, chunk_index, file_name, content, section, page_numbers, token_count, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tech_id, chunk_index) DO UPDATE SET
			file_name = excluded.file_name,
			content = excluded.content,
			section = excluded.section,
			page_numbers = excluded.page_numbers,
			token_count = excluded.token_count,
			embedding = excluded.embedding,
			indexed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare index statement: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, ec := range chunks {
		if !ec.Embedded() {
			continue
		}

		pages, err := json.Marshal(ec.PageNumbers)
		if err != nil {
			return n, fmt.Errorf("marshal page numbers: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			ec.TechID, ec.Index, ec.FileName, ec.Content, ec.Section,
			string(pages), ec.TokenCount, encodeVector(ec.Vector))
		if err != nil {
			return n, fmt.Errorf("index chunk %s/%d: %w", ec.TechID, ec.Index, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit index transaction: %w", err)
	}
	return n, nil
}

// Search finds the k most similar chunks to the query vector by cosine
// similarity. A submission filter narrows the scan in SQL, so the
// filter can never starve results.
func (s *Store) Search(ctx context.Context, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	return s.search(ctx, query, "", filter, k)
}

// HybridSearch combines keyword matching and vector similarity into one
// ranking.
func (s *Store) HybridSearch(ctx context.Context, queryText string, query []float32, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	return s.search(ctx, query, queryText, filter, k)
}

func (s *Store) search(ctx context.Context, query []float32, queryText string, filter domain.SearchFilter, k int) ([]domain.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}

	q := "SELECT tech_id, chunk_index, content, section, page_numbers, embedding FROM chunks"
	args := []any{}
	if filter.TechID != "" {
		q += " WHERE tech_id = ?"
		args = append(args, filter.TechID)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievalResult
	for rows.Next() {
		var r domain.RetrievalResult
		var pagesJSON string
		var blob []byte
		if err := rows.Scan(&r.TechID, &r.ChunkIndex, &r.Content, &r.Section, &pagesJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if err := json.Unmarshal([]byte(pagesJSON), &r.PageNumbers); err != nil {
			return nil, fmt.Errorf("unmarshal page numbers: %w", err)
		}

		vector := decodeVector(blob)
		score, err := cosine(query, vector)
		if err != nil {
			return nil, err
		}
		if queryText != "" {
			score = keywordWeight*keywordScore(queryText, r.Content) + vectorWeight*score
		}
		r.Score = score
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// DeleteBySubmission removes every chunk of one submission.
func (s *Store) DeleteBySubmission(ctx context.Context, techID string) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE tech_id = ?", techID)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(n), nil
}

// Stats reports index size.
func (s *Store) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&stats.ChunkCount); err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		stats.SizeBytes = info.Size()
	}
	return stats, nil
}

// encodeVector packs a vector as little-endian float32 bytes.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian float32 blob.
func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v
}

// cosine computes cosine similarity between two vectors of equal
// dimension.
func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// keywordScore is the fraction of query terms present in the content,
// case-insensitive.
func keywordScore(query, content string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 0
	}

	haystack := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
