package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ayodejiades/ayodeji/internal/models"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT,
		source_path TEXT,
		source_mtime INTEGER,
		source_size INTEGER,
		pages INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		ingested_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source_path);

	CREATE TABLE IF NOT EXISTS chunks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL,
		dimensions INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (document_id) REFERENCES documents(id)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_chunk ON chunks(document_id, chunk_index);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return addColumn(db, "documents", "ingested_at", "TIMESTAMP")
}

// addColumn adds a column missing from a database created by an older build.
func addColumn(db *sql.DB, table, column, decl string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

// CreateDocument inserts a document row.
func (s *SQLiteStorage) CreateDocument(ctx context.Context, doc *models.Document) error {
	doc.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (id, title, source_path, source_mtime, source_size, pages, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, doc.SourcePath, doc.SourceMtime, doc.SourceSize, doc.Pages, doc.CreatedAt,
	)
	return err
}

// GetDocument returns a document by ID.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	var title, source sql.NullString
	var mtime, size sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, source_path, source_mtime, source_size, pages, created_at
		 FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &title, &source, &mtime, &size, &doc.Pages, &doc.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	doc.Title, doc.SourcePath = title.String, source.String
	doc.SourceMtime, doc.SourceSize = mtime.Int64, size.Int64
	return &doc, nil
}

// ListDocuments returns documents newest first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, offset, limit int) ([]*models.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_path, source_mtime, source_size, pages, created_at
		 FROM documents ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		var title, source sql.NullString
		var mtime, size sql.NullInt64
		if err := rows.Scan(&doc.ID, &title, &source, &mtime, &size, &doc.Pages, &doc.CreatedAt); err != nil {
			return nil, err
		}
		doc.Title, doc.SourcePath = title.String, source.String
		doc.SourceMtime, doc.SourceSize = mtime.Int64, size.Int64
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// MarkIngested records that every chunk of document id has been stored.
func (s *SQLiteStorage) MarkIngested(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE documents SET ingested_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// HasSource reports whether a document was fully ingested from path with the
// same modification time and size.
func (s *SQLiteStorage) HasSource(ctx context.Context, path string, mtime, size int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents
		 WHERE source_path = ? AND source_mtime = ? AND source_size = ? AND ingested_at IS NOT NULL`,
		path, mtime, size,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BatchCreateChunks appends chunks and their embeddings in one transaction.
// Every chunk must carry an embedding.
func (s *SQLiteStorage) BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, document_id, content, chunk_index, metadata, embedding, dimensions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding", chunk.ID)
		}
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		chunk.CreatedAt = now
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Content, chunk.ChunkIndex, string(metadataJSON),
			encodeVector(chunk.Embedding), len(chunk.Embedding), chunk.CreatedAt,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetChunks returns the chunks with the given IDs keyed by ID. Unknown IDs are absent from the map.
func (s *SQLiteStorage) GetChunks(ctx context.Context, ids []string) (map[string]*models.Chunk, error) {
	out := make(map[string]*models.Chunk, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, content, chunk_index, metadata, created_at
		 FROM chunks WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var chunk models.Chunk
		var metadataJSON sql.NullString
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.ChunkIndex, &metadataJSON, &chunk.CreatedAt); err != nil {
			return nil, err
		}
		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		out[chunk.ID] = &chunk
	}
	return out, rows.Err()
}

// ForEachEmbedding streams every stored vector in insertion order.
func (s *SQLiteStorage) ForEachEmbedding(ctx context.Context, fn func(id string, vec []float32) error) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM chunks ORDER BY seq`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", id, err)
		}
		if err := fn(id, vec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStorage) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
