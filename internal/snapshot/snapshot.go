// Package snapshot exports a finished scan to a SQLite file, with vectors in
// a sqlite-vec table, for ad hoc SQL reporting.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"dupescan/internal/duplicates"
	"dupescan/internal/index"
	"dupescan/internal/model"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	sqlite_vec.Auto()
}

// Run describes one scan.
type Run struct {
	ID        string
	Root      string
	Model     string
	Threshold float64
	CreatedAt time.Time
}

// NewRun stamps a run with a fresh id and the current time.
func NewRun(root, model string, threshold float64) Run {
	return Run{
		ID:        uuid.NewString(),
		Root:      root,
		Model:     model,
		Threshold: threshold,
		CreatedAt: time.Now().UTC(),
	}
}

// Group is a duplicate group with its members' scores against the first
// member.
type Group struct {
	model.DuplicateGroup
	Scores []duplicates.PairScore
}

// Snapshot is an open snapshot database.
type Snapshot struct {
	db *sql.DB
}

func open(path string, dim int) (*Snapshot, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db, dim); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Snapshot{db: db}, nil
}

// Open opens an existing snapshot for reading.
func Open(path string) (*Snapshot, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	return open(path, 0)
}

// Write replaces path with a snapshot of records and groups.
func Write(path string, run Run, records []index.Record, groups []Group) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	dim := 0
	for _, r := range records {
		if len(r.Vector) > 0 {
			dim = len(r.Vector)
			break
		}
	}

	s, err := open(path, dim)
	if err != nil {
		return err
	}
	defer s.Close()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rowIDs, err := insertChunks(tx, records, dim)
	if err != nil {
		return err
	}
	if err := insertGroups(tx, groups, rowIDs); err != nil {
		return err
	}

	meta := map[string]string{
		"run_id":     run.ID,
		"root":       run.Root,
		"model":      run.Model,
		"threshold":  strconv.FormatFloat(run.Threshold, 'f', -1, 64),
		"created_at": run.CreatedAt.Format(time.RFC3339),
		"dimension":  strconv.Itoa(dim),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func insertChunks(tx *sql.Tx, records []index.Record, dim int) (map[string]int64, error) {
	stmt, err := tx.Prepare(`INSERT INTO chunks
		(chunk_id, file_path, kind, name, start_line, end_line, start_column, end_column, content_hash, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var vecStmt *sql.Stmt
	if dim > 0 {
		vecStmt, err = tx.Prepare("INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)")
		if err != nil {
			return nil, err
		}
		defer vecStmt.Close()
	}

	ids := make(map[string]int64, len(records))
	for _, r := range records {
		m := r.Metadata
		meta, err := json.Marshal(m.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata for %s: %w", r.ID, err)
		}
		res, err := stmt.Exec(r.ID, m.FilePath, string(m.Kind), m.Name, m.StartLine, m.EndLine,
			m.StartColumn, m.EndColumn, m.ContentHash, r.Content, string(meta))
		if err != nil {
			return nil, fmt.Errorf("insert chunk %s: %w", r.ID, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[r.ID] = rowID

		if vecStmt == nil || len(r.Vector) == 0 {
			continue
		}
		if len(r.Vector) != dim {
			return nil, fmt.Errorf("embedding for %s has dimension %d, want %d", r.ID, len(r.Vector), dim)
		}
		blob, err := sqlite_vec.SerializeFloat32(r.Vector)
		if err != nil {
			return nil, fmt.Errorf("serialize embedding for %s: %w", r.ID, err)
		}
		if _, err := vecStmt.Exec(rowID, blob); err != nil {
			return nil, fmt.Errorf("insert embedding for %s: %w", r.ID, err)
		}
	}
	return ids, nil
}

func insertGroups(tx *sql.Tx, groups []Group, rowIDs map[string]int64) error {
	for gi, g := range groups {
		groupID := int64(gi + 1)
		if _, err := tx.Exec("INSERT INTO groups (id, kind, avg_similarity, member_count) VALUES (?, ?, ?, ?)",
			groupID, string(g.Kind), g.AvgSimilarity, len(g.Members)); err != nil {
			return fmt.Errorf("insert group %d: %w", groupID, err)
		}

		scores := make(map[string]model.DuplicateScore, len(g.Scores))
		for _, s := range g.Scores {
			scores[s.ID] = s.Score
		}
		for pos, m := range g.Members {
			rowID, ok := rowIDs[m.ID]
			if !ok {
				return fmt.Errorf("group %d member %s is not in the snapshot", groupID, m.ID)
			}
			var sim, ratio, combined sql.NullFloat64
			if s, ok := scores[m.ID]; ok {
				sim = sql.NullFloat64{Float64: s.Similarity, Valid: true}
				ratio = sql.NullFloat64{Float64: s.SizeRatio, Valid: true}
				combined = sql.NullFloat64{Float64: s.CombinedScore, Valid: true}
			}
			if _, err := tx.Exec(`INSERT INTO group_members
				(group_id, position, chunk_id, similarity, size_ratio, combined_score) VALUES (?, ?, ?, ?, ?, ?)`,
				groupID, pos, rowID, sim, ratio, combined); err != nil {
				return fmt.Errorf("insert member of group %d: %w", groupID, err)
			}
		}
	}
	return nil
}

// SearchResult is a snapshot chunk near a query vector.
type SearchResult struct {
	ChunkID   string
	FilePath  string
	Kind      model.ChunkKind
	Name      string
	StartLine int
	EndLine   int
	Distance  float64
}

// Search finds the k chunks closest to query by sqlite-vec distance.
func (s *Snapshot) Search(query []float32, k int) ([]SearchResult, error) {
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}
	rows, err := s.db.Query(`
		SELECT c.chunk_id, c.file_path, c.kind, c.name, c.start_line, c.end_line, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`, blob, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var kind string
		if err := rows.Scan(&r.ChunkID, &r.FilePath, &kind, &r.Name, &r.StartLine, &r.EndLine, &r.Distance); err != nil {
			return nil, err
		}
		r.Kind = model.ChunkKind(kind)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Meta returns a run attribute, or "" if not set.
func (s *Snapshot) Meta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// GroupMembers returns the chunk ids of a group in member order. Groups are
// numbered from 1 in report order.
func (s *Snapshot) GroupMembers(groupID int) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT c.chunk_id FROM group_members gm
		JOIN chunks c ON c.id = gm.chunk_id
		WHERE gm.group_id = ?
		ORDER BY gm.position`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Snapshot) Close() error {
	return s.db.Close()
}
