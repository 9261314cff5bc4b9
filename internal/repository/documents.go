package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/claims-extractor/internal/common"
	"github.com/joseph-ayodele/claims-extractor/internal/entity"
	"github.com/joseph-ayodele/claims-extractor/internal/pipeline"
)

// DocumentRepository persists extraction results and reads them back.
type DocumentRepository interface {
	SaveExtraction(ctx context.Context, filename string, res pipeline.Result) (uuid.UUID, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	Summarize(ctx context.Context, limit int) ([]entity.DocumentSummary, error)
}

type documentRepository struct {
	db      *sql.DB
	dialect string
	logger  *slog.Logger
}

func NewDocumentRepository(db *sql.DB, dialect string, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, dialect: dialect, logger: logger}
}

// SaveExtraction writes one document row plus one row per field and returns
// the new document ID. The form_type and submission_date columns are
// denormalized from the field set for cheap filtering.
func (r *documentRepository) SaveExtraction(ctx context.Context, filename string, res pipeline.Result) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, common.WrapError(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	docID := uuid.New()
	formType := fieldValue(res, "form_type")
	submissionDate := fieldValue(res, "submission_date")

	insertDoc := rebind(r.dialect,
		`INSERT INTO documents(id, filename, form_type, submission_date) VALUES(?, ?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insertDoc, docID.String(), filename, formType, submissionDate); err != nil {
		r.logger.Error("failed to insert document", "filename", filename, "error", err)
		return uuid.Nil, common.WrapError(err, "insert document")
	}

	insertField := rebind(r.dialect,
		`INSERT INTO fields(id, document_id, name, value, confidence, source) VALUES(?, ?, ?, ?, ?, ?)`)
	for name, fv := range res.Fields {
		if _, err := tx.ExecContext(ctx, insertField,
			uuid.New().String(), docID.String(), name, fv.Value, fv.Confidence, fv.Source); err != nil {
			r.logger.Error("failed to insert field", "document_id", docID, "field", name, "error", err)
			return uuid.Nil, common.WrapError(err, "insert field")
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, common.WrapError(err, "commit")
	}
	return docID, nil
}

// GetDocument loads one document and its field rows.
func (r *documentRepository) GetDocument(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	q := rebind(r.dialect,
		`SELECT id, filename, form_type, submission_date, created_at FROM documents WHERE id = ?`)
	row := r.db.QueryRowContext(ctx, q, id.String())

	var doc entity.Document
	var rawID string
	if err := row.Scan(&rawID, &doc.Filename, &doc.FormType, &doc.SubmissionDate, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "load document")
	}
	doc.ID, _ = uuid.Parse(rawID)

	fq := rebind(r.dialect,
		`SELECT name, value, confidence, source FROM fields WHERE document_id = ? ORDER BY name`)
	rows, err := r.db.QueryContext(ctx, fq, id.String())
	if err != nil {
		return nil, common.WrapError(err, "load fields")
	}
	defer rows.Close()

	for rows.Next() {
		var f entity.DocumentField
		var source sql.NullString
		if err := rows.Scan(&f.Name, &f.Value, &f.Confidence, &source); err != nil {
			return nil, common.WrapError(err, "scan field")
		}
		f.Source = source.String
		doc.Fields = append(doc.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate fields")
	}
	return &doc, nil
}

// Summarize lists recent documents with their filled/total field counts.
func (r *documentRepository) Summarize(ctx context.Context, limit int) ([]entity.DocumentSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	q := rebind(r.dialect, `
		SELECT d.id, d.filename,
			SUM(CASE WHEN f.value IS NOT NULL AND TRIM(f.value) <> '' THEN 1 ELSE 0 END) AS filled,
			COUNT(f.id) AS total
		FROM documents d
		LEFT JOIN fields f ON f.document_id = d.id
		GROUP BY d.id, d.filename, d.created_at
		ORDER BY d.created_at DESC
		LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, common.WrapError(err, "summarize documents")
	}
	defer rows.Close()

	var out []entity.DocumentSummary
	for rows.Next() {
		var s entity.DocumentSummary
		var rawID string
		var filled, total sql.NullInt64
		if err := rows.Scan(&rawID, &s.Filename, &filled, &total); err != nil {
			return nil, common.WrapError(err, "scan summary")
		}
		s.ID, _ = uuid.Parse(rawID)
		s.Filled = int(filled.Int64)
		s.Total = int(total.Int64)
		out = append(out, s)
	}
	return out, rows.Err()
}

func fieldValue(res pipeline.Result, name string) *string {
	if fv, ok := res.Fields[name]; ok {
		return fv.Value
	}
	return nil
}
