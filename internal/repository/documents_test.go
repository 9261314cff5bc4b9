package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/claims-extractor/internal/common"
	"github.com/joseph-ayodele/claims-extractor/internal/fields"
	"github.com/joseph-ayodele/claims-extractor/internal/pipeline"
)

func openTestRepo(t *testing.T) DocumentRepository {
	t.Helper()
	ctx := context.Background()
	db, dialect, err := Open(ctx, common.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Equal(t, DialectSQLite, dialect)
	require.NoError(t, HealthCheck(ctx, db, nil))
	require.NoError(t, InitSchema(ctx, db))
	return NewDocumentRepository(db, dialect, nil)
}

func sampleResult() pipeline.Result {
	return pipeline.Result{
		Fields: map[string]fields.FieldValue{
			"policy_number": {Name: "policy_number", Value: fields.String("ABC-123456"), Confidence: 0.95, Source: "text"},
			"form_type":     {Name: "form_type", Value: fields.String("claim"), Confidence: 0.6, Source: "text"},
			"claim_amount":  {Name: "claim_amount", Value: nil, Confidence: 0.0, Source: "text"},
		},
		Confidence: 0.775,
	}
}

func TestSaveAndGetDocument(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	id, err := repo.SaveExtraction(ctx, "claim.pdf", sampleResult())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	doc, err := repo.GetDocument(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "claim.pdf", doc.Filename)
	require.NotNil(t, doc.FormType)
	assert.Equal(t, "claim", *doc.FormType)
	assert.Nil(t, doc.SubmissionDate)
	assert.False(t, doc.CreatedAt.IsZero())

	require.Len(t, doc.Fields, 3)
	// rows come back ordered by name
	assert.Equal(t, "claim_amount", doc.Fields[0].Name)
	assert.Nil(t, doc.Fields[0].Value)
	assert.Equal(t, "policy_number", doc.Fields[2].Name)
	require.NotNil(t, doc.Fields[2].Value)
	assert.Equal(t, "ABC-123456", *doc.Fields[2].Value)
	assert.InDelta(t, 0.95, doc.Fields[2].Confidence, 1e-6)
	assert.Equal(t, "text", doc.Fields[2].Source)
}

func TestGetDocument_NotFound(t *testing.T) {
	repo := openTestRepo(t)

	_, err := repo.GetDocument(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestSummarize(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	_, err := repo.SaveExtraction(ctx, "claim.pdf", sampleResult())
	require.NoError(t, err)

	empty := pipeline.Result{Fields: map[string]fields.FieldValue{}}
	_, err = repo.SaveExtraction(ctx, "empty.pdf", empty)
	require.NoError(t, err)

	summaries, err := repo.Summarize(ctx, 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byName := map[string]int{}
	for i, s := range summaries {
		byName[s.Filename] = i
	}
	full := summaries[byName["claim.pdf"]]
	assert.Equal(t, 2, full.Filled)
	assert.Equal(t, 3, full.Total)
	assert.InDelta(t, 2.0/3.0, full.FillRatio(), 1e-6)

	none := summaries[byName["empty.pdf"]]
	assert.Equal(t, 0, none.Filled)
	assert.Equal(t, 0, none.Total)
	assert.Equal(t, 0.0, none.FillRatio())
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO t(a, b) VALUES(?, ?)`
	assert.Equal(t, q, rebind(DialectSQLite, q))
	assert.Equal(t, `INSERT INTO t(a, b) VALUES($1, $2)`, rebind(DialectPostgres, q))
}
