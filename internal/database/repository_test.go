package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/lookup"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Initialize(":memory:")
	require.NoError(t, err)
	return NewRepository(db)
}

func TestQueryLogLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := lookup.Query{CaseType: "CRL", CaseNumber: "12", FilingYear: 2023}

	id, err := repo.LogQuery(ctx, q, "127.0.0.1", "sess-1")
	require.NoError(t, err)
	require.NotZero(t, id)

	require.NoError(t, repo.UpdateQueryStatus(ctx, id, StatusFailed, "Case not found in the system", 1500*time.Millisecond))

	var stored QueryLog
	require.NoError(t, repo.db.First(&stored, id).Error)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, "Case not found in the system", stored.ErrorMessage)
	assert.Equal(t, int64(1500), stored.DurationMS)
	assert.Equal(t, "sess-1", stored.SessionID)
	assert.True(t, repo.Ping(ctx))
}

func TestSaveAndLoadCaseRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	q := lookup.Query{CaseType: "Criminal", CaseNumber: "1234", FilingYear: 2023}

	saved, err := repo.SaveCaseRecord(ctx, 1, q, lookup.DemoResult(q))
	require.NoError(t, err)

	loaded, err := repo.GetCaseRecord(ctx, saved.ID)
	require.NoError(t, err)

	res := loaded.ToResult()
	assert.Equal(t, lookup.DemoResult(q).PDFLinks, res.PDFLinks)
	assert.Equal(t, lookup.DemoResult(q).Timeline, res.Timeline)
	assert.Equal(t, "Criminal 1234/2023", res.CaseNumber)

	_, err = repo.GetCaseRecord(ctx, 999)
	assert.Error(t, err)
}

func TestListCaseRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, n := range []string{"1", "2", "3"} {
		q := lookup.Query{CaseType: "CS", CaseNumber: n, FilingYear: 2022}
		_, err := repo.SaveCaseRecord(ctx, 0, q, lookup.DemoResult(q))
		require.NoError(t, err)
	}

	records, total, err := repo.ListCaseRecords(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, records, 2)
	assert.Equal(t, "CS 3/2022", records[0].CaseNumber)

	records, _, err = repo.ListCaseRecords(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CS 1/2022", records[0].CaseNumber)
}
