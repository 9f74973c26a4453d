package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/lookup"
)

func TestJournalSuccess(t *testing.T) {
	repo := newTestRepo(t)
	j := NewJournal(repo, "sess-9")
	ctx := WithClientIP(context.Background(), "10.0.0.7")
	q := lookup.Query{CaseType: "Criminal", CaseNumber: "1234", FilingYear: 2023}

	id, err := j.Begin(ctx, q)
	require.NoError(t, err)

	recordID, err := j.Finish(ctx, id, q, lookup.DemoResult(q), nil, 2*time.Second)
	require.NoError(t, err)
	require.NotZero(t, recordID)

	var log QueryLog
	require.NoError(t, repo.db.First(&log, id).Error)
	assert.Equal(t, StatusSuccess, log.Status)
	assert.Equal(t, "10.0.0.7", log.IPAddress)
	assert.Equal(t, "sess-9", log.SessionID)
	assert.Equal(t, int64(2000), log.DurationMS)

	record, err := repo.GetCaseRecord(ctx, recordID)
	require.NoError(t, err)
	assert.Equal(t, id, record.QueryLogID)
	assert.Len(t, record.Documents, 2)
}

func TestJournalFailure(t *testing.T) {
	repo := newTestRepo(t)
	j := NewJournal(repo, "sess-9")
	ctx := context.Background()
	q := lookup.Query{CaseType: "CRL", CaseNumber: "1", FilingYear: 2020}

	id, err := j.Begin(ctx, q)
	require.NoError(t, err)

	recordID, err := j.Finish(ctx, id, q, nil, errors.New("Case not found in the system"), time.Second)
	require.NoError(t, err)
	assert.Zero(t, recordID)

	var log QueryLog
	require.NoError(t, repo.db.First(&log, id).Error)
	assert.Equal(t, StatusFailed, log.Status)
	assert.Equal(t, "Case not found in the system", log.ErrorMessage)
	assert.Empty(t, log.IPAddress)

	recordID, err = j.Finish(ctx, 0, q, nil, nil, 0)
	assert.NoError(t, err)
	assert.Zero(t, recordID)
}
