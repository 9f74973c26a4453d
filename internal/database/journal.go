package database

import (
	"context"
	"time"

	"github.com/JustJay7/case-lookup/internal/lookup"
)

type clientIPKey struct{}

// WithClientIP attaches the requesting client's address to ctx so that
// logged queries carry it.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// ClientIP returns the address attached by WithClientIP.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Journal writes the query log of one session: a pending QueryLog when a
// search starts, then its final status and, on success, a CaseRecord.
type Journal struct {
	repo      *Repository
	sessionID string
}

func NewJournal(repo *Repository, sessionID string) *Journal {
	return &Journal{repo: repo, sessionID: sessionID}
}

func (j *Journal) Begin(ctx context.Context, q lookup.Query) (uint, error) {
	return j.repo.LogQuery(ctx, q, ClientIP(ctx), j.sessionID)
}

// Finish returns the ID of the saved CaseRecord, or 0 for failed searches.
func (j *Journal) Finish(ctx context.Context, id uint, q lookup.Query, res *lookup.Result, searchErr error, took time.Duration) (uint, error) {
	if id == 0 {
		return 0, nil
	}

	if searchErr != nil {
		return 0, j.repo.UpdateQueryStatus(ctx, id, StatusFailed, searchErr.Error(), took)
	}

	record, err := j.repo.SaveCaseRecord(ctx, id, q, res)
	if err != nil {
		_ = j.repo.UpdateQueryStatus(ctx, id, StatusFailed, err.Error(), took)
		return 0, err
	}
	if err := j.repo.UpdateQueryStatus(ctx, id, StatusSuccess, "", took); err != nil {
		return record.ID, err
	}
	return record.ID, nil
}
