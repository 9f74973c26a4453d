package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/JustJay7/case-lookup/internal/lookup"
)

// Repository records the audit trail of lookups: one QueryLog per search
// and one CaseRecord per successful search.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogQuery stores a pending query and returns its ID
func (r *Repository) LogQuery(ctx context.Context, q lookup.Query, ip, sessionID string) (uint, error) {
	entry := &QueryLog{
		CaseType:   q.CaseType,
		CaseNumber: q.CaseNumber,
		FilingYear: q.FilingYear,
		Status:     StatusPending,
		QueryTime:  time.Now(),
		IPAddress:  ip,
		SessionID:  sessionID,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return 0, fmt.Errorf("failed to log query: %w", err)
	}
	return entry.ID, nil
}

// UpdateQueryStatus marks a logged query as finished
func (r *Repository) UpdateQueryStatus(ctx context.Context, id uint, status, errMsg string, duration time.Duration) error {
	return r.db.WithContext(ctx).Model(&QueryLog{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":        status,
		"error_message": errMsg,
		"duration_ms":   duration.Milliseconds(),
	}).Error
}

// SaveCaseRecord persists a successful lookup with its documents and timeline
func (r *Repository) SaveCaseRecord(ctx context.Context, queryLogID uint, q lookup.Query, res *lookup.Result) (*CaseRecord, error) {
	record := &CaseRecord{
		QueryLogID:      queryLogID,
		CaseNumber:      res.CaseNumber,
		CaseType:        q.CaseType,
		FilingYear:      q.FilingYear,
		PartiesNames:    res.PartiesNames,
		FilingDate:      res.FilingDate,
		NextHearingDate: res.NextHearingDate,
		CaseStatus:      res.CaseStatus,
		SearchDuration:  res.SearchDuration,
	}
	for i, d := range res.PDFLinks {
		record.Documents = append(record.Documents, CaseDocument{Position: i, URL: d.URL, Title: d.Title, Date: d.Date})
	}
	for i, e := range res.Timeline {
		record.Timeline = append(record.Timeline, TimelineEvent{Position: i, Date: e.Date, Event: e.Event})
	}

	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to save case record: %w", err)
	}
	return record, nil
}

// GetCaseRecord loads a saved record with its children in stored order
func (r *Repository) GetCaseRecord(ctx context.Context, id uint) (*CaseRecord, error) {
	var record CaseRecord
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListCaseRecords returns one page of records, newest first, and the total
func (r *Repository) ListCaseRecords(ctx context.Context, page, limit int) ([]CaseRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&CaseRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []CaseRecord
	err := r.db.WithContext(ctx).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// Ping reports whether the database answers
func (r *Repository) Ping(ctx context.Context) bool {
	var count int64
	return r.db.WithContext(ctx).Model(&QueryLog{}).Count(&count).Error == nil
}

// ToResult converts a stored record back into a lookup result
func (c *CaseRecord) ToResult() *lookup.Result {
	res := &lookup.Result{
		CaseNumber:      c.CaseNumber,
		PartiesNames:    c.PartiesNames,
		FilingDate:      c.FilingDate,
		NextHearingDate: c.NextHearingDate,
		CaseStatus:      c.CaseStatus,
		SearchDuration:  c.SearchDuration,
	}
	for _, d := range c.Documents {
		res.PDFLinks = append(res.PDFLinks, lookup.Document{URL: d.URL, Title: d.Title, Date: d.Date})
	}
	for _, e := range c.Timeline {
		res.Timeline = append(res.Timeline, lookup.TimelineEvent{Date: e.Date, Event: e.Event})
	}
	return res
}
