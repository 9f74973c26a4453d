package database

import (
	"time"

	"gorm.io/gorm"
)

// Query statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type QueryLog struct {
	gorm.Model
	CaseType     string    `json:"case_type"`
	CaseNumber   string    `json:"case_number"`
	FilingYear   int       `json:"filing_year"`
	Status       string    `json:"status" gorm:"default:pending"`
	ErrorMessage string    `json:"error_message"`
	DurationMS   int64     `json:"duration_ms"`
	QueryTime    time.Time `json:"query_time"`
	IPAddress    string    `json:"ip_address"`
	SessionID    string    `json:"session_id" gorm:"index"`
}

type CaseRecord struct {
	gorm.Model
	QueryLogID      uint            `json:"query_log_id"`
	CaseNumber      string          `json:"case_number" gorm:"index"`
	CaseType        string          `json:"case_type"`
	FilingYear      int             `json:"filing_year"`
	PartiesNames    string          `json:"parties_names" gorm:"type:text"`
	FilingDate      string          `json:"filing_date"`
	NextHearingDate string          `json:"next_hearing_date"`
	CaseStatus      string          `json:"case_status"`
	SearchDuration  float64         `json:"search_duration"`
	Documents       []CaseDocument  `json:"documents" gorm:"foreignKey:CaseRecordID"`
	Timeline        []TimelineEvent `json:"timeline" gorm:"foreignKey:CaseRecordID"`
}

type CaseDocument struct {
	gorm.Model
	CaseRecordID uint   `json:"case_record_id"`
	Position     int    `json:"position"`
	URL          string `json:"url"`
	Title        string `json:"title"`
	Date         string `json:"date"`
}

type TimelineEvent struct {
	gorm.Model
	CaseRecordID uint   `json:"case_record_id"`
	Position     int    `json:"position"`
	Date         string `json:"date"`
	Event        string `json:"event"`
}

// KVEntry backs the durable key/value storage used for per-session
// preferences and recent searches.
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:entry_key;size:255"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (QueryLog) TableName() string {
	return "query_logs"
}

func (CaseRecord) TableName() string {
	return "case_records"
}

func (CaseDocument) TableName() string {
	return "case_documents"
}

func (TimelineEvent) TableName() string {
	return "timeline_events"
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
