package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/lookup"
)

func fixedNow() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   Result
	}{
		{"all missing", Fields{}, Result{Message: MsgMissingCaseType}},
		{"type only", Fields{CaseType: "CRL"}, Result{Message: MsgMissingCaseNumber}},
		{"year only", Fields{FilingYear: "2023"}, Result{Message: MsgMissingCaseType}},
		{"number and year", Fields{CaseNumber: "12", FilingYear: "2023"}, Result{Message: MsgMissingCaseType}},
		{"type and number", Fields{CaseType: "CRL", CaseNumber: "12"}, Result{Message: MsgMissingFilingYear}},
		{"whitespace number", Fields{CaseType: "CRL", CaseNumber: "  ", FilingYear: "2023"}, Result{Message: MsgMissingCaseNumber}},
		{"complete", Fields{CaseType: "CRL", CaseNumber: "12", FilingYear: "2023"}, Result{Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.fields))
		})
	}
}

func TestSanitizeCaseNumber(t *testing.T) {
	assert.Equal(t, "1234/2023", SanitizeCaseNumber("1234/2023"))
	assert.Equal(t, "AB-12/3", SanitizeCaseNumber("A B-1#2/3!"))
	assert.Equal(t, "", SanitizeCaseNumber(" .*#!"))
}

func TestYearOptions(t *testing.T) {
	years := YearOptions(fixedNow())
	require.Len(t, years, 2025-1950+1)
	assert.Equal(t, 2025, years[0])
	assert.Equal(t, 1950, years[len(years)-1])
	for i := 1; i < len(years); i++ {
		assert.Equal(t, years[i-1]-1, years[i])
	}
}

func TestBuild(t *testing.T) {
	b := NewBuilder(fixedNow)

	tests := []struct {
		name    string
		fields  Fields
		want    lookup.Query
		wantMsg string
	}{
		{
			name:   "criminal scenario",
			fields: Fields{CaseType: "Criminal", CaseNumber: "1234", FilingYear: "2023"},
			want:   lookup.Query{CaseType: "Criminal", CaseNumber: "1234", FilingYear: 2023},
		},
		{
			name:   "case insensitive type",
			fields: Fields{CaseType: "wpc", CaseNumber: "55/A", FilingYear: "1950"},
			want:   lookup.Query{CaseType: "WPC", CaseNumber: "55/A", FilingYear: 1950},
		},
		{
			name:    "missing field uses presence message",
			fields:  Fields{CaseType: "CRL", FilingYear: "2023"},
			wantMsg: MsgMissingCaseNumber,
		},
		{
			name:    "unknown type",
			fields:  Fields{CaseType: "XYZ", CaseNumber: "1", FilingYear: "2023"},
			wantMsg: "Invalid case type. Must be one of: Civil, Criminal, CRL, WPC, FAO, RFA, LPA, CS, CC, CRL.M.C, CRL.A, CRL.REV.P, RSA, CR, EXEC",
		},
		{
			name:    "bad charset",
			fields:  Fields{CaseType: "CRL", CaseNumber: "12 34", FilingYear: "2023"},
			wantMsg: MsgBadCaseNumber,
		},
		{
			name:    "non numeric year",
			fields:  Fields{CaseType: "CRL", CaseNumber: "1", FilingYear: "last year"},
			wantMsg: MsgBadYearNumber,
		},
		{
			name:    "year too old",
			fields:  Fields{CaseType: "CRL", CaseNumber: "1", FilingYear: "1949"},
			wantMsg: "Year must be between 1950 and 2025",
		},
		{
			name:    "future year",
			fields:  Fields{CaseType: "CRL", CaseNumber: "1", FilingYear: "2026"},
			wantMsg: "Year must be between 1950 and 2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := b.Build(tt.fields)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				assert.Equal(t, tt.wantMsg, apperr.UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestCanonicalCaseType(t *testing.T) {
	got, ok := CanonicalCaseType(" crl.m.c ")
	assert.True(t, ok)
	assert.Equal(t, "CRL.M.C", got)

	_, ok = CanonicalCaseType("")
	assert.False(t, ok)
}
