// Package form validates and normalizes the case search form.
package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JustJay7/case-lookup/internal/apperr"
	"github.com/JustJay7/case-lookup/internal/lookup"
)

// MinFilingYear is the oldest year offered in the filing year select.
const MinFilingYear = 1950

// Messages shown inline when a required field is missing.
const (
	MsgMissingCaseType   = "Please select a case type"
	MsgMissingCaseNumber = "Please enter a case number"
	MsgMissingFilingYear = "Please select a filing year"
	MsgBadCaseNumber     = "Case number can only contain numbers, letters, and hyphens"
	MsgBadYearNumber     = "Year must be a valid number"
)

var (
	caseNumberStrip   = regexp.MustCompile(`[^0-9A-Za-z/-]`)
	caseNumberPattern = regexp.MustCompile(`^[0-9A-Za-z/-]+$`)
)

var caseTypes = []string{
	"Civil", "Criminal",
	"CRL", "WPC", "FAO", "RFA", "LPA",
	"CS", "CC", "CRL.M.C", "CRL.A", "CRL.REV.P", "RSA", "CR", "EXEC",
}

// Fields are the raw values of a submitted search form.
type Fields struct {
	CaseType   string `form:"case_type" json:"case_type"`
	CaseNumber string `form:"case_number" json:"case_number"`
	FilingYear string `form:"filing_year" json:"filing_year"`
}

// Result is the outcome of the presence check run on submit.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Validate checks the required fields in a fixed order and reports the
// first one that is missing.
func Validate(f Fields) Result {
	switch {
	case strings.TrimSpace(f.CaseType) == "":
		return Result{Message: MsgMissingCaseType}
	case strings.TrimSpace(f.CaseNumber) == "":
		return Result{Message: MsgMissingCaseNumber}
	case strings.TrimSpace(f.FilingYear) == "":
		return Result{Message: MsgMissingFilingYear}
	}
	return Result{Valid: true}
}

// SanitizeCaseNumber drops every character outside [0-9A-Za-z/-]. It is
// applied while the user types, independently of Validate.
func SanitizeCaseNumber(s string) string {
	return caseNumberStrip.ReplaceAllString(s, "")
}

// CaseTypes returns the closed set of case types in display order.
func CaseTypes() []string {
	out := make([]string, len(caseTypes))
	copy(out, caseTypes)
	return out
}

// CanonicalCaseType matches s case-insensitively against the known types.
func CanonicalCaseType(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, t := range caseTypes {
		if strings.EqualFold(t, s) {
			return t, true
		}
	}
	return "", false
}

// YearOptions lists filing years from the current year down to 1950.
func YearOptions(now time.Time) []int {
	years := make([]int, 0, now.Year()-MinFilingYear+1)
	for y := now.Year(); y >= MinFilingYear; y-- {
		years = append(years, y)
	}
	return years
}

// Builder turns valid fields into a lookup query.
type Builder struct {
	validate *validator.Validate
	now      func() time.Time
}

type queryInput struct {
	CaseType   string `validate:"required,casetype"`
	CaseNumber string `validate:"required,casenumber"`
	FilingYear int    `validate:"min=1950,notfuture"`
}

// NewBuilder creates a builder; now defaults to time.Now.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	v := validator.New()
	_ = v.RegisterValidation("casetype", func(fl validator.FieldLevel) bool {
		_, ok := CanonicalCaseType(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("casenumber", func(fl validator.FieldLevel) bool {
		return caseNumberPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return int(fl.Field().Int()) <= now().Year()
	})
	return &Builder{validate: v, now: now}
}

// Build validates f and returns the query. Errors are *apperr.Error of kind
// Validation carrying the message to show.
func (b *Builder) Build(f Fields) (lookup.Query, error) {
	if r := Validate(f); !r.Valid {
		return lookup.Query{}, apperr.Validation(r.Message)
	}

	year, err := strconv.Atoi(strings.TrimSpace(f.FilingYear))
	if err != nil {
		return lookup.Query{}, apperr.Validation(MsgBadYearNumber)
	}

	in := queryInput{
		CaseType:   strings.TrimSpace(f.CaseType),
		CaseNumber: strings.TrimSpace(f.CaseNumber),
		FilingYear: year,
	}
	if err := b.validate.Struct(in); err != nil {
		return lookup.Query{}, apperr.Validation(b.message(err))
	}

	canonical, _ := CanonicalCaseType(in.CaseType)
	return lookup.Query{
		CaseType:   canonical,
		CaseNumber: in.CaseNumber,
		FilingYear: in.FilingYear,
	}, nil
}

func (b *Builder) message(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	switch verrs[0].Field() {
	case "CaseType":
		return fmt.Sprintf("Invalid case type. Must be one of: %s", strings.Join(caseTypes, ", "))
	case "CaseNumber":
		return MsgBadCaseNumber
	default:
		return fmt.Sprintf("Year must be between %d and %d", MinFilingYear, b.now().Year())
	}
}
