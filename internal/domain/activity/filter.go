package activity

import (
	"strings"
	"time"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Page size bounds for the activity log
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Filter narrows an activity log query. Nil fields are not applied.
type Filter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	UserID     *uuid.UUID
	EntityType *EntityType
	Action     *Action
}

// FilterParams is the raw, string form of a filter as received from a query string
type FilterParams struct {
	StartDate  string
	EndDate    string
	UserID     string
	EntityType string
	Action     string
}

// ParseFilter validates the raw params. Empty and "all" values mean no filter.
// A bare date as end date covers the whole day.
func ParseFilter(p FilterParams) (Filter, error) {
	var f Filter

	if v := clean(p.StartDate); v != "" {
		t, _, err := parseTime(v)
		if err != nil {
			return f, shared.NewFieldError("start_date", "Data inicial inválida")
		}
		f.StartDate = &t
	}
	if v := clean(p.EndDate); v != "" {
		t, dateOnly, err := parseTime(v)
		if err != nil {
			return f, shared.NewFieldError("end_date", "Data final inválida")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, shared.NewFieldError("end_date", "Data final deve ser posterior à data inicial")
	}
	if v := clean(p.UserID); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, shared.NewFieldError("user_id", "Usuário inválido")
		}
		f.UserID = &id
	}
	if v := clean(p.EntityType); v != "" {
		et := EntityType(v)
		if !et.IsValid() {
			return f, shared.NewFieldError("entity_type", "Tipo de entidade inválido")
		}
		f.EntityType = &et
	}
	if v := clean(p.Action); v != "" {
		a := Action(v)
		if !a.IsValid() {
			return f, shared.NewFieldError("action", "Ação inválida")
		}
		f.Action = &a
	}
	return f, nil
}

// IsEmpty reports whether no filter is set
func (f Filter) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil && f.UserID == nil && f.EntityType == nil && f.Action == nil
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func parseTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
