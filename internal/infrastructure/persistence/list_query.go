package persistence

import (
	"errors"
	"strings"

	"github.com/aprovacrm/backend/internal/domain/shared"
	"github.com/aprovacrm/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// listSpec describes how a table is searched, filtered and sorted
type listSpec struct {
	// searchColumns are matched with ILIKE against filter.Search
	searchColumns []string
	// searchSQL is an extra OR condition with a single placeholder for the pattern
	searchSQL string
	// filterColumns maps accepted filter keys to columns compared with equality
	filterColumns map[string]string
	sortFields    sortFields
	defaultSort   string
	defaultDir    string
}

// forTenant restricts a query to one tenant. The condition is added immediately,
// so it always comes first in the WHERE clause.
func forTenant(db *gorm.DB, tenantID uuid.UUID) *gorm.DB {
	return tenant.TenantScope(tenantID)(db)
}

// applyConditions applies search and filters, without ordering or paging
func (s listSpec) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		clauses := make([]string, 0, len(s.searchColumns)+1)
		args := make([]any, 0, len(s.searchColumns)+1)
		for _, col := range s.searchColumns {
			clauses = append(clauses, col+" ILIKE ?")
			args = append(args, pattern)
		}
		if s.searchSQL != "" {
			clauses = append(clauses, s.searchSQL)
			args = append(args, pattern)
		}
		if len(clauses) > 0 {
			query = query.Where("("+strings.Join(clauses, " OR ")+")", args...)
		}
	}

	for key, value := range filter.Filters {
		col, ok := s.filterColumns[key]
		if !ok || value == nil {
			continue
		}
		if str, isString := value.(string); isString && str == "" {
			continue
		}
		query = query.Where(col+" = ?", value)
	}
	return query
}

// applyFilter applies conditions plus ordering and paging
func (s listSpec) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = s.applyConditions(query, filter).Order(s.orderBy(filter.OrderBy, filter.OrderDir))

	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// notFound maps gorm's missing-record error to the domain sentinel
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// deleteResult maps a delete that touched no row to ErrNotFound
func deleteResult(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
