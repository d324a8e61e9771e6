package tenant

import (
	"fmt"
	"strings"

	"github.com/aprovacrm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tables lists the CRM tables that carry a tenant column
var Tables = []string{
	"clientes",
	"bancos",
	"produtos",
	"promotoras",
	"propostas",
	"comissoes",
	"proposta_documentos",
	"activity_logs",
}

// Guard adds the context tenant to statements on tenant-owned tables
type Guard struct {
	column   string
	tables   map[string]bool
	required bool
}

// GuardOption configures a Guard
type GuardOption func(*Guard)

// WithColumn overrides the tenant column name
func WithColumn(column string) GuardOption {
	return func(g *Guard) {
		if column != "" {
			g.column = column
		}
	}
}

// WithRequired makes guarded statements fail when the context has no tenant
func WithRequired(required bool) GuardOption {
	return func(g *Guard) {
		g.required = required
	}
}

// NewGuard creates a Guard for the given tables
func NewGuard(tables []string, opts ...GuardOption) *Guard {
	g := &Guard{
		column: DefaultColumn,
		tables: make(map[string]bool, len(tables)),
	}
	for _, t := range tables {
		g.tables[t] = true
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register installs the guard on query, row, update and delete statements.
// Creates are not guarded: the tenant is set on the model explicitly.
func (g *Guard) Register(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register("tenant:guard_query", g.apply); err != nil {
		return fmt.Errorf("register tenant query guard: %w", err)
	}
	if err := cb.Row().Before("gorm:row").Register("tenant:guard_row", g.apply); err != nil {
		return fmt.Errorf("register tenant row guard: %w", err)
	}
	if err := cb.Update().Before("gorm:update").Register("tenant:guard_update", g.apply); err != nil {
		return fmt.Errorf("register tenant update guard: %w", err)
	}
	if err := cb.Delete().Before("gorm:delete").Register("tenant:guard_delete", g.apply); err != nil {
		return fmt.Errorf("register tenant delete guard: %w", err)
	}
	return nil
}

func (g *Guard) apply(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped || !g.tables[stmt.Table] {
		return
	}
	if g.hasCondition(stmt) {
		return
	}

	tenantID := logger.GetTenantID(stmt.Context)
	if tenantID == "" {
		if g.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: g.column},
			Value:  tenantID,
		},
	}})
}

// hasCondition reports whether the WHERE clause already mentions the tenant column
func (g *Guard) hasCondition(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if g.mentions(expr) {
			return true
		}
	}
	return false
}

func (g *Guard) mentions(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		return g.isColumn(e.Column)
	case clause.IN:
		return g.isColumn(e.Column)
	case clause.Expr:
		return strings.Contains(e.SQL, g.column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, g.column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if g.mentions(cond) {
				return true
			}
		}
	case clause.OrConditions:
		for _, cond := range e.Exprs {
			if g.mentions(cond) {
				return true
			}
		}
	}
	return false
}

func (g *Guard) isColumn(col any) bool {
	switch c := col.(type) {
	case clause.Column:
		return c.Name == g.column
	case string:
		return c == g.column || strings.HasSuffix(c, "."+g.column)
	}
	return false
}
