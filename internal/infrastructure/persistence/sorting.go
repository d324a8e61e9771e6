package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortFields whitelists the columns a list endpoint may order by. The
// ORDER BY column comes from the query string, so nothing outside the
// whitelist reaches SQL.
type sortFields map[string]struct{}

// sortable returns a whitelist holding fields plus id and the timestamps.
func sortable(fields ...string) sortFields {
	s := sortFields{"id": {}, "created_at": {}, "updated_at": {}}
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

func (s sortFields) allows(field string) bool {
	_, ok := s[field]
	return ok
}

var (
	clienteSortFields   = sortable("nome", "cpf", "email")
	bancoSortFields     = sortable("nome", "ativo")
	produtoSortFields   = sortable("nome", "tipo_credito", "taxa_juros", "status")
	promotoraSortFields = sortable("nome", "comissao_padrao")
	propostaSortFields  = sortable("valor", "status", "data_decisao")
)

// orderBy resolves the requested column and direction, falling back to the
// list's defaults. Anything but "asc" sorts descending.
func (s listSpec) orderBy(field, dir string) clause.OrderByColumn {
	field = strings.TrimSpace(field)
	if !s.sortFields.allows(field) {
		field = s.defaultSort
	}
	if strings.TrimSpace(dir) == "" {
		dir = s.defaultDir
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: field},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}
