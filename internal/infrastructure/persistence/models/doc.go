// Package models contains GORM persistence models that map to database tables.
// Domain aggregates stay free of ORM tags; each model converts to and from its
// aggregate with ToDomain and <Name>ModelFromDomain.
//
// Files:
// - base.go: shared persistence fields (id, timestamps, version, tenant)
// - crm.go: clientes, bancos, produtos, promotoras, propostas, comissoes, documentos
// - identity.go: empresas and users
// - activity.go: append-only activity log
package models
