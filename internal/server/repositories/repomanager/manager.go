package repomanager

import (
	"context"
	"database/sql"

	"filedrop/internal/dbx"
	"filedrop/internal/server/repositories/files"
	"filedrop/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX and
// exposes a schema migration hook. Binding to a DBTX rather than *sql.DB
// lets services run repositories inside transactions via dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
}
