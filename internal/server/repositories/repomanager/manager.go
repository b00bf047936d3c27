// Package repomanager vends repository implementations bound to a DBTX
// handle, so services can obtain repos for either a plain connection or an
// open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/securevault/internal/dbx"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entries(db dbx.DBTX) entries.Repository
}
