package server

import (
	"database/sql"
	_ "embed"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

//go:embed access_log.sql
var accessLogSchema string

// ApplySchema creates the access_log table and its indexes if they are
// missing. It is safe to call on every start.
func ApplySchema(db *sql.DB, logger log.Logger) error {
	level.Debug(logger).Log("msg", "applying access log schema")
	_, err := db.Exec(accessLogSchema)
	return errors.Wrap(err, "apply access log schema")
}
