// Package migrations embeds the SQL schema migrations and registers them
// with the database package. Import it for side effects:
//
//	import _ "github.com/nerrad567/nvx-fleet/migrations"
package migrations

import (
	"embed"

	"github.com/nerrad567/nvx-fleet/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
