// Package all wires every built-in storage backend into the storage factory.
//
// It exists purely for side effects: blank-importing it runs the init
// functions of each backend package, which register their factories and DDL
// bootstrappers with the storage package. Binaries that only need a subset of
// backends can import the individual packages instead.
package all

import (
	_ "landingzone/internal/storage/mssql"
	_ "landingzone/internal/storage/mysql"
	_ "landingzone/internal/storage/postgres"
	_ "landingzone/internal/storage/sqlite"
)
