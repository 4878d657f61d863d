package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// Sqlite/Pg/Pool are declared with fixed shapes per spec §6.2 ("SQLite/Pg,
// connection pools, ORM and query builder ... Declared with their exact
// shapes at module initialisation"). Grounded on the teacher's
// internal/effects handle-returning capability pattern (open a resource,
// thread its opaque handle through subsequent calls, surface failures as
// Result rather than panicking).
func registerSqlitePgPoolModules() {
	sqliteConn := opaque("SqliteConn")
	pgConn := opaque("PgConn")
	pool := opaque("Pool")
	row := opaque("Row")
	rowsOfRow := listOf(row)

	register("Sqlite", map[string]*ty.Scheme{
		"open":    mono([]ty.Ty{ty.String}, resultOf(sqliteConn, ty.String)),
		"exec":    mono([]ty.Ty{sqliteConn, ty.String}, resultOf(ty.Int, ty.String)),
		"query":   mono([]ty.Ty{sqliteConn, ty.String}, resultOf(rowsOfRow, ty.String)),
		"close":   mono([]ty.Ty{sqliteConn}, ty.Unit),
	})

	register("Pg", map[string]*ty.Scheme{
		"connect": mono([]ty.Ty{ty.String}, resultOf(pgConn, ty.String)),
		"exec":    mono([]ty.Ty{pgConn, ty.String}, resultOf(ty.Int, ty.String)),
		"query":   mono([]ty.Ty{pgConn, ty.String}, resultOf(rowsOfRow, ty.String)),
		"close":   mono([]ty.Ty{pgConn}, ty.Unit),
	})

	register("Pool", map[string]*ty.Scheme{
		"new": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{ty.String, ty.Int}, pool
		}),
		"acquire": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{pool}, resultOf(v[0], ty.String)
		}),
		"release": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{pool, v[0]}, ty.Unit
		}),
		"size": mono([]ty.Ty{pool}, ty.Int),
	})
}
