// Package postgres provides the PostgreSQL-backed settings store for shared
// deployments. Connections use the pgx stdlib driver, the schema is applied
// with goose, and driver errors are mapped onto the store package's errors.
package postgres
