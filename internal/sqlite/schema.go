package sqlite

// Schema DDL for the local catalog. Statements are idempotent so an existing
// catalog survives re-attach.
const (
	createNamespaces = `CREATE TABLE IF NOT EXISTS namespaces (
    bucket_arn TEXT NOT NULL,
    namespace TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (bucket_arn, namespace)
);`

	createTables = `CREATE TABLE IF NOT EXISTS tables (
    table_id TEXT PRIMARY KEY,
    bucket_arn TEXT NOT NULL,
    namespace TEXT NOT NULL,
    name TEXT NOT NULL,
    format TEXT NOT NULL,
    schema_json TEXT NOT NULL,
    version_token TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (bucket_arn, namespace, name),
    FOREIGN KEY (bucket_arn, namespace) REFERENCES namespaces(bucket_arn, namespace)
);`

	createTablesIndex = `CREATE INDEX IF NOT EXISTS idx_tables_namespace ON tables (bucket_arn, namespace);`
)

// schemaStatements lists the DDL in execution order.
var schemaStatements = []string{
	createNamespaces,
	createTables,
	createTablesIndex,
}
