package types

// CreateTableRequest mirrors the JSON shape the table service accepts for
// create-table (the same document `aws s3tables create-table
// --cli-input-json` reads).
type CreateTableRequest struct {
	TableBucketARN string         `json:"tableBucketARN"`
	Namespace      string         `json:"namespace"`
	Name           string         `json:"name"`
	Format         string         `json:"format"`
	Metadata       *TableMetadata `json:"metadata,omitempty"`
}

// TableMetadata wraps format specific metadata. It is omitted from the
// request when the definition declares no schema fields.
type TableMetadata struct {
	Iceberg IcebergMetadata `json:"iceberg"`
}

// IcebergMetadata holds the Iceberg schema of a new table.
type IcebergMetadata struct {
	Schema IcebergSchema `json:"schema"`
}

// IcebergSchema is the ordered list of schema fields.
type IcebergSchema struct {
	Fields []SchemaField `json:"fields"`
}

// SchemaField is one column in a create request.
type SchemaField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Identity returns the identity addressed by the request.
func (r CreateTableRequest) Identity() Identity {
	return Identity{BucketARN: r.TableBucketARN, Namespace: r.Namespace, Name: r.Name}
}

// DeleteTableRequest carries only the identity fields.
type DeleteTableRequest struct {
	TableBucketARN string `json:"tableBucketARN"`
	Namespace      string `json:"namespace"`
	Name           string `json:"name"`
}

// Identity returns the identity addressed by the request.
func (r DeleteTableRequest) Identity() Identity {
	return Identity{BucketARN: r.TableBucketARN, Namespace: r.Namespace, Name: r.Name}
}
