package types

import (
	"fmt"
	"strings"
)

// Supported open table formats.
const (
	FormatIceberg = "ICEBERG"
)

// knownFormats is the set of recognized format values.
var knownFormats = map[string]bool{
	FormatIceberg: true,
}

// IsKnownFormat reports whether format is a recognized table format.
func IsKnownFormat(format string) bool {
	return knownFormats[format]
}

// TableDefinition is the normalized form of one table definition document.
// It is built per file per run and never persisted.
type TableDefinition struct {
	BucketARN string            // Table bucket ARN (tableBucketARN).
	Namespace string            // Namespace holding the table (required).
	Name      string            // Table name (required).
	Format    string            // One of the Format constants.
	Fields    []FieldDefinition // Ordered schema fields.
	Path      string            // Source document path, for error reporting.
}

// FieldDefinition describes one column of a table schema.
type FieldDefinition struct {
	Name     string
	Type     string
	Required bool
}

// Identity returns the identifying fields of the definition.
func (d TableDefinition) Identity() Identity {
	return Identity{BucketARN: d.BucketARN, Namespace: d.Namespace, Name: d.Name}
}

// Identity addresses a table in the external service.
type Identity struct {
	BucketARN string
	Namespace string
	Name      string
}

// Key returns the identity key used to serialize operations on the same
// table. The bucket is not part of the key.
func (id Identity) Key() string {
	return id.Namespace + "." + id.Name
}

// String formats the identity for logs and summaries.
func (id Identity) String() string {
	if id.Namespace == "" && id.Name == "" {
		return ""
	}
	return fmt.Sprintf("%s.%s", id.Namespace, id.Name)
}

// Validate checks that the identity has every field a delete request needs.
func (id Identity) Validate() error {
	switch {
	case id.BucketARN == "":
		return &ValidationError{Field: "tableBucketARN", Reason: "must not be empty"}
	case !IsARN(id.BucketARN):
		return &ValidationError{Field: "tableBucketARN", Reason: fmt.Sprintf("%q is not an ARN", id.BucketARN)}
	case id.Namespace == "":
		return &ValidationError{Field: "namespace", Reason: "must not be empty"}
	case id.Name == "":
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// IsARN reports whether s has the shape of an Amazon Resource Name.
func IsARN(s string) bool {
	return strings.HasPrefix(s, "arn:")
}
