// Package request translates table definitions into table service requests.
package request

import (
	"encoding/json"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// NewCreate builds the create request for def. The schema field list mirrors
// def.Fields in order. Equal definitions always yield equal requests.
func NewCreate(def types.TableDefinition) types.CreateTableRequest {
	req := types.CreateTableRequest{
		TableBucketARN: def.BucketARN,
		Namespace:      def.Namespace,
		Name:           def.Name,
		Format:         def.Format,
	}
	if len(def.Fields) == 0 {
		return req
	}

	fields := make([]types.SchemaField, len(def.Fields))
	for i, f := range def.Fields {
		fields[i] = types.SchemaField{Name: f.Name, Type: f.Type, Required: f.Required}
	}
	req.Metadata = &types.TableMetadata{
		Iceberg: types.IcebergMetadata{
			Schema: types.IcebergSchema{Fields: fields},
		},
	}
	return req
}

// NewDelete builds the delete request for id.
func NewDelete(id types.Identity) types.DeleteTableRequest {
	return types.DeleteTableRequest{
		TableBucketARN: id.BucketARN,
		Namespace:      id.Namespace,
		Name:           id.Name,
	}
}

// Body renders a request as indented JSON. Struct fields marshal in
// declaration order, so the output is stable for equal requests.
func Body(req any) ([]byte, error) {
	return json.MarshalIndent(req, "", "  ")
}
