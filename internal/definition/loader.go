// Package definition loads table definition documents into
// types.TableDefinition values and validates them.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// document is the on-disk layout of a table definition.
type document struct {
	TableBucketARN string      `yaml:"tableBucketARN"`
	Namespace      string      `yaml:"namespace"`
	Name           string      `yaml:"name"`
	Format         string      `yaml:"format"`
	Metadata       metadataDoc `yaml:"metadata"`
}

type metadataDoc struct {
	Iceberg struct {
		Schema struct {
			Fields []fieldDoc `yaml:"fields"`
		} `yaml:"schema"`
	} `yaml:"iceberg"`
}

type fieldDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
}

// errEmptyDocument is wrapped in a ParseError for blank or null documents.
var errEmptyDocument = errors.New("document is empty")

// Load reads and parses the definition at path. Read failures and
// undecodable documents are returned as *types.ParseError; missing or
// invalid fields as one or more *types.ValidationError.
func Load(path string) (types.TableDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.TableDefinition{}, &types.ParseError{Path: path, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes data as a definition document. path is used for error
// reporting only.
func Parse(path string, data []byte) (types.TableDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.TableDefinition{}, &types.ParseError{Path: path, Err: errEmptyDocument}
	}

	var doc *document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.TableDefinition{}, &types.ParseError{Path: path, Err: err}
	}
	if doc == nil {
		return types.TableDefinition{}, &types.ParseError{Path: path, Err: errEmptyDocument}
	}

	def := types.TableDefinition{
		BucketARN: strings.TrimSpace(doc.TableBucketARN),
		Namespace: strings.TrimSpace(doc.Namespace),
		Name:      strings.TrimSpace(doc.Name),
		Format:    strings.ToUpper(strings.TrimSpace(doc.Format)),
		Path:      path,
	}
	for _, f := range doc.Metadata.Iceberg.Schema.Fields {
		def.Fields = append(def.Fields, types.FieldDefinition{
			Name:     strings.TrimSpace(f.Name),
			Type:     strings.ToLower(strings.TrimSpace(f.Type)),
			Required: f.Required,
		})
	}

	if err := Validate(def); err != nil {
		return types.TableDefinition{}, err
	}
	return def, nil
}

// ParseIdentity decodes only the identity keys of a document. Deleting a
// table needs nothing else, so a definition with a broken schema can still be
// removed.
func ParseIdentity(path string, data []byte) (types.Identity, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return types.Identity{}, &types.ParseError{Path: path, Err: errEmptyDocument}
	}

	var doc struct {
		TableBucketARN string `yaml:"tableBucketARN"`
		Namespace      string `yaml:"namespace"`
		Name           string `yaml:"name"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.Identity{}, &types.ParseError{Path: path, Err: err}
	}

	id := types.Identity{
		BucketARN: strings.TrimSpace(doc.TableBucketARN),
		Namespace: strings.TrimSpace(doc.Namespace),
		Name:      strings.TrimSpace(doc.Name),
	}
	if err := id.Validate(); err != nil {
		var vErr *types.ValidationError
		if errors.As(err, &vErr) {
			vErr.Path = path
		}
		return types.Identity{}, err
	}
	return id, nil
}

// Validate checks the invariants of a definition and returns every problem
// found, joined. Each problem is a *types.ValidationError.
func Validate(def types.TableDefinition) error {
	var problems []error
	invalid := func(field, reason string) {
		problems = append(problems, &types.ValidationError{Path: def.Path, Field: field, Reason: reason})
	}

	switch {
	case def.BucketARN == "":
		invalid("tableBucketARN", "missing required key")
	case !types.IsARN(def.BucketARN):
		invalid("tableBucketARN", fmt.Sprintf("%q is not an ARN", def.BucketARN))
	}
	if def.Namespace == "" {
		invalid("namespace", "missing required key")
	}
	if def.Name == "" {
		invalid("name", "missing required key")
	}
	switch {
	case def.Format == "":
		invalid("format", "missing required key")
	case !types.IsKnownFormat(def.Format):
		invalid("format", fmt.Sprintf("unsupported format %q (expected %s)", def.Format, types.FormatIceberg))
	}

	seen := make(map[string]int, len(def.Fields))
	for i, f := range def.Fields {
		field := fmt.Sprintf("metadata.iceberg.schema.fields[%d]", i)
		if f.Name == "" {
			invalid(field+".name", "missing required key")
		} else if prev, ok := seen[f.Name]; ok {
			invalid(field+".name", fmt.Sprintf("duplicate field %q (also fields[%d])", f.Name, prev))
		} else {
			seen[f.Name] = i
		}
		if f.Type == "" {
			invalid(field+".type", "missing required key")
		} else if _, err := IcebergType(f.Type); err != nil {
			invalid(field+".type", err.Error())
		}
	}

	return errors.Join(problems...)
}

// IsDocument reports whether path names a definition document.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir loads every definition document below dir in lexical order.
// A bad document does not stop the walk: its error is returned alongside
// the definitions that did load.
func LoadDir(dir string) ([]types.TableDefinition, []error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsDocument(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, []error{&types.ParseError{Path: dir, Err: err}}
	}
	sort.Strings(paths)

	var (
		defs []types.TableDefinition
		errs []error
	)
	for _, path := range paths {
		def, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return defs, errs
}
