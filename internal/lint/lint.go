// Package lint checks table definitions against the naming conventions for
// tables, namespaces, and columns.
package lint

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

// Check names.
const (
	CheckTableName = "Table Name"
	CheckNamespace = "Namespace"
	CheckColumns   = "Column"
)

var (
	snakeCase        = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)
	nonDescriptive   = regexp.MustCompile(`^(test|tmp|temp|table|foo|bar|data|new)[0-9]*$`)
	reservedSQLWords = map[string]bool{}
)

func init() {
	for _, w := range strings.Fields(`
		all alter and any as asc between by case cast check column constraint create
		cross current database default delete desc distinct drop else end except exists
		false fetch for foreign from full grant group having in index inner insert
		intersect into is join key left like limit natural not null offset on or order
		outer primary references revoke right rollback row rows schema select set some
		table then to true truncate union unique update user using values view when
		where with`) {
		reservedSQLWords[w] = true
	}
}

// Result is the outcome of one check.
type Result struct {
	Check  string `json:"check"`
	Pass   bool   `json:"pass"`
	Reason string `json:"reason,omitempty"`
}

// Report collects the check results for one definition.
type Report struct {
	Path    string   `json:"path"`
	Table   string   `json:"table"`
	Results []Result `json:"results"`
}

// OK reports whether every check passed.
func (r Report) OK() bool {
	for _, res := range r.Results {
		if !res.Pass {
			return false
		}
	}
	return true
}

// Check runs every naming check against def.
func Check(def types.TableDefinition) Report {
	return Report{
		Path:  def.Path,
		Table: def.Identity().String(),
		Results: []Result{
			checkTableName(def.Name),
			checkNamespace(def.Namespace),
			checkColumns(def.Fields),
		},
	}
}

func checkTableName(name string) Result {
	res := Result{Check: CheckTableName, Pass: true}
	switch {
	case !snakeCase.MatchString(name):
		res.Reason = fmt.Sprintf("%q must be lowercase snake_case starting with a letter or digit", name)
	case reservedSQLWords[name]:
		res.Reason = fmt.Sprintf("%q is a SQL reserved word", name)
	case len(name) < 2 || nonDescriptive.MatchString(name):
		res.Reason = fmt.Sprintf("%q is not descriptive", name)
	default:
		return res
	}
	res.Pass = false
	return res
}

func checkNamespace(namespace string) Result {
	res := Result{Check: CheckNamespace, Pass: true}
	if !snakeCase.MatchString(namespace) {
		res.Pass = false
		res.Reason = fmt.Sprintf("%q must be lowercase snake_case starting with a letter or digit", namespace)
	}
	return res
}

func checkColumns(fields []types.FieldDefinition) Result {
	res := Result{Check: CheckColumns, Pass: true}
	var bad []string
	for _, f := range fields {
		if !snakeCase.MatchString(f.Name) {
			bad = append(bad, fmt.Sprintf("%q", f.Name))
		}
	}
	if len(bad) > 0 {
		res.Pass = false
		res.Reason = "not lowercase snake_case: " + strings.Join(bad, ", ")
	}
	return res
}

// Errors converts failed checks into validation errors.
func (r Report) Errors() []error {
	var errs []error
	for _, res := range r.Results {
		if !res.Pass {
			errs = append(errs, &types.ValidationError{Path: r.Path, Field: strings.ToLower(res.Check), Reason: res.Reason})
		}
	}
	return errs
}

// Write prints the report in the review summary layout.
func (r Report) Write(w io.Writer) {
	fmt.Fprintf(w, "%s (%s)\n", r.Path, r.Table)
	for _, res := range r.Results {
		status, reason := "PASS", "OK"
		if !res.Pass {
			status, reason = "FAIL", res.Reason
		}
		fmt.Fprintf(w, "  %s Check: %s\n  Reason: %s\n", res.Check, status, reason)
	}
	action := "APPROVE"
	if !r.OK() {
		action = "REQUEST CHANGES"
	}
	fmt.Fprintf(w, "  Action: %s\n", action)
}
