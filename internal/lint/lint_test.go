package lint

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/tablectl/pkg/types"
)

func definition(namespace, name string, columns ...string) types.TableDefinition {
	def := types.TableDefinition{Path: "tables/t.yaml", Namespace: namespace, Name: name}
	for _, c := range columns {
		def.Fields = append(def.Fields, types.FieldDefinition{Name: c, Type: "string"})
	}
	return def
}

func TestCheckTableName(t *testing.T) {
	tests := []struct {
		name string
		pass bool
	}{
		{"customer_orders", true},
		{"sales_data_2024", true},
		{"2024_sales", true},
		{"CustomerOrders", false},
		{"customer-orders", false},
		{"customer orders", false},
		{"_orders", false},
		{"a", false},
		{"test", false},
		{"table1", false},
		{"select", false},
		{"user", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := checkTableName(tt.name)
			assert.Equal(t, tt.pass, res.Pass, res.Reason)
			if !tt.pass {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	t.Run("all pass", func(t *testing.T) {
		report := Check(definition("sales", "customer_orders", "order_id", "placed_at"))
		assert.True(t, report.OK())
		assert.Empty(t, report.Errors())
		assert.Equal(t, "sales.customer_orders", report.Table)
	})

	t.Run("every check fails", func(t *testing.T) {
		report := Check(definition("Sales-EU", "Orders", "OrderID", "ok_col", "bad col"))
		assert.False(t, report.OK())

		errs := report.Errors()
		assert.Len(t, errs, 3)
		for _, err := range errs {
			assert.Equal(t, types.KindValidation, types.ErrorKind(err))
		}
		assert.Contains(t, report.Results[2].Reason, `"OrderID"`)
		assert.Contains(t, report.Results[2].Reason, `"bad col"`)
		assert.NotContains(t, report.Results[2].Reason, "ok_col")
	})
}

func TestReportWrite(t *testing.T) {
	var buf bytes.Buffer
	Check(definition("sales", "test", "id")).Write(&buf)

	out := buf.String()
	assert.Contains(t, out, "Table Name Check: FAIL")
	assert.Contains(t, out, "Namespace Check: PASS")
	assert.Contains(t, out, "Reason: OK")
	assert.Contains(t, out, "Action: REQUEST CHANGES")
}
