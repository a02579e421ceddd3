package hcl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/jcape/datatest/internal/ctxlog"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeExpr evaluates expr without variables and stores the result in the
// Go value goVal points to. A null result leaves goVal untouched and
// reports false.
func decodeExpr(ctx context.Context, expr hcl.Expression, goVal any) (bool, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return false, diags
	}
	if val.IsNull() {
		return false, diags
	}

	valPtr := reflect.ValueOf(goVal)
	if valPtr.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("target for decoding must be a pointer, got %T", goVal))
	}

	impliedType, err := gocty.ImpliedType(valPtr.Elem().Interface())
	if err != nil {
		panic(fmt.Sprintf("cannot decode into %s: %s", valPtr.Elem().Type(), err))
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return false, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Incorrect attribute value type",
			Detail:   fmt.Sprintf("cannot convert %s to required type %s: %s", val.Type().FriendlyName(), impliedType.FriendlyName(), err),
			Subject:  expr.Range().Ptr(),
		})
	}

	if !val.Type().Equals(convertedVal.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", convertedVal.Type().FriendlyName(),
		)
	}

	if err := gocty.FromCtyValue(convertedVal, goVal); err != nil {
		return false, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsuitable value",
			Detail:   err.Error(),
			Subject:  expr.Range().Ptr(),
		})
	}
	return true, diags
}
