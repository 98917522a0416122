package exec

import (
	"fmt"
	"strings"
)

// splitTail applies the trailing-argument convention: a final argument
// that is the literal text "ORDER BY ..." or "LIMIT ..." passes through
// verbatim as a statement suffix, and a final bare integer becomes
// "LIMIT <n>". Everything before the tail is returned unchanged.
func splitTail(args []any) (rest []any, suffix string) {
	if len(args) == 0 {
		return args, ""
	}
	switch last := args[len(args)-1].(type) {
	case int:
		return args[:len(args)-1], fmt.Sprintf("LIMIT %d", last)
	case int64:
		return args[:len(args)-1], fmt.Sprintf("LIMIT %d", last)
	case string:
		upper := strings.ToUpper(last)
		if strings.HasPrefix(upper, "ORDER BY ") || strings.HasPrefix(upper, "LIMIT ") {
			return args[:len(args)-1], last
		}
	}
	return args, ""
}

// specStrings narrows fetch arguments to attribute specifiers.
func specStrings(args []any) ([]string, error) {
	specs := make([]string, 0, len(args))
	for _, a := range args {
		s, ok := a.(string)
		if !ok {
			return nil, fmt.Errorf("attribute specifier must be a string, got %T", a)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// splitSpecsOutputs partitions Fetch1/FetchN arguments into leading
// attribute specifiers and trailing output bindings.
func splitSpecsOutputs(args []any) (specs []string, outs []any, err error) {
	seenOutput := false
	for _, a := range args {
		if s, ok := a.(string); ok {
			if seenOutput {
				return nil, nil, fmt.Errorf("attribute specifier %q follows an output binding", s)
			}
			specs = append(specs, s)
			continue
		}
		seenOutput = true
		outs = append(outs, a)
	}
	return specs, outs, nil
}

// specTarget returns the output column name a specifier produces: the
// rename/compute target when present, the plain name otherwise.
func specTarget(spec string) string {
	if i := strings.LastIndex(spec, "->"); i >= 0 {
		return strings.TrimSpace(spec[i+2:])
	}
	return strings.TrimSpace(spec)
}
