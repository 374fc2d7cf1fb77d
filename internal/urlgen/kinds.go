package urlgen

import (
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

// stringify is the rule turning a typed part value into its unencoded URL
// text.
type stringify int

const (
	asIs stringify = iota
	joinList
	formatBool
	formatInt32
	formatInt64
	formatFloat32
	formatFloat64
)

// stringifyFor is the single dispatch point over spec.TypeKind for URL
// rendering. Unions have no rule.
func stringifyFor(k spec.TypeKind) (stringify, bool) {
	switch k {
	case spec.TypeList:
		return joinList, true
	case spec.TypeString, spec.TypeText, spec.TypeEnum, spec.TypeDate, spec.TypeTime, spec.TypeUnknown:
		return asIs, true
	case spec.TypeBoolean:
		return formatBool, true
	case spec.TypeInteger:
		return formatInt32, true
	case spec.TypeNumber, spec.TypeLong:
		return formatInt64, true
	case spec.TypeFloat:
		return formatFloat32, true
	case spec.TypeDouble:
		return formatFloat64, true
	case spec.TypeUnion:
		return 0, false
	}
	return 0, false
}

// GoType returns the Go type used for a value of kind k.
func GoType(k spec.TypeKind) (jen.Code, error) {
	rule, ok := stringifyFor(k)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedPartType, "%s", k)
	}
	switch rule {
	case joinList:
		return jen.Index().String(), nil
	case formatBool:
		return jen.Bool(), nil
	case formatInt32:
		return jen.Int32(), nil
	case formatInt64:
		return jen.Int64(), nil
	case formatFloat32:
		return jen.Float32(), nil
	case formatFloat64:
		return jen.Float64(), nil
	default:
		return jen.String(), nil
	}
}

// FormatValue returns an expression converting v, of the Go type GoType(k),
// to a string. It returns nil when v is already a string.
func FormatValue(k spec.TypeKind, v jen.Code) jen.Code {
	rule, _ := stringifyFor(k)
	switch rule {
	case joinList:
		return jen.Qual("strings", "Join").Call(v, jen.Lit(","))
	case formatBool:
		return jen.Qual("strconv", "FormatBool").Call(v)
	case formatInt32:
		return jen.Qual("strconv", "FormatInt").Call(jen.Int64().Call(v), jen.Lit(10))
	case formatInt64:
		return jen.Qual("strconv", "FormatInt").Call(v, jen.Lit(10))
	case formatFloat32:
		return jen.Qual("strconv", "FormatFloat").Call(jen.Float64().Call(v), jen.LitRune('g'), jen.Lit(-1), jen.Lit(32))
	case formatFloat64:
		return jen.Qual("strconv", "FormatFloat").Call(v, jen.LitRune('g'), jen.Lit(-1), jen.Lit(64))
	default:
		return nil
	}
}

// formatText applies the same rule in-process to values given as text, as
// they arrive from a command line. The text is parsed into the Go type first
// so the result matches what generated code would produce for that value.
func formatText(k spec.TypeKind, values []string) (string, error) {
	rule, ok := stringifyFor(k)
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedPartType, "%s", k)
	}
	if rule == joinList {
		return strings.Join(values, ","), nil
	}
	if len(values) != 1 {
		return "", errors.Errorf("expected a single %s value, got %d", k, len(values))
	}
	s := values[0]
	switch rule {
	case formatBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return "", errors.Wrapf(err, "%s value", k)
		}
		return strconv.FormatBool(b), nil
	case formatInt32, formatInt64:
		bits := 64
		if rule == formatInt32 {
			bits = 32
		}
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return "", errors.Wrapf(err, "%s value", k)
		}
		return strconv.FormatInt(n, 10), nil
	case formatFloat32, formatFloat64:
		bits := 64
		if rule == formatFloat32 {
			bits = 32
		}
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return "", errors.Wrapf(err, "%s value", k)
		}
		return strconv.FormatFloat(f, 'g', -1, bits), nil
	default:
		return s, nil
	}
}
