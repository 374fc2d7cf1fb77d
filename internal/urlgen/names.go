package urlgen

import (
	"strings"

	"github.com/iancoleman/strcase"
)

const noneVariant = "None"

// TypeName returns the exported Go identifier for a dotted endpoint name,
// e.g. "indices.put_settings" becomes "IndicesPutSettings".
func TypeName(endpoint string) string {
	return strcase.ToCamel(endpoint)
}

// PartsTypeName is the name of the sum type holding an endpoint's URL parts.
func PartsTypeName(endpoint string) string {
	return TypeName(endpoint) + "Parts"
}

// VariantName concatenates the PascalCase form of every parameter in the
// signature; the empty signature is "None".
func VariantName(sig []string) string {
	if len(sig) == 0 {
		return noneVariant
	}
	var b strings.Builder
	for _, name := range sig {
		b.WriteString(FieldName(name))
	}
	return b.String()
}

// FieldName is the struct field holding the value of a path part.
func FieldName(part string) string {
	return strcase.ToCamel(part)
}

// localName is the lowerCamel stem used for local variables derived from a
// part. Locals always carry a prefix or suffix so Go keywords never appear
// bare.
func localName(part string) string {
	return strcase.ToLowerCamel(part)
}
