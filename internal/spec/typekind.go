package spec

import "strings"

// TypeKind is the closed set of parameter types found in the API description.
type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeList
	TypeEnum
	TypeString
	TypeText
	TypeBoolean
	TypeNumber
	TypeFloat
	TypeDouble
	TypeInteger
	TypeLong
	TypeDate
	TypeTime
	TypeUnion
)

var typeKindNames = [...]string{
	TypeUnknown: "unknown",
	TypeList:    "list",
	TypeEnum:    "enum",
	TypeString:  "string",
	TypeText:    "text",
	TypeBoolean: "boolean",
	TypeNumber:  "number",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeInteger: "int",
	TypeLong:    "long",
	TypeDate:    "date",
	TypeTime:    "time",
	TypeUnion:   "union",
}

func (k TypeKind) String() string {
	if k < 0 || int(k) >= len(typeKindNames) {
		return "unknown"
	}
	return typeKindNames[k]
}

// ParseTypeKind maps a "type" value of the API description to a TypeKind.
// Values of the form "a|b" are unions; their members are returned as well.
// Unrecognised names map to TypeUnknown.
func ParseTypeKind(s string) (TypeKind, []TypeKind) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(s, "|") {
		var members []TypeKind
		for _, m := range strings.Split(s, "|") {
			k, _ := ParseTypeKind(m)
			members = append(members, k)
		}
		return TypeUnion, members
	}
	switch s {
	case "list":
		return TypeList, nil
	case "enum":
		return TypeEnum, nil
	case "string":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "boolean", "bool":
		return TypeBoolean, nil
	case "number":
		return TypeNumber, nil
	case "float":
		return TypeFloat, nil
	case "double":
		return TypeDouble, nil
	case "int", "integer":
		return TypeInteger, nil
	case "long":
		return TypeLong, nil
	case "date":
		return TypeDate, nil
	case "time":
		return TypeTime, nil
	default:
		return TypeUnknown, nil
	}
}
