package spec

import "testing"

func TestParseTypeKind(t *testing.T) {
	t.Parallel()
	cases := map[string]TypeKind{
		"list":    TypeList,
		"enum":    TypeEnum,
		"string":  TypeString,
		"text":    TypeText,
		"boolean": TypeBoolean,
		"bool":    TypeBoolean,
		"number":  TypeNumber,
		"float":   TypeFloat,
		"double":  TypeDouble,
		"int":     TypeInteger,
		"integer": TypeInteger,
		"long":    TypeLong,
		"date":    TypeDate,
		"time":    TypeTime,
		" LIST ":  TypeList,
		"object":  TypeUnknown,
		"":        TypeUnknown,
	}
	for in, want := range cases {
		got, members := ParseTypeKind(in)
		if got != want || members != nil {
			t.Errorf("ParseTypeKind(%q) = %v %v, want %v", in, got, members, want)
		}
	}
}

func TestParseTypeKind_Union(t *testing.T) {
	t.Parallel()
	got, members := ParseTypeKind("number|string")
	if got != TypeUnion {
		t.Fatalf("kind = %v, want union", got)
	}
	if len(members) != 2 || members[0] != TypeNumber || members[1] != TypeString {
		t.Fatalf("members = %v", members)
	}
}

func TestTypeKindString(t *testing.T) {
	t.Parallel()
	if s := TypeInteger.String(); s != "int" {
		t.Fatalf("TypeInteger.String() = %q", s)
	}
	if s := TypeKind(99).String(); s != "unknown" {
		t.Fatalf("out of range String() = %q", s)
	}
}
