package gentest

import (
	"strings"
	"testing"
)

const runtimeImport = "github.com/opensearch-project/opensearch-apigen/pkg/urlpart"

func TestTypeCheck(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"a.go": []byte("package p\n\nimport \"" + runtimeImport + "\"\n\nfunc A(s string) string { return urlpart.Encode(s) }\n"),
		"b.go": []byte("package p\n\nimport \"strings\"\n\nfunc B(s string) string { return strings.ToUpper(A(s)) }\n"),
	}
	if err := TypeCheck(files, runtimeImport, "../../pkg/urlpart"); err != nil {
		t.Fatalf("type check: %v", err)
	}
}

func TestTypeCheck_Redeclared(t *testing.T) {
	t.Parallel()
	files := map[string][]byte{
		"a.go": []byte("package p\n\ntype T struct{}\n"),
		"b.go": []byte("package p\n\ntype T int\n"),
	}
	err := TypeCheck(files, runtimeImport, "../../pkg/urlpart")
	if err == nil || !strings.Contains(err.Error(), "redeclared") {
		t.Fatalf("err = %v, want a redeclaration", err)
	}
}
