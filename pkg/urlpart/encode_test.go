package urlpart

import "testing"

func TestEncode(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{"my-index", "my-index"},
		{"a,b", "a,b"},
		{"logs-*", "logs-*"},
		{"a/b,c", "a%2Fb,c"},
		{"with space", "with%20space"},
		{"<logstash-{now/d}>", "%3Clogstash-%7Bnow%2Fd%7D%3E"},
		{"100%", "100%25"},
		{"é", "%C3%A9"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Encode(tc.in); got != tc.want {
			t.Errorf("Encode(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if got := encodedLen(tc.in); got != len(tc.want) {
			t.Errorf("encodedLen(%q) = %d, want %d", tc.in, got, len(tc.want))
		}
	}
}

func TestEncode_NoEscapeDoesNotAllocate(t *testing.T) {
	in := "already_safe.index-1"
	allocs := testing.AllocsPerRun(100, func() {
		_ = Encode(in)
	})
	if allocs != 0 {
		t.Fatalf("expected no allocations, got %v", allocs)
	}
}
