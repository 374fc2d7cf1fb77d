package cli

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func runResolveCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"resolve", "--input", restSpecDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"static", []string{"--endpoint", "search"}, "/_search"},
		{"list", []string{"--endpoint", "search", "--part", "index=logs-1", "--part", "index=logs 2"}, "/logs-1,logs%202/_search"},
		{"two parts", []string{"--endpoint", "snapshot.get", "--part", "snapshot=a", "--part", "repository=my repo", "--part", "snapshot=b"}, "/_snapshot/my%20repo/a,b"},
		{"namespaced static", []string{"--endpoint", "cat.health"}, "/_cat/health"},
		{"value with equals", []string{"--endpoint", "cat.aliases", "--part", "name=a=b"}, "/_cat/aliases/a%3Db"},
		{"root path", []string{"--endpoint", "ping"}, "/"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out, err := runResolveCmd(t, tc.args...)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got := strings.TrimSpace(out); got != tc.want {
				t.Fatalf("path: want %q got %q", tc.want, got)
			}
		})
	}
}

func TestResolveNoMatchingPath(t *testing.T) {
	t.Parallel()

	_, err := runResolveCmd(t, "--endpoint", "snapshot.get", "--part", "repository=r")
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"no path taking exactly {repository}", "{repository, snapshot}  /_snapshot/{repository}/{snapshot}"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"missing endpoint", nil, "--endpoint is required"},
		{"unknown endpoint", []string{"--endpoint", "nodes.stats"}, `unknown endpoint "nodes.stats"`},
		{"malformed part", []string{"--endpoint", "search", "--part", "index"}, "must have the form name=value"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := runResolveCmd(t, tc.args...)
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestResolveInputFromEnvironment(t *testing.T) {
	t.Setenv("APIGEN_INPUT", restSpecDir)

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"resolve", "--endpoint", "cat.health"})
	if err := root.Execute(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "/_cat/health" {
		t.Fatalf("path: got %q", got)
	}

	root = NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"resolve", "--input", "does-not-exist", "--endpoint", "cat.health"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected --input to override APIGEN_INPUT")
	}
}
