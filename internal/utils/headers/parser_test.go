package headers

import (
	"net/http"
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	in := []string{"Accept-Language: uk", "X-Trace: a:b", "BadHeader", ": empty"}
	out, err := ParseHeaders(in)
	if err == nil {
		t.Fatal("expected error for malformed entries")
	}
	expected := http.Header{"Accept-Language": {"uk"}, "X-Trace": {"a:b"}}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParseHeaders_Empty(t *testing.T) {
	out, err := ParseHeaders(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no headers, got %#v", out)
	}
}
