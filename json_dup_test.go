package argcheck

import "testing"

func TestDuplicateKeys_NoDup(t *testing.T) {
	iss, err := DuplicateKeys([]byte(`{"a":1,"b":{"a":2},"c":[{"a":1},{"a":2}]}`), -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 0 {
		t.Fatalf("expected 0 issues, got %d: %v", len(iss), iss)
	}
}

func TestDuplicateKeys_WithDup(t *testing.T) {
	iss, err := DuplicateKeys([]byte(`{"data":[1],"shape":[1],"data":[2]}`), -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 1 {
		t.Fatalf("expected 1 issue, got %v", iss)
	}
	if iss[0].Code != CodeDuplicateKey || iss[0].Path != "/data" {
		t.Fatalf("unexpected issue: %+v", iss[0])
	}
}

func TestDuplicateKeys_NestedPath(t *testing.T) {
	iss, err := DuplicateKeys([]byte(`{"items":[{"x":1},{"x":1,"x":2}]}`), -1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 1 || iss[0].Path != "/items/1/x" {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestDuplicateKeys_Limit(t *testing.T) {
	js := []byte(`{"a":1,"a":2,"a":3,"a":4}`)
	iss, err := DuplicateKeys(js, 2)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(iss) != 3 || iss[2].Code != CodeTruncated {
		t.Fatalf("expected 2 issues plus truncation, got %v", iss)
	}
	if iss, _ := DuplicateKeys(js, 0); len(iss) != 0 {
		t.Fatalf("expected reporting disabled, got %v", iss)
	}
}

func TestDuplicateKeys_Malformed(t *testing.T) {
	if _, err := DuplicateKeys([]byte(`{"a":`), -1); err == nil {
		t.Fatalf("expected error")
	}
}
