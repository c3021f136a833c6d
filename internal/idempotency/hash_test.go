package idempotency

import "testing"

func TestHashRequestStableAcrossKeyOrder(t *testing.T) {
	a := []byte(`{"amount":"100.00","paymentType":"deposit","notes":null}`)
	b := []byte(`{"notes":null,"paymentType":"deposit","amount":"100.00"}`)

	hashA, err := HashRequest(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, err := HashRequest(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if hashA != hashB {
		t.Fatalf("expected identical hashes for reordered keys, got %s and %s", hashA, hashB)
	}
}

func TestHashRequestNestedObjects(t *testing.T) {
	a := []byte(`{"outer":{"x":1,"y":[{"b":2,"a":1}]}}`)
	b := []byte(`{"outer":{"y":[{"a":1,"b":2}],"x":1}}`)

	hashA, err := HashRequest(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, err := HashRequest(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if hashA != hashB {
		t.Fatal("expected nested reordering to hash identically")
	}
}

func TestHashRequestDifferentBodiesDiffer(t *testing.T) {
	hashA, err := HashRequest([]byte(`{"amount":"100.00"}`))
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, err := HashRequest([]byte(`{"amount":"100.01"}`))
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if hashA == hashB {
		t.Fatal("expected different bodies to produce different hashes")
	}
}

func TestHashRequestArrayOrderMatters(t *testing.T) {
	hashA, err := HashRequest([]byte(`{"items":[1,2]}`))
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, err := HashRequest([]byte(`{"items":[2,1]}`))
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if hashA == hashB {
		t.Fatal("array element order must be significant")
	}
}

func TestHashRequestRejectsInvalidJSON(t *testing.T) {
	if _, err := HashRequest([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestHashRequestEmptyBody(t *testing.T) {
	hash, err := HashRequest(nil)
	if err != nil {
		t.Fatalf("hash empty: %v", err)
	}
	if hash == "" {
		t.Fatal("expected a stable hash for empty bodies")
	}
}
