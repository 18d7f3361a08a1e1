package app

import (
	"testing"

	"github.com/mkalra/peercall/internal/domain"
)

func TestRegistryBindResolvesBothWays(t *testing.T) {
	r := NewRegistry()
	r.Bind("111", "c1")

	conn, ok := r.ConnOf("111")
	if !ok || conn != "c1" {
		t.Fatalf("ConnOf(111) = %q, %v; want c1, true", conn, ok)
	}
	phone, ok := r.PhoneOf("c1")
	if !ok || phone != "111" {
		t.Fatalf("PhoneOf(c1) = %q, %v; want 111, true", phone, ok)
	}
}

func TestRegistryMissingKeys(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.ConnOf("nope"); ok {
		t.Fatal("ConnOf on empty registry reported a binding")
	}
	if _, ok := r.PhoneOf("nope"); ok {
		t.Fatal("PhoneOf on empty registry reported a binding")
	}
	// Unbind of an unknown connection must be a silent no-op.
	r.Unbind("nope")
}

func TestRegistryRebindInvalidatesOldConnection(t *testing.T) {
	r := NewRegistry()
	r.Bind("111", "c1")
	r.Bind("111", "c2")

	if conn, _ := r.ConnOf("111"); conn != "c2" {
		t.Fatalf("ConnOf(111) = %q; want c2", conn)
	}
	if phone, ok := r.PhoneOf("c1"); ok {
		t.Fatalf("stale PhoneOf(c1) = %q; want unbound", phone)
	}
}

func TestRegistryRebindConnectionToNewIdentity(t *testing.T) {
	r := NewRegistry()
	r.Bind("111", "c1")
	r.Bind("222", "c1")

	if phone, _ := r.PhoneOf("c1"); phone != "222" {
		t.Fatalf("PhoneOf(c1) = %q; want 222", phone)
	}
	if _, ok := r.ConnOf("111"); ok {
		t.Fatal("111 still resolves after its connection was rebound")
	}
}

func TestRegistryUnbindRemovesBothDirections(t *testing.T) {
	r := NewRegistry()
	r.Bind("111", "c1")
	r.Unbind("c1")

	if _, ok := r.PhoneOf("c1"); ok {
		t.Fatal("PhoneOf(c1) still bound after Unbind")
	}
	if _, ok := r.ConnOf("111"); ok {
		t.Fatal("ConnOf(111) still bound after Unbind")
	}
}

// A slow disconnect of the old socket must not erase the binding a
// reconnect has already replaced it with.
func TestRegistryUnbindKeepsFresherBinding(t *testing.T) {
	r := NewRegistry()
	r.Bind("111", "c1")
	r.Bind("111", "c2")
	r.Unbind("c1")

	conn, ok := r.ConnOf("111")
	if !ok || conn != "c2" {
		t.Fatalf("ConnOf(111) = %q, %v; want c2, true", conn, ok)
	}
}

func TestRegistryBindResolveInverse(t *testing.T) {
	r := NewRegistry()
	pairs := map[domain.PhoneNo]domain.ConnID{
		"111": "c1",
		"222": "c2",
		"333": "c3",
	}
	for phone, conn := range pairs {
		r.Bind(phone, conn)
	}
	for phone := range pairs {
		conn, ok := r.ConnOf(phone)
		if !ok {
			t.Fatalf("ConnOf(%s) unbound", phone)
		}
		back, ok := r.PhoneOf(conn)
		if !ok || back != phone {
			t.Fatalf("PhoneOf(ConnOf(%s)) = %q; want %s", phone, back, phone)
		}
	}
}
