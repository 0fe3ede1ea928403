package batch

import (
	"errors"
	"testing"
)

func TestNewIndexed(t *testing.T) {
	r := NewIndexed("k1", 1)
	if r.Key() != "k1" {
		t.Errorf("Key() = %q", r.Key())
	}
	if r.Status() != StatusIndexed {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusIndexed)
	}
	if r.Upserts() != 1 {
		t.Errorf("Upserts() = %d, want 1", r.Upserts())
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewNotFound(t *testing.T) {
	r := NewNotFound("k2")
	if r.Status() != StatusNotFound || r.Upserts() != 0 || r.Err() != nil {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError("k3", err)
	if r.Key() != "k3" {
		t.Errorf("Key() = %q", r.Key())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestSummary(t *testing.T) {
	var s Summary
	s.Add(NewIndexed("a", 1))
	s.Add(NewIndexed("b", 1))
	s.Add(NewNotFound("c"))
	s.Add(NewError("d", errors.New("x")))

	if s.Indexed != 2 || s.NotFound != 1 || s.Failed != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.Total() != 4 {
		t.Errorf("Total() = %d, want 4", s.Total())
	}
}
