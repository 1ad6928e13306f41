package intset_test

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/zond/redikv/intset"
)

func TestInsertKeepsSortedNoDuplicates(t *testing.T) {
	s := intset.New()
	values := []int64{5, 1, 9, 1, 3, 5, -4}
	for _, v := range values {
		s.Insert(v)
	}
	got := s.Data()
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }) {
		t.Fatalf("data not sorted: %v", got)
	}
	seen := map[int64]bool{}
	for _, v := range got {
		if seen[v] {
			t.Fatalf("duplicate value %d in %v", v, got)
		}
		seen[v] = true
	}
	if len(got) != 5 {
		t.Fatalf("want 5 distinct values, got %d: %v", len(got), got)
	}
}

func TestInsertReturnsWhetherNew(t *testing.T) {
	s := intset.New()
	if !s.Insert(10) {
		t.Fatal("first insert of 10 should report new")
	}
	if s.Insert(10) {
		t.Fatal("second insert of 10 should report not new")
	}
}

func TestEraseReturnsWhetherPresent(t *testing.T) {
	s := intset.New()
	s.Insert(7)
	if !s.Erase(7) {
		t.Fatal("erase of present value should return true")
	}
	if s.Erase(7) {
		t.Fatal("erase of absent value should return false")
	}
	if s.Contains(7) {
		t.Fatal("7 should no longer be a member")
	}
}

func TestContains(t *testing.T) {
	s := intset.New()
	for _, v := range []int64{1, 2, 3} {
		s.Insert(v)
	}
	for _, v := range []int64{1, 2, 3} {
		if !s.Contains(v) {
			t.Fatalf("expected %d to be a member", v)
		}
	}
	if s.Contains(4) {
		t.Fatal("4 should not be a member")
	}
}

func TestRandomizedAgainstReferenceSet(t *testing.T) {
	s := intset.New()
	reference := map[int64]bool{}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		v := int64(rng.Intn(500) - 250)
		if rng.Intn(2) == 0 {
			want := !reference[v]
			if got := s.Insert(v); got != want {
				t.Fatalf("insert(%d) = %v, want %v", v, got, want)
			}
			reference[v] = true
		} else {
			want := reference[v]
			if got := s.Erase(v); got != want {
				t.Fatalf("erase(%d) = %v, want %v", v, got, want)
			}
			delete(reference, v)
		}
	}
	if s.Len() != len(reference) {
		t.Fatalf("len mismatch: got %d want %d", s.Len(), len(reference))
	}
	for _, v := range s.Data() {
		if !reference[v] {
			t.Fatalf("value %d present in set but not reference", v)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := intset.New()
	s.Insert(1)
	s.Insert(2)
	clone := s.Clone()
	s.Insert(3)
	if clone.Contains(3) {
		t.Fatal("clone should not observe mutations to the original")
	}
	if !clone.Contains(1) || !clone.Contains(2) {
		t.Fatal("clone missing original elements")
	}
}
