package rank

import (
	"testing"

	"xscout/internal/core"
)

func scored(id string, score float64) core.ScoredCandidate {
	return core.ScoredCandidate{
		CandidateRecord: core.CandidateRecord{ID: id},
		Score:           score,
	}
}

func TestSelectSortsDescending(t *testing.T) {
	in := []core.ScoredCandidate{
		scored("a", 1.2), scored("b", 4.7), scored("c", 3.0), scored("d", 0.5),
	}
	out := Select(in, 3)

	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	want := []string{"b", "c", "a"}
	for i, id := range want {
		if out[i].ID != id {
			t.Errorf("out[%d] = %s, want %s", i, out[i].ID, id)
		}
	}
}

func TestSelectTiesKeepInputOrder(t *testing.T) {
	in := []core.ScoredCandidate{
		scored("first", 2.0), scored("second", 2.0), scored("third", 2.0),
	}
	out := Select(in, 3)
	for i, id := range []string{"first", "second", "third"} {
		if out[i].ID != id {
			t.Errorf("tie order broken: out[%d] = %s, want %s", i, out[i].ID, id)
		}
	}
}

func TestSelectShortInput(t *testing.T) {
	in := []core.ScoredCandidate{scored("a", 1), scored("b", 2)}
	if out := Select(in, 5); len(out) != 2 {
		t.Errorf("len = %d, want min(N, surviving) = 2", len(out))
	}
	if out := Select(nil, 5); len(out) != 0 {
		t.Errorf("len = %d, want 0 for empty input", len(out))
	}
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	in := []core.ScoredCandidate{scored("a", 1), scored("b", 2)}
	Select(in, 1)
	if in[0].ID != "a" || in[1].ID != "b" {
		t.Error("input slice reordered")
	}
}
