package onig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCapturesClone(t *testing.T) {
	r := MustCompile(`(?<x>a)\g<x>`)
	region := NewRegion()

	if _, ok, _ := r.Search([]byte("aa"), 0, 2, 0, region); !ok {
		t.Fatal("expected a match")
	}

	c := region.Captures().Clone()

	if _, ok, _ := r.Search([]byte("baa"), 0, 3, 0, region); !ok {
		t.Fatal("expected a match")
	}

	if !c.Valid() {
		t.Fatal("expected the clone to stay valid")
	}
	if diff := cmp.Diff([][2]int{{0, 2}, {1, 2}}, c.Positions()); diff != "" {
		t.Errorf("unexpected positions (-want +got):\n%s", diff)
	}
	if tree := c.CaptureTree(); tree == nil || tree.String() != "0(0,2)[1(0,1) 1(1,2)]" {
		t.Errorf("unexpected tree %v", tree)
	}

	region.Clear()
	if region.Captures().Clone() != nil {
		t.Error("expected no clone of a cleared region")
	}
}
