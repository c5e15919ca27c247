package onig

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/magnetde/onig/syntax"
)

func TestCaptureTree(t *testing.T) {
	tests := []struct {
		pattern string
		syn     *syntax.Syntax
		subject string
		want    string
	}{
		{`(?<x>a)\g<x>`, syntax.Ruby(), "aa", "0(0,2)[1(0,1) 1(1,2)]"},
		{`(?<p>\((?:[^()]|\g<p>)*\))`, syntax.Ruby(), "(a(b))", "0(0,6)[1(0,6)[1(2,5)]]"},
		{`(?@a)+`, syntax.Oniguruma(), "aa", "0(0,2)[1(0,1) 1(1,2)]"},
		{`(?@(?@a)b)`, syntax.Oniguruma(), "xab", "0(1,3)[1(1,3)[2(1,2)]]"},
	}

	for _, test := range tests {
		r, err := CompileWith(test.pattern, Config{Syntax: test.syn})
		if err != nil {
			t.Errorf("%q: %v", test.pattern, err)
			continue
		}

		region := NewRegion()
		if _, ok, err := r.Search([]byte(test.subject), 0, len(test.subject), 0, region); err != nil || !ok {
			t.Errorf("%q on %q: expected a match, got %v", test.pattern, test.subject, err)
			continue
		}

		tree := region.CaptureTree()
		if tree == nil {
			t.Errorf("%q: expected a capture tree", test.pattern)
			continue
		}

		if got := tree.String(); got != test.want {
			t.Errorf("%q on %q: expected tree %s, got %s", test.pattern, test.subject, test.want, got)
		}

		// building the tree again gives an equal tree
		if diff := cmp.Diff(tree, region.CaptureTree()); diff != "" {
			t.Errorf("%q: trees differ (-first +second):\n%s", test.pattern, diff)
		}
	}
}

func TestCaptureTreeAbsent(t *testing.T) {
	region := NewRegion()
	if region.CaptureTree() != nil {
		t.Error("expected no tree for an empty region")
	}

	if _, ok, _ := MustCompile(`(a)`).Search([]byte("a"), 0, 1, 0, region); !ok {
		t.Fatal("expected a match")
	}
	if region.CaptureTree() != nil {
		t.Error("expected no tree without history groups")
	}

	r := MustCompile(`(?<x>a)\g<x>`)
	if _, ok, _ := r.Search([]byte("b"), 0, 1, 0, region); ok {
		t.Fatal("expected no match")
	}
	if region.CaptureTree() != nil {
		t.Error("expected no tree without a match")
	}
}

func TestCaptureTreeIsOwned(t *testing.T) {
	r := MustCompile(`(?<x>a)\g<x>`)
	region := NewRegion()

	if _, ok, _ := r.Search([]byte("aa"), 0, 2, 0, region); !ok {
		t.Fatal("expected a match")
	}

	c := region.Captures()
	tree := c.CaptureTree()

	if _, ok, _ := r.Search([]byte("xaa"), 0, 3, 0, region); !ok {
		t.Fatal("expected a match")
	}

	if tree.String() != "0(0,2)[1(0,1) 1(1,2)]" {
		t.Errorf("the tree changed after the region was reused: %s", tree)
	}
	if c.CaptureTree() != nil {
		t.Error("expected no tree from a stale view")
	}

	var groups []int
	tree.Walk(func(n *CaptureTreeNode, depth int) bool {
		groups = append(groups, n.Group)
		return true
	})
	if diff := cmp.Diff([]int{0, 1, 1}, groups); diff != "" {
		t.Errorf("unexpected walk (-want +got):\n%s", diff)
	}
}
