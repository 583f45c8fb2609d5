package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/bracketview/pkg/bracket"
)

func sample() bracket.Structure {
	return bracket.Resolve([]bracket.Match{
		bracket.Match{ID: 1, Round: 1}.Feeds(3, bracket.SlotA).WithLabels("Lions", "Bears"),
		bracket.Match{ID: 2, Round: 1}.Feeds(3, bracket.SlotB),
		bracket.Match{ID: 3, Round: 2},
	})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph bracket {",
		"rankdir=LR;",
		`m1 [label="#1: Lions vs Bears"];`,
		`m2 [label="#2: TBD vs TBD"];`,
		`m3 [label="#3: TBD vs TBD", penwidth=2];`,
		`m1 -> m3 [label="1"];`,
		`m2 -> m3 [label="2"];`,
		"{ rank=same; m1; m2; }",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "m3 ->") {
		t.Error("final has an outgoing edge")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	if !strings.Contains(dot, `#1: Lions vs Bears\nround 1, top`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `#3: TBD vs TBD\nfinal`) {
		t.Errorf("final label missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(bracket.Resolve(nil), Options{})
	if strings.Contains(dot, "->") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() changed an svg without viewBox")
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output is not SVG")
	}
}
