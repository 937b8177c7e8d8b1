package generate

import (
	"reflect"
	"regexp"
	"strconv"
	"testing"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

func TestGraph(t *testing.T) {
	const n = 101
	doc, err := Graph(Options{Nodes: n, Clusters: 4, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Nodes) != n || len(doc.Links) != n-1 {
		t.Fatalf("got %d nodes and %d links, want %d and %d", len(doc.Nodes), len(doc.Links), n, n-1)
	}
	for i, node := range doc.Nodes {
		x := i + 1
		if node.ID != graph.ID(strconv.Itoa(x)) || node.Num == nil || *node.Num != float64(x) {
			t.Errorf("node %d = %+v", x, node)
		}
		if want := graph.ID(strconv.Itoa(i%4 + 1)); node.Cluster != want {
			t.Errorf("node %d cluster = %s, want %s", x, node.Cluster, want)
		}
	}
	for i, l := range doc.Links {
		x := i + 1
		src, _ := strconv.Atoi(string(l.Source))
		dst, _ := strconv.Atoi(string(l.Target))
		if src != x {
			t.Errorf("link %d source = %d, want %d", i, src, x)
		}
		if float64(x) > n/2.0 {
			if dst < 1 || dst >= x {
				t.Errorf("link %d target = %d, want in [1, %d]", i, dst, x-1)
			}
		} else if dst <= x || dst > n {
			t.Errorf("link %d target = %d, want in [%d, %d]", i, dst, x+1, n)
		}
	}
	if _, err := graph.Build(doc); err != nil {
		t.Errorf("generated graph does not build: %v", err)
	}
}

func TestGraphDeterministic(t *testing.T) {
	a, _ := Graph(Options{Nodes: 50, Seed: 1})
	b, _ := Graph(Options{Nodes: 50, Seed: 1})
	c, _ := Graph(Options{Nodes: 50, Seed: 2})
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different graphs")
	}
	if reflect.DeepEqual(a.Links, c.Links) {
		t.Error("different seeds produced identical links")
	}
}

func TestGraphEdgeCases(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		doc, err := Graph(Options{Nodes: n})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(doc.Nodes) != n || len(doc.Links) != max(n-1, 0) {
			t.Errorf("n=%d: %d nodes, %d links", n, len(doc.Nodes), len(doc.Links))
		}
		if n > 0 && doc.Nodes[0].Cluster != "" {
			t.Errorf("n=%d: unclustered graph has cluster %q", n, doc.Nodes[0].Cluster)
		}
	}

	if _, err := Graph(Options{Nodes: -1}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative nodes: err = %v", err)
	}
	if _, err := Graph(Options{Nodes: 3, Clusters: -1}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative clusters: err = %v", err)
	}
}

func TestPalette(t *testing.T) {
	colors, err := Palette(500, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(colors) != 500 {
		t.Fatalf("len = %d, want 500", len(colors))
	}
	hex := regexp.MustCompile(`^#[0-9A-F]{6}$`)
	seen := map[string]bool{}
	for _, c := range colors {
		if !hex.MatchString(c) {
			t.Errorf("malformed colour %q", c)
		}
		if seen[c] {
			t.Errorf("duplicate colour %q", c)
		}
		seen[c] = true
	}

	again, _ := Palette(500, 3)
	if !reflect.DeepEqual(colors, again) {
		t.Error("same seed produced different palettes")
	}

	if _, err := Palette(-1, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("negative count: err = %v", err)
	}
}
