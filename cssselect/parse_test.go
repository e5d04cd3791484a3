package cssselect

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSimpleTypeSelector(t *testing.T) {
	list, err := ParseSelector("div")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Selectors) != 1 {
		t.Fatalf("got %d selectors, want 1", len(list.Selectors))
	}
	sel := list.Selectors[0]
	if len(sel.Parts) != 1 {
		t.Fatalf("got %d parts, want 1", len(sel.Parts))
	}
	if sel.Parts[0].Compound.Type == nil || sel.Parts[0].Compound.Type.Name != "div" {
		t.Fatalf("got %+v", sel.Parts[0].Compound)
	}
}

func TestParseCompoundSelector(t *testing.T) {
	list, err := ParseSelector("div.foo.bar#main[data-x=\"1\"]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := list.Selectors[0].Parts[0].Compound
	if c.Type == nil || c.Type.Name != "div" {
		t.Fatalf("type: %+v", c.Type)
	}
	if !c.IDSet || c.ID != "main" {
		t.Fatalf("id: %+v", c)
	}
	if len(c.Classes) != 2 || c.Classes[0] != "foo" || c.Classes[1] != "bar" {
		t.Fatalf("classes: %+v", c.Classes)
	}
	if len(c.Attrs) != 1 || c.Attrs[0].Name != "data-x" || c.Attrs[0].Value != "1" || c.Attrs[0].Matcher != AttrEquals {
		t.Fatalf("attrs: %+v", c.Attrs)
	}
}

func TestParseCombinators(t *testing.T) {
	cases := []struct {
		src  string
		want []Combinator
	}{
		{"a b", []Combinator{Descendant}},
		{"a > b", []Combinator{Child}},
		{"a + b", []Combinator{NextSibling}},
		{"a ~ b", []Combinator{SubsequentSibling}},
		{"a > b c", []Combinator{Child, Descendant}},
	}
	for _, c := range cases {
		list, err := ParseSelector(c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		parts := list.Selectors[0].Parts
		if len(parts) != len(c.want)+1 {
			t.Fatalf("%s: got %d parts, want %d", c.src, len(parts), len(c.want)+1)
		}
		for i, want := range c.want {
			if parts[i+1].Combinator != want {
				t.Errorf("%s: part %d combinator: got %v, want %v", c.src, i+1, parts[i+1].Combinator, want)
			}
		}
	}
}

// TestParseComplexSelectorStructure diffs a full parsed AST against a
// literal, the way chtml/render_test.go in the teacher diffs a complex
// structured value against its expected form: cmp.Diff pinpoints exactly
// which field disagrees instead of requiring one assertion per field.
func TestParseComplexSelectorStructure(t *testing.T) {
	list, err := ParseSelector("div.foo > span#bar[data-x=\"1\"]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &SelectorList{
		Selectors: []ComplexSelector{
			{
				Parts: []ComplexSelectorPart{
					{
						Compound: CompoundSelector{
							Type:    &TypeSelector{Name: "div"},
							Classes: []string{"foo"},
						},
					},
					{
						Combinator: Child,
						Compound: CompoundSelector{
							Type:  &TypeSelector{Name: "span"},
							ID:    "bar",
							IDSet: true,
							Attrs: []AttrSelector{
								{Name: "data-x", Matcher: AttrEquals, Value: "1"},
							},
						},
					},
				},
			},
		},
	}

	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("ParseSelector mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSelectorList(t *testing.T) {
	list, err := ParseSelector("p, span.x, #id")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Selectors) != 3 {
		t.Fatalf("got %d selectors, want 3", len(list.Selectors))
	}
}

func TestParseNthChild(t *testing.T) {
	cases := []struct {
		src  string
		want NthExpr
	}{
		{":nth-child(odd)", NthExpr{A: 2, B: 1}},
		{":nth-child(even)", NthExpr{A: 2, B: 0}},
		{":nth-child(3)", NthExpr{A: 0, B: 3}},
		{":nth-child(2n+1)", NthExpr{A: 2, B: 1}},
		{":nth-child(2n-1)", NthExpr{A: 2, B: -1}},
		{":nth-child(-n+3)", NthExpr{A: -1, B: 3}},
		{":nth-child(n)", NthExpr{A: 1, B: 0}},
	}
	for _, c := range cases {
		list, err := ParseSelector(c.src)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.src, err)
		}
		pcs := list.Selectors[0].Parts[0].Compound.PseudoClasses
		if len(pcs) != 1 {
			t.Fatalf("%s: got %d pseudo-classes", c.src, len(pcs))
		}
		if pcs[0].Nth != c.want {
			t.Errorf("%s: got %+v, want %+v", c.src, pcs[0].Nth, c.want)
		}
	}
}

func TestParseNot(t *testing.T) {
	list, err := ParseSelector(":not(.foo, #bar)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pcs := list.Selectors[0].Parts[0].Compound.PseudoClasses
	if len(pcs) != 1 || pcs[0].Kind != PseudoNot {
		t.Fatalf("got %+v", pcs)
	}
	if len(pcs[0].Not.Selectors) != 2 {
		t.Fatalf("got %d inner selectors, want 2", len(pcs[0].Not.Selectors))
	}
}

func TestParseInvalidSelectorReturnsSyntaxError(t *testing.T) {
	_, err := ParseSelector("div[")
	if err == nil {
		t.Fatal("expected an error")
	}
	var synErr *SyntaxError
	if !asSyntaxError(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
	}
}

func asSyntaxError(err error, target **SyntaxError) bool {
	se, ok := err.(*SyntaxError)
	if ok {
		*target = se
	}
	return ok
}
