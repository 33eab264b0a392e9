package linkheader

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []Link
	}{
		{
			name:  "single link with title",
			value: `<https://example.org/.meta>; rel=meta; title="previous chapter"`,
			want: []Link{{
				Href:   "https://example.org/.meta",
				Rel:    []string{"meta"},
				Params: map[string]string{"title": "previous chapter"},
			}},
		},
		{
			name:  "multiple links",
			value: `<https://example.org/.meta>; rel=meta, <https://example.org/related>; rel=related`,
			want: []Link{
				{Href: "https://example.org/.meta", Rel: []string{"meta"}},
				{Href: "https://example.org/related", Rel: []string{"related"}},
			},
		},
		{
			name:  "multiple relations",
			value: `<https://example.org/.meta>; rel="start http://example.net/relation/other"`,
			want: []Link{{
				Href: "https://example.org/.meta",
				Rel:  []string{"start", "http://example.net/relation/other"},
			}},
		},
		{
			name:  "cache primer",
			value: `<items/0.json>; rel="https://api.brightspace.com/rels/cache-primer"`,
			want: []Link{{
				Href: "items/0.json",
				Rel:  []string{"https://api.brightspace.com/rels/cache-primer"},
			}},
		},
		{
			name:  "repeated rel keeps the last value",
			value: `<https://a.test/p>; rel=meta; rel="https://api.brightspace.com/rels/cache-primer"`,
			want: []Link{{
				Href: "https://a.test/p",
				Rel:  []string{"https://api.brightspace.com/rels/cache-primer"},
			}},
		},
		{
			name:  "comma inside quoted value",
			value: `<a>; title="one, two"; rel=x, <b>`,
			want: []Link{
				{Href: "a", Rel: []string{"x"}, Params: map[string]string{"title": "one, two"}},
				{Href: "b"},
			},
		},
		{
			name:  "escaped quote",
			value: `<a>; title="say \"hi\""`,
			want:  []Link{{Href: "a", Params: map[string]string{"title": `say "hi"`}}},
		},
		{
			name:  "case-insensitive names, last write wins",
			value: `<a>; Title=one; TITLE=two; REL=next`,
			want:  []Link{{Href: "a", Rel: []string{"next"}, Params: map[string]string{"title": "two"}}},
		},
		{
			name:  "last rel wins",
			value: `<a>; rel=first; rel=second`,
			want:  []Link{{Href: "a", Rel: []string{"second"}}},
		},
		{
			name:  "valueless parameter and whitespace",
			value: "  <a> ;\tcrossorigin ; rel = next ;",
			want:  []Link{{Href: "a", Rel: []string{"next"}, Params: map[string]string{"crossorigin": ""}}},
		},
		{
			name:  "empty elements",
			value: `, <a>, ,<b>,`,
			want:  []Link{{Href: "a"}, {Href: "b"}},
		},
		{
			name:  "empty",
			value: "",
			want:  nil,
		},
		{
			name:  "blank",
			value: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.value, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		`https://example.org/; rel=x`,
		`<https://example.org/`,
		`<a> rel=x`,
		`<a>; ="x"`,
		`<a>; rel=`,
		`<a>; title="open`,
		`<a>; title="x\`,
		`<a> <b>`,
		`<a>; rel=x <b>`,
	}

	for _, value := range tests {
		t.Run(value, func(t *testing.T) {
			got, err := Parse(value)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Parse(%q) error = %v, want ErrMalformed", value, err)
			}
			if got != nil {
				t.Errorf("Parse(%q) = %v, want nil links on error", value, got)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	links, err := ParseValues(`<a>; rel=one`, `<b>; rel="one two"`)
	if err != nil {
		t.Fatalf("ParseValues() error = %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("len(links) = %d, want 2", len(links))
	}

	one := ByRel(links, "one")
	if len(one) != 2 {
		t.Errorf("ByRel(one) = %d links, want 2", len(one))
	}
	two := ByRel(links, "two")
	if len(two) != 1 || two[0].Href != "b" {
		t.Errorf("ByRel(two) = %v, want [b]", two)
	}
	if got := ByRel(links, "three"); got != nil {
		t.Errorf("ByRel(three) = %v, want nil", got)
	}
}

func TestLink_Param(t *testing.T) {
	l := Link{Params: map[string]string{"title": "x"}}
	if v, ok := l.Param("TITLE"); !ok || v != "x" {
		t.Errorf("Param(TITLE) = %q, %v", v, ok)
	}
	if _, ok := l.Param("type"); ok {
		t.Error("Param(type) found on link without it")
	}
}

func BenchmarkParse(b *testing.B) {
	value := `<https://example.org/1>; rel="https://api.brightspace.com/rels/cache-primer", <https://example.org/2>; rel="next self"; title="page two"`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(value); err != nil {
			b.Fatal(err)
		}
	}
}

func TestByRel_RepeatedRel(t *testing.T) {
	const primer = "https://api.brightspace.com/rels/cache-primer"
	links, err := Parse(`<https://a.test/p>; rel=meta; rel="` + primer + `"`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := ByRel(links, primer); len(got) != 1 || got[0].Href != "https://a.test/p" {
		t.Errorf("ByRel(primer) = %+v, want the link", got)
	}
	if got := ByRel(links, "meta"); len(got) != 0 {
		t.Errorf("ByRel(meta) = %+v, want none", got)
	}
}
