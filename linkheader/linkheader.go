package linkheader

import "strings"

// Link is one link-value of a Link header.
type Link struct {
	Href string
	// Rel is the whitespace-separated rel parameter, in order.
	Rel []string
	// Params holds every other parameter by lower-cased name.
	Params map[string]string
}

// HasRel reports whether rel is one of the link's relations.
func (l Link) HasRel(rel string) bool {
	for _, r := range l.Rel {
		if r == rel {
			return true
		}
	}
	return false
}

// Param returns the named parameter. Names are case-insensitive.
func (l Link) Param(name string) (string, bool) {
	v, ok := l.Params[strings.ToLower(name)]
	return v, ok
}

// ByRel returns the links carrying rel, in order.
func ByRel(links []Link, rel string) []Link {
	var out []Link
	for _, l := range links {
		if l.HasRel(rel) {
			out = append(out, l)
		}
	}
	return out
}

// ParseValues joins values with ", " and parses the result.
func ParseValues(values ...string) ([]Link, error) {
	return Parse(strings.Join(values, ", "))
}

// Parse parses a Link header field value.
//
// Empty list elements are skipped. A repeated parameter, rel included,
// keeps its last value.
func Parse(value string) ([]Link, error) {
	p := &parser{s: value}
	var links []Link

	for {
		p.skipSpace()
		if p.eof() {
			return links, nil
		}
		if p.peek() == ',' {
			p.pos++
			continue
		}

		link, err := p.link()
		if err != nil {
			return nil, err
		}
		links = append(links, link)

		p.skipSpace()
		if p.eof() {
			return links, nil
		}
		if p.peek() != ',' {
			return nil, malformed(p.pos, "expected ',' between links, got %q", p.peek())
		}
		p.pos++
	}
}

type parser struct {
	s   string
	pos int
}

func (p *parser) eof() bool  { return p.pos >= len(p.s) }
func (p *parser) peek() byte { return p.s[p.pos] }

func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t') {
		p.pos++
	}
}

// link parses `<href> *( ";" param )`.
func (p *parser) link() (Link, error) {
	if p.peek() != '<' {
		return Link{}, malformed(p.pos, "expected '<', got %q", p.peek())
	}
	start := p.pos + 1
	end := strings.IndexByte(p.s[start:], '>')
	if end < 0 {
		return Link{}, malformed(p.pos, "unterminated URI reference")
	}
	link := Link{Href: strings.TrimSpace(p.s[start : start+end])}
	p.pos = start + end + 1

	for {
		p.skipSpace()
		if p.eof() || p.peek() == ',' {
			return link, nil
		}
		if p.peek() != ';' {
			return Link{}, malformed(p.pos, "expected ';' before parameter, got %q", p.peek())
		}
		p.pos++
		p.skipSpace()
		if p.eof() || p.peek() == ',' {
			// trailing ';'
			return link, nil
		}

		name, value, err := p.param()
		if err != nil {
			return Link{}, err
		}

		// rel, like every other parameter, keeps its last value.
		if name == "rel" {
			link.Rel = strings.Fields(value)
			continue
		}
		if link.Params == nil {
			link.Params = make(map[string]string)
		}
		link.Params[name] = value
	}
}

// param parses `token [ "=" ( token / quoted-string ) ]`.
func (p *parser) param() (string, string, error) {
	start := p.pos
	for !p.eof() && isTokenChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", "", malformed(p.pos, "expected parameter name, got %q", p.peek())
	}
	name := strings.ToLower(p.s[start:p.pos])

	p.skipSpace()
	if p.eof() || p.peek() != '=' {
		return name, "", nil
	}
	p.pos++
	p.skipSpace()
	if p.eof() {
		return "", "", malformed(p.pos, "missing value for parameter %q", name)
	}

	if p.peek() == '"' {
		value, err := p.quoted()
		return name, value, err
	}

	start = p.pos
	for !p.eof() && isValueChar(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return "", "", malformed(p.pos, "missing value for parameter %q", name)
	}
	return name, p.s[start:p.pos], nil
}

func (p *parser) quoted() (string, error) {
	open := p.pos
	p.pos++

	var b strings.Builder
	for !p.eof() {
		c := p.peek()
		switch c {
		case '\\':
			p.pos++
			if p.eof() {
				return "", malformed(p.pos, "dangling escape in quoted string")
			}
			b.WriteByte(p.peek())
		case '"':
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
		p.pos++
	}
	return "", malformed(open, "unterminated quoted string")
}

// isTokenChar reports whether c is an RFC 7230 tchar.
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

// isValueChar accepts unquoted values more leniently than tchar so that
// bare URIs like rel=http://example.com/rel still parse.
func isValueChar(c byte) bool {
	switch c {
	case ' ', '\t', ',', ';', '"':
		return false
	}
	return c > 0x20 && c < 0x7f
}
