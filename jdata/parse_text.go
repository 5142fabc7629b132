package jdata

import (
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// maxDepth bounds container nesting so hostile input cannot exhaust the
// stack.
const maxDepth = 4096

// textParser scans JSON text into a node tree with byte spans.
type textParser struct {
	src   string
	pos   int
	depth int
}

// skipSpace skips whitespace and // or /* */ comments.
func (p *textParser) skipSpace() error {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case ' ', '\t', '\n', '\r':
			p.pos++
		case '/':
			if p.pos+1 >= len(p.src) {
				return malformed(p.pos, "unexpected '/'")
			}
			switch p.src[p.pos+1] {
			case '/':
				for p.pos < len(p.src) && p.src[p.pos] != '\n' {
					p.pos++
				}
			case '*':
				end := strings.Index(p.src[p.pos+2:], "*/")
				if end < 0 {
					return malformed(p.pos, "unterminated comment")
				}
				p.pos += end + 4
			default:
				return malformed(p.pos, "unexpected '/'")
			}
		default:
			return nil
		}
	}
	return nil
}

// atEnd reports whether only whitespace and comments remain.
func (p *textParser) atEnd() (bool, error) {
	if err := p.skipSpace(); err != nil {
		return false, err
	}
	return p.pos >= len(p.src), nil
}

func (p *textParser) value() (*node, error) {
	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.pos >= len(p.src) {
		return nil, malformed(p.pos, "unexpected end of input")
	}
	start := p.pos
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return &node{kind: nText, start: start, end: p.pos, s: s}, nil
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	case c == 'n':
		if err := p.literal("null"); err != nil {
			return nil, err
		}
		return &node{kind: nNull, start: start, end: p.pos}, nil
	case c == 't':
		if err := p.literal("true"); err != nil {
			return nil, err
		}
		return &node{kind: nBool, start: start, end: p.pos, b: true}, nil
	case c == 'f':
		if err := p.literal("false"); err != nil {
			return nil, err
		}
		return &node{kind: nBool, start: start, end: p.pos}, nil
	default:
		return nil, malformed(p.pos, "unexpected character %q", c)
	}
}

func (p *textParser) literal(word string) error {
	if len(p.src)-p.pos < len(word) || p.src[p.pos:p.pos+len(word)] != word {
		return malformed(p.pos, "invalid literal, expected %s", word)
	}
	p.pos += len(word)
	return nil
}

func (p *textParser) number() (*node, error) {
	start := p.pos
	if c := p.src[p.pos]; c == '-' || c == '+' {
		p.pos++
	}
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		if (c == '+' || c == '-') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}
	n, err := parseNumLiteral(p.src[start:p.pos])
	if err != nil {
		return nil, malformed(start, "%v", err)
	}
	return &node{kind: nNum, start: start, end: p.pos, n: n}, nil
}

// str reads a quoted string starting at the opening quote.
func (p *textParser) str() (string, error) {
	start := p.pos
	escaped := false
	i := p.pos + 1
	for ; i < len(p.src); i++ {
		c := p.src[i]
		if c == '\\' {
			escaped = true
			i++
			continue
		}
		if c == '"' {
			break
		}
		if c < 0x20 {
			return "", malformed(i, "control character in string")
		}
	}
	if i >= len(p.src) {
		return "", malformed(start, "unterminated string")
	}
	p.pos = i + 1
	raw := p.src[start:p.pos]
	if !escaped && utf8.ValidString(raw) {
		return raw[1 : len(raw)-1], nil
	}
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return "", malformed(start, "invalid string literal: %v", err)
	}
	return s, nil
}

func (p *textParser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return malformed(p.pos, "nesting deeper than %d", maxDepth)
	}
	return nil
}

func (p *textParser) array() (*node, error) {
	n := &node{kind: nList, start: p.pos}
	if err := p.enter(); err != nil {
		return nil, err
	}
	p.pos++
	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		n.end = p.pos
		p.depth--
		return n, nil
	}
	for {
		it, err := p.value()
		if err != nil {
			return nil, err
		}
		n.items = append(n.items, it)
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) {
			return nil, malformed(n.start, "unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			n.end = p.pos
			p.depth--
			return n, nil
		default:
			return nil, malformed(p.pos, "expected ',' or ']' in array")
		}
	}
}

func (p *textParser) object() (*node, error) {
	n := &node{kind: nObject, start: p.pos}
	if err := p.enter(); err != nil {
		return nil, err
	}
	p.pos++
	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		n.end = p.pos
		p.depth--
		return n, nil
	}
	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return nil, malformed(p.pos, "expected string key in object")
		}
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return nil, malformed(p.pos, "expected ':' after object key")
		}
		p.pos++
		it, err := p.value()
		if err != nil {
			return nil, err
		}
		n.keys = append(n.keys, key)
		n.items = append(n.items, it)
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.pos >= len(p.src) {
			return nil, malformed(n.start, "unterminated object")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			n.end = p.pos
			p.depth--
			return n, nil
		default:
			return nil, malformed(p.pos, "expected ',' or '}' in object")
		}
	}
}

// roots parses every concatenated top-level value.
func (p *textParser) roots() ([]*node, error) {
	var out []*node
	for {
		done, err := p.atEnd()
		if err != nil {
			return nil, err
		}
		if done {
			return out, nil
		}
		n, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}
