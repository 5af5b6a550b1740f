package values

// ParsePlaintext parses the text form of a plaintext value. Leading and trailing
// whitespace is allowed, anything else after the value is an error.
func ParsePlaintext(s string) (*Plaintext, error) {
	p := &textParser{src: s}
	p.skipSpace()
	v, err := p.plaintext(0)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, NewDecodeError("text", "trailing input at offset %d", p.pos)
	}
	return v, nil
}

type textParser struct {
	src string
	pos int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '_'
}

func (p *textParser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *textParser) peek() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

func (p *textParser) expect(c byte) error {
	got, ok := p.peek()
	if !ok {
		return NewDecodeError("text", "expected %q, found end of input", c)
	}
	if got != c {
		return NewDecodeError("text", "expected %q at offset %d, found %q", c, p.pos, got)
	}
	p.pos++
	return nil
}

func (p *textParser) plaintext(depth int) (*Plaintext, error) {
	if depth > maxDepth {
		return nil, NewDecodeError("text", "struct nesting exceeds %d", maxDepth)
	}
	c, ok := p.peek()
	if !ok {
		return nil, NewDecodeError("text", "unexpected end of input")
	}
	if c == '{' {
		return p.structValue(depth)
	}
	return p.literal()
}

func (p *textParser) literal() (*Plaintext, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isSpace(c) || c == ',' || c == '}' || c == '{' || c == ':' {
			break
		}
		p.pos++
	}
	l, err := ParseLiteral(p.src[start:p.pos])
	if err != nil {
		return nil, err
	}
	return NewLiteralPlaintext(l), nil
}

func (p *textParser) identifier() (string, error) {
	start := p.pos
	c, ok := p.peek()
	if !ok || !isIdentStart(c) {
		return "", NewDecodeError("text", "expected identifier at offset %d", p.pos)
	}
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func (p *textParser) structValue(depth int) (*Plaintext, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	v := NewStructPlaintext()
	seen := make(map[string]struct{})
	for {
		p.skipSpace()
		name, err := p.identifier()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[name]; dup {
			return nil, NewDecodeError("text", "duplicate member %q", name)
		}
		seen[name] = struct{}{}

		p.skipSpace()
		if err := p.expect(':'); err != nil {
			return nil, err
		}
		p.skipSpace()
		member, err := p.plaintext(depth + 1)
		if err != nil {
			return nil, WithContext(err, name)
		}
		v.Members = append(v.Members, Member{Name: name, Value: member})

		p.skipSpace()
		c, ok := p.peek()
		if !ok {
			return nil, NewDecodeError("text", "unterminated struct")
		}
		if c == ',' {
			p.pos++
			continue
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		if len(v.Members) > 255 {
			return nil, NewDecodeError("text", "struct has %d members, at most 255 allowed", len(v.Members))
		}
		return v, nil
	}
}
