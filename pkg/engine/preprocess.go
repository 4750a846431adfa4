package engine

import "strings"

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites scene script source into something zygomys
// accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global bindings and never collide with user variables.
//  2. kebab-case identifiers become snake_case (max-depth -> max_depth);
//     zygomys reads a bare hyphen as subtraction.
//  3. ; and ;; line comments become // comments.
//
// String literals, in either quote style, pass through untouched.
func preprocessSource(source string) string {
	p := &preprocessor{src: source}
	p.out.Grow(len(source) + len(source)/4)
	for p.i < len(p.src) {
		switch c := p.src[p.i]; {
		case c == '"':
			p.quoted('"', true)
		case c == '`':
			p.quoted('`', false)
		case c == ';':
			p.comment()
		case c == ':' && p.keyword():
		case c == '-' && p.inIdentifier():
			p.out.WriteByte('_')
			p.i++
		default:
			p.out.WriteByte(c)
			p.i++
		}
	}
	return p.out.String()
}

type preprocessor struct {
	src string
	i   int
	out strings.Builder
}

// quoted copies a string literal delimited by q, honouring backslash
// escapes when escapes is set.
func (p *preprocessor) quoted(q byte, escapes bool) {
	p.out.WriteByte(q)
	p.i++
	for p.i < len(p.src) && p.src[p.i] != q {
		if escapes && p.src[p.i] == '\\' && p.i+1 < len(p.src) {
			p.out.WriteString(p.src[p.i : p.i+2])
			p.i += 2
			continue
		}
		p.out.WriteByte(p.src[p.i])
		p.i++
	}
	if p.i < len(p.src) {
		p.out.WriteByte(q)
		p.i++
	}
}

// comment rewrites a run of semicolons as // and copies the rest of the line.
func (p *preprocessor) comment() {
	p.out.WriteString("//")
	for p.i < len(p.src) && p.src[p.i] == ';' {
		p.i++
	}
	end := strings.IndexByte(p.src[p.i:], '\n')
	if end < 0 {
		end = len(p.src) - p.i
	}
	p.out.WriteString(p.src[p.i : p.i+end])
	p.i += end
}

// keyword rewrites :name at the cursor and reports whether it did. The
// assignment operator := is copied as is.
func (p *preprocessor) keyword() bool {
	if p.i+1 >= len(p.src) {
		return false
	}
	next := p.src[p.i+1]
	if next == '=' {
		p.out.WriteString(":=")
		p.i += 2
		return true
	}
	if !isLetter(next) {
		return false
	}
	j := p.i + 1
	for j < len(p.src) && isKWChar(p.src[j]) {
		j++
	}
	p.out.WriteByte('"')
	p.out.WriteString(kwPrefix)
	p.out.WriteString(p.src[p.i+1 : j])
	p.out.WriteByte('"')
	p.i = j
	return true
}

// inIdentifier reports whether the hyphen at the cursor joins two parts
// of an identifier rather than acting as a minus sign.
func (p *preprocessor) inIdentifier() bool {
	return p.i > 0 && p.i+1 < len(p.src) &&
		isIdentChar(p.src[p.i-1]) && isLetter(p.src[p.i+1])
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
