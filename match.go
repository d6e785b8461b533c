package codemod

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node kinds that carry an identifier's spelling directly. Property keys,
// member names, labels and type names count as identifiers too.
var identifierKinds = map[string]struct{}{
	"identifier":                            {},
	"property_identifier":                   {},
	"shorthand_property_identifier":         {},
	"shorthand_property_identifier_pattern": {},
	"type_identifier":                       {},
	"statement_identifier":                  {},
}

func isIdentifier(n *sitter.Node) bool {
	_, ok := identifierKinds[n.Type()]
	return ok
}

func matchesIdentifier(doc *Document, n *sitter.Node, name string) bool {
	return isIdentifier(n) && doc.Text(n) == name
}

// stringLiteral is the decoded form of a quoted string or a template
// literal without substitutions. JSX attribute strings have no escape
// sequences, so their Value is the text between the quotes.
type stringLiteral struct {
	Value string
	Quote byte
	JSX   bool
}

// encode renders value as a literal written the same way as l.
func (l stringLiteral) encode(value string) string {
	if l.JSX {
		return quoteJSX(value, l.Quote)
	}
	return quote(value, l.Quote)
}

// literalOf decodes n when it is a string literal. Tagged templates are
// skipped: the tag sees the raw text, not the decoded value.
func literalOf(doc *Document, n *sitter.Node) (stringLiteral, bool) {
	switch n.Type() {
	case "string":
	case "template_string":
		if isTagArgument(n) {
			return stringLiteral{}, false
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == "template_substitution" {
				return stringLiteral{}, false
			}
		}
	default:
		return stringLiteral{}, false
	}

	raw := doc.Text(n)
	if len(raw) < 2 {
		return stringLiteral{}, false
	}
	body := raw[1 : len(raw)-1]
	if p := n.Parent(); p != nil && p.Type() == "jsx_attribute" {
		return stringLiteral{Value: body, Quote: raw[0], JSX: true}, true
	}
	value, ok := unquote(body)
	if !ok {
		return stringLiteral{}, false
	}
	return stringLiteral{Value: value, Quote: raw[0]}, true
}

func isTagArgument(n *sitter.Node) bool {
	p := n.Parent()
	if p == nil || p.Type() != "call_expression" {
		return false
	}
	args := p.ChildByFieldName("arguments")
	return args != nil && args.StartByte() == n.StartByte() && args.EndByte() == n.EndByte()
}

// moduleSpecifier returns the decoded source of an import statement.
func moduleSpecifier(doc *Document, stmt *sitter.Node) (string, bool) {
	if stmt.Type() != "import_statement" {
		return "", false
	}
	src := stmt.ChildByFieldName("source")
	if src == nil {
		return "", false
	}
	lit, ok := literalOf(doc, src)
	return lit.Value, ok
}

// unquote resolves the escape sequences of a literal body.
func unquote(body string) (string, bool) {
	if !strings.ContainsRune(body, '\\') {
		return body, true
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", false
		}
		esc := body[i+1]
		i += 2
		switch esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// legacy octal: \0 to \377
			v := rune(esc - '0')
			digits := 1
			if esc <= '3' {
				digits = 2
			}
			for ; digits > 0 && i < len(body) && body[i] >= '0' && body[i] <= '7'; digits-- {
				v = v*8 + rune(body[i]-'0')
				i++
			}
			b.WriteRune(v)
		case '\n':
			// line continuation
		case 'x':
			if i+2 > len(body) {
				return "", false
			}
			v, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return "", false
			}
			b.WriteRune(rune(v))
			i += 2
		case 'u':
			r, n, ok := unicodeEscape(body[i:])
			if !ok {
				return "", false
			}
			i += n
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i:], `\u`) {
				if r2, n2, ok := unicodeEscape(body[i+2:]); ok {
					if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
						r = pair
						i += 2 + n2
					}
				}
			}
			b.WriteRune(r)
		default:
			// quotes, backslash and identity escapes
			r, size := utf8.DecodeRuneInString(body[i-1:])
			if r != '\u2028' && r != '\u2029' {
				b.WriteString(body[i-1 : i-1+size])
			}
			i += size - 1
		}
	}
	return b.String(), true
}

// unicodeEscape decodes the part of a \u escape after the "u": either four
// hex digits or a braced code point.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 4, true
}

// quote encodes value as a literal delimited by q, one of ' " or `.
func quote(value string, q byte) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte(q)
	for i := 0; i < len(value); {
		r, size := utf8.DecodeRuneInString(value[i:])
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case q == '`' && r == '$' && strings.HasPrefix(value[i+1:], "{"):
			b.WriteString(`\$`)
		case q != '`' && r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case q != '`' && (r == '\u2028' || r == '\u2029'):
			b.WriteString(`\u` + strconv.FormatInt(int64(r), 16))
		default:
			b.WriteString(value[i : i+size])
		}
		i += size
	}
	b.WriteByte(q)
	return b.String()
}

// quoteJSX encodes value as a JSX attribute string. The delimiter switches
// to the other quote when value contains q; a value holding both quotes
// becomes an expression container.
func quoteJSX(value string, q byte) string {
	other := byte('"')
	if q == '"' {
		other = '\''
	}
	for _, d := range []byte{q, other} {
		if strings.IndexByte(value, d) < 0 {
			return string(d) + value + string(d)
		}
	}
	return "{" + quote(value, '"') + "}"
}
