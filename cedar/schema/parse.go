package schema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports a malformed Cedar schema with its 1-based position.
type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cedar schema syntax error at %d:%d: %s", e.Line, e.Column, e.Message)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenIdent
	tokenString
	tokenPunct
)

type token struct {
	kind   tokenKind
	text   string
	line   int
	column int
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF:
		return "end of input"
	case tokenString:
		return strconv.Quote(t.text)
	}
	return "'" + t.text + "'"
}

func tokenize(src string) ([]token, error) {
	var tokens []token
	line, column := 1, 1
	advance := func(s string) {
		for _, r := range s {
			if r == '\n' {
				line++
				column = 1
			} else {
				column++
			}
		}
	}
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			advance(src[i : i+size])
			i += size
		case strings.HasPrefix(src[i:], "//"):
			end := strings.IndexByte(src[i:], '\n')
			if end == -1 {
				end = len(src) - i
			}
			advance(src[i : i+end])
			i += end
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				c, n := utf8.DecodeRuneInString(src[i:])
				if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
					break
				}
				i += n
			}
			tokens = append(tokens, token{kind: tokenIdent, text: src[start:i], line: line, column: column})
			advance(src[start:i])
		case r == '"':
			start := i
			value, end, err := unquote(src, i)
			if err != nil {
				return nil, &SyntaxError{Line: line, Column: column, Message: err.Error()}
			}
			tokens = append(tokens, token{kind: tokenString, text: value, line: line, column: column})
			i = end
			advance(src[start:i])
		case strings.HasPrefix(src[i:], Separator):
			tokens = append(tokens, token{kind: tokenPunct, text: Separator, line: line, column: column})
			advance(Separator)
			i += len(Separator)
		case strings.ContainsRune("{}[]()<>,;:=?@", r):
			tokens = append(tokens, token{kind: tokenPunct, text: string(r), line: line, column: column})
			advance(string(r))
			i += size
		default:
			return nil, &SyntaxError{Line: line, Column: column, Message: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, line: line, column: column})
	return tokens, nil
}

// unquote reads the string literal starting at src[start] and returns its
// value and the offset just past the closing quote.
func unquote(src string, start int) (string, int, error) {
	var sb strings.Builder
	for i := start + 1; i < len(src); {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch r {
		case '"':
			return sb.String(), i + size, nil
		case '\\':
			if i+1 >= len(src) {
				return "", 0, fmt.Errorf("unterminated string")
			}
			switch src[i+1] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '0':
				sb.WriteByte(0)
			case '\\', '"', '\'', '*':
				sb.WriteByte(src[i+1])
			case 'u':
				end := strings.IndexByte(src[i:], '}')
				if !strings.HasPrefix(src[i+2:], "{") || end == -1 {
					return "", 0, fmt.Errorf("invalid unicode escape")
				}
				code, err := strconv.ParseUint(src[i+3:i+end], 16, 32)
				if err != nil {
					return "", 0, fmt.Errorf("invalid unicode escape: %w", err)
				}
				sb.WriteRune(rune(code))
				i += end + 1
				continue
			default:
				return "", 0, fmt.Errorf("invalid escape \\%c", src[i+1])
			}
			i += 2
		default:
			sb.WriteRune(r)
			i += size
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

// ParseCedar parses the human readable Cedar schema syntax.
func ParseCedar(src []byte) (*Fragment, error) {
	tokens, err := tokenize(string(src))
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	ret := NewFragment()
	for !p.at(tokenEOF, "") {
		annotations, err := p.annotations()
		if err != nil {
			return nil, err
		}
		if p.at(tokenIdent, "namespace") {
			p.next()
			name, err := p.path()
			if err != nil {
				return nil, err
			}
			if _, ok := ret.Namespaces[name]; ok {
				return nil, p.errorf("duplicate namespace %q", name)
			}
			ns := ret.AddNamespace(name)
			if len(annotations) > 0 {
				ns.Annotations = annotations
			}
			if err := p.expect("{"); err != nil {
				return nil, err
			}
			for !p.at(tokenPunct, "}") {
				if p.at(tokenEOF, "") {
					return nil, p.errorf("unterminated namespace %q", name)
				}
				declAnnotations, err := p.annotations()
				if err != nil {
					return nil, err
				}
				if err := p.declaration(ns, declAnnotations); err != nil {
					return nil, err
				}
			}
			p.next()
			continue
		}
		if err := p.declaration(ret.AddNamespace(""), annotations); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

// at reports whether the current token has kind and, when text is set, that text.
func (p *parser) at(kind tokenKind, text string) bool {
	t := p.peek()
	return t.kind == kind && (text == "" || t.text == text)
}

func (p *parser) errorf(format string, args ...interface{}) error {
	t := p.peek()
	return &SyntaxError{Line: t.line, Column: t.column, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(punct string) error {
	if !p.at(tokenPunct, punct) {
		return p.errorf("expected '%s', found %s", punct, p.peek())
	}
	p.next()
	return nil
}

func (p *parser) ident() (string, error) {
	if !p.at(tokenIdent, "") {
		return "", p.errorf("expected identifier, found %s", p.peek())
	}
	return p.next().text, nil
}

// name reads an identifier or a string literal.
func (p *parser) name() (string, error) {
	if p.at(tokenString, "") {
		return p.next().text, nil
	}
	return p.ident()
}

func (p *parser) path() (string, error) {
	first, err := p.ident()
	if err != nil {
		return "", err
	}
	parts := []string{first}
	for p.at(tokenPunct, Separator) && p.tokens[p.pos+1].kind == tokenIdent {
		p.next()
		parts = append(parts, p.next().text)
	}
	return strings.Join(parts, Separator), nil
}

func (p *parser) annotations() (Annotations, error) {
	var ret Annotations
	for p.at(tokenPunct, "@") {
		p.next()
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		value := ""
		if p.at(tokenPunct, "(") {
			p.next()
			if !p.at(tokenString, "") {
				return nil, p.errorf("expected annotation value, found %s", p.peek())
			}
			value = p.next().text
			if err := p.expect(")"); err != nil {
				return nil, err
			}
		}
		if ret == nil {
			ret = Annotations{}
		}
		if _, ok := ret[name]; ok {
			return nil, p.errorf("duplicate annotation @%s", name)
		}
		ret[name] = value
	}
	return ret, nil
}

func (p *parser) declaration(ns *Namespace, annotations Annotations) error {
	switch {
	case p.at(tokenIdent, "entity"):
		p.next()
		return p.entity(ns, annotations)
	case p.at(tokenIdent, "action"):
		p.next()
		return p.action(ns, annotations)
	case p.at(tokenIdent, "type"):
		p.next()
		name, err := p.ident()
		if err != nil {
			return err
		}
		if err := p.expect("="); err != nil {
			return err
		}
		t, err := p.typeExpr()
		if err != nil {
			return err
		}
		if _, ok := ns.CommonTypes[name]; ok {
			return p.errorf("duplicate common type %q", name)
		}
		ns.CommonTypes[name] = &CommonType{Type: t, Annotations: annotations}
		return p.expect(";")
	}
	return p.errorf("expected declaration, found %s", p.peek())
}

func (p *parser) entity(ns *Namespace, annotations Annotations) error {
	names, err := p.list(p.ident)
	if err != nil {
		return err
	}
	decl := &EntityType{Annotations: annotations}
	if p.at(tokenIdent, "enum") {
		p.next()
		if err := p.expect("["); err != nil {
			return err
		}
		decl.Enum = []string{}
		for !p.at(tokenPunct, "]") {
			if !p.at(tokenString, "") {
				return p.errorf("expected enum choice, found %s", p.peek())
			}
			decl.Enum = append(decl.Enum, p.next().text)
			if !p.at(tokenPunct, "]") {
				if err := p.expect(","); err != nil {
					return err
				}
			}
		}
		p.next()
		if len(decl.Enum) == 0 {
			return p.errorf("enum entity type must list at least one choice")
		}
	} else {
		if p.at(tokenIdent, "in") {
			p.next()
			if decl.MemberOfTypes, err = p.pathList(); err != nil {
				return err
			}
		}
		if p.at(tokenPunct, "=") {
			p.next()
		}
		if p.at(tokenPunct, "{") {
			if decl.Shape, err = p.record(); err != nil {
				return err
			}
		}
		if p.at(tokenIdent, "tags") {
			p.next()
			if decl.Tags, err = p.typeExpr(); err != nil {
				return err
			}
		}
	}
	for i, name := range names {
		if _, ok := ns.EntityTypes[name]; ok {
			return p.errorf("duplicate entity type %q", name)
		}
		entity := decl
		if i > 0 {
			entity = decl.Clone()
		}
		ns.EntityTypes[name] = entity
	}
	return p.expect(";")
}

func (p *parser) action(ns *Namespace, annotations Annotations) error {
	names, err := p.list(p.name)
	if err != nil {
		return err
	}
	decl := &Action{Annotations: annotations}
	if p.at(tokenIdent, "in") {
		p.next()
		if decl.MemberOf, err = p.actionRefs(); err != nil {
			return err
		}
	}
	if p.at(tokenIdent, "appliesTo") {
		p.next()
		if decl.AppliesTo, err = p.appliesTo(); err != nil {
			return err
		}
	}
	for i, name := range names {
		if _, ok := ns.Actions[name]; ok {
			return p.errorf("duplicate action %q", name)
		}
		action := decl
		if i > 0 {
			action = decl.Clone()
		}
		ns.Actions[name] = action
	}
	return p.expect(";")
}

func (p *parser) list(item func() (string, error)) ([]string, error) {
	first, err := item()
	if err != nil {
		return nil, err
	}
	ret := []string{first}
	for p.at(tokenPunct, ",") {
		p.next()
		next, err := item()
		if err != nil {
			return nil, err
		}
		ret = append(ret, next)
	}
	return ret, nil
}

// pathList reads a single path or a bracketed, possibly empty, list of paths.
func (p *parser) pathList() ([]string, error) {
	if !p.at(tokenPunct, "[") {
		name, err := p.path()
		if err != nil {
			return nil, err
		}
		return []string{name}, nil
	}
	p.next()
	ret := []string{}
	for !p.at(tokenPunct, "]") {
		name, err := p.path()
		if err != nil {
			return nil, err
		}
		ret = append(ret, name)
		if !p.at(tokenPunct, "]") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.next()
	return ret, nil
}

func (p *parser) actionRefs() ([]ActionRef, error) {
	if !p.at(tokenPunct, "[") {
		ref, err := p.actionRef()
		if err != nil {
			return nil, err
		}
		return []ActionRef{ref}, nil
	}
	p.next()
	ret := []ActionRef{}
	for !p.at(tokenPunct, "]") {
		ref, err := p.actionRef()
		if err != nil {
			return nil, err
		}
		ret = append(ret, ref)
		if !p.at(tokenPunct, "]") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.next()
	return ret, nil
}

// actionRef reads "name", ident or Path::"name".
func (p *parser) actionRef() (ActionRef, error) {
	if p.at(tokenString, "") {
		return ActionRef{ID: p.next().text}, nil
	}
	typeName, err := p.path()
	if err != nil {
		return ActionRef{}, err
	}
	if p.at(tokenPunct, Separator) && p.tokens[p.pos+1].kind == tokenString {
		p.next()
		return ActionRef{ID: p.next().text, Type: typeName}, nil
	}
	return ActionRef{ID: typeName}, nil
}

func (p *parser) appliesTo() (*AppliesTo, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	ret := &AppliesTo{PrincipalTypes: []string{}, ResourceTypes: []string{}}
	for !p.at(tokenPunct, "}") {
		key, err := p.ident()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		switch key {
		case "principal":
			if ret.PrincipalTypes, err = p.pathList(); err != nil {
				return nil, err
			}
		case "resource":
			if ret.ResourceTypes, err = p.pathList(); err != nil {
				return nil, err
			}
		case "context":
			if ret.Context, err = p.typeExpr(); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected appliesTo key %q", key)
		}
		if !p.at(tokenPunct, "}") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.next()
	return ret, nil
}

func (p *parser) typeExpr() (*Type, error) {
	if p.at(tokenPunct, "{") {
		return p.record()
	}
	name, err := p.path()
	if err != nil {
		return nil, err
	}
	if name == "Set" && p.at(tokenPunct, "<") {
		p.next()
		element, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return Set(element), nil
	}
	return namedType(name), nil
}

// namedType maps builtin names to primitive and extension types; every other
// name is resolved later as a common or entity type.
func namedType(name string) *Type {
	switch strings.TrimPrefix(name, "__cedar::") {
	case "Bool", "Boolean":
		return Boolean()
	case "Long":
		return Long()
	case "String":
		return String()
	case ExtensionDecimal, ExtensionDatetime, ExtensionDuration, ExtensionIPAddr:
		return Extension(strings.TrimPrefix(name, "__cedar::"))
	}
	return EntityOrCommon(name)
}

func (p *parser) record() (*Type, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	attributes := map[string]*Attribute{}
	for !p.at(tokenPunct, "}") {
		annotations, err := p.annotations()
		if err != nil {
			return nil, err
		}
		name, err := p.name()
		if err != nil {
			return nil, err
		}
		required := true
		if p.at(tokenPunct, "?") {
			p.next()
			required = false
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		t, err := p.typeExpr()
		if err != nil {
			return nil, err
		}
		if _, ok := attributes[name]; ok {
			return nil, p.errorf("duplicate attribute %q", name)
		}
		attributes[name] = &Attribute{Type: t, Required: required, Annotations: annotations}
		if !p.at(tokenPunct, "}") {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	p.next()
	return Record(attributes, false), nil
}
