// ABOUTME: Tokenizer for the DOT dialect of material graphs: node:port refs, dotted keys, float literals.
// ABOUTME: Only directed graphs are lexed; a stray '-' (including undirected "--") is a positioned error.
package dot

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenDigraph
	TokenSubgraph
	TokenGraph
	TokenNode
	TokenEdge
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenArrow
	TokenEquals
	TokenComma
	TokenSemicolon
	TokenColon
	TokenIdentifier // bare identifier, may contain dots after the first rune
	TokenString     // double-quoted string, escapes resolved
	TokenNumber     // decimal literal with optional sign, fraction and exponent
)

var tokenNames = [...]string{
	TokenEOF:        "EOF",
	TokenDigraph:    "DIGRAPH",
	TokenSubgraph:   "SUBGRAPH",
	TokenGraph:      "GRAPH",
	TokenNode:       "NODE",
	TokenEdge:       "EDGE",
	TokenLBrace:     "LBRACE",
	TokenRBrace:     "RBRACE",
	TokenLBracket:   "LBRACKET",
	TokenRBracket:   "RBRACKET",
	TokenArrow:      "ARROW",
	TokenEquals:     "EQUALS",
	TokenComma:      "COMMA",
	TokenSemicolon:  "SEMICOLON",
	TokenColon:      "COLON",
	TokenIdentifier: "IDENTIFIER",
	TokenString:     "STRING",
	TokenNumber:     "NUMBER",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

var keywords = map[string]TokenType{
	"digraph":  TokenDigraph,
	"subgraph": TokenSubgraph,
	"graph":    TokenGraph,
	"node":     TokenNode,
	"edge":     TokenEdge,
}

var punctuation = map[rune]TokenType{
	'{': TokenLBrace,
	'}': TokenRBrace,
	'[': TokenLBracket,
	']': TokenRBracket,
	'=': TokenEquals,
	',': TokenComma,
	';': TokenSemicolon,
	':': TokenColon,
}

// Token is one lexical token and the position of its first rune.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Col   int
}

type lexer struct {
	src    []rune
	pos    int
	line   int
	col    int
	tokens []Token
}

// Lex tokenizes a DOT material source. The result always ends with TokenEOF.
func Lex(input string) ([]Token, error) {
	l := &lexer{src: []rune(input), line: 1, col: 1}
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Type == TokenEOF {
			return l.tokens, nil
		}
	}
}

// at returns the rune off positions ahead, or 0 past the end.
func (l *lexer) at(off int) rune {
	if i := l.pos + off; i < len(l.src) {
		return l.src[i]
	}
	return 0
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) step() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return fmt.Errorf("%s at line %d, col %d", fmt.Sprintf(format, args...), line, col)
}

// next skips blanks and comments and returns the following token.
func (l *lexer) next() (Token, error) {
	if err := l.skipBlank(); err != nil {
		return Token{}, err
	}
	line, col := l.line, l.col
	tok := func(typ TokenType, v string) (Token, error) {
		return Token{Type: typ, Value: v, Line: line, Col: col}, nil
	}
	if l.eof() {
		return tok(TokenEOF, "")
	}

	r := l.at(0)
	switch {
	case r == '"':
		s, err := l.quoted()
		if err != nil {
			return Token{}, err
		}
		return tok(TokenString, s)
	case r == '-' && l.at(1) == '>':
		l.step()
		l.step()
		return tok(TokenArrow, "->")
	case startsNumber(r, l.at(1), l.at(2)):
		return tok(TokenNumber, l.number())
	case r == '-' && l.at(1) == '-':
		return Token{}, l.errorf(line, col, "undirected edges (--) are not supported; use ->")
	case r == '_' || unicode.IsLetter(r):
		word := l.word()
		if kw, ok := keywords[word]; ok {
			return tok(kw, word)
		}
		return tok(TokenIdentifier, word)
	}
	if typ, ok := punctuation[r]; ok {
		l.step()
		return tok(typ, string(r))
	}
	return Token{}, l.errorf(line, col, "unexpected character %q", string(r))
}

// skipBlank consumes whitespace, // line comments and /* block */ comments.
func (l *lexer) skipBlank() error {
	for !l.eof() {
		switch r := l.at(0); {
		case unicode.IsSpace(r):
			l.step()
		case r == '/' && l.at(1) == '/':
			for !l.eof() && l.at(0) != '\n' {
				l.step()
			}
		case r == '/' && l.at(1) == '*':
			line, col := l.line, l.col
			l.step()
			l.step()
			for !(l.at(0) == '*' && l.at(1) == '/') {
				if l.eof() {
					return l.errorf(line, col, "unterminated block comment")
				}
				l.step()
			}
			l.step()
			l.step()
		default:
			return nil
		}
	}
	return nil
}

// quoted reads a double-quoted string. \" \\ \n and \t are unescaped; any
// other escape is kept verbatim.
func (l *lexer) quoted() (string, error) {
	line, col := l.line, l.col
	l.step()
	var sb strings.Builder
	for !l.eof() {
		r := l.step()
		switch r {
		case '"':
			return sb.String(), nil
		case '\\':
			if l.eof() {
				return "", l.errorf(line, col, "unterminated string")
			}
			switch e := l.step(); e {
			case '"', '\\':
				sb.WriteRune(e)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteRune(e)
			}
		default:
			sb.WriteRune(r)
		}
	}
	return "", l.errorf(line, col, "unterminated string")
}

func startsNumber(r, r1, r2 rune) bool {
	if r == '-' || r == '+' {
		r, r1 = r1, r2
	}
	return unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(r1))
}

// number reads [sign] digits [. digits] [(e|E) [sign] digits]. The exponent
// is only taken when at least one digit follows it, so "2e" lexes as 2, e.
func (l *lexer) number() string {
	start := l.pos
	if r := l.at(0); r == '-' || r == '+' {
		l.step()
	}
	l.digits()
	if l.at(0) == '.' {
		l.step()
		l.digits()
	}
	if e := l.at(0); e == 'e' || e == 'E' {
		off := 1
		if s := l.at(1); s == '-' || s == '+' {
			off = 2
		}
		if unicode.IsDigit(l.at(off)) {
			for ; off > 0; off-- {
				l.step()
			}
			l.digits()
		}
	}
	return string(l.src[start:l.pos])
}

func (l *lexer) digits() {
	for unicode.IsDigit(l.at(0)) {
		l.step()
	}
}

// word reads an identifier. Dots after the first rune form qualified keys
// such as in.Value_001.
func (l *lexer) word() string {
	start := l.pos
	for r := l.at(0); r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.at(0) {
		l.step()
	}
	return string(l.src[start:l.pos])
}
