// ABOUTME: Recursive descent parser for DOT material graph sources producing a scoped AST.
// ABOUTME: Parses nodes, port-qualified edges, defaults and nested subgraphs with their own node namespace.
package dot

import (
	"fmt"
)

// parser holds the state of the recursive descent parser.
type parser struct {
	tokens       []Token
	pos          int
	scope        *Graph            // graph or subgraph receiving statements
	nodeDefaults map[string]string // current scope node defaults
	edgeDefaults map[string]string // current scope edge defaults
}

// Parse parses the given DOT source string into a Graph AST.
func Parse(input string) (*Graph, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, fmt.Errorf("lex error: %w", err)
	}

	p := &parser{
		tokens:       tokens,
		nodeDefaults: make(map[string]string),
		edgeDefaults: make(map[string]string),
	}

	g, err := p.parseGraph()
	if err != nil {
		return nil, err
	}
	return g, nil
}

// current returns the current token.
func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// peek returns the token at the given offset from the current position.
func (p *parser) peek(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[idx]
}

// advance moves to the next token and returns the consumed token.
func (p *parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

// expect consumes the next token and returns an error if it doesn't match the expected type.
func (p *parser) expect(typ TokenType) (Token, error) {
	tok := p.current()
	if tok.Type != typ {
		return tok, fmt.Errorf("expected %v but got %v (%q) at line %d, col %d",
			typ, tok.Type, tok.Value, tok.Line, tok.Col)
	}
	p.advance()
	return tok, nil
}

// skipSemicolon optionally consumes a semicolon if present.
func (p *parser) skipSemicolon() {
	if p.current().Type == TokenSemicolon {
		p.advance()
	}
}

// parseGraph parses: 'digraph' Identifier '{' Statement* '}'
func (p *parser) parseGraph() (*Graph, error) {
	if p.current().Type == TokenIdentifier && p.current().Value == "strict" {
		return nil, fmt.Errorf("strict modifier is not supported at line %d, col %d",
			p.current().Line, p.current().Col)
	}

	if _, err := p.expect(TokenDigraph); err != nil {
		return nil, fmt.Errorf("expected 'digraph': %w", err)
	}

	tok := p.current()
	if tok.Type != TokenIdentifier && tok.Type != TokenString {
		return nil, fmt.Errorf("expected graph name at line %d, col %d", tok.Line, tok.Col)
	}
	p.advance()
	p.scope = newGraph(tok.Value)

	if _, err := p.expect(TokenLBrace); err != nil {
		return nil, err
	}
	if err := p.parseStatements(); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}

	if p.current().Type == TokenDigraph {
		return nil, fmt.Errorf("multiple digraphs are not supported; only one digraph per file is allowed")
	}

	for k, v := range p.nodeDefaults {
		p.scope.NodeDefaults[k] = v
	}
	for k, v := range p.edgeDefaults {
		p.scope.EdgeDefaults[k] = v
	}
	return p.scope, nil
}

// parseStatements parses a sequence of statements until a closing brace or EOF.
func (p *parser) parseStatements() error {
	for p.current().Type != TokenRBrace && p.current().Type != TokenEOF {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	return nil
}

// parseStatement parses a single statement within a digraph or subgraph.
func (p *parser) parseStatement() error {
	tok := p.current()

	switch tok.Type {
	case TokenGraph:
		return p.parseGraphAttrStmt()
	case TokenNode:
		return p.parseDefaults(p.nodeDefaults)
	case TokenEdge:
		return p.parseDefaults(p.edgeDefaults)
	case TokenSubgraph:
		return p.parseSubgraph()
	case TokenIdentifier, TokenString:
		return p.parseNodeOrEdgeStmt()
	case TokenSemicolon:
		p.advance()
		return nil
	default:
		return fmt.Errorf("unexpected token %v (%q) at line %d, col %d",
			tok.Type, tok.Value, tok.Line, tok.Col)
	}
}

// parseGraphAttrStmt parses: 'graph' AttrBlock ';'?
func (p *parser) parseGraphAttrStmt() error {
	p.advance() // consume 'graph'

	if p.current().Type == TokenLBracket {
		attrs, err := p.parseAttrBlock()
		if err != nil {
			return err
		}
		for k, v := range attrs {
			p.scope.Attrs[k] = v
		}
	}

	p.skipSemicolon()
	return nil
}

// parseDefaults parses: ('node' | 'edge') AttrBlock ';'? into the given scope defaults.
func (p *parser) parseDefaults(into map[string]string) error {
	p.advance() // consume keyword

	if p.current().Type == TokenLBracket {
		attrs, err := p.parseAttrBlock()
		if err != nil {
			return err
		}
		for k, v := range attrs {
			into[k] = v
		}
	}

	p.skipSemicolon()
	return nil
}

// parseSubgraph parses: 'subgraph' Identifier '{' Statement* '}'. The body
// is a fresh node namespace; defaults are inherited and restored on exit.
func (p *parser) parseSubgraph() error {
	p.advance() // consume 'subgraph'

	tok := p.current()
	if tok.Type != TokenIdentifier && tok.Type != TokenString {
		return fmt.Errorf("subgraph needs a name to become a group at line %d, col %d", tok.Line, tok.Col)
	}
	p.advance()

	if p.scope.FindSubgraph(tok.Value) != nil {
		return fmt.Errorf("duplicate subgraph %q at line %d, col %d", tok.Value, tok.Line, tok.Col)
	}

	if _, err := p.expect(TokenLBrace); err != nil {
		return err
	}

	outer := p.scope
	outerNodeDefaults := p.nodeDefaults
	outerEdgeDefaults := p.edgeDefaults
	p.nodeDefaults = copyAttrs(outerNodeDefaults)
	p.edgeDefaults = copyAttrs(outerEdgeDefaults)

	sg := newGraph(tok.Value)
	p.scope = sg

	for p.current().Type != TokenRBrace && p.current().Type != TokenEOF {
		// Top-level key=value in subgraph, e.g. label = "Lighting"
		if p.current().Type == TokenIdentifier && p.peek(1).Type == TokenEquals {
			key := p.advance().Value
			p.advance() // consume =
			val, err := p.parseValue()
			if err != nil {
				return err
			}
			sg.Attrs[key] = val
			p.skipSemicolon()
			continue
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}

	if _, err := p.expect(TokenRBrace); err != nil {
		return err
	}

	for k, v := range p.nodeDefaults {
		sg.NodeDefaults[k] = v
	}
	for k, v := range p.edgeDefaults {
		sg.EdgeDefaults[k] = v
	}

	p.scope = outer
	p.nodeDefaults = outerNodeDefaults
	p.edgeDefaults = outerEdgeDefaults

	outer.Subgraphs = append(outer.Subgraphs, sg)
	p.skipSemicolon()
	return nil
}

// parseNodeOrEdgeStmt parses a node statement or edge statement.
// Disambiguates by looking ahead for -> (edge) or = (graph attr decl).
func (p *parser) parseNodeOrEdgeStmt() error {
	// Graph-level attribute declaration: identifier = value
	if p.peek(1).Type == TokenEquals {
		key := p.advance().Value
		p.advance() // consume =
		val, err := p.parseValue()
		if err != nil {
			return err
		}
		p.scope.Attrs[key] = val
		p.skipSemicolon()
		return nil
	}

	id, port, err := p.parseNodeRef()
	if err != nil {
		return err
	}

	if p.current().Type == TokenArrow {
		return p.parseEdgeStmt(id, port)
	}
	if port != "" {
		return fmt.Errorf("port %q on node statement %q outside an edge", port, id)
	}
	return p.parseNodeStmt(id)
}

// parseNodeRef parses: (Identifier | String) (':' (Identifier | String))?
func (p *parser) parseNodeRef() (string, string, error) {
	tok := p.current()
	if tok.Type != TokenIdentifier && tok.Type != TokenString {
		return "", "", fmt.Errorf("expected node identifier at line %d, col %d", tok.Line, tok.Col)
	}
	p.advance()

	if p.current().Type != TokenColon {
		return tok.Value, "", nil
	}
	p.advance() // consume :
	portTok := p.current()
	if portTok.Type != TokenIdentifier && portTok.Type != TokenString {
		return "", "", fmt.Errorf("expected port name after ':' at line %d, col %d", portTok.Line, portTok.Col)
	}
	p.advance()
	return tok.Value, portTok.Value, nil
}

// parseNodeStmt parses: NodeRef AttrBlock? ';'?
func (p *parser) parseNodeStmt(id string) error {
	var attrs map[string]string
	if p.current().Type == TokenLBracket {
		var err error
		attrs, err = p.parseAttrBlock()
		if err != nil {
			return err
		}
	}

	p.ensureNode(id, attrs)
	p.skipSemicolon()
	return nil
}

// parseEdgeStmt parses: NodeRef ( '->' NodeRef )+ AttrBlock? ';'?
func (p *parser) parseEdgeStmt(firstID, firstPort string) error {
	type ref struct{ id, port string }
	refs := []ref{{firstID, firstPort}}

	for p.current().Type == TokenArrow {
		p.advance() // consume ->
		id, port, err := p.parseNodeRef()
		if err != nil {
			return fmt.Errorf("after ->: %w", err)
		}
		refs = append(refs, ref{id, port})
	}

	var attrs map[string]string
	if p.current().Type == TokenLBracket {
		var err error
		attrs, err = p.parseAttrBlock()
		if err != nil {
			return err
		}
	}

	for _, r := range refs {
		p.ensureNode(r.id, nil)
	}

	// Expand chained edges: A -> B -> C becomes A->B, B->C
	for i := 0; i < len(refs)-1; i++ {
		edgeAttrs := copyAttrs(p.edgeDefaults)
		for k, v := range attrs {
			edgeAttrs[k] = v
		}
		p.scope.AddEdge(&Edge{
			From:     refs[i].id,
			FromPort: refs[i].port,
			To:       refs[i+1].id,
			ToPort:   refs[i+1].port,
			Attrs:    edgeAttrs,
		})
	}

	p.skipSemicolon()
	return nil
}

// ensureNode creates a node if it doesn't exist, merging defaults and explicit attributes.
func (p *parser) ensureNode(id string, explicitAttrs map[string]string) {
	node := p.scope.FindNode(id)
	if node == nil {
		node = &Node{ID: id, Attrs: copyAttrs(p.nodeDefaults)}
		p.scope.AddNode(node)
	}
	for k, v := range explicitAttrs {
		node.Attrs[k] = v
	}
}

// parseAttrBlock parses: '[' Attr ( (',' | ';') Attr )* ']'
func (p *parser) parseAttrBlock() (map[string]string, error) {
	if _, err := p.expect(TokenLBracket); err != nil {
		return nil, err
	}

	attrs := make(map[string]string)

	for p.current().Type != TokenRBracket {
		key, val, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		attrs[key] = val
		if p.current().Type == TokenComma || p.current().Type == TokenSemicolon {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(TokenRBracket); err != nil {
		return nil, err
	}
	return attrs, nil
}

// parseAttr parses: Key '=' Value
func (p *parser) parseAttr() (string, string, error) {
	tok := p.current()
	if tok.Type != TokenIdentifier && tok.Type != TokenString {
		return "", "", fmt.Errorf("expected attribute key but got %v (%q) at line %d, col %d",
			tok.Type, tok.Value, tok.Line, tok.Col)
	}
	p.advance()

	if _, err := p.expect(TokenEquals); err != nil {
		return "", "", err
	}

	val, err := p.parseValue()
	if err != nil {
		return "", "", err
	}
	return tok.Value, val, nil
}

// parseValue parses a value: String | Number | Identifier.
// All values are stored as strings in the attribute maps.
func (p *parser) parseValue() (string, error) {
	tok := p.current()

	switch tok.Type {
	case TokenString, TokenNumber, TokenIdentifier:
		p.advance()
		return tok.Value, nil

	default:
		return "", fmt.Errorf("expected value but got %v (%q) at line %d, col %d",
			tok.Type, tok.Value, tok.Line, tok.Col)
	}
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
