// Package parser implements a recursive-descent statement parser that
// delegates expression parsing to a Pratt parser with explicit
// prefix/infix/postfix binding powers (see expr.go).
package parser

import (
	"fmt"
	"strconv"

	"github.com/mna/ore/internal/ast"
	"github.com/mna/ore/internal/lexer"
	"github.com/mna/ore/internal/token"
)

// Parser turns a token stream into an *ast.Root.
type Parser struct {
	file string
	toks []token.Token
	pos  int

	loopDepth int
	errs      ErrorList
}

// Parse tokenizes and parses src, returning the root AST node. The returned
// error, if non-nil, is an ErrorList.
func Parse(src []byte, file string) (*ast.Root, error) {
	lx := lexer.New(src)
	var toks []token.Token
	for {
		t := lx.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			break
		}
	}

	p := &Parser{file: file, toks: toks}
	for _, le := range lx.Errors() {
		p.errs.Add(&Error{Kind: NotAStatement, File: file, Tok: token.Token{Line: le.Line, Column: le.Col}, Message: le.Msg})
	}

	root := &ast.Root{Tok: toks[0]}
	for p.peek().Kind != token.EOF {
		if s := p.parseRootStmt(); s != nil {
			root.Stmts = append(root.Stmts, s)
		} else {
			p.next() // make progress on unrecoverable error
		}
	}
	return root, p.errs.Err()
}

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) next() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(tok token.Token, kind ErrorKind, format string, args ...any) {
	p.errs.Add(&Error{Kind: kind, Tok: tok, File: p.file, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, bool) {
	if p.peek().Kind == k {
		return p.next(), true
	}
	p.errorf(p.peek(), Expected, "expected %s, got %q", what, p.peek().Kind)
	return p.peek(), false
}

var closeKindForText = map[string]token.Kind{
	")": token.RPAREN,
	"]": token.RBRACK,
	"}": token.RBRACE,
}

func (p *Parser) expectGroupClose(open token.Token, want string) {
	if p.peek().Kind == closeKindForText[want] {
		p.next()
		return
	}
	p.errorf(open, Expected, "expected closing %q", want)
}

func (p *Parser) skipTerminator() {
	if p.peek().Kind == token.TERMINATOR {
		p.next()
	}
}

func parseIntLit(lit string) (int64, error) { return lexer.ParseIntLiteral(lit) }
func parseFloatLit(lit string) (float64, error) {
	return strconv.ParseFloat(lit, 64)
}

// parseRootStmt parses a statement valid at file scope, where function,
// native function and import declarations are additionally allowed.
func (p *Parser) parseRootStmt() ast.Stmt {
	switch p.peek().Kind {
	case token.IMPORT:
		return p.parseImport()
	case token.FUNCTION:
		return p.parseFunction(false)
	case token.SYNC:
		if p.peekAt(1).Kind == token.FUNCTION {
			p.next()
			return p.parseFunction(true)
		}
		if p.peekAt(1).Kind == token.NATIVE {
			p.next()
			return p.parseNativeFunction(true)
		}
	case token.NATIVE:
		return p.parseNativeFunction(false)
	}
	return p.parseStmt()
}

// parseStmt parses a statement valid inside a block.
func (p *Parser) parseStmt() ast.Stmt {
	tok := p.peek()
	switch tok.Kind {
	case token.TERMINATOR:
		p.next()
		return &ast.Empty{Tok: tok}
	case token.LBRACE:
		return p.parseBlock()
	case token.VAR:
		return p.parseVarDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		p.next()
		if p.loopDepth == 0 {
			p.errorf(tok, BackOutsideLoop, "'break' outside of a loop")
		}
		p.skipTerminator()
		return &ast.Break{Tok: tok}
	case token.CONTINUE:
		p.next()
		if p.loopDepth == 0 {
			p.errorf(tok, BackOutsideLoop, "'continue' outside of a loop")
		}
		p.skipTerminator()
		return &ast.Continue{Tok: tok}
	case token.IMPORT, token.FUNCTION, token.NATIVE:
		p.errorf(tok, NotAStatement, "%q is only valid at file scope", tok.Kind)
		return p.parseExprStmt()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	tok := p.peek()
	e := p.parseExpr(0)
	if e == nil {
		p.errorf(tok, NotAStatement, "expected statement, got %q", tok.Kind)
		return &ast.Empty{Tok: tok}
	}
	p.skipTerminator()
	return &ast.ExprStmt{Tok: tok, Expr: e}
}

func (p *Parser) parseBlock() *ast.Block {
	open, _ := p.expect(token.LBRACE, "'{'")
	b := &ast.Block{Tok: open}
	for p.peek().Kind != token.RBRACE && p.peek().Kind != token.EOF {
		if s := p.parseStmt(); s != nil {
			b.Stmts = append(b.Stmts, s)
		} else {
			p.next()
		}
	}
	p.expectGroupClose(open, "}")
	return b
}

func (p *Parser) parseImport() ast.Stmt {
	tok := p.next() // 'import'
	nameTok, ok := p.expect(token.IDENT, "identifier")
	if !ok {
		return &ast.Empty{Tok: tok}
	}
	alias := nameTok.Text
	source := nameTok.Text
	if p.peek().Kind == token.FROM {
		p.next()
		srcTok, ok := p.expect(token.IDENT, "identifier")
		if ok {
			source = srcTok.Text
		}
	}
	p.skipTerminator()
	return &ast.Import{Tok: tok, Alias: alias, Source: source}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	tok := p.next() // 'var'
	nameTok, ok := p.expect(token.IDENT, "identifier")
	if !ok {
		p.errorf(nameTok, IdentifierExpected, "expected identifier after 'var'")
		return &ast.Empty{Tok: tok}
	}
	name := nameTok.Text

	if p.peek().Kind != token.ASSIGN {
		p.skipTerminator()
		return &ast.VarDecl{Tok: tok, Name: name}
	}
	p.next() // '='

	if p.peek().Kind == token.LBRACK {
		open := p.next()
		var elems []ast.Expr
		if p.peek().Kind != token.RBRACK {
			for {
				e := p.parseExpr(0)
				if e == nil {
					p.errorf(p.peek(), IllegalArgument, "illegal array element")
					break
				}
				elems = append(elems, e)
				if p.peek().Kind != token.COMMA {
					break
				}
				p.next()
			}
		}
		p.expectGroupClose(open, "]")
		p.skipTerminator()
		return &ast.ArrayDecl{Tok: tok, Name: name, Elements: elems}
	}

	init := p.parseExpr(0)
	if init == nil {
		p.errorf(p.peek(), IllegalExpression, "missing initializer expression")
	}
	p.skipTerminator()
	return &ast.VarDecl{Tok: tok, Name: name, Init: init}
}

func (p *Parser) parseIf() ast.Stmt {
	tok := p.next() // 'if'
	cond := p.parseCondition(tok)
	then := p.parseBlock()
	st := &ast.If{Tok: tok, Cond: cond, Then: then}

	switch p.peek().Kind {
	case token.ELIF:
		st.Else = p.parseIf() // reuses 'elif' as an 'if' at this position
	case token.ELSE:
		p.next()
		st.Else = p.parseBlock()
	}
	return st
}

func (p *Parser) parseCondition(tok token.Token) ast.Expr {
	cond := p.parseExpr(0)
	if cond == nil {
		p.errorf(tok, MissingCondition, "missing condition")
	}
	return cond
}

func (p *Parser) parseWhile() ast.Stmt {
	tok := p.next() // 'while'
	cond := p.parseCondition(tok)
	p.loopDepth++
	body := p.parseBlockOrError(tok)
	p.loopDepth--
	return &ast.Loop{Tok: tok, Cond: cond, Body: body}
}

func (p *Parser) parseBlockOrError(tok token.Token) *ast.Block {
	if p.peek().Kind != token.LBRACE {
		p.errorf(tok, MissingLoopBody, "missing loop body")
		return &ast.Block{Tok: tok}
	}
	return p.parseBlock()
}

// parseFor desugars `for (init?; cond?; post?) { body }` into a ContextBlock
// holding an optional VarDecl followed by a Loop whose body has `post`
// appended at the end. A missing condition becomes a literal `true` and the
// loop is flagged unconditional.
func (p *Parser) parseFor() ast.Stmt {
	tok := p.next() // 'for'
	open, _ := p.expect(token.LPAREN, "'('")

	ctx := &ast.ContextBlock{Tok: tok, Body: &ast.Block{Tok: tok}}

	var initDecl ast.Stmt
	if p.peek().Kind != token.TERMINATOR {
		initDecl = p.parseVarDecl()
	} else {
		p.next() // ';'
	}
	if initDecl != nil {
		ctx.Body.Stmts = append(ctx.Body.Stmts, initDecl)
	}

	var cond ast.Expr
	isUnconditional := false
	if p.peek().Kind != token.TERMINATOR {
		cond = p.parseExpr(0)
	} else {
		isUnconditional = true
		cond = &ast.Literal{Tok: tok, Bool: true, IsBool: true}
	}
	p.expect(token.TERMINATOR, "';'")

	var post ast.Expr
	if p.peek().Kind != token.RPAREN {
		post = p.parseExpr(0)
	}
	p.expectGroupClose(open, ")")

	p.loopDepth++
	body := p.parseBlockOrError(tok)
	p.loopDepth--
	if post != nil {
		body.Stmts = append(body.Stmts, &ast.ExprStmt{Tok: post.Pos(), Expr: post})
	}

	loop := &ast.Loop{Tok: tok, Cond: cond, Body: body, IsUnconditional: isUnconditional}
	ctx.Body.Stmts = append(ctx.Body.Stmts, loop)
	return ctx
}

func (p *Parser) parseReturn() ast.Stmt {
	tok := p.next() // 'return'
	if p.peek().Kind == token.TERMINATOR || p.peek().Kind == token.RBRACE {
		p.skipTerminator()
		return &ast.Return{Tok: tok}
	}
	val := p.parseExpr(0)
	p.skipTerminator()
	return &ast.Return{Tok: tok, Value: val}
}

func (p *Parser) parseParams() []string {
	open, _ := p.expect(token.LPAREN, "'('")
	var params []string
	if p.peek().Kind != token.RPAREN {
		for {
			idTok, ok := p.expect(token.IDENT, "parameter name")
			if !ok {
				break
			}
			params = append(params, idTok.Text)
			if p.peek().Kind != token.COMMA {
				break
			}
			p.next()
		}
	}
	p.expectGroupClose(open, ")")
	return params
}

func (p *Parser) parseFunction(isSync bool) ast.Stmt {
	tok := p.next() // 'function'
	nameTok, ok := p.expect(token.IDENT, "function name")
	if !ok {
		return &ast.Empty{Tok: tok}
	}
	params := p.parseParams()
	if p.peek().Kind != token.LBRACE {
		p.errorf(tok, MissingFunctionBody, "missing function body for %q", nameTok.Text)
		return &ast.Function{Tok: tok, Name: nameTok.Text, Params: params, Body: &ast.Block{Tok: tok}, IsSync: isSync}
	}
	body := p.parseBlock()
	return &ast.Function{Tok: tok, Name: nameTok.Text, Params: params, Body: body, IsSync: isSync}
}

func (p *Parser) parseNativeFunction(isSync bool) ast.Stmt {
	tok := p.next() // 'native'
	nameTok, ok := p.expect(token.IDENT, "function name")
	if !ok {
		return &ast.Empty{Tok: tok}
	}
	params := p.parseParams()
	p.skipTerminator()
	return &ast.NativeFunctionDecl{Tok: tok, Name: nameTok.Text, Params: params, IsSync: isSync}
}
