package ast

import "github.com/mna/ore/internal/token"

// Root is the top-level statement list of a compilation unit.
type Root struct {
	Tok   token.Token
	Stmts []Stmt
}

func (*Root) stmtNode()          {}
func (r *Root) Pos() token.Token { return r.Tok }

// Block is a `{ ... }` statement list that introduces its own symbol-table
// context.
type Block struct {
	Tok   token.Token
	Stmts []Stmt
}

func (*Block) stmtNode()          {}
func (b *Block) Pos() token.Token { return b.Tok }

// VarDecl declares a local (or, at root scope, global) variable with an
// optional initializer.
type VarDecl struct {
	Tok  token.Token
	Name string
	Init Expr // nil if no initializer
}

func (*VarDecl) stmtNode()          {}
func (v *VarDecl) Pos() token.Token { return v.Tok }

// ArrayDecl declares a variable initialized from a bracketed array literal.
type ArrayDecl struct {
	Tok      token.Token
	Name     string
	Elements []Expr
}

func (*ArrayDecl) stmtNode()          {}
func (a *ArrayDecl) Pos() token.Token { return a.Tok }

// ExprStmt is an expression evaluated for effect.
type ExprStmt struct {
	Tok  token.Token
	Expr Expr
}

func (*ExprStmt) stmtNode()          {}
func (e *ExprStmt) Pos() token.Token { return e.Tok }

// Return returns an optional value from the enclosing function.
type Return struct {
	Tok   token.Token
	Value Expr // nil if bare `return;`
}

func (*Return) stmtNode()          {}
func (r *Return) Pos() token.Token { return r.Tok }

// Import binds a library's short name under an alias at root scope.
type Import struct {
	Tok    token.Token
	Alias  string
	Source string
}

func (*Import) stmtNode()          {}
func (i *Import) Pos() token.Token { return i.Tok }

// ContextBlock is a statement list with its own scope that has no braces of
// its own in the source; the parser produces it as the desugared wrapper of
// a `for` loop. A standalone `{ ... }` statement parses to a Block.
type ContextBlock struct {
	Tok  token.Token
	Body *Block
}

func (*ContextBlock) stmtNode()          {}
func (c *ContextBlock) Pos() token.Token { return c.Tok }

// Loop is a `while` or desugared `for` loop.
type Loop struct {
	Tok           token.Token
	Cond          Expr
	Body          *Block
	IsUnconditional bool
}

func (*Loop) stmtNode()          {}
func (l *Loop) Pos() token.Token { return l.Tok }

// Function declares a named function (root scope only).
type Function struct {
	Tok    token.Token
	Name   string
	Params []string
	Body   *Block
	IsSync bool
}

func (*Function) stmtNode()          {}
func (f *Function) Pos() token.Token { return f.Tok }

// NativeFunctionDecl declares a function whose body is supplied by the host
// native-library bridge (root scope only).
type NativeFunctionDecl struct {
	Tok    token.Token
	Name   string
	Params []string
	IsSync bool
}

func (*NativeFunctionDecl) stmtNode()          {}
func (n *NativeFunctionDecl) Pos() token.Token { return n.Tok }

// If is an if/elif*/else? chain; Else may itself be an *If (for elif) or a
// *Block (for a trailing else), or nil.
type If struct {
	Tok  token.Token
	Cond Expr
	Then *Block
	Else Stmt // *If, *Block, or nil
}

func (*If) stmtNode()          {}
func (i *If) Pos() token.Token { return i.Tok }

// Break exits the nearest enclosing loop.
type Break struct {
	Tok token.Token
}

func (*Break) stmtNode()          {}
func (b *Break) Pos() token.Token { return b.Tok }

// Continue starts the next iteration of the nearest enclosing loop.
type Continue struct {
	Tok token.Token
}

func (*Continue) stmtNode()          {}
func (c *Continue) Pos() token.Token { return c.Tok }

// Empty is a no-op statement, e.g. a stray `;`.
type Empty struct {
	Tok token.Token
}

func (*Empty) stmtNode()          {}
func (e *Empty) Pos() token.Token { return e.Tok }
