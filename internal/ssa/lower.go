package ssa

import (
	"github.com/mna/ore/internal/ast"
	"github.com/mna/ore/internal/parser"
	"github.com/mna/ore/internal/token"
)

// NativeLookup resolves a bare name declared by a `native function name(...)`
// statement to its arity, as provided by the host's native function
// registry. A nil NativeLookup passed to Lower skips native-call
// validation; the VM still fails at call time if a native path is
// unresolved, so the check here is a compile-time convenience rather than a
// soundness requirement.
type NativeLookup interface {
	Lookup(name string) (arity int, ok bool)
}

// LibraryLookup reports whether name is an importable library: either a
// native module provided by the host bridge, or another compilation unit
// present in the same embedding session. A nil LibraryLookup passed to
// Lower skips import validation, matching NativeLookup's convention.
type LibraryLookup interface {
	HasLibrary(name string) bool
}

// Lower runs semantic lowering over root, producing a Code ready for the
// ssaopt/bytecode stages. unit is the compilation unit's short name (its
// filename without extension), used as the file name in error reports. native,
// if non-nil, validates declared native functions against the host bridge.
// libs, if non-nil, validates `import` sources against the host bridge's
// native modules and the session's other compiled units.
func Lower(root *ast.Root, unit string, native NativeLookup, libs LibraryLookup) (*Code, *ValueAlloc, error) {
	l := &lowerer{
		unit:   unit,
		native: native,
		libs:   libs,
		code:   &Code{IsRoot: true, Root: &OpCodeTable{}},
	}
	l.syms.Push(CtxRoot)
	l.curTab = l.code.Root
	l.collectDecls(root.Stmts)
	for _, s := range root.Stmts {
		l.lowerRootStmt(s)
	}
	l.syms.Pop()
	return l.code, &l.values, l.errs.Err()
}

type lowerer struct {
	unit   string
	native NativeLookup
	libs   LibraryLookup
	values ValueAlloc
	syms   SymbolTable
	errs   parser.ErrorList

	code     *Code
	cur      *Function // enclosing function, nil at root scope
	curTab   *OpCodeTable
	loops    []*loopMark
}

type loopMark struct {
	breaks    []LocalAddr
	continues []LocalAddr
}

func (l *lowerer) errf(kind parser.ErrorKind, tok token.Token, msg string) {
	l.errs.Add(&parser.Error{Kind: kind, Tok: tok, File: l.unit, Message: msg})
}

// collectDecls pre-registers every root-level function, native function and
// import so that forward references (a function calling one declared later
// in the file) resolve.
func (l *lowerer) collectDecls(stmts []ast.Stmt) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.Function:
			if !l.syms.Define(Entry{Name: n.Name, Kind: EntFunction, Arity: len(n.Params)}) {
				l.errf(parser.SymbolDefined, n.Tok, "function "+n.Name+" already defined")
				continue
			}
			l.code.Funcs = append(l.code.Funcs, &Function{Name: n.Name, Arity: len(n.Params), IsSync: n.IsSync})
		case *ast.NativeFunctionDecl:
			if !l.syms.Define(Entry{Name: n.Name, Kind: EntNativeFunction, Arity: len(n.Params)}) {
				l.errf(parser.SymbolDefined, n.Tok, "function "+n.Name+" already defined")
				continue
			}
			if l.native != nil {
				if arity, ok := l.native.Lookup(n.Name); !ok {
					l.errf(parser.NoNativeImplement, n.Tok, "no native implementation for "+n.Name)
				} else if arity != len(n.Params) {
					l.errf(parser.NoNativeImplement, n.Tok, "native function "+n.Name+" arity mismatch")
				}
			}
			l.code.Funcs = append(l.code.Funcs, &Function{Name: n.Name, Arity: len(n.Params), IsSync: n.IsSync, Opcodes: nil})
		case *ast.Import:
			if !l.syms.Define(Entry{Name: n.Alias, Kind: EntLibrary, Alias: n.Source}) {
				l.errf(parser.SymbolDefined, n.Tok, "symbol "+n.Alias+" already defined")
			}
			if l.libs != nil && !l.libs.HasLibrary(n.Source) {
				l.errf(parser.NotFoundLibrary, n.Tok, "no such library "+n.Source)
			}
		}
	}
}

func (l *lowerer) lowerRootStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Function:
		l.lowerFunctionBody(n)
	case *ast.NativeFunctionDecl, *ast.Import:
		// handled entirely in collectDecls
	default:
		l.lowerStmt(s)
	}
}

func (l *lowerer) lowerFunctionBody(n *ast.Function) {
	fn := l.code.Funcs[l.code.FuncIndex(n.Name)]
	fn.Opcodes = &OpCodeTable{}

	prevCur, prevTab := l.cur, l.curTab
	l.cur, l.curTab = fn, fn.Opcodes

	l.syms.Push(CtxFunc)
	for _, p := range n.Params {
		key := l.values.New(Value{Variable: true, Declaration: n.Tok, Name: p})
		fn.Locals.Slot(key)
		if !l.syms.Define(Entry{Name: p, Kind: EntArgument, Key: key}) {
			l.errf(parser.SymbolDefined, n.Tok, "parameter "+p+" already defined")
		}
	}
	l.lowerBlockStmts(n.Body.Stmts)
	l.syms.Pop()

	// Implicit `return;` at the end of every function body, matching the
	// original runtime's null-return fallthrough.
	l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndNull}})
	l.curTab.Append(OpCode{Op: Return, Tok: n.Tok})

	l.cur, l.curTab = prevCur, prevTab
}

// lowerBlockStmts lowers a statement list without opening a fresh symbol
// context; callers that want block scoping call syms.Push/Pop themselves.
func (l *lowerer) lowerBlockStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		l.lowerStmt(s)
	}
}

func (l *lowerer) lowerStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Empty:
		// no-op
	case *ast.Block:
		l.syms.Push(CtxBlock)
		l.lowerBlockStmts(n.Stmts)
		l.syms.Pop()
	case *ast.ContextBlock:
		l.syms.Push(CtxBlock)
		l.lowerBlockStmts(n.Body.Stmts)
		l.syms.Pop()
	case *ast.VarDecl:
		l.lowerVarDecl(n)
	case *ast.ArrayDecl:
		l.lowerArrayDecl(n)
	case *ast.ExprStmt:
		l.lowerExpr(n.Expr)
		// Expression statements are evaluated for effect; their value, if
		// any was left on the stack, is discarded.
		l.curTab.Append(OpCode{Op: PopN, Tok: n.Tok, Len: 1})
	case *ast.Return:
		if n.Value != nil {
			l.lowerExpr(n.Value)
		} else {
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndNull}})
		}
		l.curTab.Append(OpCode{Op: Return, Tok: n.Tok})
	case *ast.If:
		l.lowerIf(n)
	case *ast.Loop:
		l.lowerLoop(n)
	case *ast.Break:
		if !l.syms.InLoop() {
			l.errf(parser.BackOutsideLoop, n.Tok, "break outside loop")
			return
		}
		addr := l.curTab.Append(OpCode{Op: LazyJump, Tok: n.Tok, IsBreak: true, Target: NoAddr})
		l.loops[len(l.loops)-1].breaks = append(l.loops[len(l.loops)-1].breaks, addr)
	case *ast.Continue:
		if !l.syms.InLoop() {
			l.errf(parser.BackOutsideLoop, n.Tok, "continue outside loop")
			return
		}
		addr := l.curTab.Append(OpCode{Op: LazyJump, Tok: n.Tok, IsBreak: false, Target: NoAddr})
		l.loops[len(l.loops)-1].continues = append(l.loops[len(l.loops)-1].continues, addr)
	default:
		l.errf(parser.IllegalExpression, s.Pos(), "unsupported statement")
	}
}

func (l *lowerer) declareLocalOrGlobal(tok token.Token, name string) ValueKey {
	key := l.values.New(Value{Variable: true, Declaration: tok, Name: name})
	if l.cur == nil {
		l.code.Globals.Slot(key)
	} else {
		l.cur.Locals.Slot(key)
	}
	if !l.syms.Define(Entry{Name: name, Kind: EntValue, Key: key}) {
		l.errf(parser.SymbolDefined, tok, "symbol "+name+" already defined")
	}
	return key
}

func (l *lowerer) lowerVarDecl(n *ast.VarDecl) {
	if n.Init != nil {
		l.lowerExpr(n.Init)
	} else {
		l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndNull}})
	}
	key := l.declareLocalOrGlobal(n.Tok, n.Name)
	l.emitStore(n.Tok, key)
}

func (l *lowerer) lowerArrayDecl(n *ast.ArrayDecl) {
	for _, e := range n.Elements {
		l.lowerExpr(e)
	}
	l.curTab.Append(OpCode{Op: ArrayNew, Tok: n.Tok, Len: len(n.Elements)})
	key := l.declareLocalOrGlobal(n.Tok, n.Name)
	l.emitStore(n.Tok, key)
}

func (l *lowerer) emitStore(tok token.Token, key ValueKey) {
	if _, global := l.code.Globals.index[key]; l.cur == nil || global {
		l.curTab.Append(OpCode{Op: StoreGlobal, Tok: tok, Global: l.code.Globals.Slot(key)})
	} else {
		l.curTab.Append(OpCode{Op: StoreLocal, Tok: tok, Local: l.cur.Locals.Slot(key)})
	}
}

func (l *lowerer) emitLoad(tok token.Token, key ValueKey) {
	if _, global := l.code.Globals.index[key]; l.cur == nil || global {
		l.curTab.Append(OpCode{Op: LoadGlobal, Tok: tok, Global: l.code.Globals.Slot(key)})
	} else {
		l.curTab.Append(OpCode{Op: LoadLocal, Tok: tok, Local: l.cur.Locals.Slot(key)})
	}
}

func (l *lowerer) lowerIf(n *ast.If) {
	l.lowerExpr(n.Cond)
	jf := l.curTab.Append(OpCode{Op: JumpIfFalse, Tok: n.Tok, Target: NoAddr})

	l.syms.Push(CtxBlock)
	l.lowerBlockStmts(n.Then.Stmts)
	l.syms.Pop()

	if n.Else == nil {
		l.curTab.At(jf).Target = LocalAddr(l.curTab.Len())
		return
	}
	end := l.curTab.Append(OpCode{Op: Jump, Tok: n.Tok, Target: NoAddr})
	l.curTab.At(jf).Target = LocalAddr(l.curTab.Len())

	switch e := n.Else.(type) {
	case *ast.If:
		l.lowerIf(e)
	case *ast.Block:
		l.syms.Push(CtxBlock)
		l.lowerBlockStmts(e.Stmts)
		l.syms.Pop()
	}
	l.curTab.At(end).Target = LocalAddr(l.curTab.Len())
}

func (l *lowerer) lowerLoop(n *ast.Loop) {
	head := LocalAddr(l.curTab.Len())
	var jf LocalAddr = NoAddr
	if !n.IsUnconditional {
		l.lowerExpr(n.Cond)
		jf = l.curTab.Append(OpCode{Op: JumpIfFalse, Tok: n.Tok, Target: NoAddr})
	}

	l.loops = append(l.loops, &loopMark{})
	l.syms.Push(CtxLoop)
	// The parser appends a `for` loop's post expression to its body; it is
	// the only body statement positioned before the body's opening brace.
	// `continue` targets it so the post expression still runs.
	stmts, post := n.Body.Stmts, ast.Stmt(nil)
	if k := len(stmts); n.Tok.Kind == token.FOR && k > 0 && stmts[k-1].Pos().Offset < n.Body.Tok.Offset {
		stmts, post = stmts[:k-1], stmts[k-1]
	}
	l.lowerBlockStmts(stmts)
	cont := LocalAddr(l.curTab.Len())
	if post != nil {
		l.lowerStmt(post)
	}
	l.syms.Pop()
	mark := l.loops[len(l.loops)-1]
	l.loops = l.loops[:len(l.loops)-1]

	l.curTab.Append(OpCode{Op: Jump, Tok: n.Tok, Target: head})
	end := LocalAddr(l.curTab.Len())
	if jf != NoAddr {
		l.curTab.At(jf).Target = end
	}
	for _, addr := range mark.continues {
		op := l.curTab.At(addr)
		op.Op, op.Target = Jump, cont
	}
	for _, addr := range mark.breaks {
		op := l.curTab.At(addr)
		op.Op, op.Target = Jump, end
	}
}

// lowerExpr emits opcodes leaving exactly one value on the operand stack and
// reports the expression's statically guessed type.
func (l *lowerer) lowerExpr(e ast.Expr) GuessedType {
	switch n := e.(type) {
	case *ast.Literal:
		op := literalOperand(n)
		l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: op})
		return op.guessedType()

	case *ast.This:
		l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndThis}})
		return TypeThis

	case *ast.Variable:
		entry, ok := l.syms.Lookup(n.Name)
		if !ok {
			l.errf(parser.UnableResolveSymbols, n.Tok, "undefined symbol "+n.Name)
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndNull}})
			return TypeNull
		}
		switch entry.Kind {
		case EntFunction, EntNativeFunction:
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndReference, Name: n.Name}})
			return TypeRef
		case EntLibrary:
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndLibrary, Name: entry.Alias}})
			return TypeRef
		default:
			l.emitLoad(n.Tok, entry.Key)
			return l.values.Get(entry.Key).Type
		}

	case *ast.UnaryOp:
		return l.lowerUnary(n)

	case *ast.BinaryOp:
		return l.lowerBinary(n)

	case *ast.Call:
		return l.lowerCall(n)

	default:
		l.errf(parser.IllegalExpression, e.Pos(), "unsupported expression")
		return TypeUnknown
	}
}

func literalOperand(n *ast.Literal) Operand {
	switch {
	case n.IsInt:
		return Operand{Kind: OpndImmInt, Int: n.Int}
	case n.IsFloat:
		return Operand{Kind: OpndImmFloat, Float: n.Float}
	case n.IsStr:
		return Operand{Kind: OpndImmString, Str: n.Str}
	case n.IsBool:
		return Operand{Kind: OpndImmBool, Bool: n.Bool}
	default:
		return Operand{Kind: OpndNull}
	}
}

func (l *lowerer) lowerUnary(n *ast.UnaryOp) GuessedType {
	switch n.Op {
	case ast.UnPreInc, ast.UnPreDec, ast.UnPostInc, ast.UnPostDec:
		return l.lowerIncDec(n)
	}

	// Try folding first: if the operand is a bare literal, fold without
	// emitting any code for it.
	if lit, ok := n.Operand.(*ast.Literal); ok {
		if folded, ok := foldUnary(n.Op, literalOperand(lit)); ok {
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: folded})
			return folded.guessedType()
		}
	}

	typ := l.lowerExpr(n.Operand)
	switch n.Op {
	case ast.UnNeg:
		l.curTab.Append(OpCode{Op: Neg, Tok: n.Tok})
	case ast.UnPos:
		l.curTab.Append(OpCode{Op: Pos, Tok: n.Tok})
	case ast.UnNot:
		l.curTab.Append(OpCode{Op: Not, Tok: n.Tok})
	}
	return typ
}

func (l *lowerer) lowerIncDec(n *ast.UnaryOp) GuessedType {
	v, ok := n.Operand.(*ast.Variable)
	if !ok {
		l.errf(parser.IllegalExpression, n.Tok, "increment/decrement target must be a variable")
		return TypeUnknown
	}
	entry, ok := l.syms.Lookup(v.Name)
	if !ok || entry.Kind != EntValue && entry.Kind != EntArgument {
		l.errf(parser.UnableResolveSymbols, n.Tok, "undefined symbol "+v.Name)
		return TypeUnknown
	}
	one := Operand{Kind: OpndImmInt, Int: 1}
	delta := Add
	if n.Op == ast.UnPreDec || n.Op == ast.UnPostDec {
		delta = Sub
	}

	if !n.IsPrefix {
		l.emitLoad(n.Tok, entry.Key) // leave old value as the expression's result
	}
	l.emitLoad(n.Tok, entry.Key)
	l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: one})
	l.curTab.Append(OpCode{Op: delta, Tok: n.Tok})
	l.emitStore(n.Tok, entry.Key)
	if n.IsPrefix {
		l.emitLoad(n.Tok, entry.Key)
	}
	return l.values.Get(entry.Key).Type
}

var binOpToOp = map[ast.BinOp]Op{
	ast.OpAdd: Add, ast.OpSub: Sub, ast.OpMul: Mul, ast.OpDiv: Div, ast.OpMod: Mod,
	ast.OpBitAnd: BitAnd, ast.OpBitOr: BitOr, ast.OpBitXor: BitXor,
	ast.OpShl: Shl, ast.OpShr: Shr,
	ast.OpLt: Lt, ast.OpGt: Gt, ast.OpLe: Le, ast.OpGe: Ge,
	ast.OpEq: Eq, ast.OpNeq: Neq, ast.OpAnd: And, ast.OpOr: Or,
}

var compoundBase = map[ast.BinOp]ast.BinOp{
	ast.OpAddAssign: ast.OpAdd, ast.OpSubAssign: ast.OpSub, ast.OpMulAssign: ast.OpMul,
	ast.OpDivAssign: ast.OpDiv, ast.OpModAssign: ast.OpMod,
	ast.OpAndAssign: ast.OpBitAnd, ast.OpOrAssign: ast.OpBitOr, ast.OpXorAssign: ast.OpBitXor,
}

func (l *lowerer) lowerBinary(n *ast.BinaryOp) GuessedType {
	switch n.Op {
	case ast.OpMember:
		return l.lowerMember(n)
	case ast.OpIndex:
		return l.lowerIndex(n)
	case ast.OpAssign:
		return l.lowerAssign(n)
	}
	if base, ok := compoundBase[n.Op]; ok {
		return l.lowerCompoundAssign(n, base)
	}

	// Constant-fold when both sides are literals or foldable literal
	// expressions.
	lc, lok := constOperand(n.Left)
	rc, rok := constOperand(n.Right)
	if lok && rok {
		if folded, ok, _ := foldBinary(n.Op, lc, rc); ok {
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: folded})
			return folded.guessedType()
		}
	}

	lt := l.lowerExpr(n.Left)
	rt := l.lowerExpr(n.Right)
	if _, valid := resultType(n.Op, lt, rt); !valid {
		l.errf(parser.IllegalTypeCombination, n.Tok, "illegal operand types for operator")
	}
	op, ok := binOpToOp[n.Op]
	if !ok {
		l.errf(parser.IllegalExpression, n.Tok, "unsupported operator")
		return TypeUnknown
	}
	l.curTab.Append(OpCode{Op: op, Tok: n.Tok})
	res, _ := resultType(n.Op, lt, rt)
	return res
}

// constOperand returns e's value as an immediate when e is a literal or a
// binary expression over literals that folds, without emitting any code.
func constOperand(e ast.Expr) (Operand, bool) {
	switch n := e.(type) {
	case *ast.Literal:
		return literalOperand(n), true
	case *ast.BinaryOp:
		l, lok := constOperand(n.Left)
		r, rok := constOperand(n.Right)
		if lok && rok {
			if folded, ok, _ := foldBinary(n.Op, l, r); ok {
				return folded, true
			}
		}
	}
	return Operand{}, false
}

func (l *lowerer) lowerAssign(n *ast.BinaryOp) GuessedType {
	switch lhs := n.Left.(type) {
	case *ast.Variable:
		typ := l.lowerExpr(n.Right)
		entry, ok := l.syms.Lookup(lhs.Name)
		if !ok {
			l.errf(parser.UnableResolveSymbols, n.Tok, "undefined symbol "+lhs.Name)
			return typ
		}
		l.emitStore(n.Tok, entry.Key)
		l.emitLoad(n.Tok, entry.Key)
		return typ
	case *ast.BinaryOp:
		if lhs.Op != ast.OpIndex {
			l.errf(parser.IllegalExpression, n.Tok, "invalid assignment target")
			return TypeUnknown
		}
		l.lowerExpr(lhs.Left)
		l.lowerExpr(lhs.Right)
		typ := l.lowerExpr(n.Right)
		l.curTab.Append(OpCode{Op: ArraySet, Tok: n.Tok})
		return typ
	default:
		l.errf(parser.IllegalExpression, n.Tok, "invalid assignment target")
		return TypeUnknown
	}
}

func (l *lowerer) lowerCompoundAssign(n *ast.BinaryOp, base ast.BinOp) GuessedType {
	v, ok := n.Left.(*ast.Variable)
	if !ok {
		l.errf(parser.IllegalExpression, n.Tok, "invalid assignment target")
		return TypeUnknown
	}
	entry, ok := l.syms.Lookup(v.Name)
	if !ok {
		l.errf(parser.UnableResolveSymbols, n.Tok, "undefined symbol "+v.Name)
		return TypeUnknown
	}
	l.emitLoad(n.Tok, entry.Key)
	rt := l.lowerExpr(n.Right)
	op := binOpToOp[base]
	l.curTab.Append(OpCode{Op: op, Tok: n.Tok})
	l.emitStore(n.Tok, entry.Key)
	l.emitLoad(n.Tok, entry.Key)
	lt := l.values.Get(entry.Key).Type
	if _, valid := resultType(base, lt, rt); !valid {
		l.errf(parser.IllegalTypeCombination, n.Tok, "illegal operand types for operator")
	}
	return lt
}

func (l *lowerer) lowerIndex(n *ast.BinaryOp) GuessedType {
	l.lowerExpr(n.Left)
	l.lowerExpr(n.Right)
	l.curTab.Append(OpCode{Op: ArrayGet, Tok: n.Tok})
	return TypeUnknown
}

// lowerMember handles `.` access outside of a call position (e.g. passing
// `module.function` as a value). The right-hand side is always a bare name,
// never a symbol lookup.
func (l *lowerer) lowerMember(n *ast.BinaryOp) GuessedType {
	path, static := l.memberPath(n)
	if static {
		l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndReference, Name: path}})
		return TypeRef
	}
	l.emitDynamicMemberRef(n)
	return TypeRef
}

// memberPath resolves a `.` expression whose left side is a library alias
// to a static "realModule/function" path, usable directly as a constant-pool
// Reference. It returns static=false when the left side is `this` (or
// anything else not statically known), since `this` only resolves to the
// owning unit's short name at bytecode/VM runtime.
func (l *lowerer) memberPath(n *ast.BinaryOp) (path string, static bool) {
	name, ok := n.Right.(*ast.Variable)
	if !ok {
		l.errf(parser.IllegalKey, n.Tok, "member access key must be a name")
		return "", false
	}
	switch lhs := n.Left.(type) {
	case *ast.Variable:
		entry, ok := l.syms.Lookup(lhs.Name)
		if !ok || entry.Kind != EntLibrary {
			l.errf(parser.UnableResolveSymbols, n.Tok, "undefined library "+lhs.Name)
			return "", false
		}
		return entry.Alias + "/" + name.Name, true
	case *ast.This:
		return "", false
	default:
		l.errf(parser.IllegalExpression, n.Tok, "invalid member access target")
		return "", false
	}
}

// emitDynamicMemberRef emits Push(This) + Push(Reference(name)) + GetRef,
// which the VM resolves to "unitName/name" at call time.
func (l *lowerer) emitDynamicMemberRef(n *ast.BinaryOp) {
	name := n.Right.(*ast.Variable)
	l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndThis}})
	l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndReference, Name: name.Name}})
	l.curTab.Append(OpCode{Op: GetRef, Tok: n.Tok})
}

func (l *lowerer) lowerCall(n *ast.Call) GuessedType {
	var staticPath string
	switch callee := n.Callee.(type) {
	case *ast.Variable:
		staticPath = callee.Name
		l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndReference, Name: staticPath}})
	case *ast.BinaryOp:
		if callee.Op != ast.OpMember {
			l.errf(parser.IllegalExpression, n.Tok, "expression is not callable")
			return TypeUnknown
		}
		path, static := l.memberPath(callee)
		if static {
			staticPath = path
			l.curTab.Append(OpCode{Op: Push, Tok: n.Tok, Value: Operand{Kind: OpndReference, Name: path}})
		} else {
			l.emitDynamicMemberRef(callee)
		}
	default:
		l.errf(parser.IllegalExpression, n.Tok, "expression is not callable")
		return TypeUnknown
	}

	for _, a := range n.Args {
		l.lowerExpr(a)
	}
	l.curTab.Append(OpCode{Op: Call, Tok: n.Tok, Len: len(n.Args), Path: staticPath})
	return TypeUnknown
}
