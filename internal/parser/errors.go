package parser

import (
	"fmt"

	"github.com/mna/ore/internal/token"
)

// ErrorKind is the closed set of syntax errors the parser can emit. A few
// variants (IllegalTypeCombination, SymbolDefined, UnableResolveSymbols,
// NoNativeImplement, NotFoundLibrary) are declared here because they share
// the same reporting shape, but they are only ever raised by the semantic
// lowering stage, never by the parser itself.
type ErrorKind int

const (
	NotAStatement ErrorKind = iota
	IdentifierExpected
	Expected
	MissingFunctionBody
	MissingStatement
	MissingCondition
	MissingLoopBody
	IllegalArgument
	IllegalExpression
	IllegalKey
	BackOutsideLoop
	IllegalTypeCombination
	SymbolDefined
	UnableResolveSymbols
	NoNativeImplement
	NotFoundLibrary
)

func (k ErrorKind) String() string {
	switch k {
	case NotAStatement:
		return "not a statement"
	case IdentifierExpected:
		return "identifier expected"
	case Expected:
		return "expected token"
	case MissingFunctionBody:
		return "missing function body"
	case MissingStatement:
		return "missing statement"
	case MissingCondition:
		return "missing condition"
	case MissingLoopBody:
		return "missing loop body"
	case IllegalArgument:
		return "illegal argument"
	case IllegalExpression:
		return "illegal expression"
	case IllegalKey:
		return "illegal key"
	case BackOutsideLoop:
		return "break/continue outside loop"
	case IllegalTypeCombination:
		return "illegal type combination"
	case SymbolDefined:
		return "symbol already defined"
	case UnableResolveSymbols:
		return "unable to resolve symbol"
	case NoNativeImplement:
		return "no native implementation"
	case NotFoundLibrary:
		return "library not found"
	default:
		return "syntax error"
	}
}

// Error is a compile error (parser or, for the deferred kinds, semantic)
// carrying the offending token for source-position reporting.
type Error struct {
	Kind    ErrorKind
	Tok     token.Token
	File    string
	Message string
}

func (e *Error) Error() string {
	l, c := e.Tok.Line, e.Tok.Column
	return fmt.Sprintf("SyntaxError(%s-line: %d column: %d): %s", e.File, l, c, e.Message)
}

// ErrorList accumulates Errors across a parse or semantic pass.
type ErrorList []*Error

func (el *ErrorList) Add(err *Error) { *el = append(*el, err) }

func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func (el ErrorList) Error() string {
	if len(el) == 1 {
		return el[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
}

// Unwrap exposes every accumulated error for errors.Is/As and wrapping
// helpers.
func (el ErrorList) Unwrap() []error {
	errs := make([]error, len(el))
	for i, e := range el {
		errs[i] = e
	}
	return errs
}
