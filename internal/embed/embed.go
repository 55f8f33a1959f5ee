// Package embed is the host-facing compile-and-run façade: Init, AddFile,
// Compile, InitializeExecutor, CallFunction and Free operate on an opaque
// *Handle the way internal/maincmd's functions operate on a *Cmd, so that a
// future cgo export layer (out of scope here) has a thin, handle-based
// surface to wrap.
package embed

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/ore/internal/bytecode"
	"github.com/mna/ore/internal/concurrency"
	"github.com/mna/ore/internal/hostenv"
	"github.com/mna/ore/internal/memo"
	"github.com/mna/ore/internal/native"
	"github.com/mna/ore/internal/parser"
	"github.com/mna/ore/internal/ssa"
	"github.com/mna/ore/internal/vm"
)

// Status is the closed set of outcomes every ABI entry point reports.
type Status int

const (
	Success Status = iota
	ParseError
	RuntimeError
	FfiError
)

func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case ParseError:
		return "ParseError"
	case RuntimeError:
		return "RuntimeError"
	default:
		return "FfiError"
	}
}

type pendingFile struct {
	name string
	src  []byte
}

// Handle is the embedding session's opaque state: staged source, the
// compiled program, and the shared runtime services (native bridge,
// memoization cache, sync table) a CallFunction reuses across calls.
type Handle struct {
	prog     *vm.Program
	natives  *native.Registry
	sync     *concurrency.SyncTable
	memoHits *memo.Cache

	maxThreads int
	libPath    string

	pending []pendingFile
	err     error
}

// Init creates a fresh embedding session, reading LANG_MAX_THREADS and
// LANG_LIB_PATH from the environment (see internal/hostenv) to cap
// system.thread workers and seed the library search path used by
// SetLibPath's default.
func Init() *Handle {
	cfg, _ := hostenv.Load()
	return &Handle{
		prog:       vm.NewProgram(),
		natives:    native.NewRegistry(),
		sync:       concurrency.NewSyncTable(),
		memoHits:   memo.New(),
		maxThreads: cfg.MaxThreads,
		libPath:    cfg.LibPath,
	}
}

// SetLibPath overrides the library search path Compile uses to resolve an
// `import` that names neither a native module nor another staged unit
// (e.g. the CLI's -l/--lib flag overriding LANG_LIB_PATH). Called before
// Compile; a no-op if path is empty.
func (h *Handle) SetLibPath(path string) {
	if path != "" {
		h.libPath = path
	}
}

// AddFile stages a source file for the next Compile call. name is used,
// minus its extension, as the compiled unit's short name (and so the
// target of `this` references within it).
func (h *Handle) AddFile(name string, src []byte) Status {
	h.pending = append(h.pending, pendingFile{name: name, src: src})
	return Success
}

// Compile parses and lowers every staged file into h's Program, in the
// order they were added. It stops at the first failing file; Err reports
// the accumulated error afterward.
//
// An `import` is valid if its source names a native module, another unit
// staged in this same Compile call or already present in h.prog, or a file
// of that name under h.libPath — anything else fails lowering with
// parser.NotFoundLibrary.
func (h *Handle) Compile() Status {
	units := make(map[string]bool, len(h.prog.Units())+len(h.pending))
	for _, name := range h.prog.Units() {
		units[name] = true
	}
	for _, f := range h.pending {
		units[unitName(f.name)] = true
	}
	libs := &libraryLookup{natives: h.natives, units: units, dir: h.libPath}

	for _, f := range h.pending {
		root, err := parser.Parse(f.src, f.name)
		if err != nil {
			h.err = err
			return ParseError
		}
		unitName := unitName(f.name)
		code, _, err := ssa.Lower(root, unitName, h.natives, libs)
		if err != nil {
			h.err = err
			return ParseError
		}
		h.prog.Add(bytecode.Emit(code, unitName))
	}
	h.pending = nil
	return Success
}

// libraryLookup implements ssa.LibraryLookup over the native registry, the
// set of units known to this embedding session, and a filesystem fallback:
// a source with no native module or sibling unit is still valid if dir
// (the library search path) contains a same-named .ore file.
type libraryLookup struct {
	natives *native.Registry
	units   map[string]bool
	dir     string
}

func (l *libraryLookup) HasLibrary(name string) bool {
	if l.units[name] {
		return true
	}
	if l.natives != nil && l.natives.HasModule(name) {
		return true
	}
	if l.dir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(l.dir, name+".ore"))
	return err == nil
}

// InitializeExecutor runs every compiled unit's root-level statements once,
// in the order they were added, and returns Success iff all of them ran
// without a runtime fault. ctx's cancellation (e.g. the CLI's
// mainer.CancelOnSignal) requests cooperative exit of any in-flight
// system.thread workers.
func (h *Handle) InitializeExecutor(ctx context.Context) Status {
	for _, name := range h.prog.Units() {
		threads := concurrency.NewThreadManager(h.maxThreads)
		stop := watchContext(ctx, threads)
		ex := vm.NewExecutor(h.prog, h.natives, h.sync, threads, h.memoHits)
		err := ex.RunRoot(name)
		threads.Wait()
		close(stop)
		if err != nil {
			h.err = err
			return RuntimeError
		}
	}
	return Success
}

// CallFunction calls unit/function with args to completion, spawning a
// fresh scoped worker pool bounded to this one call (so any system.thread
// workers it starts are joined before returning). See InitializeExecutor
// for ctx's role.
func (h *Handle) CallFunction(ctx context.Context, unit, function string, args []bytecode.Value) (bytecode.Value, Status) {
	threads := concurrency.NewThreadManager(h.maxThreads)
	stop := watchContext(ctx, threads)
	ex := vm.NewExecutor(h.prog, h.natives, h.sync, threads, h.memoHits)
	v, err := ex.Call(unit, function, args)
	threads.Wait()
	close(stop)
	if err != nil {
		h.err = err
		return bytecode.Null(), RuntimeError
	}
	return v, Success
}

// watchContext requests threads' cooperative exit as soon as ctx is done,
// until the returned channel is closed.
func watchContext(ctx context.Context, threads *concurrency.ThreadManager) chan struct{} {
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			threads.RequestExit()
		case <-stop:
		}
	}()
	return stop
}

// Err returns the most recent compile or runtime error, or nil.
func (h *Handle) Err() error { return h.err }

// Free releases h's state. The handle must not be used afterward.
func (h *Handle) Free() {
	h.prog = nil
	h.natives = nil
	h.sync = nil
	h.memoHits = nil
	h.pending = nil
}

func unitName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
