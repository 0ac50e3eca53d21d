package exercise

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
)

// FinishedMessage is shown when code runs cleanly but prints nothing and
// yields no value.
const FinishedMessage = "✓ Execution finished."

// ErrForbiddenImport is returned when code imports a package outside the
// sandbox allowlist.
var ErrForbiddenImport = errors.New("import not allowed in sandbox")

// DefaultAllowlist is the set of standard library packages learner code may
// import. Nothing here reaches the filesystem, network or process table.
var DefaultAllowlist = []string{
	"bytes",
	"container/list",
	"encoding/base64",
	"encoding/json",
	"errors",
	"fmt",
	"maps",
	"math",
	"regexp",
	"slices",
	"sort",
	"strconv",
	"strings",
	"time",
	"unicode",
	"unicode/utf8",
}

// Interpreter executes learner code and returns its printable result.
type Interpreter interface {
	Run(ctx context.Context, source string) (string, error)
}

// Sandbox runs Go snippets in an embedded yaegi interpreter restricted to an
// allowlist of standard library packages.
//
// Snippets share one interpreter, created on first use, so declarations from
// earlier runs stay visible to later ones. Source that starts with a package
// clause is treated as a whole program and runs in a fresh interpreter.
// Runs are serialized. No timeout is applied; cancel ctx to stop a run.
type Sandbox struct {
	allowed map[string]bool
	logger  *zap.Logger

	once    sync.Once
	initErr error

	mu       sync.Mutex
	interp   *interp.Interpreter
	out      *syncBuffer
	imported map[importSpec]bool
}

// SandboxOption configures a Sandbox.
type SandboxOption func(*Sandbox)

// WithAllowlist replaces the importable package set.
func WithAllowlist(pkgs []string) SandboxOption {
	return func(s *Sandbox) {
		s.allowed = make(map[string]bool, len(pkgs))
		for _, p := range pkgs {
			s.allowed[p] = true
		}
	}
}

// WithSandboxLogger sets the logger.
func WithSandboxLogger(l *zap.Logger) SandboxOption {
	return func(s *Sandbox) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSandbox returns a Sandbox. The interpreter itself is not built until
// the first Run.
func NewSandbox(opts ...SandboxOption) *Sandbox {
	s := &Sandbox{logger: zap.NewNop()}
	WithAllowlist(DefaultAllowlist)(s)
	for _, o := range opts {
		o(s)
	}
	return s
}

// Allowed returns the importable packages in sorted order.
func (s *Sandbox) Allowed() []string {
	out := make([]string, 0, len(s.allowed))
	for p := range s.allowed {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Run evaluates source and returns what it printed, or failing that the
// value of its final expression, or FinishedMessage.
func (s *Sandbox) Run(ctx context.Context, source string) (string, error) {
	src := scanImports(source)

	var forbidden []string
	for _, spec := range src.imports {
		if !s.allowed[spec.path] {
			forbidden = append(forbidden, spec.path)
		}
	}
	if len(forbidden) > 0 {
		return "", fmt.Errorf("%w: %s", ErrForbiddenImport, strings.Join(forbidden, ", "))
	}

	if src.program {
		return s.runProgram(ctx, source)
	}

	s.once.Do(s.init)
	if s.initErr != nil {
		return "", s.initErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, spec := range src.imports {
		if spec.name == "_" || s.imported[spec] {
			continue
		}
		if _, err := s.interp.EvalWithContext(ctx, spec.String()); err != nil {
			return "", err
		}
		s.imported[spec] = true
	}

	if strings.TrimSpace(src.body) == "" {
		return FinishedMessage, nil
	}

	s.out.Reset()
	v, err := s.interp.EvalWithContext(ctx, src.body)
	if err != nil {
		return "", err
	}
	return render(s.out.String(), v), nil
}

func (s *Sandbox) init() {
	s.logger.Debug("starting sandbox interpreter", zap.Int("packages", len(s.allowed)))

	s.out = &syncBuffer{}
	i, err := s.newInterpreter(s.out)
	if err != nil {
		s.initErr = err
		return
	}

	// Preload every allowed package under its own name so snippets can call
	// fmt.Println without an import line. Packages whose names clash are
	// left for explicit imports.
	byName := map[string][]string{}
	for key := range s.exports() {
		path, name := splitExportKey(key)
		byName[name] = append(byName[name], path)
	}
	s.imported = map[importSpec]bool{}
	for _, paths := range byName {
		if len(paths) != 1 {
			continue
		}
		spec := importSpec{path: paths[0]}
		if _, err := i.Eval(spec.String()); err != nil {
			s.logger.Debug("sandbox preload failed", zap.String("package", spec.path), zap.Error(err))
			continue
		}
		s.imported[spec] = true
	}
	s.interp = i
}

func (s *Sandbox) runProgram(ctx context.Context, source string) (string, error) {
	out := &syncBuffer{}
	i, err := s.newInterpreter(out)
	if err != nil {
		return "", err
	}
	v, err := i.EvalWithContext(ctx, source)
	if err != nil {
		return "", err
	}
	return render(out.String(), v), nil
}

func (s *Sandbox) newInterpreter(out *syncBuffer) (*interp.Interpreter, error) {
	i := interp.New(interp.Options{Stdout: out, Stderr: out})
	if err := i.Use(s.exports()); err != nil {
		return nil, fmt.Errorf("load sandbox symbols: %w", err)
	}
	return i, nil
}

// exports returns the allowed subset of the interpreter's stdlib symbols.
func (s *Sandbox) exports() interp.Exports {
	out := interp.Exports{}
	for key, syms := range stdlib.Symbols {
		if path, _ := splitExportKey(key); s.allowed[path] {
			out[key] = syms
		}
	}
	return out
}

// splitExportKey splits a yaegi symbol table key ("encoding/json/json").
func splitExportKey(key string) (path, name string) {
	i := strings.LastIndex(key, "/")
	if i < 0 {
		return key, key
	}
	return key[:i], key[i+1:]
}

func render(printed string, v reflect.Value) string {
	if out := strings.TrimRight(printed, "\n"); out != "" {
		return out
	}
	if text, ok := valueText(v); ok {
		return text
	}
	return FinishedMessage
}

func valueText(v reflect.Value) (string, bool) {
	if !v.IsValid() {
		return "", false
	}
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		if v.IsNil() {
			return "", false
		}
	}
	if !v.CanInterface() {
		return "", false
	}
	return fmt.Sprint(v.Interface()), true
}

type importSpec struct {
	name string
	path string
}

func (s importSpec) String() string {
	if s.name == "" {
		return "import " + strconv.Quote(s.path)
	}
	return "import " + s.name + " " + strconv.Quote(s.path)
}

type scannedSource struct {
	imports []importSpec
	// body is the source with import declarations blanked out, offsets kept.
	body    string
	program bool
}

// scanImports tokenizes source and collects its import declarations. It does
// not need the source to be a valid file; snippets are bare statements.
func scanImports(source string) scannedSource {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(source))
	var sc scanner.Scanner
	sc.Init(file, []byte(source), nil, 0)

	res := scannedSource{}
	body := []byte(source)
	first := true
	for {
		pos, tok, _ := sc.Scan()
		if tok == token.EOF {
			break
		}
		if first {
			res.program = tok == token.PACKAGE
			first = false
		}
		if tok != token.IMPORT {
			continue
		}

		start := file.Offset(pos)
		end := start + len("import")
		pos, tok, lit := sc.Scan()
		grouped := tok == token.LPAREN
		if grouped {
			end = file.Offset(pos) + 1
			pos, tok, lit = sc.Scan()
		}
		for tok != token.EOF {
			if grouped && tok == token.RPAREN {
				end = file.Offset(pos) + 1
				break
			}
			var spec importSpec
			switch tok {
			case token.IDENT:
				spec.name = lit
				pos, tok, lit = sc.Scan()
			case token.PERIOD:
				spec.name = "."
				pos, tok, lit = sc.Scan()
			}
			if tok != token.STRING {
				break
			}
			path, err := strconv.Unquote(lit)
			if err != nil {
				break
			}
			spec.path = path
			res.imports = append(res.imports, spec)
			end = file.Offset(pos) + len(lit)
			if !grouped {
				break
			}
			pos, tok, lit = sc.Scan()
			for tok == token.SEMICOLON {
				pos, tok, lit = sc.Scan()
			}
		}
		blank(body, start, end)
	}
	res.body = string(body)
	return res
}

// blank overwrites b[start:end] with spaces, keeping newlines.
func blank(b []byte, start, end int) {
	for i := start; i < end && i < len(b); i++ {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}
