package stacklang

import (
	"os"
	"path/filepath"
)

// Program owns the resolved instruction list for one translation unit
// (a source file plus everything it transitively includes) and the symbol
// table macro/proc/memory definitions are registered into as they are
// parsed.
type Program struct {
	Instructions []*Instr
	Symbols      map[string]*Symbol
	Globals      map[string]*Symbol

	path     string
	includes []string

	position   int
	letDepth   int
	inPreproc  int
	flowStack  []flowFrame
	expandPrev *Instr

	lex *Lexer
}

// flowFrame is one entry on the flow resolver's open-block stack.
type flowFrame struct {
	top  *Instr
	flow *FlowInfo
}

// NewProgram prepares an empty program rooted at path, with its include
// search path set to [dir(path), cwd, ...extraIncludes]. A directory
// holding the standard library of the toolchain itself would be appended
// here too, the way the reference implementation appends its own package
// directory; this toolchain has no such bundled core library, so the
// three-entry precedence collapses to dir(path), cwd, then user includes.
func NewProgram(path string, extraIncludes []string) *Program {
	cwd, _ := os.Getwd()
	p := &Program{
		Symbols:  make(map[string]*Symbol),
		Globals:  make(map[string]*Symbol),
		path:     path,
		includes: append([]string{filepath.Dir(path), cwd}, extraIncludes...),
	}
	return p
}

// ParseFile lexes and resolves filename (plus anything it includes) into a
// fully-formed Program: macro/proc/memory definitions collapsed into the
// symbol table, flow constructs linked, positions finalized.
func ParseFile(filename string, extraIncludes []string) (*Program, error) {
	lex, err := NewLexer(filename)
	if err != nil {
		return nil, FileError{Path: filename, Cause: err}
	}
	p := NewProgram(filename, extraIncludes)
	if err := p.parse(lex); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseString is ParseFile's in-memory counterpart, used by tests and by
// callers that already hold source text.
func ParseString(filename, content string, extraIncludes []string) (*Program, error) {
	lex := NewLexerFromString(filename, content)
	p := NewProgram(filename, extraIncludes)
	if err := p.parse(lex); err != nil {
		return nil, err
	}
	return p, nil
}

// matchWord resolves a WORD lexical token against the symbol table: a
// memory name expands to its OpPushMemory instruction, a proc name expands
// to a CALL, a macro name expands to a LABEL followed by a fresh copy of
// its body (so each call site gets its own Instr values and can carry its
// own SourceInfo chain back to the expansion point). Anything else is a
// plain OpWord, resolved later by the type checker or engine as a local
// binding.
func (p *Program) matchWord(t LexToken) []*Instr {
	if sym, ok := p.Symbols[t.Text]; ok {
		switch sym.Kind {
		case OpMemory:
			return []*Instr{{Kind: OpPushMemory, StrVal: t.Text, Info: t.Info}}
		case OpProc:
			return []*Instr{{Kind: OpCall, StrVal: t.Text, Info: t.Info}}
		case OpMacro:
			out := make([]*Instr, 0, len(sym.Data)+1)
			out = append(out, &Instr{Kind: OpLabel, StrVal: t.Text, Info: t.Info})
			for _, src := range sym.Data {
				cp := *src
				cp.Info = &SourceInfo{
					File: src.Info.File, Start: src.Info.Start, End: src.Info.End,
					Line: src.Info.Line, ColS: src.Info.ColS, ColE: src.Info.ColE,
					Raw: src.Info.Raw, Parent: t.Info,
				}
				out = append(out, &cp)
			}
			return out
		}
	}
	return []*Instr{{Kind: OpWord, StrVal: t.Text, Info: t.Info}}
}

// matchToken resolves one lexical token into zero or more resolved
// instructions. It returns (nil, nil) for tokens that produce no
// instruction at all: a newline (purely a line separator) or a "//" that
// starts a comment (the lexer has already discarded the comment body, so
// there is nothing left on the line to skip the way the pipeline this is
// grounded on has to).
func (p *Program) matchToken(t LexToken) ([]*Instr, error) {
	switch t.Kind {
	case LexNumber:
		v, err := parseIntLiteral(t.Text)
		if err != nil {
			return nil, InvalidSyntax{Info: t.Info, Msg: err.Error()}
		}
		return []*Instr{{Kind: OpPush, IntVal: v, Info: t.Info}}, nil
	case LexChar:
		r, err := unescapeChar(t.Text)
		if err != nil {
			return nil, InvalidSyntax{Info: t.Info, Msg: err.Error()}
		}
		return []*Instr{{Kind: OpChar, IntVal: int64(r), Info: t.Info}}, nil
	case LexString:
		return []*Instr{{Kind: OpString, StrVal: unescapeString(t.Text), Info: t.Info}}, nil
	case LexWord:
		if kind, ok := keywords[t.Text]; ok {
			if kind == OpBool {
				return []*Instr{{Kind: OpBool, BoolVal: t.Text == "true", Info: t.Info}}, nil
			}
			return []*Instr{{Kind: kind, Info: t.Info}}, nil
		}
		return p.matchWord(t), nil
	case LexOp:
		if t.Text == "//" {
			return nil, nil
		}
		kind, ok := operands[t.Text]
		if !ok {
			return nil, UnknownToken{Info: t.Info, Msg: "is not a recognized symbol"}
		}
		return []*Instr{{Kind: kind, Info: t.Info}}, nil
	case LexCast:
		typ, ok := StrToType(t.Text)
		if !ok {
			return nil, InvalidType{Info: t.Info, Msg: t.Text + " is not a recognized type"}
		}
		return []*Instr{{Kind: OpCast, TypeVal: typ, Info: t.Info}}, nil
	case LexNewLine:
		return nil, nil
	}
	return nil, UnknownToken{Info: t.Info, Msg: "is not a recognized symbol"}
}

// add appends instr to the instruction list and assigns its running
// position. Splicing code elsewhere (include expansion, macro/proc/memory
// collapse) keeps position in sync by decrementing it for every
// instruction it removes.
func (p *Program) add(instr *Instr) {
	instr.Position = p.position
	p.Instructions = append(p.Instructions, instr)
	p.position++
}

// removeRange deletes instructions [from, to] (inclusive, by Position) and
// keeps the running position counter in sync, mirroring the reference
// implementation's reversed-range pop-and-decrement.
func (p *Program) removeRange(from, to int) {
	for i := to; i >= from; i-- {
		p.Instructions = append(p.Instructions[:i], p.Instructions[i+1:]...)
		p.position--
	}
}

// parse drives the lexer-to-resolved-program pipeline: lex one token, match
// it into zero or more instructions, feed each instruction to the flow
// resolver and the include expander in turn. This is the explicit-function
// replacement for the coroutine pipeline (build_tokens/flow_control/
// expand) it is grounded on: each stage is a plain method call instead of a
// generator one `.send()` away, with the lexer's own Extend acting as the
// buffered queue new include sources are spliced into.
func (p *Program) parse(lex *Lexer) error {
	p.lex = lex
	for {
		t := lex.Next()
		if t.Kind == LexEOF {
			break
		}
		if t.Kind == LexError {
			return UnknownToken{Info: t.Info, Msg: t.Text}
		}
		instrs, err := p.matchToken(t)
		if err != nil {
			return err
		}
		for _, instr := range instrs {
			p.add(instr)
			if err := p.feedFlow(instr); err != nil {
				return err
			}
			if err := p.feedExpand(instr); err != nil {
				return err
			}
		}
	}
	if err := p.finishFlow(); err != nil {
		return err
	}
	for i, instr := range p.Instructions {
		instr.Position = i
	}
	return nil
}

// feedExpand implements the include splice: an OpInclude immediately
// followed by an OpString pops both instructions back out, resolves the
// string against the include search path, and extends the lexer with the
// found file's contents so the rest of the pipeline keeps pulling tokens
// from it before resuming the includer.
func (p *Program) feedExpand(instr *Instr) error {
	prev := p.expandPrev
	defer func() { p.expandPrev = instr }()

	if prev == nil || prev.Kind != OpInclude {
		return nil
	}
	if instr.Kind != OpString {
		return InvalidSyntax{Info: instr.Info, Msg: "`include` requires a string"}
	}

	p.removeRange(len(p.Instructions)-2, len(p.Instructions)-1)
	p.expandPrev = nil

	data, path, err := p.searchInclude(instr.StrVal)
	if err != nil {
		return FileError{Info: instr.Info, Path: instr.StrVal, Cause: err}
	}
	p.lex.Extend(path, data, instr.Info)
	return nil
}

// searchInclude tries instr's include path against each entry of the
// program's include search path in order, returning the first match.
func (p *Program) searchInclude(query string) (content string, path string, err error) {
	for _, dir := range p.includes {
		candidate := filepath.Join(dir, query)
		data, readErr := os.ReadFile(candidate)
		if readErr == nil {
			return string(data), candidate, nil
		}
	}
	return "", "", os.ErrNotExist
}
