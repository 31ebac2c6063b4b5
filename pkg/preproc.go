package stacklang

// parseMacro collapses the instructions between a `macro` and its `end`
// (exclusive of both) into a Symbol the matcher can later expand inline at
// every call site. The first instruction of the body must be the macro's
// name.
func (p *Program) parseMacro(rootPos, endPos int) error {
	body := p.Instructions[rootPos+1 : endPos]
	if len(body) == 0 {
		return InvalidSyntax{Info: p.Instructions[rootPos].Info, Msg: "`macro` requires a name"}
	}
	name := body[0]
	if name.Kind != OpWord {
		return InvalidSyntax{Info: name.Info, Msg: "`macro` name must be a word, not a " + describeKind(name.Kind)}
	}
	if _, exists := p.Symbols[name.StrVal]; exists {
		return SymbolRedefined{Info: name.Info, Name: name.StrVal}
	}
	p.Symbols[name.StrVal] = &Symbol{Kind: OpMacro, Data: append([]*Instr(nil), body[1:]...)}
	return nil
}

// parseMemory collapses `memory NAME ... end` into a global Symbol; memory
// names are also registered in Globals, since unlike a macro or proc a
// memory region needs a single shared backing allocation for the whole
// program regardless of which scope references it.
func (p *Program) parseMemory(rootPos, endPos int) error {
	root := p.Instructions[rootPos]
	body := p.Instructions[rootPos+1 : endPos]
	if len(body) == 0 {
		return InvalidSyntax{Info: root.Info, Msg: "`memory` requires a name"}
	}
	name := body[0]
	if name.Kind != OpWord {
		return InvalidSyntax{Info: name.Info, Msg: "`memory` name must be a word, not a " + describeKind(name.Kind)}
	}
	if _, exists := p.Symbols[name.StrVal]; exists {
		return SymbolRedefined{Info: name.Info, Name: name.StrVal}
	}
	root.Flow.Data = append([]*Instr(nil), body[1:]...)
	sym := &Symbol{Kind: OpMemory, Root: root}
	p.Symbols[name.StrVal] = sym
	p.Globals[name.StrVal] = sym
	return nil
}

// procedureFactory pairs up a proc's declared argument tokens two at a
// time (name, CAST) and parses its declared return types, mirroring the
// reference implementation's itertools.batched(args, 2) walk.
func procedureFactory(root *Instr, name *Instr, args []*Instr, out []*Instr) (*Procedure, error) {
	if len(args)%2 != 0 {
		return nil, InvalidSyntax{Info: root.Info, Msg: "invalid procedure argument syntax"}
	}
	pargs := make([]ProcArg, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		v, t := args[i], args[i+1]
		if v.Kind != OpWord {
			return nil, InvalidSyntax{Info: v.Info, Msg: "invalid procedure argument syntax"}
		}
		if t.Kind != OpCast {
			return nil, InvalidSyntax{Info: t.Info, Msg: "invalid procedure argument syntax"}
		}
		pargs = append(pargs, ProcArg{Name: v.StrVal, Type: t.TypeVal})
	}

	outTypes := make([]Type, 0, len(out))
	for _, tok := range out {
		if tok.Kind != OpCast {
			return nil, InvalidSyntax{Info: tok.Info, Msg: "invalid procedure return syntax"}
		}
		outTypes = append(outTypes, tok.TypeVal)
	}

	return &Procedure{
		Root: root,
		Name: name.StrVal,
		Args: pargs,
		Out:  outTypes,
	}, nil
}

// parseProc collapses `proc name [args] in [out] out body end` into a
// Procedure attached to root, registers it in the symbol table under name,
// and rewrites any self-recursive WORD(name) occurrence in the body into a
// CALL(name), since by the time the body is checked the proc's own name
// has not yet been registered as a symbol and would otherwise resolve to a
// bare local instead of a recursive call.
func (p *Program) parseProc(root, end *Instr) error {
	inTok := root.Flow.Next
	var outTok *Instr
	if inTok != nil {
		outTok = inTok.Flow.Next
	}

	argsStart := root.Position + 1
	argsEnd := end.Position
	var args, out []*Instr
	if inTok != nil {
		argsEnd = inTok.Position
		args = p.Instructions[argsStart:argsEnd]
	}
	bodyStart := argsEnd + 1
	bodyEnd := end.Position
	if outTok != nil {
		bodyStart = outTok.Position + 1
		out = p.Instructions[argsEnd+1 : outTok.Position]
	}
	body := p.Instructions[bodyStart:bodyEnd]

	if len(args) < 1 {
		return InvalidSyntax{Info: root.Info, Msg: "`proc` requires a name"}
	}
	nameTok := args[0]
	if nameTok.Kind != OpWord {
		return InvalidSyntax{Info: nameTok.Info, Msg: "`proc` name must be a word, not a " + describeKind(nameTok.Kind)}
	}
	if _, exists := p.Symbols[nameTok.StrVal]; exists {
		return SymbolRedefined{Info: nameTok.Info, Name: nameTok.StrVal}
	}

	proc, err := procedureFactory(root, nameTok, args[1:], out)
	if err != nil {
		return err
	}
	proc.Body = body
	root.Proc = proc

	// Only the header (args/in/out tokens) is spliced out. The body and
	// the closing `end` stay in place as physical instructions: a CALL
	// jumps straight to the (now header-less) instruction right after
	// root, and `end` is where the engine returns to the caller, so the
	// body must remain executable in situ rather than move into a
	// separate table the way a macro body does.
	if bodyStart > root.Position+1 {
		p.removeRange(root.Position+1, bodyStart-1)
	}

	p.Symbols[proc.Name] = &Symbol{Kind: OpProc, Root: root}

	for _, e := range proc.Body {
		if e.Kind == OpWord && e.StrVal == proc.Name {
			e.Kind = OpCall
		}
	}
	return nil
}
