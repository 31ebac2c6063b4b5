package stacklang

// feedFlow is the flow resolver: it balances every block-structured
// construct (if/elif/else/end, while/do/end, let|with/do/end,
// proc/in/out/end, macro/end, memory/end) against a stack of open blocks,
// and links each opener's FlowInfo to its siblings and closer as they are
// discovered. Translated case-for-case from the coroutine this pipeline
// stage is grounded on, with the `match (prev, token)` dispatch becoming a
// plain switch over instr.Kind and the open-block stack now a Go slice
// instead of a generator-local list.
func (p *Program) feedFlow(instr *Instr) error {
	switch instr.Kind {
	case OpIf, OpWhile, OpLet, OpWith:
		instr.Flow = &FlowInfo{Root: instr}
		p.pushFlow(instr, instr.Flow)
		if instr.Kind == OpLet || instr.Kind == OpWith {
			p.letDepth++
		}
		return nil

	case OpElif:
		top, flow, ok := p.popFlow()
		if !ok || (top.Kind != OpIf && top.Kind != OpElif) {
			return InvalidSyntax{Info: instr.Info, Msg: "`elif` must be preceded by `if` or `elif`"}
		}
		instr.Flow = &FlowInfo{Root: flow.Root, Prev: top}
		flow.Next = instr
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpElse:
		top, flow, ok := p.popFlow()
		if !ok || (top.Kind != OpIf && top.Kind != OpElif) {
			return InvalidSyntax{Info: instr.Info, Msg: "`else` must be preceded by `if` or `elif`"}
		}
		instr.Flow = &FlowInfo{Root: flow.Root, Prev: top}
		flow.Next = instr
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpDo:
		top, flow, ok := p.popFlow()
		if !ok || !isDoOpener(top.Kind) {
			return InvalidSyntax{Info: instr.Info, Msg: "`do` must be preceded by an `elif`, `while`, `let` or `with`"}
		}
		instr.Flow = flow
		if top.Kind == OpLet || top.Kind == OpWith {
			flow.Next = instr
		}
		p.pushFlow(top, flow)
		return nil

	case OpMacro:
		instr.Flow = &FlowInfo{Root: instr}
		if p.inPreproc != 0 {
			return InvalidSyntax{Info: instr.Info, Msg: "nested macro definition is not allowed"}
		}
		p.inPreproc = 1
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpProc:
		if instr.Flow != nil {
			return nil
		}
		instr.Flow = &FlowInfo{Root: instr}
		if p.inPreproc != 0 {
			return InvalidSyntax{Info: instr.Info, Msg: "nested proc definition is not allowed"}
		}
		p.inPreproc = 1
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpMemory:
		if instr.Flow != nil {
			return nil
		}
		instr.Flow = &FlowInfo{Root: instr}
		if p.inPreproc != 0 {
			return InvalidSyntax{Info: instr.Info, Msg: "nested memory definition is not allowed"}
		}
		p.inPreproc = 1
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpIn:
		top, flow, ok := p.popFlow()
		if !ok || top.Kind != OpProc {
			return InvalidSyntax{Info: instr.Info, Msg: "`in` must be preceded by `proc`"}
		}
		p.inPreproc = 0
		instr.Flow = &FlowInfo{Root: flow.Root, Prev: top}
		flow.Next = instr
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpOut:
		top, flow, ok := p.popFlow()
		if !ok || (top.Kind != OpProc && top.Kind != OpIn) {
			return InvalidSyntax{Info: instr.Info, Msg: "`out` must be preceded by `proc` or `in`"}
		}
		p.inPreproc = 0
		instr.Flow = &FlowInfo{Root: flow.Root, Prev: top}
		flow.Next = instr
		p.pushFlow(instr, instr.Flow)
		return nil

	case OpEnd:
		top, flow, ok := p.popFlow()
		if !ok {
			return InvalidSyntax{Info: instr.Info, Msg: "`end` token without a matching block start"}
		}
		instr.Flow = &FlowInfo{Root: flow.Root, Prev: top}

		switch {
		case top.Kind == OpMacro:
			if err := p.parseMacro(flow.Root.Position, instr.Position); err != nil {
				return err
			}
			p.removeRange(top.Position, instr.Position)
			p.inPreproc = 0

		case top.Kind == OpProc || top.Kind == OpIn || top.Kind == OpOut:
			root := top.Flow.Root
			flow = root.Flow
			flow.End = instr
			if flow.Next == nil {
				return InvalidSyntax{Info: root.Info, Msg: "`proc` is missing `in`"}
			}
			if err := p.parseProc(root, instr); err != nil {
				return err
			}
			p.inPreproc = 0

		case top.Kind == OpMemory:
			if err := p.parseMemory(flow.Root.Position, instr.Position); err != nil {
				return err
			}
			p.removeRange(top.Position, instr.Position)
			p.inPreproc = 0

		case top.Kind == OpLet || top.Kind == OpWith:
			p.letDepth--
			if p.inPreproc != 0 {
				return nil
			}
			if flow.Next == nil {
				return InvalidSyntax{Info: top.Info, Msg: "missing `do` before `end`"}
			}
			words := p.Instructions[flow.Root.Position+1 : flow.Next.Position]
			top.Flow.Data = append([]*Instr(nil), words...)
			p.removeRange(top.Position+1, flow.Next.Position-1)

		default:
			node := instr
			haselse := false
			for node != nil {
				if node.Kind == OpElse {
					haselse = true
				}
				node.Flow.HasElse = haselse
				node.Flow.End = instr
				node = node.Flow.Prev
			}
		}
		return nil
	}
	return nil
}

// finishFlow reports any block opener that never found its closing `end`.
func (p *Program) finishFlow() error {
	if len(p.flowStack) > 0 {
		top := p.flowStack[len(p.flowStack)-1]
		return InvalidSyntax{Info: top.top.Info, Msg: "is missing an `end`"}
	}
	return nil
}

func (p *Program) pushFlow(top *Instr, flow *FlowInfo) {
	p.flowStack = append(p.flowStack, flowFrame{top: top, flow: flow})
}

func (p *Program) popFlow() (*Instr, *FlowInfo, bool) {
	if len(p.flowStack) == 0 {
		return nil, nil, false
	}
	f := p.flowStack[len(p.flowStack)-1]
	p.flowStack = p.flowStack[:len(p.flowStack)-1]
	return f.top, f.flow, true
}

func isDoOpener(k InstrKind) bool {
	switch k {
	case OpElif, OpWhile, OpLet, OpWith:
		return true
	default:
		return false
	}
}
