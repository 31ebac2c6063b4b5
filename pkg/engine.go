package stacklang

import "errors"

// Engine is what actually executes (or emits code for) a resolved,
// type-checked Program. Before runs once ahead of the instruction loop,
// Step executes a single instruction and returns how many extra
// instructions to skip (used by branch/loop instructions to jump), and
// Close runs once after the loop ends, however it ended.
type Engine interface {
	Before(p *Program) error
	Step(instr *Instr) (skip int, err error)
	Close(p *Program) error
}

// exitSignal is how an Engine asks Program.Run to stop early (an `exit`
// instruction, or a runtime fault the engine treats as terminal) without
// that being a parse or type error. Code is the process exit code to
// surface.
type exitSignal struct {
	Code int
}

func (e exitSignal) Error() string { return "program exited" }

// ExitEngine is the sentinel value an Engine's Step implementation returns
// to unwind Program.Run cleanly with the given exit code.
func ExitEngine(code int) error { return exitSignal{Code: code} }

// Run drives engine over p's fully resolved instruction list: Before,
// then Step once per instruction (advancing the instruction pointer by
// 1+skip each time), then Close. An exitSignal from Step ends the loop
// without propagating as an error.
func (p *Program) Run(engine Engine) (int, error) {
	if len(p.Instructions) == 0 {
		return 0, InvalidSyntax{Msg: "empty program"}
	}
	if err := engine.Before(p); err != nil {
		return -1, err
	}

	pointer := 0
	for pointer < len(p.Instructions) {
		skip, err := engine.Step(p.Instructions[pointer])
		var exit exitSignal
		if errors.As(err, &exit) {
			if cerr := engine.Close(p); cerr != nil {
				return -1, cerr
			}
			return exit.Code, nil
		}
		if err != nil {
			return -1, err
		}
		pointer += skip + 1
	}

	if err := engine.Close(p); err != nil {
		return -1, err
	}
	return 0, nil
}
