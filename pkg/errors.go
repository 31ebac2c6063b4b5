package stacklang

import "fmt"

// UnknownToken is raised by the lexer when no state can make sense of the
// input at a position (an unterminated string, a bad escape, a cast marker
// missing its closing '*').
type UnknownToken struct {
	Info *SourceInfo
	Msg  string
}

func (e UnknownToken) Error() string {
	return fmt.Sprintf("%s: unknown token: %s", e.Info, e.Msg)
}

// InvalidSyntax covers match/expand, flow-resolver and preprocessing
// failures: a keyword used where the grammar does not allow it, an
// `include` not followed by a string, a block left unclosed or a stray
// closer, a malformed proc header, and similar structural mistakes that
// are detected before type checking ever runs.
type InvalidSyntax struct {
	Info *SourceInfo
	Msg  string
}

func (e InvalidSyntax) Error() string {
	return fmt.Sprintf("%s: invalid syntax: %s", e.Info, e.Msg)
}

// InvalidType is raised by the type checker when an instruction's operand
// types don't match any of its overload cases.
type InvalidType struct {
	Info *SourceInfo
	Msg  string
}

func (e InvalidType) Error() string {
	return fmt.Sprintf("%s: invalid type: %s", e.Info, e.Msg)
}

// NotEnoughTokens is raised when an instruction needs more operands than
// the abstract stack currently holds.
type NotEnoughTokens struct {
	Info     *SourceInfo
	Expected int
	Got      int
}

func (e NotEnoughTokens) Error() string {
	return fmt.Sprintf("%s: not enough tokens: expected %d, got %d", e.Info, e.Expected, e.Got)
}

// SymbolRedefined is raised when a macro/proc/memory/let/with name collides
// with an existing symbol in scope.
type SymbolRedefined struct {
	Info     *SourceInfo
	Name     string
	Original *SourceInfo
}

func (e SymbolRedefined) Error() string {
	return fmt.Sprintf("%s: %q is already defined at %s", e.Info, e.Name, e.Original)
}

// FileError wraps an os-level failure (missing include, unreadable source
// file) with the SourceInfo of the token that triggered the read.
type FileError struct {
	Info  *SourceInfo
	Path  string
	Cause error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: cannot read %q: %v", e.Info, e.Path, e.Cause)
}

func (e FileError) Unwrap() error { return e.Cause }

// MissingToken is raised by the type checker when one branch of a
// reconciled block leaves fewer values on the stack than its sibling
// (Cause names which block comparison caught it). An opener left without
// its closer at EOF is reported by the flow resolver as InvalidSyntax.
type MissingToken struct {
	Info     *SourceInfo
	Opener   string
	Expected string
	Cause    error
}

func (e MissingToken) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Info, e.Opener, e.Expected, e.Cause)
	}
	return fmt.Sprintf("%s: %s has no matching %s", e.Info, e.Opener, e.Expected)
}

func (e MissingToken) Unwrap() error { return e.Cause }

// AddedToken is raised by the type checker when one branch of a reconciled
// block leaves more values on the stack than its sibling. A stray `end`,
// `do` or `in` is reported by the flow resolver as InvalidSyntax.
type AddedToken struct {
	Info  *SourceInfo
	Text  string
	Cause error
}

func (e AddedToken) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Info, e.Text, e.Cause)
	}
	return fmt.Sprintf("%s: %s has nothing to close", e.Info, e.Text)
}

func (e AddedToken) Unwrap() error { return e.Cause }

// StackNotEmpty is raised at the end of type checking when the abstract
// stack was not fully drained.
type StackNotEmpty struct {
	Info  *SourceInfo
	Left  []Type
}

func (e StackNotEmpty) Error() string {
	return fmt.Sprintf("%s: stack not empty at end of program: %v", e.Info, e.Left)
}

// ProcedureError wraps a failure that occurred while checking or resolving
// a specific named procedure, carrying the procedure name for context. It
// also carries a memory region's name when sizing that region fails.
type ProcedureError struct {
	Info  *SourceInfo
	Name  string
	Cause error
}

func (e ProcedureError) Error() string {
	return fmt.Sprintf("%s: in procedure %q: %v", e.Info, e.Name, e.Cause)
}

func (e ProcedureError) Unwrap() error { return e.Cause }

// IfException, ElifException, ElseException and WhileException wrap a
// type-checking failure with the branch it occurred in, so branch
// reconciliation failures point at the branch that diverged rather than
// just the offending instruction.
type IfException struct {
	Info  *SourceInfo
	Cause error
}

func (e IfException) Error() string { return fmt.Sprintf("%s: in if-branch: %v", e.Info, e.Cause) }
func (e IfException) Unwrap() error { return e.Cause }

type ElifException struct {
	Info  *SourceInfo
	Cause error
}

func (e ElifException) Error() string {
	return fmt.Sprintf("%s: in elif-branch: %v", e.Info, e.Cause)
}
func (e ElifException) Unwrap() error { return e.Cause }

type ElseException struct {
	Info  *SourceInfo
	Cause error
}

func (e ElseException) Error() string {
	return fmt.Sprintf("%s: in else-branch: %v", e.Info, e.Cause)
}
func (e ElseException) Unwrap() error { return e.Cause }

type WhileException struct {
	Info  *SourceInfo
	Cause error
}

func (e WhileException) Error() string {
	return fmt.Sprintf("%s: in while-loop: %v", e.Info, e.Cause)
}
func (e WhileException) Unwrap() error { return e.Cause }

// Reporting is a generic wrapper the type checker uses to add context to
// an error: a primary span, a human message and an optional chained cause.
// Other errors are returned without it. Diagnostics walks the Unwrap chain
// newest first to render a full trace.
type Reporting struct {
	Info  *SourceInfo
	Msg   string
	Cause error
}

func (e Reporting) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Info, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %v", e.Info, e.Msg, e.Cause)
}

func (e Reporting) Unwrap() error { return e.Cause }

// Report wraps cause (which may be nil) in a Reporting at info with msg.
func Report(info *SourceInfo, msg string, cause error) error {
	return Reporting{Info: info, Msg: msg, Cause: cause}
}
