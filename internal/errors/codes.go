// Package errors provides centralized diagnostic code definitions for mesh.
// Every diagnostic the checker and backend raise carries one of these codes,
// grouped by phase, so tooling can filter and triage without string-matching
// on messages (spec §6.4's diagnostic kind list).
package errors

// Diagnostic code constants, organized by phase.
const (
	// ============================================================================
	// Type checking errors (TC###)
	// ============================================================================

	// TC001 indicates two types could not be unified.
	TC001 = "TC001" // Mismatch
	// TC002 indicates a function or constructor was applied to the wrong
	// number of arguments.
	TC002 = "TC002" // ArityMismatch
	// TC003 indicates a name has no binding in scope.
	TC003 = "TC003" // UnboundVariable
	// TC004 indicates a struct literal, field access, or update referenced
	// a field its type doesn't declare.
	TC004 = "TC004" // UnknownField / NoSuchField
	// TC005 indicates unification would create a cyclic type.
	TC005 = "TC005" // OccursCheck
	// TC006 indicates a bare variant constructor names a variant no
	// registered sum type declares.
	TC006 = "TC006" // UnknownVariant

	// ============================================================================
	// Trait and method resolution errors (TR###)
	// ============================================================================

	// TR001 indicates no method with the given name resolves on the
	// receiver's type through any visible trait impl.
	TR001 = "TR001" // NoSuchMethod
	// TR002 indicates more than one trait in scope declares the method
	// name with an applicable impl for the receiver.
	TR002 = "TR002" // AmbiguousMethod
	// TR003 indicates a where-clause constraint has no satisfying impl.
	TR003 = "TR003" // TraitNotSatisfied
	// TR004 indicates a second impl of the same trait for the same head
	// constructor was registered.
	TR004 = "TR004" // CoherenceViolation

	// ============================================================================
	// Pattern matching errors (PAT###)
	// ============================================================================

	// PAT001 indicates a match/case does not cover every constructor of
	// the scrutinee's type.
	PAT001 = "PAT001" // NonExhaustiveMatch
	// PAT002 indicates an arm can never be reached because earlier arms
	// already cover every value it would match.
	PAT002 = "PAT002" // RedundantArm
	// PAT003 indicates a guard expression does not type as Bool.
	PAT003 = "PAT003" // InvalidGuardExpression
	// PAT004 indicates the two sides of an or-pattern bind different
	// variable sets.
	PAT004 = "PAT004" // OrPatternBindingMismatch

	// ============================================================================
	// Multi-clause function grouping errors (CLS###)
	// ============================================================================

	// CLS001 indicates clauses for the same function name and arity are
	// separated by an unrelated declaration.
	CLS001 = "CLS001" // NonConsecutiveClauses
	// CLS002 indicates a type or where-clause annotation appeared on a
	// clause after the group's first.
	CLS002 = "CLS002" // NonFirstClauseAnnotation
	// CLS003 indicates a catch-all clause is followed by more clauses.
	CLS003 = "CLS003" // CatchAllNotLast

	// ============================================================================
	// Deriving errors (DER###)
	// ============================================================================

	// DER001 indicates a deriving clause names a trait mesh cannot
	// auto-derive.
	DER001 = "DER001" // UnsupportedDerive
	// DER002 indicates a requested derive is missing a prerequisite
	// derive (Ord requires Eq, and so on).
	DER002 = "DER002" // MissingDerivePrerequisite
	// DER003 indicates a field's type has no Serialize impl, so
	// Serialize cannot be derived for the enclosing type.
	DER003 = "DER003" // NonSerializableField
	// DER004 indicates a field's type cannot be represented in a derived
	// Map/FromMap conversion.
	DER004 = "DER004" // NonMappableField

	// ============================================================================
	// Module import errors (IMP###)
	// ============================================================================

	// IMP001 indicates `import M` or `from M import ...` names a module
	// the resolver cannot find.
	IMP001 = "IMP001" // ImportModuleNotFound
	// IMP002 indicates `from M import x` names an item M does not
	// export.
	IMP002 = "IMP002" // ImportNameNotFound
	// IMP003 indicates an import referenced a name the owning module
	// declares but does not export.
	IMP003 = "IMP003" // PrivateItem

	// ============================================================================
	// Actor/service errors (ACT###)
	// ============================================================================

	// ACT001 indicates a value sent to a Pid doesn't match the actor's
	// declared message type.
	ACT001 = "ACT001" // SendTypeMismatch
	// ACT002 indicates spawn was applied to a non-function value.
	ACT002 = "ACT002" // SpawnNonFunction
	// ACT003 indicates receive appeared outside an actor or service
	// body.
	ACT003 = "ACT003" // ReceiveOutsideActor
	// ACT004 indicates self() appeared outside an actor or service
	// body.
	ACT004 = "ACT004" // SelfOutsideActor

	// ============================================================================
	// Supervisor declaration errors (SUP###)
	// ============================================================================

	// SUP001 indicates a supervisor's strategy field names something
	// other than a recognized restart strategy.
	SUP001 = "SUP001" // InvalidStrategy
	// SUP002 indicates a child's start expression is not a spawn call.
	SUP002 = "SUP002" // InvalidChildStart
	// SUP003 indicates a child spec's restart field names something
	// other than a recognized restart type.
	SUP003 = "SUP003" // InvalidRestartType
	// SUP004 indicates a child spec's shutdown field names something
	// other than a recognized shutdown value. The checker also raises it
	// for a child type other than worker or supervisor.
	SUP004 = "SUP004" // InvalidShutdownValue
	// SUP005 indicates two children of the same supervisor share a
	// name.
	SUP005 = "SUP005" // DuplicateChildName

	// ============================================================================
	// Control-flow errors (CF###)
	// ============================================================================

	// CF001 indicates break appeared outside a for/while loop.
	CF001 = "CF001" // BreakOutsideLoop
	// CF002 indicates continue appeared outside a for/while loop.
	CF002 = "CF002" // ContinueOutsideLoop
	// CF003 indicates `?` was applied to a value that is neither Result
	// nor Option.
	CF003 = "CF003" // TryOnNonResultOption
	// CF004 indicates the enclosing function's return type is
	// incompatible with the Err/None case `?` would propagate.
	CF004 = "CF004" // TryIncompatibleReturn

	// ============================================================================
	// MIR lowering errors (MIR###)
	// ============================================================================

	// MIR001 indicates the lowerer encountered a typed-AST shape it has
	// no lowering rule for.
	MIR001 = "MIR001" // LoweringInvariantViolation
	// MIR002 indicates a generic function or type could not be
	// monomorphised because a type parameter was unresolved at its use
	// site.
	MIR002 = "MIR002" // UnresolvedMonomorphization

	// ============================================================================
	// Backend code generation errors (CG###)
	// ============================================================================

	// CG001 indicates the backend has no lowering for a MIR construct on
	// the selected target.
	CG001 = "CG001" // UnsupportedConstruct
	// CG002 indicates a generated module failed LLVM IR verification.
	CG002 = "CG002" // VerificationFailed
)

// Info describes one diagnostic code for tooling (mesh check --explain,
// IDE hovers, and so on).
type Info struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps every diagnostic code to its descriptive Info.
var Registry = map[string]Info{
	TC001: {TC001, "typecheck", "unify", "Type mismatch"},
	TC002: {TC002, "typecheck", "arity", "Arity mismatch"},
	TC003: {TC003, "typecheck", "scope", "Unbound variable"},
	TC004: {TC004, "typecheck", "field", "Unknown field"},
	TC005: {TC005, "typecheck", "unify", "Occurs check failed"},
	TC006: {TC006, "typecheck", "variant", "Unknown variant"},

	TR001: {TR001, "trait", "method", "No such method"},
	TR002: {TR002, "trait", "method", "Ambiguous method"},
	TR003: {TR003, "trait", "constraint", "Trait not satisfied"},
	TR004: {TR004, "trait", "coherence", "Conflicting trait impl"},

	PAT001: {PAT001, "pattern", "exhaustiveness", "Non-exhaustive match"},
	PAT002: {PAT002, "pattern", "redundancy", "Redundant arm"},
	PAT003: {PAT003, "pattern", "guard", "Invalid guard expression"},
	PAT004: {PAT004, "pattern", "binding", "Or-pattern binding mismatch"},

	CLS001: {CLS001, "clauses", "grouping", "Non-consecutive clauses"},
	CLS002: {CLS002, "clauses", "grouping", "Annotation on non-first clause"},
	CLS003: {CLS003, "clauses", "grouping", "Catch-all clause not last"},

	DER001: {DER001, "derive", "unsupported", "Unsupported derive"},
	DER002: {DER002, "derive", "prerequisite", "Missing derive prerequisite"},
	DER003: {DER003, "derive", "serialize", "Non-serializable field"},
	DER004: {DER004, "derive", "map", "Non-mappable field"},

	IMP001: {IMP001, "import", "resolution", "Module not found"},
	IMP002: {IMP002, "import", "resolution", "Name not exported"},
	IMP003: {IMP003, "import", "visibility", "Private item"},

	ACT001: {ACT001, "actor", "type", "Send type mismatch"},
	ACT002: {ACT002, "actor", "spawn", "Spawn of non-function"},
	ACT003: {ACT003, "actor", "scope", "Receive outside actor"},
	ACT004: {ACT004, "actor", "scope", "self() outside actor"},

	SUP001: {SUP001, "supervisor", "strategy", "Invalid restart strategy"},
	SUP002: {SUP002, "supervisor", "child", "Invalid child start expression"},
	SUP003: {SUP003, "supervisor", "child", "Invalid restart type"},
	SUP004: {SUP004, "supervisor", "child", "Invalid shutdown value"},
	SUP005: {SUP005, "supervisor", "child", "Duplicate child name"},

	CF001: {CF001, "control-flow", "loop", "break outside loop"},
	CF002: {CF002, "control-flow", "loop", "continue outside loop"},
	CF003: {CF003, "control-flow", "try", "? on non-Result/Option"},
	CF004: {CF004, "control-flow", "try", "Incompatible return type for ?"},

	MIR001: {MIR001, "mir", "internal", "Lowering invariant violation"},
	MIR002: {MIR002, "mir", "generics", "Unresolved monomorphization"},

	CG001: {CG001, "codegen", "unsupported", "Unsupported construct on target"},
	CG002: {CG002, "codegen", "verify", "Module failed IR verification"},
}

// Lookup returns the descriptive Info for a diagnostic code.
func Lookup(code string) (Info, bool) {
	info, ok := Registry[code]
	return info, ok
}

// IsTypecheckError reports whether code belongs to the typecheck phase.
func IsTypecheckError(code string) bool {
	info, ok := Lookup(code)
	return ok && info.Phase == "typecheck"
}

// IsCodegenError reports whether code belongs to the codegen phase.
func IsCodegenError(code string) bool {
	info, ok := Lookup(code)
	return ok && info.Phase == "codegen"
}
