package abi

// Context versions. A table advertises the highest version whose fields it
// populates; every field of a lower version is present at the same offset.
const (
	Version1 = 1
	Version2 = 2

	// CurrentVersion is the newest layout this package describes.
	CurrentVersion = Version2
)

// Context is the dispatch table handed to extensions. It is built once by the
// host and never modified afterwards. Fields must only be appended; see
// Layout for the per-version catalogue.
type Context struct {
	// Version is read before any other field.
	Version int
	// Name identifies the host implementation.
	Name string
	// ID is unique per context and is used in diagnostics.
	ID string
	// Private is owned by the host. Extensions must not touch it.
	Private any

	// ---- version 1 constants ----

	None           Handle
	True           Handle
	False          Handle
	Exception      Handle
	IndexError     Handle
	OverflowError  Handle
	SystemError    Handle
	TypeError      Handle
	ValueError     Handle
	BaseObjectType Handle
	TypeType       Handle
	LongType       Handle
	UnicodeType    Handle
	TupleType      Handle
	ListType       Handle

	// ---- version 1 slots ----

	ModuleCreate func(ctx *Context, def *ModuleDef) Handle
	Dup          func(ctx *Context, h Handle) Handle
	Close        func(ctx *Context, h Handle)

	LongFromLong             func(ctx *Context, v int64) Handle
	LongFromUnsignedLong     func(ctx *Context, v uint64) Handle
	LongFromLongLong         func(ctx *Context, v int64) Handle
	LongFromUnsignedLongLong func(ctx *Context, v uint64) Handle
	LongFromSizeT            func(ctx *Context, v uint64) Handle
	LongFromSsizeT           func(ctx *Context, v Ssize) Handle
	LongAsLong               func(ctx *Context, h Handle) int64
	LongAsUnsignedLong       func(ctx *Context, h Handle) uint64
	LongAsLongLong           func(ctx *Context, h Handle) int64
	LongAsUnsignedLongLong   func(ctx *Context, h Handle) uint64
	LongAsSizeT              func(ctx *Context, h Handle) uint64
	LongAsSsizeT             func(ctx *Context, h Handle) Ssize
	FloatFromDouble          func(ctx *Context, v float64) Handle
	FloatAsDouble            func(ctx *Context, h Handle) float64

	Length      func(ctx *Context, h Handle) Ssize
	NumberCheck func(ctx *Context, h Handle) int

	Add                   func(ctx *Context, a, b Handle) Handle
	Subtract              func(ctx *Context, a, b Handle) Handle
	Multiply              func(ctx *Context, a, b Handle) Handle
	MatrixMultiply        func(ctx *Context, a, b Handle) Handle
	FloorDivide           func(ctx *Context, a, b Handle) Handle
	TrueDivide            func(ctx *Context, a, b Handle) Handle
	Remainder             func(ctx *Context, a, b Handle) Handle
	Divmod                func(ctx *Context, a, b Handle) Handle
	Power                 func(ctx *Context, a, b, mod Handle) Handle
	Negative              func(ctx *Context, h Handle) Handle
	Positive              func(ctx *Context, h Handle) Handle
	Absolute              func(ctx *Context, h Handle) Handle
	Invert                func(ctx *Context, h Handle) Handle
	Lshift                func(ctx *Context, a, b Handle) Handle
	Rshift                func(ctx *Context, a, b Handle) Handle
	And                   func(ctx *Context, a, b Handle) Handle
	Xor                   func(ctx *Context, a, b Handle) Handle
	Or                    func(ctx *Context, a, b Handle) Handle
	Index                 func(ctx *Context, h Handle) Handle
	Long                  func(ctx *Context, h Handle) Handle
	Float                 func(ctx *Context, h Handle) Handle
	InPlaceAdd            func(ctx *Context, a, b Handle) Handle
	InPlaceSubtract       func(ctx *Context, a, b Handle) Handle
	InPlaceMultiply       func(ctx *Context, a, b Handle) Handle
	InPlaceMatrixMultiply func(ctx *Context, a, b Handle) Handle
	InPlaceFloorDivide    func(ctx *Context, a, b Handle) Handle
	InPlaceTrueDivide     func(ctx *Context, a, b Handle) Handle
	InPlaceRemainder      func(ctx *Context, a, b Handle) Handle
	InPlacePower          func(ctx *Context, a, b, mod Handle) Handle
	InPlaceLshift         func(ctx *Context, a, b Handle) Handle
	InPlaceRshift         func(ctx *Context, a, b Handle) Handle
	InPlaceAnd            func(ctx *Context, a, b Handle) Handle
	InPlaceXor            func(ctx *Context, a, b Handle) Handle
	InPlaceOr             func(ctx *Context, a, b Handle) Handle

	// ErrSetString consumes msg; typ stays owned by the caller.
	ErrSetString func(ctx *Context, typ Handle, msg string)
	ErrOccurred  func(ctx *Context) int
	// ErrNoMemory never allocates. It always returns Null.
	ErrNoMemory func(ctx *Context) Handle
	ErrClear    func(ctx *Context)

	IsTrue         func(ctx *Context, h Handle) int
	TypeFromSpec   func(ctx *Context, spec *TypeSpec) Handle
	TypeGenericNew func(ctx *Context, cls Handle, args []Handle, kw Handle) Handle

	GetAttr  func(ctx *Context, obj, name Handle) Handle
	GetAttrS func(ctx *Context, obj Handle, name string) Handle
	// HasAttr never leaves an error pending.
	HasAttr  func(ctx *Context, obj, name Handle) int
	HasAttrS func(ctx *Context, obj Handle, name string) int
	SetAttr  func(ctx *Context, obj, name, value Handle) int
	SetAttrS func(ctx *Context, obj Handle, name string, value Handle) int

	GetItem  func(ctx *Context, obj, key Handle) Handle
	GetItemI func(ctx *Context, obj Handle, idx Ssize) Handle
	GetItemS func(ctx *Context, obj Handle, key string) Handle
	SetItem  func(ctx *Context, obj, key, value Handle) int
	SetItemI func(ctx *Context, obj Handle, idx Ssize, value Handle) int
	SetItemS func(ctx *Context, obj Handle, key string, value Handle) int

	// Cast returns the payload of an extension instance.
	Cast func(ctx *Context, h Handle) any
	// New allocates an instance of cls and returns it with its payload.
	New func(ctx *Context, cls Handle) (Handle, any)

	Repr            func(ctx *Context, h Handle) Handle
	Str             func(ctx *Context, h Handle) Handle
	ASCII           func(ctx *Context, h Handle) Handle
	Bytes           func(ctx *Context, h Handle) Handle
	RichCompare     func(ctx *Context, a, b Handle, op CompareOp) Handle
	RichCompareBool func(ctx *Context, a, b Handle, op CompareOp) int
	Hash            func(ctx *Context, h Handle) HashT

	BytesCheck   func(ctx *Context, h Handle) int
	BytesSize    func(ctx *Context, h Handle) Ssize
	BytesGetSize func(ctx *Context, h Handle) Ssize
	// BytesAsString returns the host buffer. Callers must not modify it.
	BytesAsString          func(ctx *Context, h Handle) []byte
	BytesAsStringUnchecked func(ctx *Context, h Handle) []byte
	BytesFromString        func(ctx *Context, s string) Handle
	BytesFromStringAndSize func(ctx *Context, b []byte, size Ssize) Handle

	UnicodeFromString   func(ctx *Context, s string) Handle
	UnicodeCheck        func(ctx *Context, h Handle) int
	UnicodeAsUTF8String func(ctx *Context, h Handle) Handle
	UnicodeFromWideChar func(ctx *Context, w []rune, size Ssize) Handle

	ListCheck  func(ctx *Context, h Handle) int
	ListNew    func(ctx *Context, size Ssize) Handle
	ListAppend func(ctx *Context, list, item Handle) int
	DictCheck  func(ctx *Context, h Handle) int
	DictNew    func(ctx *Context) Handle

	// FatalError terminates the runtime. It never returns.
	FatalError     func(ctx *Context, msg string)
	TupleFromArray func(ctx *Context, items []Handle) Handle

	FromHostObject func(ctx *Context, obj any) Handle
	AsHostObject   func(ctx *Context, h Handle) any

	CallRealFunctionFromTrampoline func(ctx *Context, sig Signature, fn any, args *CallArgs)
	CallDestroyAndThenDealloc      func(ctx *Context, destroy DestroyFunc, obj any)

	ListBuilderNew    func(ctx *Context, size Ssize) ListBuilder
	ListBuilderSet    func(ctx *Context, b ListBuilder, idx Ssize, h Handle)
	ListBuilderBuild  func(ctx *Context, b ListBuilder) Handle
	ListBuilderCancel func(ctx *Context, b ListBuilder)

	TupleBuilderNew    func(ctx *Context, size Ssize) TupleBuilder
	TupleBuilderSet    func(ctx *Context, b TupleBuilder, idx Ssize, h Handle)
	TupleBuilderBuild  func(ctx *Context, b TupleBuilder) Handle
	TupleBuilderCancel func(ctx *Context, b TupleBuilder)

	TrackerNew       func(ctx *Context, hint Ssize) Tracker
	TrackerAdd       func(ctx *Context, t Tracker, h Handle) int
	TrackerForgetAll func(ctx *Context, t Tracker)
	TrackerClose     func(ctx *Context, t Tracker)

	// ---- version 2 constants ----

	NotImplemented    Handle
	ArithmeticError   Handle
	ZeroDivisionError Handle
	KeyError          Handle
	AttributeError    Handle
	MemoryError       Handle
	FloatType         Handle
	BoolType          Handle
	BytesType         Handle
	DictType          Handle

	// ---- version 2 slots ----

	ErrSetObject        func(ctx *Context, typ, value Handle)
	ErrExceptionMatches func(ctx *Context, typ Handle) int
	Type                func(ctx *Context, h Handle) Handle
	TypeCheck           func(ctx *Context, h, typ Handle) int
	Is                  func(ctx *Context, a, b Handle) int
	Call                func(ctx *Context, callable Handle, args []Handle, kw Handle) Handle
	FieldStore          func(ctx *Context, owner Handle, f *Field, h Handle)
	FieldLoad           func(ctx *Context, owner Handle, f Field) Handle
}
