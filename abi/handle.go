package abi

// Handle is an opaque reference to a host object. It is meaningful only
// together with the Context that produced it and carries no type information.
type Handle uint64

// Null is the invalid handle. Slots return it to signal a pending error.
const Null Handle = 0

// IsNull reports whether h is the invalid handle.
func (h Handle) IsNull() bool {
	return h == Null
}

// ListBuilder is an in-progress list of fixed length.
type ListBuilder uint64

// TupleBuilder is an in-progress tuple of fixed length.
type TupleBuilder uint64

// Tracker owns an ordered group of handles released together.
type Tracker uint64

// Field is a long-lived reference stored inside an extension object's payload.
// The zero Field is empty. Fields are only manipulated through FieldStore and
// FieldLoad and are released when their owner is deallocated.
type Field uint64

// IsEmpty reports whether the field holds no reference.
func (f Field) IsEmpty() bool {
	return f == 0
}

// Ssize is the signed size type used for lengths and indices.
type Ssize = int64

// HashT is the result type of Hash. -1 signals a pending error.
type HashT = int64

// CompareOp selects the rich comparison performed by RichCompare.
type CompareOp int

// Rich comparison operators. The numeric values are part of the ABI.
const (
	LT CompareOp = iota
	LE
	EQ
	NE
	GT
	GE
)

// String returns the operator symbol.
func (op CompareOp) String() string {
	switch op {
	case LT:
		return "<"
	case LE:
		return "<="
	case EQ:
		return "=="
	case NE:
		return "!="
	case GT:
		return ">"
	case GE:
		return ">="
	default:
		return "?"
	}
}
