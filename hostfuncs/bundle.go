package hostfuncs

import (
	"context"

	"github.com/reglet-dev/reglet-abi/abi"
)

// HostFuncBundle is a pre-configured set of related imports.
// Bundles allow registering multiple imports at once.
type HostFuncBundle interface {
	// Funcs returns the imports of the bundle.
	Funcs() []HostFunc
}

// staticBundle implements HostFuncBundle with a fixed set of imports.
type staticBundle struct {
	funcs []HostFunc
}

func (b *staticBundle) Funcs() []HostFunc {
	return b.funcs
}

// ConstantsBundle exports every constant handle as a zero-argument import
// of the same name, plus Version.
func ConstantsBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		{
			Name: "Version", Params: sigNone, Results: sigResI64, Since: abi.Version1,
			Handler: func(_ context.Context, c *Call) error {
				c.ReturnInt(int64(c.ABI.Version))
				return nil
			},
		},
		constant("None", func(c *abi.Context) abi.Handle { return c.None }),
		constant("True", func(c *abi.Context) abi.Handle { return c.True }),
		constant("False", func(c *abi.Context) abi.Handle { return c.False }),
		constant("Exception", func(c *abi.Context) abi.Handle { return c.Exception }),
		constant("IndexError", func(c *abi.Context) abi.Handle { return c.IndexError }),
		constant("OverflowError", func(c *abi.Context) abi.Handle { return c.OverflowError }),
		constant("SystemError", func(c *abi.Context) abi.Handle { return c.SystemError }),
		constant("TypeError", func(c *abi.Context) abi.Handle { return c.TypeError }),
		constant("ValueError", func(c *abi.Context) abi.Handle { return c.ValueError }),
		constant("BaseObjectType", func(c *abi.Context) abi.Handle { return c.BaseObjectType }),
		constant("TypeType", func(c *abi.Context) abi.Handle { return c.TypeType }),
		constant("LongType", func(c *abi.Context) abi.Handle { return c.LongType }),
		constant("UnicodeType", func(c *abi.Context) abi.Handle { return c.UnicodeType }),
		constant("TupleType", func(c *abi.Context) abi.Handle { return c.TupleType }),
		constant("ListType", func(c *abi.Context) abi.Handle { return c.ListType }),
		constant("NotImplemented", func(c *abi.Context) abi.Handle { return c.NotImplemented }),
		constant("ArithmeticError", func(c *abi.Context) abi.Handle { return c.ArithmeticError }),
		constant("ZeroDivisionError", func(c *abi.Context) abi.Handle { return c.ZeroDivisionError }),
		constant("KeyError", func(c *abi.Context) abi.Handle { return c.KeyError }),
		constant("AttributeError", func(c *abi.Context) abi.Handle { return c.AttributeError }),
		constant("MemoryError", func(c *abi.Context) abi.Handle { return c.MemoryError }),
		constant("FloatType", func(c *abi.Context) abi.Handle { return c.FloatType }),
		constant("BoolType", func(c *abi.Context) abi.Handle { return c.BoolType }),
		constant("BytesType", func(c *abi.Context) abi.Handle { return c.BytesType }),
		constant("DictType", func(c *abi.Context) abi.Handle { return c.DictType }),
	}}
}

// CoreBundle exports the object protocol: handle lifetime, attributes,
// items, comparison, string conversion and calls.
func CoreBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		unary("Dup", func(c *abi.Context) unaryFn { return c.Dup }),
		release("Close", func(c *abi.Context) releaseFn { return c.Close }),
		query("IsTrue", func(c *abi.Context) queryFn { return c.IsTrue }),
		unary("Type", func(c *abi.Context) unaryFn { return c.Type }),
		query2("TypeCheck", func(c *abi.Context) query2Fn { return c.TypeCheck }),
		query2("Is", func(c *abi.Context) query2Fn { return c.Is }),
		toInt("Length", func(c *abi.Context) toIntFn { return c.Length }),
		toInt("Hash", func(c *abi.Context) toIntFn { return c.Hash }),

		unary("Repr", func(c *abi.Context) unaryFn { return c.Repr }),
		unary("Str", func(c *abi.Context) unaryFn { return c.Str }),
		unary("ASCII", func(c *abi.Context) unaryFn { return c.ASCII }),
		unary("Bytes", func(c *abi.Context) unaryFn { return c.Bytes }),
		slot("RichCompare", sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.RichCompare(c.ABI, c.Handle(0), c.Handle(1), abi.CompareOp(c.Int(2))))
			return nil
		}),
		slot("RichCompareBool", sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnInt(int64(c.ABI.RichCompareBool(c.ABI, c.Handle(0), c.Handle(1), abi.CompareOp(c.Int(2)))))
			return nil
		}),

		binarySlot("GetAttr", func(c *abi.Context) binaryFn { return c.GetAttr }),
		attrGet("GetAttrS", func(c *abi.Context) attrGetFn { return c.GetAttrS }),
		query2("HasAttr", func(c *abi.Context) query2Fn { return c.HasAttr }),
		attrHas("HasAttrS", func(c *abi.Context) attrHasFn { return c.HasAttrS }),
		set("SetAttr", func(c *abi.Context) setFn { return c.SetAttr }),
		attrSet("SetAttrS", func(c *abi.Context) attrSetFn { return c.SetAttrS }),

		binarySlot("GetItem", func(c *abi.Context) binaryFn { return c.GetItem }),
		slot("GetItemI", sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.GetItemI(c.ABI, c.Handle(0), c.Int(1)))
			return nil
		}),
		attrGet("GetItemS", func(c *abi.Context) attrGetFn { return c.GetItemS }),
		set("SetItem", func(c *abi.Context) setFn { return c.SetItem }),
		slot("SetItemI", sigI64x3, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnInt(int64(c.ABI.SetItemI(c.ABI, c.Handle(0), c.Int(1), c.Handle(2))))
			return nil
		}),
		attrSet("SetItemS", func(c *abi.Context) attrSetFn { return c.SetItemS }),

		arrayCall("Call", func(c *abi.Context) arrayCallFn { return c.Call }),
		arrayCall("TypeGenericNew", func(c *abi.Context) arrayCallFn { return c.TypeGenericNew }),
		slot("FatalError", sigI64, sigNone, func(_ context.Context, c *Call) error {
			msg, err := c.Text(0)
			if err != nil {
				return err
			}
			c.ABI.FatalError(c.ABI, msg)
			return nil
		}),
	}}
}

// NumberBundle exports integer and float conversion plus the number
// protocol.
func NumberBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		fromInt("LongFromLong", func(c *abi.Context) fromIntFn { return c.LongFromLong }),
		fromUint("LongFromUnsignedLong", func(c *abi.Context) fromUintFn { return c.LongFromUnsignedLong }),
		fromInt("LongFromLongLong", func(c *abi.Context) fromIntFn { return c.LongFromLongLong }),
		fromUint("LongFromUnsignedLongLong", func(c *abi.Context) fromUintFn { return c.LongFromUnsignedLongLong }),
		fromUint("LongFromSizeT", func(c *abi.Context) fromUintFn { return c.LongFromSizeT }),
		fromInt("LongFromSsizeT", func(c *abi.Context) fromIntFn { return c.LongFromSsizeT }),
		toInt("LongAsLong", func(c *abi.Context) toIntFn { return c.LongAsLong }),
		toUint("LongAsUnsignedLong", func(c *abi.Context) toUintFn { return c.LongAsUnsignedLong }),
		toInt("LongAsLongLong", func(c *abi.Context) toIntFn { return c.LongAsLongLong }),
		toUint("LongAsUnsignedLongLong", func(c *abi.Context) toUintFn { return c.LongAsUnsignedLongLong }),
		toUint("LongAsSizeT", func(c *abi.Context) toUintFn { return c.LongAsSizeT }),
		toInt("LongAsSsizeT", func(c *abi.Context) toIntFn { return c.LongAsSsizeT }),
		slot("FloatFromDouble", sigF64, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.FloatFromDouble(c.ABI, c.Float(0)))
			return nil
		}),
		slot("FloatAsDouble", sigI64, sigF64, func(_ context.Context, c *Call) error {
			c.ReturnFloat(c.ABI.FloatAsDouble(c.ABI, c.Handle(0)))
			return nil
		}),
		query("NumberCheck", func(c *abi.Context) queryFn { return c.NumberCheck }),

		binarySlot("Add", func(c *abi.Context) binaryFn { return c.Add }),
		binarySlot("Subtract", func(c *abi.Context) binaryFn { return c.Subtract }),
		binarySlot("Multiply", func(c *abi.Context) binaryFn { return c.Multiply }),
		binarySlot("MatrixMultiply", func(c *abi.Context) binaryFn { return c.MatrixMultiply }),
		binarySlot("FloorDivide", func(c *abi.Context) binaryFn { return c.FloorDivide }),
		binarySlot("TrueDivide", func(c *abi.Context) binaryFn { return c.TrueDivide }),
		binarySlot("Remainder", func(c *abi.Context) binaryFn { return c.Remainder }),
		binarySlot("Divmod", func(c *abi.Context) binaryFn { return c.Divmod }),
		ternary("Power", func(c *abi.Context) ternaryFn { return c.Power }),
		unary("Negative", func(c *abi.Context) unaryFn { return c.Negative }),
		unary("Positive", func(c *abi.Context) unaryFn { return c.Positive }),
		unary("Absolute", func(c *abi.Context) unaryFn { return c.Absolute }),
		unary("Invert", func(c *abi.Context) unaryFn { return c.Invert }),
		binarySlot("Lshift", func(c *abi.Context) binaryFn { return c.Lshift }),
		binarySlot("Rshift", func(c *abi.Context) binaryFn { return c.Rshift }),
		binarySlot("And", func(c *abi.Context) binaryFn { return c.And }),
		binarySlot("Xor", func(c *abi.Context) binaryFn { return c.Xor }),
		binarySlot("Or", func(c *abi.Context) binaryFn { return c.Or }),
		unary("Index", func(c *abi.Context) unaryFn { return c.Index }),
		unary("Long", func(c *abi.Context) unaryFn { return c.Long }),
		unary("Float", func(c *abi.Context) unaryFn { return c.Float }),

		binarySlot("InPlaceAdd", func(c *abi.Context) binaryFn { return c.InPlaceAdd }),
		binarySlot("InPlaceSubtract", func(c *abi.Context) binaryFn { return c.InPlaceSubtract }),
		binarySlot("InPlaceMultiply", func(c *abi.Context) binaryFn { return c.InPlaceMultiply }),
		binarySlot("InPlaceMatrixMultiply", func(c *abi.Context) binaryFn { return c.InPlaceMatrixMultiply }),
		binarySlot("InPlaceFloorDivide", func(c *abi.Context) binaryFn { return c.InPlaceFloorDivide }),
		binarySlot("InPlaceTrueDivide", func(c *abi.Context) binaryFn { return c.InPlaceTrueDivide }),
		binarySlot("InPlaceRemainder", func(c *abi.Context) binaryFn { return c.InPlaceRemainder }),
		ternary("InPlacePower", func(c *abi.Context) ternaryFn { return c.InPlacePower }),
		binarySlot("InPlaceLshift", func(c *abi.Context) binaryFn { return c.InPlaceLshift }),
		binarySlot("InPlaceRshift", func(c *abi.Context) binaryFn { return c.InPlaceRshift }),
		binarySlot("InPlaceAnd", func(c *abi.Context) binaryFn { return c.InPlaceAnd }),
		binarySlot("InPlaceXor", func(c *abi.Context) binaryFn { return c.InPlaceXor }),
		binarySlot("InPlaceOr", func(c *abi.Context) binaryFn { return c.InPlaceOr }),
	}}
}

// ErrorBundle exports the pending-error slots.
func ErrorBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		slot("ErrSetString", sigI64x2, sigNone, func(_ context.Context, c *Call) error {
			msg, err := c.Text(1)
			if err != nil {
				return err
			}
			c.ABI.ErrSetString(c.ABI, c.Handle(0), msg)
			return nil
		}),
		slot("ErrSetObject", sigI64x2, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.ErrSetObject(c.ABI, c.Handle(0), c.Handle(1))
			return nil
		}),
		slot("ErrOccurred", sigNone, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnInt(int64(c.ABI.ErrOccurred(c.ABI)))
			return nil
		}),
		query("ErrExceptionMatches", func(c *abi.Context) queryFn { return c.ErrExceptionMatches }),
		slot("ErrNoMemory", sigNone, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.ErrNoMemory(c.ABI))
			return nil
		}),
		slot("ErrClear", sigNone, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.ErrClear(c.ABI)
			return nil
		}),
	}}
}

// ContainerBundle exports bytes, str, list, dict and tuple slots.
func ContainerBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		query("BytesCheck", func(c *abi.Context) queryFn { return c.BytesCheck }),
		toInt("BytesSize", func(c *abi.Context) toIntFn { return c.BytesSize }),
		toInt("BytesGetSize", func(c *abi.Context) toIntFn { return c.BytesGetSize }),
		buffer("BytesAsString", func(c *abi.Context) bufferFn { return c.BytesAsString }),
		buffer("BytesAsStringUnchecked", func(c *abi.Context) bufferFn { return c.BytesAsStringUnchecked }),
		fromText("BytesFromString", func(c *abi.Context) fromTextFn { return c.BytesFromString }),
		slot("BytesFromStringAndSize", sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
			var buf []byte
			if c.Stack[0] != 0 {
				var err error
				if buf, err = c.Bytes(0); err != nil {
					return err
				}
			}
			c.ReturnHandle(c.ABI.BytesFromStringAndSize(c.ABI, buf, c.Int(1)))
			return nil
		}),

		fromText("UnicodeFromString", func(c *abi.Context) fromTextFn { return c.UnicodeFromString }),
		query("UnicodeCheck", func(c *abi.Context) queryFn { return c.UnicodeCheck }),
		unary("UnicodeAsUTF8String", func(c *abi.Context) unaryFn { return c.UnicodeAsUTF8String }),

		query("ListCheck", func(c *abi.Context) queryFn { return c.ListCheck }),
		fromInt("ListNew", func(c *abi.Context) fromIntFn { return c.ListNew }),
		query2("ListAppend", func(c *abi.Context) query2Fn { return c.ListAppend }),
		query("DictCheck", func(c *abi.Context) queryFn { return c.DictCheck }),
		slot("DictNew", sigNone, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.DictNew(c.ABI))
			return nil
		}),
		slot("TupleFromArray", sigI64, sigResI64, func(_ context.Context, c *Call) error {
			items, err := c.Handles(0)
			if err != nil {
				return err
			}
			c.ReturnHandle(c.ABI.TupleFromArray(c.ABI, items))
			return nil
		}),
	}}
}

// BuilderBundle exports the list and tuple builder protocols.
func BuilderBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		slot("ListBuilderNew", sigI64, sigResI64, func(_ context.Context, c *Call) error {
			c.Stack[0] = uint64(c.ABI.ListBuilderNew(c.ABI, c.Int(0)))
			return nil
		}),
		slot("ListBuilderSet", sigI64x3, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.ListBuilderSet(c.ABI, abi.ListBuilder(c.Stack[0]), c.Int(1), c.Handle(2))
			return nil
		}),
		slot("ListBuilderBuild", sigI64, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.ListBuilderBuild(c.ABI, abi.ListBuilder(c.Stack[0])))
			return nil
		}),
		slot("ListBuilderCancel", sigI64, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.ListBuilderCancel(c.ABI, abi.ListBuilder(c.Stack[0]))
			return nil
		}),
		slot("TupleBuilderNew", sigI64, sigResI64, func(_ context.Context, c *Call) error {
			c.Stack[0] = uint64(c.ABI.TupleBuilderNew(c.ABI, c.Int(0)))
			return nil
		}),
		slot("TupleBuilderSet", sigI64x3, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.TupleBuilderSet(c.ABI, abi.TupleBuilder(c.Stack[0]), c.Int(1), c.Handle(2))
			return nil
		}),
		slot("TupleBuilderBuild", sigI64, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnHandle(c.ABI.TupleBuilderBuild(c.ABI, abi.TupleBuilder(c.Stack[0])))
			return nil
		}),
		slot("TupleBuilderCancel", sigI64, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.TupleBuilderCancel(c.ABI, abi.TupleBuilder(c.Stack[0]))
			return nil
		}),
	}}
}

// TrackerBundle exports the tracker protocol.
func TrackerBundle() HostFuncBundle {
	return &staticBundle{funcs: []HostFunc{
		slot("TrackerNew", sigI64, sigResI64, func(_ context.Context, c *Call) error {
			c.Stack[0] = uint64(c.ABI.TrackerNew(c.ABI, c.Int(0)))
			return nil
		}),
		slot("TrackerAdd", sigI64x2, sigResI64, func(_ context.Context, c *Call) error {
			c.ReturnInt(int64(c.ABI.TrackerAdd(c.ABI, abi.Tracker(c.Stack[0]), c.Handle(1))))
			return nil
		}),
		slot("TrackerForgetAll", sigI64, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.TrackerForgetAll(c.ABI, abi.Tracker(c.Stack[0]))
			return nil
		}),
		slot("TrackerClose", sigI64, sigNone, func(_ context.Context, c *Call) error {
			c.ABI.TrackerClose(c.ABI, abi.Tracker(c.Stack[0]))
			return nil
		}),
	}}
}

// compositeBundle combines multiple bundles into one.
type compositeBundle struct {
	bundles []HostFuncBundle
}

func (b *compositeBundle) Funcs() []HostFunc {
	var result []HostFunc
	for _, bundle := range b.bundles {
		result = append(result, bundle.Funcs()...)
	}
	return result
}

// AllBundles returns every wasm-expressible part of the context table.
func AllBundles() HostFuncBundle {
	return &compositeBundle{
		bundles: []HostFuncBundle{
			ConstantsBundle(),
			CoreBundle(),
			NumberBundle(),
			ErrorBundle(),
			ContainerBundle(),
			BuilderBundle(),
			TrackerBundle(),
		},
	}
}

// WithBundle registers all imports from a bundle.
func WithBundle(bundle HostFuncBundle) RegistryOption {
	return func(b *registryBuilder) {
		for _, fn := range bundle.Funcs() {
			if err := b.addFunc(fn); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}
