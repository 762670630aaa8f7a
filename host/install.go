package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/object"
)

// installV1 fills every version 1 slot.
func installV1(ctx *abi.Context) {
	ctx.ModuleCreate = moduleCreate
	ctx.Dup = dup
	ctx.Close = closeHandle

	ctx.LongFromLong = longFromLong
	ctx.LongFromUnsignedLong = longFromUnsignedLong
	ctx.LongFromLongLong = longFromLong
	ctx.LongFromUnsignedLongLong = longFromUnsignedLong
	ctx.LongFromSizeT = longFromUnsignedLong
	ctx.LongFromSsizeT = longFromSsizeT
	ctx.LongAsLong = longAsLong
	ctx.LongAsUnsignedLong = longAsUnsignedLong
	ctx.LongAsLongLong = longAsLong
	ctx.LongAsUnsignedLongLong = longAsUnsignedLong
	ctx.LongAsSizeT = longAsUnsignedLong
	ctx.LongAsSsizeT = longAsSsizeT
	ctx.FloatFromDouble = floatFromDouble
	ctx.FloatAsDouble = floatAsDouble

	ctx.Length = length
	ctx.NumberCheck = numberCheck

	ctx.Add = binarySlot("Add", object.OpAdd)
	ctx.Subtract = binarySlot("Subtract", object.OpSub)
	ctx.Multiply = binarySlot("Multiply", object.OpMul)
	ctx.MatrixMultiply = binarySlot("MatrixMultiply", object.OpMatMul)
	ctx.FloorDivide = binarySlot("FloorDivide", object.OpFloorDiv)
	ctx.TrueDivide = binarySlot("TrueDivide", object.OpTrueDiv)
	ctx.Remainder = binarySlot("Remainder", object.OpMod)
	ctx.Divmod = binarySlot("Divmod", object.OpDivmod)
	ctx.Power = power
	ctx.Negative = unarySlot("Negative", object.Negative)
	ctx.Positive = unarySlot("Positive", object.Positive)
	ctx.Absolute = unarySlot("Absolute", object.Absolute)
	ctx.Invert = unarySlot("Invert", object.Invert)
	ctx.Lshift = binarySlot("Lshift", object.OpLshift)
	ctx.Rshift = binarySlot("Rshift", object.OpRshift)
	ctx.And = binarySlot("And", object.OpAnd)
	ctx.Xor = binarySlot("Xor", object.OpXor)
	ctx.Or = binarySlot("Or", object.OpOr)
	ctx.Index = unarySlot("Index", object.Index)
	ctx.Long = unarySlot("Long", object.Long)
	ctx.Float = unarySlot("Float", object.ToFloat)
	ctx.InPlaceAdd = inPlaceSlot("InPlaceAdd", object.OpAdd)
	ctx.InPlaceSubtract = inPlaceSlot("InPlaceSubtract", object.OpSub)
	ctx.InPlaceMultiply = inPlaceSlot("InPlaceMultiply", object.OpMul)
	ctx.InPlaceMatrixMultiply = inPlaceSlot("InPlaceMatrixMultiply", object.OpMatMul)
	ctx.InPlaceFloorDivide = inPlaceSlot("InPlaceFloorDivide", object.OpFloorDiv)
	ctx.InPlaceTrueDivide = inPlaceSlot("InPlaceTrueDivide", object.OpTrueDiv)
	ctx.InPlaceRemainder = inPlaceSlot("InPlaceRemainder", object.OpMod)
	ctx.InPlacePower = inPlacePower
	ctx.InPlaceLshift = inPlaceSlot("InPlaceLshift", object.OpLshift)
	ctx.InPlaceRshift = inPlaceSlot("InPlaceRshift", object.OpRshift)
	ctx.InPlaceAnd = inPlaceSlot("InPlaceAnd", object.OpAnd)
	ctx.InPlaceXor = inPlaceSlot("InPlaceXor", object.OpXor)
	ctx.InPlaceOr = inPlaceSlot("InPlaceOr", object.OpOr)

	ctx.ErrSetString = errSetString
	ctx.ErrOccurred = errOccurred
	ctx.ErrNoMemory = errNoMemory
	ctx.ErrClear = errClear

	ctx.IsTrue = isTrue
	ctx.TypeFromSpec = typeFromSpec
	ctx.TypeGenericNew = typeGenericNew

	ctx.GetAttr = getAttr
	ctx.GetAttrS = getAttrS
	ctx.HasAttr = hasAttr
	ctx.HasAttrS = hasAttrS
	ctx.SetAttr = setAttr
	ctx.SetAttrS = setAttrS
	ctx.GetItem = getItem
	ctx.GetItemI = getItemI
	ctx.GetItemS = getItemS
	ctx.SetItem = setItem
	ctx.SetItemI = setItemI
	ctx.SetItemS = setItemS

	ctx.Cast = cast
	ctx.New = newInstance

	ctx.Repr = repr
	ctx.Str = str
	ctx.ASCII = ascii
	ctx.Bytes = bytesOf
	ctx.RichCompare = richCompare
	ctx.RichCompareBool = richCompareBool
	ctx.Hash = hash

	ctx.BytesCheck = bytesCheck
	ctx.BytesSize = bytesSize
	ctx.BytesGetSize = bytesGetSize
	ctx.BytesAsString = bytesAsString
	ctx.BytesAsStringUnchecked = bytesAsStringUnchecked
	ctx.BytesFromString = bytesFromString
	ctx.BytesFromStringAndSize = bytesFromStringAndSize

	ctx.UnicodeFromString = unicodeFromString
	ctx.UnicodeCheck = unicodeCheck
	ctx.UnicodeAsUTF8String = unicodeAsUTF8String
	ctx.UnicodeFromWideChar = unicodeFromWideChar

	ctx.ListCheck = listCheck
	ctx.ListNew = listNew
	ctx.ListAppend = listAppend
	ctx.DictCheck = dictCheck
	ctx.DictNew = dictNew

	ctx.FatalError = fatalError
	ctx.TupleFromArray = tupleFromArray
	ctx.FromHostObject = fromHostObject
	ctx.AsHostObject = asHostObject

	ctx.CallRealFunctionFromTrampoline = callRealFunctionFromTrampoline
	ctx.CallDestroyAndThenDealloc = callDestroyAndThenDealloc

	ctx.ListBuilderNew = listBuilderNew
	ctx.ListBuilderSet = listBuilderSet
	ctx.ListBuilderBuild = listBuilderBuild
	ctx.ListBuilderCancel = listBuilderCancel
	ctx.TupleBuilderNew = tupleBuilderNew
	ctx.TupleBuilderSet = tupleBuilderSet
	ctx.TupleBuilderBuild = tupleBuilderBuild
	ctx.TupleBuilderCancel = tupleBuilderCancel

	ctx.TrackerNew = trackerNew
	ctx.TrackerAdd = trackerAdd
	ctx.TrackerForgetAll = trackerForgetAll
	ctx.TrackerClose = trackerClose
}

// installV2 fills the slots appended in version 2.
func installV2(ctx *abi.Context) {
	ctx.ErrSetObject = errSetObject
	ctx.ErrExceptionMatches = errExceptionMatches
	ctx.Type = typeOf
	ctx.TypeCheck = typeCheck
	ctx.Is = is
	ctx.Call = call
	ctx.FieldStore = fieldStore
	ctx.FieldLoad = fieldLoad
}
