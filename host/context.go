package host

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/domain/errors"
	"github.com/reglet-dev/reglet-abi/domain/object"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// fatalExitCode matches the status of an abort.
const fatalExitCode = 134

// MaxOpenContexts is the number of contexts that can be open at once. Each
// open context owns one of the non-zero 8-bit handle tags, so a handle is
// never accepted by a context other than the one that issued it.
const MaxOpenContexts = 255

// tags hands out context tags. A tag returns to the pool in CloseContext.
var tags struct {
	mu   sync.Mutex
	used [MaxOpenContexts + 1]bool
	next uint8
}

func acquireTag() (uint8, bool) {
	tags.mu.Lock()
	defer tags.mu.Unlock()
	for i := 0; i < MaxOpenContexts; i++ {
		tags.next = tags.next%MaxOpenContexts + 1
		if !tags.used[tags.next] {
			tags.used[tags.next] = true
			return tags.next, true
		}
	}
	return 0, false
}

func releaseTag(tag uint8) {
	tags.mu.Lock()
	tags.used[tag] = false
	tags.mu.Unlock()
}

// state is the host-private part of a context, reachable through
// abi.Context.Private.
type state struct {
	ctx      *abi.Context
	table    *handles.Table
	fields   *handles.Table
	owners   map[*object.Instance]map[uint64]struct{}
	pending  *object.Exception
	noMemory *object.Exception
	logger   *slog.Logger
	fatal    func(msg string)
	tag      uint8
	closed   bool
}

// constants lists the reserved handles in table order.
var constants = []struct {
	set func(*abi.Context, abi.Handle)
	obj object.Object
}{
	{func(c *abi.Context, h abi.Handle) { c.None = h }, object.None},
	{func(c *abi.Context, h abi.Handle) { c.True = h }, object.True},
	{func(c *abi.Context, h abi.Handle) { c.False = h }, object.False},
	{func(c *abi.Context, h abi.Handle) { c.Exception = h }, object.ExceptionType},
	{func(c *abi.Context, h abi.Handle) { c.IndexError = h }, object.IndexErrorType},
	{func(c *abi.Context, h abi.Handle) { c.OverflowError = h }, object.OverflowErrorType},
	{func(c *abi.Context, h abi.Handle) { c.SystemError = h }, object.SystemErrorType},
	{func(c *abi.Context, h abi.Handle) { c.TypeError = h }, object.TypeErrorType},
	{func(c *abi.Context, h abi.Handle) { c.ValueError = h }, object.ValueErrorType},
	{func(c *abi.Context, h abi.Handle) { c.BaseObjectType = h }, object.ObjectType},
	{func(c *abi.Context, h abi.Handle) { c.TypeType = h }, object.TypeType},
	{func(c *abi.Context, h abi.Handle) { c.LongType = h }, object.IntType},
	{func(c *abi.Context, h abi.Handle) { c.UnicodeType = h }, object.StrType},
	{func(c *abi.Context, h abi.Handle) { c.TupleType = h }, object.TupleType},
	{func(c *abi.Context, h abi.Handle) { c.ListType = h }, object.ListType},
}

var constantsV2 = []struct {
	set func(*abi.Context, abi.Handle)
	obj object.Object
}{
	{func(c *abi.Context, h abi.Handle) { c.NotImplemented = h }, object.NotImplemented},
	{func(c *abi.Context, h abi.Handle) { c.ArithmeticError = h }, object.ArithmeticErrorType},
	{func(c *abi.Context, h abi.Handle) { c.ZeroDivisionError = h }, object.ZeroDivisionErrorType},
	{func(c *abi.Context, h abi.Handle) { c.KeyError = h }, object.KeyErrorType},
	{func(c *abi.Context, h abi.Handle) { c.AttributeError = h }, object.AttributeErrorType},
	{func(c *abi.Context, h abi.Handle) { c.MemoryError = h }, object.MemoryErrorType},
	{func(c *abi.Context, h abi.Handle) { c.FloatType = h }, object.FloatType},
	{func(c *abi.Context, h abi.Handle) { c.BoolType = h }, object.BoolType},
	{func(c *abi.Context, h abi.Handle) { c.BytesType = h }, object.BytesType},
	{func(c *abi.Context, h abi.Handle) { c.DictType = h }, object.DictType},
}

// NewContext builds a fully populated dispatch table. The table is immutable
// once returned; release it with CloseContext. At most MaxOpenContexts
// contexts can be open at a time; beyond that NewContext fails with
// *errors.MemoryError.
func NewContext(opts ...ContextOption) (*abi.Context, error) {
	cfg := defaultContextConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.version < abi.Version1 || cfg.version > abi.CurrentVersion {
		return nil, &errors.VersionError{Slot: "Version", Required: cfg.version, Available: abi.CurrentVersion}
	}
	if cfg.maxHandles <= 0 {
		return nil, &errors.ConfigError{Field: "max_handles", Err: fmt.Errorf("must be positive, got %d", cfg.maxHandles)}
	}

	tag, ok := acquireTag()
	if !ok {
		return nil, &errors.MemoryError{Resource: "contexts", Requested: 1, Current: MaxOpenContexts, Limit: MaxOpenContexts}
	}
	id := uuid.NewString()
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("context_id", id)

	s := &state{
		table: handles.New(
			handles.WithTag(tag),
			handles.WithLimit(cfg.maxHandles),
			handles.WithDebug(cfg.debug),
		),
		fields: handles.New(
			handles.WithTag(tag),
			handles.WithLimit(cfg.maxHandles),
			handles.WithDebug(cfg.debug),
			handles.WithResource("fields"),
		),
		owners:   make(map[*object.Instance]map[uint64]struct{}),
		noMemory: object.NewExceptionArgs(object.MemoryErrorType, nil),
		logger:   logger,
		fatal:    cfg.fatal,
		tag:      tag,
	}
	if s.fatal == nil {
		s.fatal = func(string) { os.Exit(fatalExitCode) }
	}

	ctx := &abi.Context{
		Version: cfg.version,
		Name:    cfg.name,
		ID:      id,
		Private: s,
	}
	s.ctx = ctx

	for _, c := range constants {
		c.set(ctx, abi.Handle(s.table.Reserve(handles.KindObject, c.obj)))
	}
	for _, c := range constantsV2 {
		h := abi.Handle(s.table.Reserve(handles.KindObject, c.obj))
		if cfg.version >= abi.Version2 {
			c.set(ctx, h)
		}
	}

	installV1(ctx)
	if cfg.version >= abi.Version2 {
		installV2(ctx)
	}
	return ctx, nil
}

// CloseContext releases every handle, builder, tracker and field still open
// and invalidates ctx. In debug mode open handles are logged and reported as
// *errors.LeakError.
func CloseContext(ctx *abi.Context) error {
	s := stateOf(ctx, "CloseContext")

	var leakErr error
	if s.table.Debug() {
		open := s.table.Open()
		if len(open) > 0 {
			leaked := make([]uint64, 0, len(open))
			for _, l := range open {
				s.logger.Warn("handle leaked", "handle", fmt.Sprintf("%#x", l.Handle), "kind", l.Kind.String(), "origin", l.Origin)
				leaked = append(leaked, l.Handle)
			}
			leakErr = &errors.LeakError{Handles: leaked}
		}
	}

	s.table.CloseAll(s.releaseEntry)
	s.fields.CloseAll(func(l handles.Leak) {
		if fe, ok := l.Value.(fieldEntry); ok {
			object.Decref(fe.obj)
		}
	})
	s.owners = nil
	s.clearPending()
	s.closed = true
	releaseTag(s.tag)
	s.logger.Debug("context closed", "tag", s.tag)
	return leakErr
}

func (s *state) releaseEntry(l handles.Leak) {
	switch v := l.Value.(type) {
	case object.Object:
		object.Decref(v)
	case *builder:
		v.release()
	case *tracker:
		// members are table entries of their own
	}
}

func stateOf(ctx *abi.Context, op string) *state {
	if ctx == nil {
		panic(errors.Violation(op, 0, "nil context"))
	}
	s, ok := ctx.Private.(*state)
	if !ok {
		panic(errors.Violation(op, 0, "context was not created by this host"))
	}
	if s.closed {
		panic(errors.Violation(op, 0, "context %s is closed", ctx.ID))
	}
	return s
}

// ObjectOf returns the host object behind h as a borrowed reference. It is
// meant for host-side integrations and tests, not extensions.
func ObjectOf(ctx *abi.Context, h abi.Handle) object.Object {
	return stateOf(ctx, "ObjectOf").get(h, "ObjectOf")
}

// Wrap hands a new reference to o to the context and returns its handle.
func Wrap(ctx *abi.Context, o object.Object) abi.Handle {
	return stateOf(ctx, "Wrap").wrap(object.Incref(o), "Wrap")
}

// LiveHandles returns the number of open non-constant handles.
func LiveHandles(ctx *abi.Context) int {
	return stateOf(ctx, "LiveHandles").table.Live()
}

// TakeError removes the pending exception and returns it, or nil.
func TakeError(ctx *abi.Context) error {
	s := stateOf(ctx, "TakeError")
	if s.pending == nil {
		return nil
	}
	return s.takePending()
}

func (s *state) get(h abi.Handle, op string) object.Object {
	return s.table.Get(uint64(h), handles.KindObject, op).(object.Object)
}

// wrap stores o, taking over the caller's reference. On exhaustion o is
// released and MemoryError is raised.
func (s *state) wrap(o object.Object, op string) abi.Handle {
	h, err := s.table.Alloc(handles.KindObject, o, op)
	if err != nil {
		object.Decref(o)
		s.logger.Debug("handle allocation failed", "op", op, "error", err)
		s.setNoMemory()
		return abi.Null
	}
	return abi.Handle(h)
}

func (s *state) result(o object.Object, err error, op string) abi.Handle {
	if err != nil {
		s.raise(err)
		return abi.Null
	}
	return s.wrap(o, op)
}

func (s *state) status(err error) int {
	if err != nil {
		s.raise(err)
		return -1
	}
	return 0
}

// raise makes err the pending exception, taking ownership of it.
func (s *state) raise(err error) {
	s.setPending(object.AsException(err))
}

func (s *state) setPending(e *object.Exception) {
	old := s.pending
	s.pending = e
	if old != nil {
		object.Decref(old)
	}
}

func (s *state) clearPending() {
	s.setPending(nil)
}

func (s *state) setNoMemory() {
	object.Incref(s.noMemory)
	s.setPending(s.noMemory)
}

func (s *state) takePending() error {
	e := s.pending
	s.pending = nil
	if e == nil {
		return object.NewException(object.SystemErrorType, "error return without exception set")
	}
	return e
}

func (s *state) handlesOf(hs []abi.Handle, op string) []object.Object {
	out := make([]object.Object, len(hs))
	for i, h := range hs {
		out[i] = s.get(h, op)
	}
	return out
}

// kwargs resolves an optional keyword dict handle.
func (s *state) kwargs(kw abi.Handle, op string) (*object.Dict, error) {
	if kw == abi.Null {
		return nil, nil
	}
	o := s.get(kw, op)
	if d, ok := o.(*object.Dict); ok {
		return d, nil
	}
	if o == object.None {
		return nil, nil
	}
	return nil, object.Errorf(object.TypeErrorType, "keywords must be a dict, not %s", o.Type().Name)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
