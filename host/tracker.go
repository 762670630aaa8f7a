package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

// maxTrackerPrealloc caps the capacity a size hint reserves up front;
// members beyond it grow the slice on demand.
const maxTrackerPrealloc = 64

// tracker owns the handles added to it until ForgetAll or Close.
type tracker struct {
	members []abi.Handle
}

func trackerNew(ctx *abi.Context, hint abi.Ssize) abi.Tracker {
	s := stateOf(ctx, "TrackerNew")
	if hint < 0 || hint > abi.Ssize(s.table.Limit()) {
		hint = 0
	}
	hint = min(hint, maxTrackerPrealloc)
	h, err := s.table.Alloc(handles.KindTracker, &tracker{members: make([]abi.Handle, 0, hint)}, "TrackerNew")
	if err != nil {
		s.setNoMemory()
		return 0
	}
	return abi.Tracker(h)
}

// trackerAdd transfers ownership of h to t. On failure it returns -1 with
// MemoryError pending and the caller still owns h.
func trackerAdd(ctx *abi.Context, t abi.Tracker, h abi.Handle) int {
	s := stateOf(ctx, "TrackerAdd")
	tr := s.table.Get(uint64(t), handles.KindTracker, "TrackerAdd").(*tracker)
	if h == abi.Null {
		return 0
	}
	if len(tr.members) >= s.table.Limit() {
		s.setNoMemory()
		return -1
	}
	tr.members = append(tr.members, h)
	return 0
}

// trackerForgetAll drops every member without closing it; ownership returns
// to the caller.
func trackerForgetAll(ctx *abi.Context, t abi.Tracker) {
	s := stateOf(ctx, "TrackerForgetAll")
	tr := s.table.Get(uint64(t), handles.KindTracker, "TrackerForgetAll").(*tracker)
	tr.members = tr.members[:0]
}

// trackerClose closes every member in insertion order and frees t.
func trackerClose(ctx *abi.Context, t abi.Tracker) {
	s := stateOf(ctx, "TrackerClose")
	v, _ := s.table.Release(uint64(t), handles.KindTracker, "TrackerClose")
	tr := v.(*tracker)
	members := tr.members
	tr.members = nil
	for _, h := range members {
		if s.table.IsImmortal(uint64(h)) {
			continue
		}
		ctx.Close(ctx, h)
	}
}
