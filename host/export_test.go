package host

import (
	"github.com/reglet-dev/reglet-abi/abi"
	"github.com/reglet-dev/reglet-abi/internal/handles"
)

const MaxTrackerPrealloc = maxTrackerPrealloc

// TrackerCap returns the capacity of t's member list.
func TrackerCap(ctx *abi.Context, t abi.Tracker) int {
	s := stateOf(ctx, "TrackerCap")
	return cap(s.table.Get(uint64(t), handles.KindTracker, "TrackerCap").(*tracker).members)
}
