package loop

import (
	"fmt"

	"github.com/reprise-cli/reprise/util"
	"github.com/samber/mo"
)

// Region is an A/B section of a video, in seconds. Either bound may be unset.
type Region struct {
	Start mo.Option[float64]
	End   mo.Option[float64]
}

// NewRegion returns a region with both bounds set.
func NewRegion(start, end float64) Region {
	return Region{Start: mo.Some(start), End: mo.Some(end)}
}

// CanEnable reports whether both bounds are set and start is before end.
func (r Region) CanEnable() bool {
	start, okStart := r.Start.Get()
	end, okEnd := r.End.Get()
	return okStart && okEnd && start < end
}

// Length returns end - start, or 0 when the region cannot be enabled.
func (r Region) Length() float64 {
	if !r.CanEnable() {
		return 0
	}

	return r.End.MustGet() - r.Start.MustGet()
}

func (r Region) String() string {
	bound := func(o mo.Option[float64]) string {
		if v, ok := o.Get(); ok {
			return util.Timestamp(v)
		}
		return "--:--"
	}

	return fmt.Sprintf("%s - %s", bound(r.Start), bound(r.End))
}
