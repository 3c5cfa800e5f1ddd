package catalog

import (
	"fmt"
	"math"

	"github.com/meridian-data/funnelboard/pkg/core"
)

// Summary holds the four headline metrics shown above the tabs. They are
// derived from the FICO dropoff result rather than a sixth warehouse query.
type Summary struct {
	Approved     float64
	TermSelected float64
	DroppedOff   float64

	// OverallDropoffPct is nil when no approved checkouts exist in the
	// window (null propagation, not zero).
	OverallDropoffPct *float64
}

// Summarize computes the headline metrics from the fico_dropoff ResultSet.
func Summarize(fico core.ResultSet) (Summary, error) {
	approved, ok := fico.SumFloat("APPROVED")
	if !ok {
		return Summary{}, fmt.Errorf("summary: missing APPROVED column")
	}
	dropped, ok := fico.SumFloat("DROPPED_OFF")
	if !ok {
		return Summary{}, fmt.Errorf("summary: missing DROPPED_OFF column")
	}

	s := Summary{
		Approved:     approved,
		TermSelected: approved - dropped,
		DroppedOff:   dropped,
	}
	if approved > 0 {
		pct := math.Round(dropped/approved*1000) / 10
		s.OverallDropoffPct = &pct
	}
	return s, nil
}
