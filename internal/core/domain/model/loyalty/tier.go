package loyalty

// Tier is the customer level derived from lifetime points.
type Tier struct {
	Name      string
	Threshold int
}

// tiers are ordered from highest to lowest threshold.
var tiers = []Tier{
	{Name: "Clienta Diamante", Threshold: 300},
	{Name: "Clienta Rose Gold", Threshold: 100},
	{Name: "Clienta Pink", Threshold: 0},
}

// TierFor returns the tier reached with lifetimePoints.
func TierFor(lifetimePoints int) Tier {
	for _, t := range tiers {
		if lifetimePoints >= t.Threshold {
			return t
		}
	}
	return tiers[len(tiers)-1]
}

// PointsToNextTier returns the lifetime points still missing for the next
// tier, and false when the client already holds the top tier.
func PointsToNextTier(lifetimePoints int) (int, bool) {
	for i := len(tiers) - 1; i >= 0; i-- {
		if lifetimePoints < tiers[i].Threshold {
			return tiers[i].Threshold - lifetimePoints, true
		}
	}
	return 0, false
}
