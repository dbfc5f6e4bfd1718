// Package pricing maps paid checkout amounts to video-credit grants.
package pricing

// Tier grants Credits for any payment of at least MinAmount minor currency
// units.
type Tier struct {
	MinAmount int64
	Credits   int
}

// Tiers is evaluated highest threshold first so a large payment can never be
// under-credited by a lower tier. Boundaries are inclusive.
var Tiers = []Tier{
	{MinAmount: 59000, Credits: 10}, // $590 for 10 videos
	{MinAmount: 34500, Credits: 5},  // $345 for 5 videos
	{MinAmount: 7900, Credits: 1},   // $79 for 1 video
}

// CreditsForAmount returns the credit grant for a paid amount. Amounts below
// the lowest tier grant zero credits; the order is still recorded so the
// processor does not retry legitimately small promotional payments.
func CreditsForAmount(amount int64) int {
	for _, t := range Tiers {
		if amount >= t.MinAmount {
			return t.Credits
		}
	}
	return 0
}
