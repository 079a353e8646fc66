package nego

import (
	"math/big"

	"github.com/caydia/brokerbot/internal/domain"
)

var hundred = big.NewInt(100)

// Decide evaluates an offered price against the seller's asking price and
// the configured thresholds. A threshold of 0 disables that side.
//
// Accept wins when offered >= floor(seller * acceptPct / 100); reject when
// offered < floor(seller * rejectPct / 100). All arithmetic is exact big.Int
// integer math; prices may exceed the 53-bit safe range and must never pass
// through floating point.
func Decide(offered, seller *big.Int, acceptPct, rejectPct int64) domain.Decision {
	if acceptPct > 0 {
		floor := new(big.Int).Mul(seller, big.NewInt(acceptPct))
		floor.Quo(floor, hundred)
		if offered.Cmp(floor) >= 0 {
			return domain.DecisionAccept
		}
	}
	if rejectPct > 0 {
		floor := new(big.Int).Mul(seller, big.NewInt(rejectPct))
		floor.Quo(floor, hundred)
		if offered.Cmp(floor) < 0 {
			return domain.DecisionReject
		}
	}
	return domain.DecisionManual
}
