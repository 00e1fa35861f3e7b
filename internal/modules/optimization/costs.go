package optimization

// Capital-aware cost and bound model. All rates are fractions of invested
// capital per unit weight.
const (
	// Accounts under this size pay a fixed per-trade commission.
	smallAccountThreshold = 5000.0
	fixedCommission       = 1.0

	marketImpactRate = 0.0001
	bidAskSpreadRate = 0.0005

	// Dollar buffer on top of one share's price when deriving the minimum
	// viable weight, so the allocation survives costs.
	shareBuffer = 10.0

	// Concentration tiers: smaller accounts may concentrate more because
	// spreading a small balance across many positions is disproportionately
	// expensive.
	tierOneCapital = 10000.0
	tierTwoCapital = 50000.0
	tierOneMax     = 0.5
	tierTwoMax     = 0.4
	tierThreeMax   = 0.25

	// Diversification penalty: positions above this weight count as held.
	positionThreshold = 0.01

	smallAccountMaxPositions = 7
	smallAccountPenalty      = 0.01
	midAccountThreshold      = 25000.0
	midAccountMaxPositions   = 12
	midAccountPenalty        = 0.005
)

// transactionCostRate is the per-unit-weight cost rate for one candidate when
// capital is split across n candidates. The commission term amortizes the
// fixed fee over the average position size.
func transactionCostRate(capital float64, n int) float64 {
	commission := 0.0
	if capital < smallAccountThreshold {
		commission = fixedCommission
	}
	perPosition := capital / float64(n)
	return commission/perPosition + marketImpactRate + bidAskSpreadRate
}

// minWeight is the smallest weight whose dollar allocation can still buy one
// share with a cost buffer.
func minWeight(price, capital float64) float64 {
	return (price + shareBuffer) / capital
}

// maxWeight is the capital-tiered concentration cap.
func maxWeight(capital float64) float64 {
	switch {
	case capital < tierOneCapital:
		return tierOneMax
	case capital < tierTwoCapital:
		return tierTwoMax
	default:
		return tierThreeMax
	}
}

// weightBounds derives the [min, max] weight interval per candidate. When a
// candidate's minimum viable weight exceeds the tier cap, the cap is raised
// to the minimum so the interval stays non-empty.
func weightBounds(prices []float64, capital float64) [][2]float64 {
	upper := maxWeight(capital)
	bounds := make([][2]float64, len(prices))
	for i, price := range prices {
		lo := minWeight(price, capital)
		hi := upper
		if lo > hi {
			hi = lo
		}
		bounds[i] = [2]float64{lo, hi}
	}
	return bounds
}

// diversificationPenalty discourages small accounts from fragmenting into
// many tiny positions. Positions are counted at weight > positionThreshold.
func diversificationPenalty(weights []float64, capital float64) float64 {
	positions := 0
	for _, w := range weights {
		if w > positionThreshold {
			positions++
		}
	}

	switch {
	case capital < smallAccountThreshold && positions > smallAccountMaxPositions:
		return smallAccountPenalty * float64(positions-smallAccountMaxPositions)
	case capital < midAccountThreshold && positions > midAccountMaxPositions:
		return midAccountPenalty * float64(positions-midAccountMaxPositions)
	default:
		return 0
	}
}
