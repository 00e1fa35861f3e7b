// Package optimization solves for capital-aware portfolio weights over a
// candidate symbol set.
package optimization

// Result is the atomic outcome of one optimization call. Either every field
// is populated or the call failed; there is no partial result.
type Result struct {
	Weights          map[string]float64 `json:"weights"`
	ExpectedReturn   float64            `json:"expected_return"`
	NetReturn        float64            `json:"net_return"`
	Volatility       float64            `json:"volatility"`
	SharpeRatio      float64            `json:"sharpe_ratio"`
	NetSharpeRatio   float64            `json:"net_sharpe_ratio"`
	TransactionCosts map[string]float64 `json:"transaction_costs"`
	InvestmentAmount float64            `json:"investment_amount"`
}
