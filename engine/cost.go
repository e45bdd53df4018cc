package engine

// Estimator converts token usage to an estimated cost in USD using a
// price-per-million-tokens pair. Negative token counts are a caller
// precondition violation.
type Estimator struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

// Estimate returns the cost of one request. Pure and deterministic; cost
// scales linearly with each token count.
func (e Estimator) Estimate(inputTokens, outputTokens int) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * e.InputPricePerMillion
	outputCost := float64(outputTokens) / 1_000_000 * e.OutputPricePerMillion
	return inputCost + outputCost
}
