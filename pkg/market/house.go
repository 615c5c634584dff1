package market

// House represents a single property on the market. Houses are plain
// immutable values: all fields are set at construction and never
// mutated by the engine.
type House struct {
	ID      string
	Quality float64
}
