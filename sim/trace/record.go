// Package trace provides per-run recording of mining decisions for later analysis.
// It stores pure data types and does not depend on sim or sim/mining.
package trace

// BlockRecord captures one mined block and the footprint attributed to it.
type BlockRecord struct {
	Height       int64
	Time         float64 // virtual time the block completed
	BlockTime    float64 // difficulty / hash rate when mining started
	Transactions int     // pool units folded into the block
	HashRate     float64
	Difficulty   float64

	FootprintPerSecond      float64
	FootprintPerBlock       float64
	FootprintPerTransaction float64 // 0 for a block with no transactions
}

// RetargetRecord captures one difficulty adjustment.
type RetargetRecord struct {
	Height        int64
	Time          float64
	Elapsed       float64 // seconds measured for the adjustment window
	OldDifficulty float64
	NewDifficulty float64
	Mode          string
}

// HashRateRecord captures one step of the hash-rate random walk.
type HashRateRecord struct {
	Time        float64
	OldHashRate float64
	NewHashRate float64
	Coefficient float64 // percent change applied before any floor
	Floored     bool
}

// IntensityRecord captures one refresh of the weighted carbon intensity.
type IntensityRecord struct {
	Time      float64
	Intensity float64
}
