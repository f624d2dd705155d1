package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents captures retargets, hash-rate steps and intensity refreshes.
	TraceLevelEvents TraceLevel = "events"
	// TraceLevelBlocks additionally captures every mined block.
	TraceLevelBlocks TraceLevel = "blocks"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelEvents: true,
	TraceLevelBlocks: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SimulationTrace collects decision records during a run.
type SimulationTrace struct {
	Level       TraceLevel
	Blocks      []BlockRecord
	Retargets   []RetargetRecord
	HashRates   []HashRateRecord
	Intensities []IntensityRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(level TraceLevel) *SimulationTrace {
	if level == "" {
		level = TraceLevelNone
	}
	return &SimulationTrace{
		Level:       level,
		Blocks:      make([]BlockRecord, 0),
		Retargets:   make([]RetargetRecord, 0),
		HashRates:   make([]HashRateRecord, 0),
		Intensities: make([]IntensityRecord, 0),
	}
}

// Enabled reports whether records are kept at all. Safe on a nil trace.
func (st *SimulationTrace) Enabled() bool {
	return st != nil && st.Level != TraceLevelNone
}

// RecordBlock appends a block record when the level keeps blocks.
func (st *SimulationTrace) RecordBlock(record BlockRecord) {
	if st == nil || st.Level != TraceLevelBlocks {
		return
	}
	st.Blocks = append(st.Blocks, record)
}

// RecordRetarget appends a retarget record.
func (st *SimulationTrace) RecordRetarget(record RetargetRecord) {
	if !st.Enabled() {
		return
	}
	st.Retargets = append(st.Retargets, record)
}

// RecordHashRate appends a hash-rate record.
func (st *SimulationTrace) RecordHashRate(record HashRateRecord) {
	if !st.Enabled() {
		return
	}
	st.HashRates = append(st.HashRates, record)
}

// RecordIntensity appends an intensity record.
func (st *SimulationTrace) RecordIntensity(record IntensityRecord) {
	if !st.Enabled() {
		return
	}
	st.Intensities = append(st.Intensities, record)
}
