package trace

import (
	"testing"
)

func TestSummarize_NilTrace_ReturnsZeroSummary(t *testing.T) {
	summary := Summarize(nil)
	if summary == nil {
		t.Fatal("expected non-nil summary")
	}
	if summary.Blocks != 0 || summary.Retargets != 0 || summary.HashRateChanges != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
}

func TestSummarize_EmptyTrace_ReturnsZeroSummary(t *testing.T) {
	summary := Summarize(NewSimulationTrace(TraceLevelBlocks))
	if summary.MeanAdjustment != 0 || summary.MeanBlockTime != 0 {
		t.Errorf("expected zero aggregates, got %+v", summary)
	}
}

func TestSummarize_Aggregates(t *testing.T) {
	// GIVEN a trace with blocks, two retargets and three hash-rate steps
	st := NewSimulationTrace(TraceLevelBlocks)
	st.RecordBlock(BlockRecord{Height: 1, BlockTime: 500})
	st.RecordBlock(BlockRecord{Height: 2, BlockTime: 700})
	st.RecordRetarget(RetargetRecord{OldDifficulty: 100, NewDifficulty: 50})
	st.RecordRetarget(RetargetRecord{OldDifficulty: 100, NewDifficulty: 150})
	st.RecordHashRate(HashRateRecord{NewHashRate: 10})
	st.RecordHashRate(HashRateRecord{NewHashRate: 30, Floored: false})
	st.RecordHashRate(HashRateRecord{NewHashRate: 1, Floored: true})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts and extremes are correct
	if summary.Blocks != 2 {
		t.Errorf("Blocks = %d, want 2", summary.Blocks)
	}
	if summary.MeanBlockTime != 600 {
		t.Errorf("MeanBlockTime = %v, want 600", summary.MeanBlockTime)
	}
	if summary.P50BlockTime != 500 || summary.P95BlockTime != 700 {
		t.Errorf("block-time quantiles = %v/%v, want 500/700", summary.P50BlockTime, summary.P95BlockTime)
	}
	if summary.Retargets != 2 {
		t.Errorf("Retargets = %d, want 2", summary.Retargets)
	}
	if summary.MeanAdjustment != 1.0 || summary.MinAdjustment != 0.5 || summary.MaxAdjustment != 1.5 {
		t.Errorf("adjustments = %v/%v/%v, want 1/0.5/1.5",
			summary.MeanAdjustment, summary.MinAdjustment, summary.MaxAdjustment)
	}
	if summary.HashRateChanges != 3 || summary.FlooredChanges != 1 {
		t.Errorf("hash-rate changes = %d (floored %d), want 3 (1)", summary.HashRateChanges, summary.FlooredChanges)
	}
	if summary.MinHashRate != 1 || summary.MaxHashRate != 30 {
		t.Errorf("hash-rate range = [%v, %v], want [1, 30]", summary.MinHashRate, summary.MaxHashRate)
	}
}
