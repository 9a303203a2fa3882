package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDeterministic(t *testing.T) {
	in := PredictInput{Age: 35, AnnualIncome: 85000, WorkExperience: 12, FamilySize: 3, Profession: "engineer"}
	first := Score(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(in))
	}
}

func TestScoreBounds(t *testing.T) {
	cases := []PredictInput{
		{Age: 18, AnnualIncome: 1, WorkExperience: 0, FamilySize: 20, Profession: "student"},
		{Age: 38, AnnualIncome: 10000000, WorkExperience: 80, FamilySize: 1, Profession: "doctor"},
		{Age: 100, AnnualIncome: 500, WorkExperience: 0, FamilySize: 20, Profession: ""},
		{Age: 38, AnnualIncome: 200000, WorkExperience: 30, FamilySize: 1, Profession: "engineer"},
	}
	for _, in := range cases {
		score := Score(in)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
		assert.Equal(t, math.Round(score*10)/10, score, "one decimal place")
	}
}

func TestScoreComponents(t *testing.T) {
	// Ideal profile: income at cap, ideal age, experience at cap,
	// no family penalty, boosted profession. 52+18+20-0+8 = 98.
	score := Score(PredictInput{Age: 38, AnnualIncome: 200000, WorkExperience: 30, FamilySize: 1, Profession: "engineer"})
	assert.Equal(t, 98.0, score)

	// Same profile without the profession boost.
	score = Score(PredictInput{Age: 38, AnnualIncome: 200000, WorkExperience: 30, FamilySize: 1, Profession: "teacher"})
	assert.Equal(t, 90.0, score)

	// Family size 9 maxes the penalty at 10.
	score = Score(PredictInput{Age: 38, AnnualIncome: 200000, WorkExperience: 30, FamilySize: 9, Profession: "teacher"})
	assert.Equal(t, 80.0, score)
}

func TestScoreProfessionBoostCaseInsensitive(t *testing.T) {
	base := Score(PredictInput{Age: 30, AnnualIncome: 60000, WorkExperience: 5, FamilySize: 2, Profession: "artist"})
	boosted := Score(PredictInput{Age: 30, AnnualIncome: 60000, WorkExperience: 5, FamilySize: 2, Profession: "  Doctor "})
	assert.InDelta(t, 8.0, boosted-base, 0.11)
}

func TestConfidenceFor(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(75))
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(100))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(74.9))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(40))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(39.9))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(0))
}

func TestAdjustConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, AdjustConfidence(ConfidenceHigh, 75))
	assert.Equal(t, ConfidenceMedium, AdjustConfidence(ConfidenceHigh, 80))
	assert.Equal(t, ConfidenceMedium, AdjustConfidence(ConfidenceMedium, 80))
	assert.Equal(t, ConfidenceLow, AdjustConfidence(ConfidenceHigh, 91))
	assert.Equal(t, ConfidenceLow, AdjustConfidence(ConfidenceMedium, 91))
	assert.Equal(t, ConfidenceLow, AdjustConfidence(ConfidenceLow, 10))
}

func TestClusterOfRuleOrder(t *testing.T) {
	// High income, high spending wins rule 0 even when later rules also match.
	assert.Equal(t, 0, ClusterOf(25, 95000, 75))
	assert.Equal(t, 1, ClusterOf(55, 95000, 40))
	assert.Equal(t, 2, ClusterOf(40, 45000, 65))
	assert.Equal(t, 3, ClusterOf(25, 60000, 55))
	assert.Equal(t, 4, ClusterOf(55, 60000, 30))
	assert.Equal(t, 5, ClusterOf(40, 60000, 50))
}

func TestClusterOfBoundaries(t *testing.T) {
	// income exactly 90000 counts as high income.
	assert.Equal(t, 0, ClusterOf(40, 90000, 70))
	assert.Equal(t, 1, ClusterOf(40, 90000, 69.9))
	// income exactly 50000 does not fire the budget rule.
	assert.Equal(t, 5, ClusterOf(40, 50000, 60))
	assert.Equal(t, 2, ClusterOf(40, 49999, 60))
	// age boundaries.
	assert.Equal(t, 3, ClusterOf(28, 60000, 50))
	assert.Equal(t, 5, ClusterOf(29, 60000, 50))
	assert.Equal(t, 4, ClusterOf(50, 60000, 44.9))
	assert.Equal(t, 5, ClusterOf(49, 60000, 44))
}

func TestSegmentPreservesOrder(t *testing.T) {
	rows := []SegmentRow{
		{CustomerID: "a", Age: 25, AnnualIncome: 95000, SpendingScore: 75},
		{CustomerID: "b", Age: 55, AnnualIncome: 60000, SpendingScore: 30},
		{CustomerID: "c", Age: 40, AnnualIncome: 60000, SpendingScore: 50},
	}
	clusters := Segment(rows)
	require.Len(t, clusters, 3)
	assert.Equal(t, []int{0, 4, 5}, clusters)
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment(nil))
}
