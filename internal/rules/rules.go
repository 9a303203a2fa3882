// Package rules holds the deterministic scoring and segmentation rules.
// Everything here is pure: no I/O, no state, same output for same input.
package rules

import (
	"math"
	"strings"
)

// Version identifies the rule set snapshot stored alongside results.
const Version = "rules-v1"

// Confidence tiers for a spending score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var boostedProfessions = map[string]struct{}{
	"engineer":   {},
	"doctor":     {},
	"manager":    {},
	"consultant": {},
}

// PredictInput are the customer features used for spending prediction.
type PredictInput struct {
	Age            int
	AnnualIncome   float64
	WorkExperience int
	FamilySize     int
	Profession     string
}

// Score computes the predicted spending score in [0,100], one decimal place.
func Score(in PredictInput) float64 {
	incomeNorm := clamp01(in.AnnualIncome / 200000)
	ageFit := 1 - clamp01(math.Abs(float64(in.Age)-38)/40)
	expNorm := clamp01(float64(in.WorkExperience) / 30)
	familyPenalty := clamp01(float64(in.FamilySize-1) / 8)

	boost := 0.0
	if _, ok := boostedProfessions[strings.ToLower(strings.TrimSpace(in.Profession))]; ok {
		boost = 0.08
	}

	raw := incomeNorm*52 + ageFit*18 + expNorm*20 - familyPenalty*10 + boost*100
	bounded := math.Max(0, math.Min(100, raw))
	return math.Round(bounded*10) / 10
}

// ConfidenceFor maps a score to a confidence tier.
func ConfidenceFor(score float64) string {
	switch {
	case score >= 75:
		return ConfidenceHigh
	case score >= 40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// AdjustConfidence downgrades confidence under high market volatility:
// above 75 a high prediction becomes medium, above 90 everything is low.
func AdjustConfidence(confidence string, volatility float64) string {
	if volatility > 90 {
		return ConfidenceLow
	}
	if volatility > 75 && confidence == ConfidenceHigh {
		return ConfidenceMedium
	}
	return confidence
}

// SegmentRow is one customer row for batch segmentation.
type SegmentRow struct {
	CustomerID    string
	Age           float64
	AnnualIncome  float64
	SpendingScore float64
}

// ClusterOf assigns a bucket 0..5. Rule order matters; first match wins.
func ClusterOf(age, income, spending float64) int {
	switch {
	case income >= 90000 && spending >= 70:
		return 0
	case income >= 90000 && spending < 70:
		return 1
	case income < 50000 && spending >= 60:
		return 2
	case age <= 28 && spending >= 50:
		return 3
	case age >= 50 && spending < 45:
		return 4
	default:
		return 5
	}
}

// Segment applies ClusterOf to each row, preserving input order.
func Segment(rows []SegmentRow) []int {
	clusters := make([]int, 0, len(rows))
	for _, row := range rows {
		clusters = append(clusters, ClusterOf(row.Age, row.AnnualIncome, row.SpendingScore))
	}
	return clusters
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
