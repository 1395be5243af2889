// Package report builds read-only rollups for administrative views. The
// builders here are pure functions over in-memory slices; Reporter runs the
// equivalent rollups against the store. Soft-deleted entities are excluded
// everywhere.
package report

import (
	"sort"

	"trustwork/models"
)

// WarningStats is the admin-facing rollup over a set of warnings.
type WarningStats struct {
	Total               int64                            `json:"total"`
	ByStatus            map[models.WarningStatus]int64   `json:"byStatus"`
	BySeverity          map[models.WarningSeverity]int64 `json:"bySeverity"`
	ByCategory          map[models.WarningCategory]int64 `json:"byCategory"`
	Acknowledged        int64                            `json:"acknowledged"`
	ResolvedCount       int64                            `json:"resolvedCount"`
	AvgDaysToResolution *float64                         `json:"avgDaysToResolution,omitempty"`
	TopIssuers          []IssuerStat                     `json:"topIssuers,omitempty"`
}

// IssuerStat is one row of the top-issuers leaderboard.
type IssuerStat struct {
	IssuerID string `json:"issuerId"`
	Count    int64  `json:"count"`
}

// BuildWarningStats rolls a slice of warnings up into counts, the average
// days-to-resolution over resolved warnings, and the top issuers.
// AvgDaysToResolution is nil when nothing has been resolved.
func BuildWarningStats(warnings []models.Warning, topN int) WarningStats {
	stats := WarningStats{
		ByStatus:   map[models.WarningStatus]int64{},
		BySeverity: map[models.WarningSeverity]int64{},
		ByCategory: map[models.WarningCategory]int64{},
	}
	var resolutionDays float64
	for i := range warnings {
		w := &warnings[i]
		stats.Total++
		stats.ByStatus[w.Status]++
		stats.BySeverity[w.Severity]++
		stats.ByCategory[w.Category]++
		if w.Acknowledged() {
			stats.Acknowledged++
		}
		if w.ResolvedAt != nil {
			stats.ResolvedCount++
			resolutionDays += w.ResolvedAt.Sub(w.IssuedAt).Hours() / 24
		}
	}
	if stats.ResolvedCount > 0 {
		avg := resolutionDays / float64(stats.ResolvedCount)
		stats.AvgDaysToResolution = &avg
	}
	stats.TopIssuers = BuildTopIssuers(warnings, topN)
	return stats
}

// BuildTopIssuers returns the n actors who issued the most warnings,
// descending by count with issuer id as the tie-break.
func BuildTopIssuers(warnings []models.Warning, n int) []IssuerStat {
	if n <= 0 {
		n = 10
	}
	counts := map[string]int64{}
	for i := range warnings {
		counts[warnings[i].IssuedBy]++
	}
	out := make([]IssuerStat, 0, len(counts))
	for id, c := range counts {
		out = append(out, IssuerStat{IssuerID: id, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].IssuerID < out[j].IssuerID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// AvgDaysToResolution averages resolvedAt-issuedAt in days over resolved
// warnings. Returns nil when no warning in the slice has been resolved.
func AvgDaysToResolution(warnings []models.Warning) *float64 {
	var days float64
	var n int64
	for i := range warnings {
		if warnings[i].ResolvedAt != nil {
			days += warnings[i].ResolvedAt.Sub(warnings[i].IssuedAt).Hours() / 24
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := days / float64(n)
	return &avg
}

// BuildProviderRiskDistribution counts providers per risk level, skipping
// soft-deleted profiles.
func BuildProviderRiskDistribution(providers []models.ProviderProfile) map[models.RiskLevel]int64 {
	out := map[models.RiskLevel]int64{}
	for i := range providers {
		if providers[i].IsDeleted {
			continue
		}
		out[providers[i].RiskLevel]++
	}
	return out
}

// BuildClientRiskDistribution counts clients per risk level, skipping
// soft-deleted profiles.
func BuildClientRiskDistribution(clients []models.ClientProfile) map[models.RiskLevel]int64 {
	out := map[models.RiskLevel]int64{}
	for i := range clients {
		if clients[i].IsDeleted {
			continue
		}
		out[clients[i].RiskLevel]++
	}
	return out
}
