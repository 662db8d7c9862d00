package ranking

import (
	"sort"
	"strings"

	"trailhound/internal/services/tmdb"
)

// Quality is a discrete trailer quality preference.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// supportedSite is the one hosting site the download executor can fetch from.
const supportedSite = "YouTube"

// trailerType is the TMDB video type tag marking a real trailer, as opposed
// to clips, featurettes, and teasers.
const trailerType = "Trailer"

// TargetSize maps a quality tier to the TMDB size value it aims for.
func (q Quality) TargetSize() int {
	switch q {
	case QualityLow:
		return 480
	case QualityMedium:
		return 720
	default:
		return 1080
	}
}

// ParseQuality converts a config string to a Quality, defaulting to high.
func ParseQuality(value string) Quality {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(QualityLow):
		return QualityLow
	case string(QualityMedium):
		return QualityMedium
	default:
		return QualityHigh
	}
}

// PickBest selects the single best trailer from a candidate list.
//
// Candidates are first filtered to supported-site entries tagged as trailers.
// The survivors are ordered by officiality (official first), then closeness
// to the tier's target size, then publish time (most recent first). The sort
// is stable, so the result is deterministic for a fixed input list. ok is
// false when no candidate survives filtering.
func PickBest(candidates []tmdb.Video, tier Quality) (tmdb.Video, bool) {
	filtered := make([]tmdb.Video, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Site != supportedSite || candidate.Type != trailerType {
			continue
		}
		filtered = append(filtered, candidate)
	}
	if len(filtered) == 0 {
		return tmdb.Video{}, false
	}

	target := tier.TargetSize()
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Official != b.Official {
			return a.Official
		}
		distA, distB := absDiff(a.Size, target), absDiff(b.Size, target)
		if distA != distB {
			return distA < distB
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
	return filtered[0], true
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
