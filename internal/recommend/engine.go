package recommend

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
)

// Match is one vector-search hit: an indexed doctor document with the
// specialization from its metadata and the similarity score.
type Match struct {
	DoctorID       string
	Specialization string
	Score          float64
}

// Searcher is the external similarity-search collaborator. Results come
// back ranked best-first.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Match, error)
}

// DoctorSource supplies active doctors for the selection and fallback
// steps.
type DoctorSource interface {
	ActiveBySpecialization(specialization string, limit int) ([]models.Doctor, error)
	ActiveBySpecializationLike(fragment string, limit int) ([]models.Doctor, error)
	AnyActive(limit int) ([]models.Doctor, error)
}

// Maximum active doctors pulled per qualifying specialization.
const doctorsPerSpecialization = 2

// Engine blends keyword and vector relevance per specialization and
// resolves the result to concrete doctors. Search may be nil, in which
// case scoring is keyword-only.
type Engine struct {
	Doctors DoctorSource
	Search  Searcher
	Logger  *logrus.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine(doctors DoctorSource, search Searcher, logger *logrus.Logger) *Engine {
	return &Engine{Doctors: doctors, Search: search, Logger: logger}
}

// Recommend returns up to topK active doctors likely relevant to the
// free-text query. A vector-collaborator failure degrades to
// keyword-only scoring; an empty scored set walks the fallback ladder,
// so the only errors returned come from the doctor store itself.
func (e *Engine) Recommend(ctx context.Context, query string, topK int, threshold float64) ([]models.Doctor, error) {
	keywordScores := KeywordScores(query)

	var vectorResults []Match
	vectorScores := make(map[string]float64)
	if e.Search != nil {
		results, err := e.Search.Search(ctx, query, topK*2)
		if err != nil {
			e.Logger.WithFields(logrus.Fields{"error": err}).Warn("vector search unavailable, using keyword scores only")
		} else {
			vectorResults = results
			for _, m := range results {
				if m.Score > vectorScores[m.Specialization] {
					vectorScores[m.Specialization] = m.Score
				}
			}
		}
	}

	combined := blendScores(keywordScores, vectorScores)
	effectiveThreshold := adaptiveThreshold(combined, threshold)

	type scoredSpec struct {
		spec  string
		score float64
	}
	var qualifying []scoredSpec
	for spec, score := range combined {
		if score >= effectiveThreshold {
			qualifying = append(qualifying, scoredSpec{spec: spec, score: score})
		}
	}
	sort.Slice(qualifying, func(i, j int) bool {
		if qualifying[i].score != qualifying[j].score {
			return qualifying[i].score > qualifying[j].score
		}
		return qualifying[i].spec < qualifying[j].spec
	})

	var recommended []models.Doctor
	for _, candidate := range qualifying {
		doctors, err := e.Doctors.ActiveBySpecialization(candidate.spec, doctorsPerSpecialization)
		if err != nil {
			return nil, err
		}
		recommended = append(recommended, doctors...)
		if len(recommended) >= topK {
			break
		}
	}

	if len(recommended) == 0 {
		fallback, err := e.applyFallbacks(keywordScores, vectorResults, topK)
		if err != nil {
			return nil, err
		}
		recommended = fallback
	}

	if len(recommended) > topK {
		recommended = recommended[:topK]
	}
	return recommended, nil
}

// blendScores combines the two signals per specialization. The policy
// depends on signal strength rather than a single formula: a strong
// keyword match dominates, agreeing weak signals reinforce each other,
// and a lone signal is discounted.
func blendScores(keyword, vector map[string]float64) map[string]float64 {
	combined := make(map[string]float64)

	for spec := range keyword {
		combined[spec] = 0
	}
	for spec := range vector {
		combined[spec] = 0
	}

	for spec := range combined {
		k := keyword[spec]
		v := vector[spec]

		var score float64
		switch {
		case k > 0.7:
			score = k*0.8 + v*0.2
		case k > 0 && v > 0:
			score = k*0.6 + v*0.4 + 0.05
		case k > 0:
			score = k * 0.7
		default:
			score = v * 0.8
		}
		combined[spec] = min(score, 1.0)
	}

	return combined
}

// adaptiveThreshold lowers the caller's threshold when nothing reaches
// it, so a weak-but-best match still produces recommendations instead of
// an empty list. The floor is 0.1.
func adaptiveThreshold(combined map[string]float64, threshold float64) float64 {
	if len(combined) == 0 {
		return threshold
	}
	maxScore := 0.0
	for _, score := range combined {
		if score > maxScore {
			maxScore = score
		}
	}
	if maxScore < threshold {
		return max(maxScore*0.7, 0.1)
	}
	return threshold
}

// applyFallbacks resolves doctors when no specialization produced any:
// best keyword specialization, then best vector match, then general
// practitioners, then any active doctor. The first non-empty rung wins.
func (e *Engine) applyFallbacks(keywordScores map[string]float64, vectorResults []Match, topK int) ([]models.Doctor, error) {
	if len(keywordScores) > 0 {
		bestSpec := ""
		bestScore := -1.0
		for spec, score := range keywordScores {
			if score > bestScore || (score == bestScore && spec < bestSpec) {
				bestSpec, bestScore = spec, score
			}
		}
		doctors, err := e.Doctors.ActiveBySpecialization(bestSpec, topK)
		if err != nil {
			return nil, err
		}
		if len(doctors) > 0 {
			return doctors, nil
		}
	}

	if len(vectorResults) > 0 {
		doctors, err := e.Doctors.ActiveBySpecialization(vectorResults[0].Specialization, topK)
		if err != nil {
			return nil, err
		}
		if len(doctors) > 0 {
			return doctors, nil
		}
	}

	doctors, err := e.Doctors.ActiveBySpecializationLike("General", topK)
	if err != nil {
		return nil, err
	}
	if len(doctors) > 0 {
		return doctors, nil
	}

	return e.Doctors.AnyActive(topK)
}
