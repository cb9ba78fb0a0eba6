package recommend

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
)

type fakeDoctorSource struct {
	bySpec    map[string][]models.Doctor
	general   []models.Doctor
	anyActive []models.Doctor
}

func (f *fakeDoctorSource) ActiveBySpecialization(specialization string, limit int) ([]models.Doctor, error) {
	doctors := f.bySpec[specialization]
	if len(doctors) > limit {
		doctors = doctors[:limit]
	}
	return doctors, nil
}

func (f *fakeDoctorSource) ActiveBySpecializationLike(fragment string, limit int) ([]models.Doctor, error) {
	doctors := f.general
	if len(doctors) > limit {
		doctors = doctors[:limit]
	}
	return doctors, nil
}

func (f *fakeDoctorSource) AnyActive(limit int) ([]models.Doctor, error) {
	doctors := f.anyActive
	if len(doctors) > limit {
		doctors = doctors[:limit]
	}
	return doctors, nil
}

type fakeSearcher struct {
	matches []Match
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, k int) ([]Match, error) {
	return f.matches, f.err
}

func doctorNamed(id, specialization string) models.Doctor {
	d := models.Doctor{Specialization: specialization, IsActive: true}
	d.ID = id
	return d
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestEngine(doctors DoctorSource, search Searcher) *Engine {
	return NewEngine(doctors, search, quietLogger())
}

func doctorIDs(doctors []models.Doctor) []string {
	ids := make([]string, 0, len(doctors))
	for i := range doctors {
		ids = append(ids, doctors[i].ID)
	}
	return ids
}

func TestRecommendKeywordOnly(t *testing.T) {
	source := &fakeDoctorSource{bySpec: map[string][]models.Doctor{
		"Cardiology": {doctorNamed("c1", "Cardiology"), doctorNamed("c2", "Cardiology"), doctorNamed("c3", "Cardiology")},
	}}
	engine := newTestEngine(source, nil)

	doctors, err := engine.Recommend(context.Background(), "severe chest pain", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) == 0 {
		t.Fatal("expected recommendations for a clear cardiac complaint")
	}
	// At most two doctors come from a single specialization.
	count := 0
	for _, d := range doctors {
		if d.Specialization == "Cardiology" {
			count++
		}
	}
	if count > doctorsPerSpecialization {
		t.Fatalf("expected at most %d doctors per specialization, got %v", doctorsPerSpecialization, doctorIDs(doctors))
	}
}

func TestRecommendDegradesWhenSearchFails(t *testing.T) {
	source := &fakeDoctorSource{bySpec: map[string][]models.Doctor{
		"Cardiology": {doctorNamed("c1", "Cardiology")},
	}}
	engine := newTestEngine(source, &fakeSearcher{err: errors.New("index unreachable")})

	doctors, err := engine.Recommend(context.Background(), "chest pain", 3, 0.7)
	if err != nil {
		t.Fatalf("a search outage must not fail the request: %v", err)
	}
	if len(doctors) == 0 {
		t.Fatal("expected keyword-only recommendations during a search outage")
	}
}

func TestRecommendTruncatesToTopK(t *testing.T) {
	source := &fakeDoctorSource{bySpec: map[string][]models.Doctor{
		"Cardiology":  {doctorNamed("c1", "Cardiology"), doctorNamed("c2", "Cardiology")},
		"Orthopedics": {doctorNamed("o1", "Orthopedics"), doctorNamed("o2", "Orthopedics")},
	}}
	engine := newTestEngine(source, nil)

	doctors, err := engine.Recommend(context.Background(), "chest pain and knee pain", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) > 3 {
		t.Fatalf("expected at most 3 doctors, got %v", doctorIDs(doctors))
	}
}

func TestRecommendFallsBackToGeneral(t *testing.T) {
	general := []models.Doctor{doctorNamed("g1", "General Physician")}
	source := &fakeDoctorSource{general: general}
	engine := newTestEngine(source, nil)

	doctors, err := engine.Recommend(context.Background(), "zzz nothing matches this", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 1 || doctors[0].ID != "g1" {
		t.Fatalf("expected the general-practice fallback, got %v", doctorIDs(doctors))
	}
}

func TestRecommendFallsBackToAnyActive(t *testing.T) {
	source := &fakeDoctorSource{anyActive: []models.Doctor{doctorNamed("a1", "Oncology")}}
	engine := newTestEngine(source, nil)

	doctors, err := engine.Recommend(context.Background(), "zzz nothing matches this", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 1 || doctors[0].ID != "a1" {
		t.Fatalf("expected the any-active fallback, got %v", doctorIDs(doctors))
	}
}

func TestRecommendUsesVectorSignalAlone(t *testing.T) {
	source := &fakeDoctorSource{bySpec: map[string][]models.Doctor{
		"Neurology": {doctorNamed("n1", "Neurology")},
	}}
	search := &fakeSearcher{matches: []Match{{DoctorID: "n1", Specialization: "Neurology", Score: 0.95}}}
	engine := newTestEngine(source, search)

	doctors, err := engine.Recommend(context.Background(), "zzz nothing keyword matches", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doctors) != 1 || doctors[0].ID != "n1" {
		t.Fatalf("expected the vector match to drive the result, got %v", doctorIDs(doctors))
	}
}

func TestBlendScoresStrongKeywordDominates(t *testing.T) {
	combined := blendScores(map[string]float64{"Cardiology": 0.9}, map[string]float64{"Cardiology": 0.5})
	want := 0.9*0.8 + 0.5*0.2
	if got := combined["Cardiology"]; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBlendScoresAgreeingSignalsReinforce(t *testing.T) {
	combined := blendScores(map[string]float64{"Neurology": 0.5}, map[string]float64{"Neurology": 0.6})
	want := 0.5*0.6 + 0.6*0.4 + 0.05
	if got := combined["Neurology"]; got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestBlendScoresLoneSignalsDiscounted(t *testing.T) {
	combined := blendScores(map[string]float64{"Oncology": 0.5}, nil)
	if got := combined["Oncology"]; got != 0.5*0.7 {
		t.Fatalf("expected discounted keyword-only score, got %v", got)
	}

	combined = blendScores(nil, map[string]float64{"Oncology": 0.5})
	if got := combined["Oncology"]; got != 0.5*0.8 {
		t.Fatalf("expected discounted vector-only score, got %v", got)
	}
}

func TestBlendScoresCapped(t *testing.T) {
	combined := blendScores(map[string]float64{"Cardiology": 1.0}, map[string]float64{"Cardiology": 1.0})
	if got := combined["Cardiology"]; got != 1.0 {
		t.Fatalf("expected cap at 1.0, got %v", got)
	}
}

func TestAdaptiveThresholdLowersForWeakMatches(t *testing.T) {
	combined := map[string]float64{"Cardiology": 0.5}
	if got := adaptiveThreshold(combined, 0.7); got != 0.5*0.7 {
		t.Fatalf("expected lowered threshold %v, got %v", 0.5*0.7, got)
	}
}

func TestAdaptiveThresholdHasFloor(t *testing.T) {
	combined := map[string]float64{"Cardiology": 0.05}
	if got := adaptiveThreshold(combined, 0.7); got != 0.1 {
		t.Fatalf("expected the 0.1 floor, got %v", got)
	}
}

func TestAdaptiveThresholdKeepsStrongMatches(t *testing.T) {
	combined := map[string]float64{"Cardiology": 0.9}
	if got := adaptiveThreshold(combined, 0.7); got != 0.7 {
		t.Fatalf("expected the caller's threshold, got %v", got)
	}
}
