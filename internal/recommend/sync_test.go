package recommend

import (
	"context"
	"errors"
	"testing"

	"clinic-app-server/internal/models"
)

type fakeIndexer struct {
	upserted []string
	failOn   string
}

func (f *fakeIndexer) UpsertDoctor(ctx context.Context, doctor *models.Doctor) error {
	if doctor.ID == f.failOn {
		return errors.New("index write failed")
	}
	f.upserted = append(f.upserted, doctor.ID)
	return nil
}

func TestReindexAllWritesEveryDoctor(t *testing.T) {
	indexer := &fakeIndexer{}
	doctors := []models.Doctor{
		doctorNamed("d1", "Cardiology"),
		doctorNamed("d2", "Neurology"),
		doctorNamed("d3", "Oncology"),
	}

	if err := ReindexAll(context.Background(), indexer, doctors, quietLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(indexer.upserted) != 3 {
		t.Fatalf("expected all doctors indexed, got %v", indexer.upserted)
	}
}

func TestReindexAllStopsOnFirstFailure(t *testing.T) {
	indexer := &fakeIndexer{failOn: "d2"}
	doctors := []models.Doctor{
		doctorNamed("d1", "Cardiology"),
		doctorNamed("d2", "Neurology"),
		doctorNamed("d3", "Oncology"),
	}

	if err := ReindexAll(context.Background(), indexer, doctors, quietLogger()); err == nil {
		t.Fatal("expected the index failure to surface")
	}
	if len(indexer.upserted) != 1 || indexer.upserted[0] != "d1" {
		t.Fatalf("expected only d1 indexed before the failure, got %v", indexer.upserted)
	}
}

func TestReindexAllEmptySet(t *testing.T) {
	if err := ReindexAll(context.Background(), &fakeIndexer{}, nil, quietLogger()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
