package recommend

import (
	"context"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
)

// DoctorIndexer maintains the per-doctor documents of the search index.
type DoctorIndexer interface {
	UpsertDoctor(ctx context.Context, doctor *models.Doctor) error
}

// ReindexAll rewrites the index documents of every given doctor. Run at
// startup so doctors created before the index existed (or while it was
// unreachable) become searchable, and after knowledge-base changes.
func ReindexAll(ctx context.Context, indexer DoctorIndexer, doctors []models.Doctor, logger *logrus.Logger) error {
	for i := range doctors {
		if err := indexer.UpsertDoctor(ctx, &doctors[i]); err != nil {
			return err
		}
	}
	logger.WithFields(logrus.Fields{"count": len(doctors)}).Info("doctor index rebuilt")
	return nil
}
