// Package receipt derives the scannable booking receipt for an
// appointment. The artifact encodes only the appointment id, never
// patient details, so a shared or photographed receipt leaks nothing.
package receipt

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSubdir = "qr_codes"

// Generator writes QR receipt images under a media directory.
type Generator struct {
	MediaDir string
}

// NewGenerator creates a Generator rooted at mediaDir.
func NewGenerator(mediaDir string) *Generator {
	return &Generator{MediaDir: mediaDir}
}

// Generate produces the QR artifact for an appointment and returns its
// path relative to the media directory. Exactly one artifact exists per
// appointment: when existingPath already points at a file on disk the
// call is an idempotent no-op returning that path.
func (g *Generator) Generate(appointmentID, existingPath string) (string, error) {
	if existingPath != "" {
		if _, err := os.Stat(filepath.Join(g.MediaDir, existingPath)); err == nil {
			return existingPath, nil
		}
	}

	dir := filepath.Join(g.MediaDir, qrSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating qr directory: %w", err)
	}

	relPath := filepath.Join(qrSubdir, fmt.Sprintf("qr_%s.png", appointmentID))
	if err := qrcode.WriteFile(appointmentID, qrcode.Low, 256, filepath.Join(g.MediaDir, relPath)); err != nil {
		return "", fmt.Errorf("writing qr image: %w", err)
	}
	return relPath, nil
}

// AbsPath resolves a stored relative artifact path to a filesystem path.
func (g *Generator) AbsPath(relPath string) string {
	return filepath.Join(g.MediaDir, relPath)
}
