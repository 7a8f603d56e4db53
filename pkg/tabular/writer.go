package tabular

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/Ramsey-B/lily/pkg/models"
	"github.com/Ramsey-B/lily/pkg/tracing"
	"github.com/pkg/errors"
)

// writeAtomic writes to a temp file beside path and renames it into place.
// On any failure the temp file is removed and path is left untouched.
func writeAtomic(path string, write func(tmp *os.File) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "failed to move output to %s", path)
	}
	return nil
}

// WriteCSV writes listings under the canonical headers. Every cell is populated.
func WriteCSV(ctx context.Context, path string, listings []*models.Listing) error {
	_, span := tracing.StartSpan(ctx, "tabular.WriteCSV")
	defer span.End()

	return writeAtomic(path, func(tmp *os.File) error {
		w := csv.NewWriter(tmp)
		if err := w.Write(models.Headers()); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
		for _, l := range listings {
			if err := w.Write(l.Row()); err != nil {
				return errors.Wrap(err, "failed to write record")
			}
		}
		w.Flush()
		return errors.Wrap(w.Error(), "failed to flush csv")
	})
}
