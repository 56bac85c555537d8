package scheduler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"DealVault/internal/analysis"
	"DealVault/internal/blob"
	"DealVault/internal/model"
)

const backupTimeFormat = "20060102T150405.000Z"

// Source is the collection being backed up.
type Source interface {
	List() []model.SavedAnalysis
}

// Backup writes point-in-time copies of the collection, in the persisted
// payload format, to a directory and keeps only the newest Keep of them.
type Backup struct {
	source Source
	dest   *blob.FileStore
	keep   int
	now    func() time.Time
	log    zerolog.Logger
}

func NewBackup(source Source, dest *blob.FileStore, keep int, log zerolog.Logger) *Backup {
	return &Backup{
		source: source,
		dest:   dest,
		keep:   keep,
		now:    time.Now,
		log:    log.With().Str("component", "backup").Logger(),
	}
}

// Run writes one backup and prunes old ones. It returns the path written.
func (b *Backup) Run() (string, error) {
	analyses := b.source.List()
	payload, err := analysis.EncodePayload(analyses)
	if err != nil {
		return "", fmt.Errorf("encode backup: %w", err)
	}

	key := analysis.BlobKey + "-" + b.now().UTC().Format(backupTimeFormat)
	if err := b.dest.Set(key, payload); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	path := b.dest.Path(key)
	b.log.Info().Str("path", path).Int("analyses", len(analyses)).Msg("backup written")

	if err := b.prune(); err != nil {
		b.log.Warn().Err(err).Msg("prune backups")
	}
	return path, nil
}

// Backups lists backup files oldest first.
func (b *Backup) Backups() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(b.dest.Dir(), analysis.BlobKey+"-*.json"))
	if err != nil {
		return nil, err
	}
	// The timestamp format sorts lexically.
	sort.Strings(matches)
	return matches, nil
}

func (b *Backup) prune() error {
	files, err := b.Backups()
	if err != nil {
		return err
	}
	if len(files) <= b.keep {
		return nil
	}
	var errs []string
	for _, f := range files[:len(files)-b.keep] {
		if err := os.Remove(f); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		b.log.Debug().Str("path", f).Msg("old backup removed")
	}
	if len(errs) > 0 {
		return fmt.Errorf("remove old backups: %s", strings.Join(errs, "; "))
	}
	return nil
}
