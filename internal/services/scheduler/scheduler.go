// -----------------------------------------------------------------------
// Maintenance Scheduler - periodic Badger value-log GC and index/storage
// consistency sweep
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrutor/internal/common"
	"github.com/ternarybob/scrutor/internal/interfaces"
)

// Scheduler runs background maintenance on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	index   interfaces.VectorIndex
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewScheduler creates the maintenance scheduler. Call Start to begin.
func NewScheduler(config *common.MaintenanceConfig, index interfaces.VectorIndex, storage interfaces.StorageManager, logger arbor.ILogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		index:   index,
		storage: storage,
		logger:  logger,
	}

	schedule := config.Schedule
	if schedule == "" {
		schedule = "@every 10m"
	}

	if _, err := s.cron.AddFunc(schedule, s.runMaintenance); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", schedule, err)
	}

	logger.Info().Str("schedule", schedule).Msg("Maintenance scheduler configured")
	return s, nil
}

// Start begins running scheduled maintenance.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Debug().Msg("Maintenance scheduler stopped")
}

// runMaintenance performs one maintenance round: value-log GC plus a
// consistency sweep comparing the in-memory index against persisted
// entries. Mismatches are logged, not repaired; they indicate a crash
// between the index and storage writes and warrant operator attention.
func (s *Scheduler) runMaintenance() {
	if err := s.storage.RunGC(); err != nil {
		s.logger.Warn().Err(err).Msg("Value-log GC failed")
	}

	inMemory := s.index.Len()
	persisted, err := s.storage.IndexStorage().CountEntries()
	if err != nil {
		s.logger.Warn().Err(err).Msg("Consistency sweep could not count persisted entries")
		return
	}

	if inMemory != persisted {
		s.logger.Warn().
			Int("index_entries", inMemory).
			Int("persisted_entries", persisted).
			Msg("Index and storage entry counts diverge")

		// Name the divergent chunk IDs to make operator diagnosis possible.
		persistedEntries, err := s.storage.IndexStorage().LoadEntries()
		if err != nil {
			return
		}
		persistedIDs := make(map[string]struct{}, len(persistedEntries))
		for _, e := range persistedEntries {
			persistedIDs[e.ChunkID] = struct{}{}
		}
		for _, e := range s.index.Snapshot() {
			if _, ok := persistedIDs[e.ChunkID]; !ok {
				s.logger.Warn().Str("chunk_id", e.ChunkID).Msg("Index entry missing from storage")
			}
			delete(persistedIDs, e.ChunkID)
		}
		for id := range persistedIDs {
			s.logger.Warn().Str("chunk_id", id).Msg("Persisted entry missing from index")
		}
		return
	}

	s.logger.Debug().
		Int("index_entries", inMemory).
		Msg("Maintenance round completed")
}
