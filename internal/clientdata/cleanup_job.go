package clientdata

import (
	"sort"

	"github.com/rs/zerolog"
)

// CleanupJob purges expired cache entries on a schedule
type CleanupJob struct {
	store Expirer
	log   zerolog.Logger
}

// NewCleanupJob wraps store as a scheduler job
func NewCleanupJob(store Expirer, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		store: store,
		log:   log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run deletes expired entries and logs what was purged per table
func (j *CleanupJob) Run() error {
	purged, err := j.store.DeleteAllExpired()
	if err != nil {
		j.log.Error().Err(err).Msg("Cache purge failed")
		return err
	}

	tables := make([]string, 0, len(purged))
	for table := range purged {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var total int64
	event := j.log.Info()
	for _, table := range tables {
		if n := purged[table]; n > 0 {
			event = event.Int64(table, n)
			total += n
		}
	}

	if total == 0 {
		j.log.Debug().Msg("No expired cache entries")
		return nil
	}
	event.Int64("total", total).Msg("Purged expired cache entries")
	return nil
}

// Name identifies the job in scheduler logs
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
