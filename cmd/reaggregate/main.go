// reaggregate recomputes every property's and room's rating sum/count from
// the ratings table. The hot path applies increments atomically, so this is a
// repair tool for aggregates damaged by manual data surgery, not a scheduled
// dependency of normal operation.
package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"renthub/internal/adapters/observability"
	"renthub/internal/shared"
	mysqlrepo "renthub/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().Int("workers", cfg.Workers).Msg("reaggregate starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	subjects, err := repo.ListSubjects(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list subjects failed")
	}
	log.Info().Int("subjects", len(subjects)).Msg("recomputing aggregates")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var failed sync.Map

	for _, subj := range subjects {
		subj := subj

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := repo.RecomputeAggregate(ctx, subj); err != nil {
				failed.Store(subj, err)
				log.Warn().Str("kind", string(subj.Kind)).Str("id", subj.ID).Err(err).Msg("recompute failed")
				return
			}
			log.Debug().Str("kind", string(subj.Kind)).Str("id", subj.ID).Msg("recompute ok")
		}()
	}

	wg.Wait()

	var nfailed int
	failed.Range(func(_, _ any) bool { nfailed++; return true })
	if nfailed > 0 {
		log.Fatal().Int("failed", nfailed).Msg("reaggregation finished with failures")
	}
	log.Info().Msg("reaggregation completed")
}
