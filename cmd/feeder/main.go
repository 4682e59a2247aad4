// Command feeder replays a directory of OTA XML feed files against the
// sync endpoint, the way the channel manager would deliver them. Useful
// for integration testing and for backfilling after an outage; the
// endpoint is idempotent, so replaying is always safe.
package main

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"wincloud_hotel/internal/adapters/feedclient"
	"wincloud_hotel/internal/adapters/observability"
	"wincloud_hotel/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	dir := envDefault("FEED_DIR", "./feeds")
	endpoint := envDefault("SYNC_URL", "http://localhost:8080/wincloud/hotel-sync")
	workers := int64(cfg.NightWorkers)
	if workers < 1 {
		workers = 4
	}

	log.Info().
		Str("dir", dir).
		Str("endpoint", endpoint).
		Int64("workers", workers).
		Msg("feeder starting")

	files, err := listFeedFiles(dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", dir).Msg("cannot list feed files")
	}
	if len(files) == 0 {
		log.Warn().Str("dir", dir).Msg("no .xml files to replay")
		return
	}

	client, err := feedclient.New(endpoint, 10)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize feed client")
	}

	sem := semaphore.NewWeighted(workers)
	var wg sync.WaitGroup

	for _, f := range files {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer sem.Release(1)

			payload, err := os.ReadFile(path)
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("read failed")
				return
			}
			res, err := client.Push(ctx, payload)
			if err != nil {
				log.Warn().Str("file", path).Err(err).Msg("push failed")
				return
			}
			ev := log.Info()
			if res.Status != 200 || strings.Contains(string(res.Body), "<Errors>") {
				ev = log.Warn()
			}
			ev.Str("file", path).Int("status", res.Status).Msg("push done")
		}(f)
	}

	wg.Wait()
	log.Info().Int("files", len(files)).Msg("replay completed")
}

func listFeedFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".xml" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func envDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
