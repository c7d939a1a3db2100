// Command demo fills a database with two weeks of sample entries so the
// quicklog commands have something to show.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/quicklog/pkg/buildinfo"
	"tableflip.dev/quicklog/pkg/entry"
	"tableflip.dev/quicklog/pkg/logging"
	"tableflip.dev/quicklog/pkg/store"
)

type place struct {
	name     string
	lat, lon float64
	tags     []string
}

var places = []place{
	{"Home", 52.5200, 13.4050, []string{"tag_home", "tag_family", "tag_relax"}},
	{"Office", 52.5076, 13.3904, []string{"tag_work", "tag_office", "tag_focus", "tag_meeting"}},
	{"Park", 52.5145, 13.3501, []string{"tag_exercise", "tag_outside", "tag_energized"}},
	{"Café", 52.5304, 13.4010, []string{"tag_friend", "tag_meal"}},
}

func main() {
	path := flag.String("db", "quicklog-demo.db", "database to fill")
	days := flag.Int("days", 14, "days of history")
	perDay := flag.Int("per-day", 4, "entries per day")
	showVersion := flag.Bool("version", false, "print the build and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(buildinfo.Render(true, buildinfo.FormatJSON))
		return
	}

	log, err := logging.New(false)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logging.Sync(log) }()

	db, err := store.Open(*path, store.WithLogger(log))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.Tags().SeedDefaults(ctx); err != nil {
		panic(err)
	}

	rnd := rand.New(rand.NewSource(1))
	now := time.Now()
	var reqs []store.SaveRequest
	for d := *days; d > 0; d-- {
		day := now.AddDate(0, 0, -d)
		for i := 0; i < *perDay; i++ {
			p := places[rnd.Intn(len(places))]
			n := 1 + rnd.Intn(len(p.tags))
			at := time.Date(day.Year(), day.Month(), day.Day(), 8+rnd.Intn(12), rnd.Intn(60), 0, 0, day.Location())
			reqs = append(reqs, store.SaveRequest{
				CreatedAt: at,
				Location:  entry.At(p.lat, p.lon, p.name),
				TagIDs:    append([]string{"tag_me"}, p.tags[:n]...),
			})
		}
	}
	ids, err := db.Entries().SaveMany(ctx, reqs)
	if err != nil {
		panic(err)
	}
	log.Info("demo data written", zap.String("db", db.Path()), zap.Int("entries", len(ids)), zap.String("build", buildinfo.String()))
	fmt.Printf("wrote %d entries to %s\n", len(ids), db.Path())
}
