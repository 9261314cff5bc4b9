package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joseph-ayodele/claims-extractor/internal/common"
	"github.com/joseph-ayodele/claims-extractor/internal/repository"
)

func main() {
	var (
		dbDSN = flag.String("db", "", "database DSN; overrides DB_URL")
		limit = flag.Int("limit", 20, "number of recent documents to list")
	)
	flag.Parse()

	cfg := common.LoadConfig()
	if *dbDSN != "" {
		cfg.Database.DSN = *dbDSN
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, dialect, err := repository.Open(ctx, cfg.Database, slog.Default())
	if err != nil {
		log.Fatalf("opening DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	docs := repository.NewDocumentRepository(db, dialect, slog.Default())
	summaries, err := docs.Summarize(ctx, *limit)
	if err != nil {
		log.Fatalf("summarize: %v", err)
	}

	for _, s := range summaries {
		fmt.Printf("doc_id=%s filled=%2d/%-2d ratio=%.2f  filename=%s\n",
			s.ID, s.Filled, s.Total, s.FillRatio(), s.Filename)
	}
}
