package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/claims-extractor/constants"
	"github.com/joseph-ayodele/claims-extractor/internal/autoselect"
	"github.com/joseph-ayodele/claims-extractor/internal/common"
	"github.com/joseph-ayodele/claims-extractor/internal/export"
	"github.com/joseph-ayodele/claims-extractor/internal/extract"
	"github.com/joseph-ayodele/claims-extractor/internal/formconfig"
	"github.com/joseph-ayodele/claims-extractor/internal/ocr"
	"github.com/joseph-ayodele/claims-extractor/internal/pipeline"
	"github.com/joseph-ayodele/claims-extractor/internal/repository"
	"github.com/joseph-ayodele/claims-extractor/internal/textsource"
)

func main() {
	var (
		input      = flag.String("input", "", "file or directory of PDFs (required)")
		dbDSN      = flag.String("db", "", "database DSN; overrides DB_URL")
		formsDir   = flag.String("forms", "", "directory of form config JSON files; overrides FORMS_DIR")
		configPath = flag.String("config", "", "single form config JSON path")
		autoConfig = flag.Bool("auto-config", false, "try all configs and pick the best by score")
		xlsxOut    = flag.String("xlsx", "", "optional XLSX export path for this run's documents")
	)
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	zlog := logger.Sugar()

	if *input == "" {
		zlog.Error("--input is required")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if *dbDSN != "" {
		cfg.Database.DSN = *dbDSN
	}
	if *formsDir != "" {
		cfg.Forms.Dir = *formsDir
	}
	if err := cfg.Validate(); err != nil {
		zlog.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := slog.Default()

	// Storage
	db, dialect, err := repository.Open(ctx, cfg.Database, log)
	if err != nil {
		zlog.Fatalf("opening DB: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := repository.HealthCheck(ctx, db, log); err != nil {
		zlog.Fatalf("DB health failed: %v", err)
	}
	if err := repository.InitSchema(ctx, db); err != nil {
		zlog.Fatalf("init schema: %v", err)
	}
	docs := repository.NewDocumentRepository(db, dialect, log)

	// Extraction stack
	runner := ocr.NewRunner()
	textSrc := textsource.NewExtractor(cfg.OCR.Pdftotext, runner, log)
	ocrSrc := ocr.NewExtractor(cfg.OCR, runner, log)
	pipe := pipeline.New(log,
		extract.NewTextStrategy(textSrc, cfg.Extract.PenaltyThreshold, log),
		extract.NewOCRStrategy(ocrSrc, log),
	)
	selector := autoselect.New(pipe, log)

	// Form configs
	var configs []formconfig.FormConfig
	if *autoConfig {
		configs, err = formconfig.LoadDir(cfg.Forms.Dir, log)
		if err != nil {
			zlog.Fatalf("loading form configs: %v", err)
		}
	}
	var manual *formconfig.FormConfig
	if !*autoConfig && *configPath != "" {
		c, err := formconfig.Load(*configPath)
		if err != nil {
			zlog.Warnf("config %s rejected, using defaults: %v", *configPath, err)
		}
		manual = &c
	}

	targets, err := collectTargets(*input)
	if err != nil {
		zlog.Fatalf("collecting input files: %v", err)
	}
	if len(targets) == 0 {
		zlog.Fatalf("no PDF files found under %s", *input)
	}

	var savedIDs []uuid.UUID
	for _, path := range targets {
		data, err := os.ReadFile(path)
		if err != nil {
			zlog.Errorw("read failed", "path", path, "error", err)
			continue
		}
		in := &extract.Input{Filename: filepath.Base(path), Data: data}

		var result pipeline.Result
		var leaderboard []autoselect.LeaderboardEntry
		if *autoConfig {
			sel := selector.Run(ctx, in, configs)
			result = sel.Result
			leaderboard = sel.Leaderboard
		} else {
			result = pipe.Run(ctx, in, manual)
			filled, total := result.FilledCount()
			name := ""
			if manual != nil {
				name = manual.Name
			}
			annotate(result.Meta, name, result.Confidence, filled, total)
		}

		docID, err := docs.SaveExtraction(ctx, in.Filename, result)
		if err != nil {
			zlog.Errorw("save failed", "path", path, "error", err)
			continue
		}
		savedIDs = append(savedIDs, docID)
		printRun(path, docID, result, leaderboard)
	}

	if *xlsxOut != "" && len(savedIDs) > 0 {
		svc := export.NewService(docs, log)
		book, err := svc.ExportDocumentsXLSX(ctx, savedIDs)
		if err != nil {
			zlog.Fatalf("export: %v", err)
		}
		if err := os.WriteFile(*xlsxOut, book, 0o644); err != nil {
			zlog.Fatalf("write %s: %v", *xlsxOut, err)
		}
		fmt.Printf("exported %d documents to %s\n", len(savedIDs), *xlsxOut)
	}
}

func collectTargets(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}
	var targets []string
	err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && constants.IsAllowedExt(filepath.Ext(path)) {
			targets = append(targets, path)
		}
		return nil
	})
	return targets, err
}

func annotate(meta map[string]any, configName string, confidence float32, filled, total int) {
	score := float64(confidence)
	if total > 0 {
		score += 0.2 * float64(filled) / float64(total)
	}
	meta["selected_config"] = configName
	meta["score"] = score
	meta["filled"] = filled
	meta["total"] = total
	meta["reason"] = "manual config"
}

func printRun(path string, docID uuid.UUID, result pipeline.Result, leaderboard []autoselect.LeaderboardEntry) {
	fmt.Printf("Processed %s -> document_id=%s confidence=%.2f using=%v score=%v filled=%v/%v reason=%v\n",
		path, docID, result.Confidence,
		result.Meta["selected_config"], result.Meta["score"],
		result.Meta["filled"], result.Meta["total"], result.Meta["reason"])

	var filled, missing []string
	for name, fv := range result.Fields {
		if fv.Filled() {
			filled = append(filled, name)
		} else {
			missing = append(missing, name)
		}
	}
	sort.Strings(filled)
	sort.Strings(missing)
	fmt.Printf("  filled=[%s]\n", shortlist(filled, 8))
	fmt.Printf("  missing=[%s]\n", shortlist(missing, 8))

	for i, e := range leaderboard {
		extra := ""
		if e.Reason != "" {
			extra = fmt.Sprintf(" (%s)", e.Reason)
		}
		fmt.Printf("  #%d %s: score=%v filled=%d/%d%s\n", i+1, e.Name, e.Score, e.Filled, e.Total, extra)
	}
}

func shortlist(items []string, n int) string {
	if len(items) > n {
		return strings.Join(items[:n], ", ") + fmt.Sprintf(", ...(+%d more)", len(items)-n)
	}
	return strings.Join(items, ", ")
}
