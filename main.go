package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/example/khatm/internal/api"
	"github.com/example/khatm/internal/database"
	"github.com/example/khatm/internal/excel"
	"github.com/example/khatm/internal/khatm"
	"github.com/example/khatm/internal/quran"
	"github.com/example/khatm/internal/scheduler"
)

func main() {
	importPath := flag.String("import-surahs", "", "import the surah catalogue from an Excel or CSV file and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *importPath != "" {
		config := excel.DefaultImportConfig()
		config.FilePath = *importPath
		result, err := excel.ImportSurahs(context.Background(), database.NewSurahRepository(db), config)
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Import finished: %d processed, %d created, %d updated, %d errors",
			result.TotalProcessed, result.Created, result.Updated, len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("  %s", e)
		}
		return
	}

	index, err := loadIndex(db)
	if err != nil {
		log.Fatalf("Failed to load verse index: %v", err)
	}

	service := khatm.NewService(db, index)

	sweep := scheduler.New(service)
	sweep.Start()
	defer sweep.Stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:    addr,
		Handler: api.NewServer(service).Routes(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}

		close(done)
	}()

	log.Printf("Server started on %s. Press Ctrl+C to stop.", addr)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Server stopped successfully")
}

// loadIndex builds the verse index from the surahs table when a complete
// catalogue has been imported, and falls back to the built-in canonical
// data otherwise.
func loadIndex(db *sqlx.DB) (*quran.Index, error) {
	repo := database.NewSurahRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count != quran.SurahCount {
		if count > 0 {
			log.Printf("Surah catalogue has %d of %d entries, using built-in data", count, quran.SurahCount)
		}
		return quran.Canonical(), nil
	}

	surahs, err := repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]quran.SurahInfo, len(surahs))
	for i, s := range surahs {
		infos[i] = quran.SurahInfo{
			Number:     s.Number,
			Name:       s.NameTransliteration,
			VerseCount: s.VerseCount,
		}
	}
	return quran.NewIndex(infos)
}
