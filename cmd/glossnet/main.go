package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/glossnet/internal/dataset"
	"github.com/ayusman/glossnet/internal/model"
	"github.com/ayusman/glossnet/internal/server"
	"github.com/ayusman/glossnet/internal/store"
)

const usage = `GlossNet - Sign Language Word Recognition

Usage:
  glossnet ingest -meta <metadata.json> [-db <path>]
  glossnet stats [-db <path>]
  glossnet init-model -model <path> [-classes <n>]
  glossnet serve [-db <path>] [-model <path>] [-addr <addr>] [-static <dir>]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	case "init-model":
		runInitModel(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		fmt.Print(usage)
		os.Exit(2)
	}
}

// defaultDBPath returns ~/.glossnet/glossnet.db, creating the directory.
func defaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".glossnet")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	return filepath.Join(dbDir, "glossnet.db")
}

func openStore(dbPath string) *store.Store {
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	return st
}

func runIngest(args []string) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dbPath := fs.String("db", "", "database path (default ~/.glossnet/glossnet.db)")
	metaPath := fs.String("meta", "", "dataset metadata JSON file")
	fs.Parse(args)

	if *metaPath == "" {
		log.Fatal("ingest: -meta is required")
	}

	st := openStore(*dbPath)
	defer st.Close()

	sum, err := dataset.IngestFile(*metaPath, st)
	if err != nil {
		log.Fatalf("Ingest failed: %v", err)
	}

	fmt.Printf("Ingested %d words, %d videos (%d skipped)\n", sum.Words, sum.Videos, sum.Skipped)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dbPath := fs.String("db", "", "database path (default ~/.glossnet/glossnet.db)")
	fs.Parse(args)

	st := openStore(*dbPath)
	defer st.Close()

	words, err := st.Words().Count()
	if err != nil {
		log.Fatalf("Failed to count words: %v", err)
	}
	videos, err := st.Videos().Count()
	if err != nil {
		log.Fatalf("Failed to count videos: %v", err)
	}
	sequences, err := st.Sequences().Count()
	if err != nil {
		log.Fatalf("Failed to count sequences: %v", err)
	}
	dist, err := st.Videos().SplitDistribution()
	if err != nil {
		log.Fatalf("Failed to get split distribution: %v", err)
	}

	fmt.Printf("Words:     %d\n", words)
	fmt.Printf("Videos:    %d (train %d, val %d, test %d)\n",
		videos, dist[store.SplitTrain], dist[store.SplitVal], dist[store.SplitTest])
	fmt.Printf("Sequences: %d\n", sequences)

	top, err := st.Words().Top(10)
	if err != nil {
		log.Fatalf("Failed to get top words: %v", err)
	}
	if len(top) > 0 {
		fmt.Println("Most sampled words:")
		for _, w := range top {
			fmt.Printf("  %-20s %d\n", w.Gloss, w.SampleCount)
		}
	}
}

func runInitModel(args []string) {
	fs := flag.NewFlagSet("init-model", flag.ExitOnError)
	modelPath := fs.String("model", "", "path to write the model file")
	classes := fs.Int("classes", 0, "number of classes (default from the vocabulary size in -db, or 100)")
	dbPath := fs.String("db", "", "database path used to size the class count")
	fs.Parse(args)

	if *modelPath == "" {
		log.Fatal("init-model: -model is required")
	}

	cfg := model.DefaultConfig()
	if *classes > 0 {
		cfg.NumClasses = *classes
	} else if *dbPath != "" {
		st := openStore(*dbPath)
		n, err := st.Words().Count()
		st.Close()
		if err != nil {
			log.Fatalf("Failed to count words: %v", err)
		}
		if n > 0 {
			cfg.NumClasses = n
		}
	}

	m, err := model.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build model: %v", err)
	}
	if err := m.SaveFile(*modelPath); err != nil {
		log.Fatalf("Failed to save model: %v", err)
	}

	fmt.Printf("Wrote untrained %d-class model to %s\n", cfg.NumClasses, *modelPath)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	dbPath := fs.String("db", "", "database path (default ~/.glossnet/glossnet.db)")
	modelPath := fs.String("model", "", "path to a saved model file")
	addr := fs.String("addr", ":8080", "listen address")
	staticDir := fs.String("static", "", "directory of static files to serve")
	fs.Parse(args)

	st := openStore(*dbPath)
	defer st.Close()

	cfg := server.Config{
		StaticDir: *staticDir,
		Store:     st,
	}

	if *modelPath != "" {
		m, err := model.LoadFile(*modelPath)
		if err != nil {
			log.Fatalf("Failed to load model: %v", err)
		}
		cfg.Model = m

		labels, err := dataset.LoadLabels(st)
		if err != nil {
			log.Printf("Serving without glosses: %v", err)
		} else if labels.Len() != m.Config().NumClasses {
			log.Printf("Serving without glosses: vocabulary has %d words, model has %d classes",
				labels.Len(), m.Config().NumClasses)
		} else {
			cfg.Labels = labels
		}
	}

	srv := server.New(cfg)

	fmt.Printf("Starting server on %s\n", *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
