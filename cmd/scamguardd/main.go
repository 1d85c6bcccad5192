package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scamguard/internal/app"
	"scamguard/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	cfgPath := os.Getenv("SG_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "serve":
		runServe(ctx, cfg)
	case "worker":
		runWorker(ctx, cfg)
	default:
		usage()
	}
}

func runServe(ctx context.Context, cfg config.Config) {
	appInstance, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer appInstance.Close()

	log.Printf("scamguardd serving on %s", cfg.HTTP.Addr)
	if err := appInstance.Serve(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runWorker(ctx context.Context, cfg config.Config) {
	if cfg.Redis.URL == "" {
		log.Fatalf("worker requires redis.url (or SG_REDIS_URL)")
	}
	appInstance, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app init error: %v", err)
	}
	defer appInstance.Close()

	if ok := <-appInstance.Detector.InitializeAsync(ctx); !ok {
		log.Printf("llm engine unavailable, worker runs rule-based detection only")
	}

	log.Println("worker started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
			messageID, err := appInstance.Queue.PopAnalysisJob(ctx, 5*time.Second)
			if err != nil {
				continue
			}
			msg, err := appInstance.Store.GetMessage(ctx, messageID)
			if err != nil {
				log.Printf("worker message fetch failed: %v", err)
				continue
			}
			analysis := appInstance.Hybrid.Analyze(ctx, msg.Text)
			if analysis == nil {
				log.Printf("worker produced no verdict for message %s", messageID)
				continue
			}
			if _, err := appInstance.Store.InsertAnalysis(ctx, messageID, *analysis); err != nil {
				log.Printf("worker analysis store failed: %v", err)
				continue
			}
			log.Printf("analyzed message %s: scam=%v type=%s method=%s", messageID, analysis.IsScam, analysis.ScamType, analysis.DetectionMethod)
		}
	}
}

func usage() {
	fmt.Println("Usage: scamguardd <serve|worker>")
}
