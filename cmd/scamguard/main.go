package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"scamguard/internal/app"
	"scamguard/internal/config"
	"scamguard/internal/detector"
	"scamguard/internal/hybrid"
	"scamguard/internal/rules"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cfgPath := os.Getenv("SG_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch os.Args[1] {
	case "analyze":
		runAnalyze(ctx, cfg, os.Args[2:])
	case "rules":
		runRules(cfg)
	default:
		usage()
	}
}

func runAnalyze(ctx context.Context, cfg config.Config, args []string) {
	text := strings.Join(args, " ")
	if strings.TrimSpace(text) == "" {
		text = readStdin()
	}
	if strings.TrimSpace(text) == "" {
		log.Fatalf("no message text; pass it as arguments or on stdin")
	}

	rb, err := loadRules(cfg)
	if err != nil {
		log.Fatalf("rules error: %v", err)
	}

	det := detector.New(app.DetectorConfig(cfg), app.SelectEngineFactory(cfg))
	defer det.Close()
	if cfg.LLM.Provider != "none" && cfg.LLM.Provider != "" {
		if ok := det.Initialize(ctx); !ok {
			log.Printf("llm engine unavailable, falling back to rules only")
		}
	}

	analysis := hybrid.New(rb, det).Analyze(ctx, text)
	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		log.Fatalf("encode analysis: %v", err)
	}
	fmt.Println(string(out))
}

func runRules(cfg config.Config) {
	rb, err := loadRules(cfg)
	if err != nil {
		log.Fatalf("rules error: %v", err)
	}
	out, err := json.MarshalIndent(rb, "", "  ")
	if err != nil {
		log.Fatalf("encode rules: %v", err)
	}
	fmt.Println(string(out))
}

func loadRules(cfg config.Config) (rules.Rulebook, error) {
	if cfg.Rules.Path == "" {
		return rules.Default(), nil
	}
	return rules.Load(cfg.Rules.Path)
}

func readStdin() string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	var b strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func usage() {
	fmt.Println("Usage: scamguard <analyze [text...]|rules>")
}
