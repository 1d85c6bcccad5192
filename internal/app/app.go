package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"scamguard/internal/config"
	"scamguard/internal/detector"
	"scamguard/internal/httpapi"
	"scamguard/internal/hybrid"
	"scamguard/internal/llm"
	"scamguard/internal/queue"
	"scamguard/internal/rules"
	"scamguard/internal/store"
)

type App struct {
	Config   config.Config
	Store    *store.Store
	Queue    *queue.Queue
	Detector *detector.Detector
	Hybrid   *hybrid.Detector
	Handler  *httpapi.Handler
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, st.DB()); err != nil {
		return nil, err
	}

	var q *queue.Queue
	if cfg.Redis.URL != "" {
		q, err = queue.New(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
	}

	rb, err := loadRules(cfg)
	if err != nil {
		return nil, err
	}

	det := detector.New(DetectorConfig(cfg), SelectEngineFactory(cfg))
	hyb := hybrid.New(rb, det)

	var jobs httpapi.Jobs
	if q != nil {
		jobs = q
	}
	handler := httpapi.NewHandler(cfg, st, jobs, hyb)

	return &App{
		Config:   cfg,
		Store:    st,
		Queue:    q,
		Detector: det,
		Hybrid:   hyb,
		Handler:  handler,
	}, nil
}

func (a *App) Close() error {
	var err error
	if a.Detector != nil {
		err = a.Detector.Close()
	}
	if a.Store != nil {
		if cerr := a.Store.Close(); err == nil {
			err = cerr
		}
	}
	if a.Queue != nil {
		_ = a.Queue.Close()
	}
	return err
}

func (a *App) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Store.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if a.Queue != nil {
			if err := a.Queue.Ping(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	a.Handler.RegisterRoutes(mux)

	// The model may take a while to provision; serve rules-only until the
	// engine reports ready.
	initDone := a.Detector.InitializeAsync(ctx)
	go func() {
		if ok := <-initDone; ok {
			log.Printf("llm engine ready")
		} else {
			log.Printf("llm engine unavailable, rule-based detection only")
		}
	}()

	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func loadRules(cfg config.Config) (rules.Rulebook, error) {
	if cfg.Rules.Path == "" {
		return rules.Default(), nil
	}
	return rules.Load(cfg.Rules.Path)
}

// DetectorConfig translates service config into the detector's model config.
func DetectorConfig(cfg config.Config) detector.Config {
	return detector.Config{
		DataDir:     cfg.Model.DataDir,
		AssetDir:    cfg.Model.AssetDir,
		ModelPath:   cfg.Model.Path,
		MaxTokens:   cfg.Model.MaxTokens,
		Temperature: cfg.Model.Temperature,
		TopK:        cfg.Model.TopK,
	}
}

// SelectEngineFactory maps the configured provider to an engine factory.
// "none" disables the LLM path entirely.
func SelectEngineFactory(cfg config.Config) llm.Factory {
	switch cfg.LLM.Provider {
	case "ollama":
		return llm.NewOllamaFactory(cfg.LLM.OllamaURL)
	case "fake":
		return llm.NewFakeFactory(llm.NewFake(""))
	}
	return nil
}
