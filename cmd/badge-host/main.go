package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vitals-badge/go-host/internal/bridge"
	"github.com/vitals-badge/go-host/internal/intake"
	"github.com/vitals-badge/go-host/internal/sequencer"
	"github.com/vitals-badge/go-host/internal/store"
)

// #region main
func main() {
	dbPath := envOr("BADGE_DB", "badge_host.db")
	addr := envOr("BADGE_ADDR", "127.0.0.1:8973")

	st, err := store.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	// The bridge is both sides of the sequencer's world: it renders badges
	// to the extension and answers tab liveness from its registry.
	srv := bridge.New(addr)
	seq := sequencer.New(srv, srv)
	in := intake.New(seq, st)
	srv.Attach(in, seq)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[HOST] shutdown: %v", err)
		}
	}()

	fmt.Println("Web Vitals badge host ready.")
	fmt.Printf("  DB: %s | Bridge: ws://%s/extension\n", dbPath, addr)

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("bridge server: %v", err)
	}

	seq.Close()
	log.Println("[HOST] stopped")
}

// #endregion main

// #region helpers
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// #endregion helpers
