package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/oliauusc/CSCI201-Group7/internal/adapters/postgres"
	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/config"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/logging"
)

// locationsResponse is the envelope the legacy locations API returns.
type locationsResponse struct {
	Success bool                    `json:"success"`
	Data    []domain.LocationRecord `json:"data"`
	Message string                  `json:"message,omitempty"`
}

func main() {
	cfg, err := config.Load("campusfood-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log, "campusfood-seed")

	source := "data/places.json"
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	r, err := open(ctx, source)
	if err != nil {
		log.Fatalf("open %s: %v", source, err)
	}
	defer r.Close()

	places, err := decodePlaces(r)
	if err != nil {
		log.Fatalf("decode %s: %v", source, err)
	}

	db, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := postgres.NewPlaceRepo(db).UpsertBatch(ctx, places); err != nil {
		log.Fatalf("upsert: %v", err)
	}
	slog.Info("seed complete", "source", source, "places", len(places))
}

// open reads source as a URL when it has an http(s) scheme, else as a file.
func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// decodePlaces reads a locations envelope and maps each record to a Place.
// Records without a name or with an impossible coordinate are skipped.
func decodePlaces(r io.Reader) ([]domain.Place, error) {
	var env locationsResponse
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("source reported failure: %s", env.Message)
	}

	places := make([]domain.Place, 0, len(env.Data))
	for i, rec := range env.Data {
		p := rec.Place()
		if strings.TrimSpace(p.Name) == "" || p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			slog.Warn("skipping invalid location", "index", i, "name", p.Name)
			continue
		}
		places = append(places, p)
	}
	return places, nil
}
