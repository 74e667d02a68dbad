package http

import (
	"github.com/nats-io/nats.go"

	"github.com/oliauusc/CSCI201-Group7/internal/adapters/postgres"
	"github.com/oliauusc/CSCI201-Group7/internal/adapters/valkey"
	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Places  *usecases.PlaceService
	Map     *usecases.MapService
	Reviews *usecases.ReviewService

	// Origin is used for distances when a request carries no location.
	Origin domain.GeoPoint

	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
}
