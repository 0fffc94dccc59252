package app

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/internal/query"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	"github.com/Alijeyrad/salon_storefront/internal/service/board"
	"github.com/Alijeyrad/salon_storefront/internal/service/booking"
	"github.com/Alijeyrad/salon_storefront/internal/service/catalog"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvidePublicCache,
		ProvideOperatorCaches,
		ProvideCatalogService,
		ProvideBookingService,
		ProvideBoardService,
	),
	fx.Invoke(RegisterJanitor),
)

// ProvidePublicCache is the cache shared by every visitor. It only ever
// holds public reads.
func ProvidePublicCache(cfg *config.Config) *query.Client {
	return query.NewClient(query.Options{
		StaleAfter: cfg.Cache.PublicStale(),
		EvictAfter: cfg.Cache.EvictAfter(),
	}, slog.Default().With("cache", "public"))
}

func ProvideOperatorCaches(cfg *config.Config) *query.Registry {
	return query.NewRegistry(query.Options{
		StaleAfter: cfg.Cache.DashboardStale(),
		EvictAfter: cfg.Cache.EvictAfter(),
	}, cfg.Cache.EvictAfter(), slog.Default().With("cache", "operator"))
}

func ProvideCatalogService(api *resource.Client, cache *query.Client) catalog.Service {
	return catalog.New(api, cache)
}

func ProvideBookingService(api *resource.Client, cfg *config.Config) booking.Service {
	return booking.New(api, booking.Options{
		SessionTTL:     cfg.Booking.SessionTTL(),
		MaxNotesLength: cfg.Booking.MaxNotesLength,
	}, slog.Default().With("component", "booking"))
}

func ProvideBoardService(api *resource.Client, caches *query.Registry, cfg *config.Config) board.Service {
	return board.New(api, caches, board.Options{
		SkeletonRows: cfg.Board.SkeletonRows,
		PhoneRegion:  cfg.Booking.PhoneRegion,
	}, slog.Default().With("component", "board"))
}
