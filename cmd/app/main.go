package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/api"
	"github.com/Domenick1991/skyfare/config"
	"github.com/Domenick1991/skyfare/internal/bootstrap"
	"github.com/Domenick1991/skyfare/internal/kafka"
	"github.com/Domenick1991/skyfare/internal/keygen"
	"github.com/Domenick1991/skyfare/internal/loader"
	"github.com/Domenick1991/skyfare/internal/registry"
	"github.com/Domenick1991/skyfare/internal/service/booking"
	"github.com/Domenick1991/skyfare/internal/service/customers"
	"github.com/Domenick1991/skyfare/internal/service/flights"
	"github.com/Domenick1991/skyfare/internal/store"
	"github.com/Domenick1991/skyfare/internal/store/gridstore"
	"github.com/Domenick1991/skyfare/internal/store/memstore"
	"github.com/Domenick1991/skyfare/internal/store/mongostore"
	"github.com/Domenick1991/skyfare/internal/store/pgstore"
	"github.com/Domenick1991/skyfare/pkg/metrics"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.Instance()
	reg.UseLogger(sugar)
	reg.Register(memstore.BackendName, func(ctx context.Context) (store.Backend, error) {
		return memstore.New(), nil
	})
	reg.Register(gridstore.BackendName, func(ctx context.Context) (store.Backend, error) {
		return gridstore.New(cfg.Redis), nil
	})
	reg.Register(mongostore.BackendName, func(ctx context.Context) (store.Backend, error) {
		return mongostore.New(ctx, cfg.Mongo)
	})
	reg.Register(pgstore.BackendName, func(ctx context.Context) (store.Backend, error) {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return pgstore.New(pool), nil
	})
	reg.SetDefault(memstore.BackendName)

	backend, err := reg.Select(ctx, cfg.Backend.Type)
	if err != nil {
		sugar.Fatalw("select backend", "error", err)
	}
	defer backend.Close(context.Background())

	stats := metrics.New("skyfare", prometheus.DefaultRegisterer)
	keys := keygen.New()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightService := flights.NewFlightService(backend.Flights(), keys, sugar, stats)
	customerService := customers.NewCustomerService(backend.Customers(), keys, sugar)
	bookingService := booking.NewBookingService(
		backend.Bookings(),
		flightService,
		customerService,
		keys,
		sugar,
		stats,
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
	)

	dataLoader := loader.New(flightService, customerService, sugar)

	handlers := bootstrap.Handlers{
		Flights:   api.NewFlightHandler(flightService),
		Customers: api.NewCustomerHandler(customerService),
		Bookings:  api.NewBookingHandler(bookingService),
		Ops: api.NewOpsHandler(
			flightService,
			customerService,
			bookingService,
			dataLoader,
			cfg.Loader.MileageFile,
			cfg.Loader.NumCustomers,
			backend.Name(),
			promhttp.Handler(),
		),
	}

	if err := bootstrap.Run(ctx, cfg, handlers); err != nil {
		sugar.Fatalw("server error", "error", err)
	}
}
