package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/skyfare/api"
	"github.com/Domenick1991/skyfare/config"
)

type Handlers struct {
	Flights   *api.FlightHandler
	Customers *api.CustomerHandler
	Bookings  *api.BookingHandler
	Ops       *api.OpsHandler
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, handlers Handlers) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(handlers),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.Default()

	handlers.Flights.Register(router.Group("/flights"))
	handlers.Customers.Register(router.Group("/customers"))
	handlers.Bookings.Register(router.Group("/bookings"))
	handlers.Ops.Register(router.Group("/ops"))

	return router
}
