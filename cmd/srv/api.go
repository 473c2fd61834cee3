package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/questx-lab/prizechest/internal/middleware"
	"github.com/questx-lab/prizechest/pkg/prometheus"
	"github.com/questx-lab/prizechest/pkg/router"
	"github.com/questx-lab/prizechest/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadRepos()
	if err := s.loadStore(); err != nil {
		return err
	}
	defer s.close()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx)
	httpSrv := &http.Server{
		Addr:    cfg.ApiServer.Address(),
		Handler: s.loadRouter().Handler(),
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Starting server on %s with %s backend",
			httpSrv.Addr, cfg.Draw.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		// Live subscribers hold their connections open until told to leave.
		s.wsDomain.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := eg.Wait()
	xcontext.Logger(s.ctx).Infof("Server stopped")
	return err
}

func (s *srv) loadRouter() *router.Router {
	r := router.New(s.ctx)
	r.Before(middleware.WithStartTime())
	r.After(middleware.Logger())
	r.After(middleware.Prometheus())

	router.POST(r, "/claim", s.drawDomain.Claim)
	router.GET(r, "/getConfig", s.drawDomain.GetConfig)
	router.POST(r, "/saveConfig", s.drawDomain.SaveConfig)
	router.GET(r, "/getWinners", s.drawDomain.GetWinners)
	router.POST(r, "/clearWinners", s.drawDomain.ClearWinners)

	r.Handle(http.MethodGet, "/subscribe", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.wsDomain.Serve(xcontext.Inherit(req.Context(), s.ctx), w, req)
	}))
	r.Handle(http.MethodGet, "/metrics", prometheus.NewHandler())

	return r
}
