package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tagarena/internal/auth"
	"tagarena/internal/core"
	"tagarena/internal/dao"
	"tagarena/internal/game"
	"tagarena/internal/handler"
	"tagarena/internal/mq"
	"tagarena/pkg/config"
	"tagarena/pkg/logger"

	"google.golang.org/grpc"
)

var configPath = flag.String("config", "", "path to config.yaml (default ./config.yaml)")

func main() {
	flag.Parse()

	config.InitConfig(*configPath)
	cfg := config.AppConfig

	logg, err := logger.New(cfg.Server.Mode, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway, err := dao.Open(ctx, cfg)
	if err != nil {
		logg.Fatalf("persistence init failed: %v", err)
	}
	defer gateway.Close()

	pub, err := mq.New(cfg.MQ, logg)
	if err != nil {
		logg.Fatalf("MQ init failed: %v", err)
	}
	defer pub.Close()

	store := game.NewStore(game.Options{
		WorldWidth:  cfg.Game.WorldWidth,
		WorldHeight: cfg.Game.WorldHeight,
		TagRadius:   cfg.Game.TagRadius,
	})
	hub := core.NewHub(store, gateway, pub, logg, core.HubOptions{
		ChatMaxLen:     cfg.Game.ChatMaxLen,
		PersistTimeout: cfg.Persistence.Timeout,
	})
	go hub.Run()

	var grpcServer *grpc.Server
	if cfg.Server.GrpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GrpcPort))
		if err != nil {
			logg.Fatalf("gRPC listen failed: %v", err)
		}
		grpcServer = handler.NewGRPCServer(store)
		go func() {
			logg.Infof("Presence gRPC listening on :%d", cfg.Server.GrpcPort)
			if err := grpcServer.Serve(lis); err != nil {
				logg.Errorf("gRPC server failed: %v", err)
			}
		}()
	}

	ws := core.NewWSHandler(hub, auth.NewVerifier(cfg.Auth.JWTSecret), logg)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: core.NewRouter(ws, cfg.Server.Mode),
	}
	go func() {
		logg.Infof("Tag server running on %s (persistence=%s)", srv.Addr, cfg.Persistence.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Warnf("HTTP shutdown: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	hub.Stop()
}
