// Package main QuickRent API.
//
// @title           QuickRent API
// @version         1.0
// @description     peer-to-peer rental marketplace (items, rentals, payments, moderation).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"quickrent/app/echoServer"
	authctrl "quickrent/app/echoServer/controller/auth"
	itemctrl "quickrent/app/echoServer/controller/item"
	moderationctrl "quickrent/app/echoServer/controller/moderation"
	paymentctrl "quickrent/app/echoServer/controller/payment"
	rentalctrl "quickrent/app/echoServer/controller/rental"
	wishlistctrl "quickrent/app/echoServer/controller/wishlist"
	"quickrent/app/echoServer/validation"
	"quickrent/cache"
	"quickrent/config"
	authrepo "quickrent/repository/auth"
	gatewayrepo "quickrent/repository/gateway"
	itemrepo "quickrent/repository/item"
	moderationrepo "quickrent/repository/moderation"
	paymentrepo "quickrent/repository/payment"
	rentalrepo "quickrent/repository/rental"
	wishlistrepo "quickrent/repository/wishlist"
	authsvc "quickrent/service/auth"
	itemsvc "quickrent/service/item"
	moderationsvc "quickrent/service/moderation"
	paymentsvc "quickrent/service/payment"
	rentalsvc "quickrent/service/rental"
	wishlistsvc "quickrent/service/wishlist"
	"quickrent/util/database"
	"quickrent/util/filestore"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// redis cache (optional, the service degrades to DB reads without it)
	rdb := cache.NewRedisClient(cfg.RedisAddr, "", cfg.RedisDB)
	itemCache := cache.NewItemCache(rdb)

	// verification uploads
	files, err := filestore.New(cfg.UploadDir)
	if err != nil {
		log.Error("upload dir init failed", "err", err)
		os.Exit(1)
	}

	// repos
	ar := authrepo.New(db)
	ir := itemrepo.New(db)
	rr := rentalrepo.New(db)
	pr := paymentrepo.New(db)
	wr := wishlistrepo.New(db)
	mr := moderationrepo.New(db)
	gw := gatewayrepo.NewHTTP(cfg.GatewayURL, cfg.GatewayKey, cfg.CallbackTok)

	// services
	as := authsvc.New(ar, cfg.JWTSecret)
	is := itemsvc.New(ir, itemCache)
	rs := rentalsvc.New(db, rr, ir, gw, mr, files, mr, itemCache)
	ps := paymentsvc.New(db, pr, rr, ir, gw, itemCache)
	ws := wishlistsvc.New(wr, ir)
	ms := moderationsvc.New(mr, rr, files)

	// controllers
	v := validator.New()
	m := echoServer.NewMetrics()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: is, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log, Transitions: m.TransitionsTotal}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	wishlistC := &wishlistctrl.Controller{Svc: ws, Log: log}
	moderationC := &moderationctrl.Controller{Svc: ms, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e, m)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:       authC,
		Item:       itemC,
		Rental:     rentalC,
		Payment:    paymentC,
		Wishlist:   wishlistC,
		Moderation: moderationC,

		JWTSecret: cfg.JWTSecret,
	})

	// sweep pending requests nobody acted on
	cleaner := rentalsvc.NewCleaner(rr)
	go func() {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for range t.C {
			if n, err := cleaner.CancelStale(ctx); err != nil {
				log.Error("stale rental sweep failed", "err", err)
			} else if n > 0 {
				log.Info("stale rentals cancelled", "count", n)
			}
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
