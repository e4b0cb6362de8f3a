// Package main rental booking API.
//
// @title           QuickNest Rental API
// @version         1.0
// @description     rental booking service (catalog, checkout, orders, payments, receipts).
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

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vidya365/rental/app/echoServer"
	authctrl "github.com/vidya365/rental/app/echoServer/controller/auth"
	checkoutctrl "github.com/vidya365/rental/app/echoServer/controller/checkout"
	itemctrl "github.com/vidya365/rental/app/echoServer/controller/item"
	orderctrl "github.com/vidya365/rental/app/echoServer/controller/order"
	paymentctrl "github.com/vidya365/rental/app/echoServer/controller/payment"
	profilectrl "github.com/vidya365/rental/app/echoServer/controller/profile"
	"github.com/vidya365/rental/app/echoServer/validation"
	"github.com/vidya365/rental/config"
	itemrepo "github.com/vidya365/rental/repository/item"
	orderrepo "github.com/vidya365/rental/repository/order"
	paymentrepo "github.com/vidya365/rental/repository/payment"
	razorpayrepo "github.com/vidya365/rental/repository/razorpay"
	"github.com/vidya365/rental/repository/sequence"
	sessionrepo "github.com/vidya365/rental/repository/session"
	userrepo "github.com/vidya365/rental/repository/user"
	authsvc "github.com/vidya365/rental/service/auth"
	catalogsvc "github.com/vidya365/rental/service/catalog"
	checkoutsvc "github.com/vidya365/rental/service/checkout"
	"github.com/vidya365/rental/service/notify"
	ordersvc "github.com/vidya365/rental/service/order"
	paymentsvc "github.com/vidya365/rental/service/payment"
	"github.com/vidya365/rental/util/database"
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

	// repos
	ur := userrepo.New(db)
	ir := itemrepo.New(db)
	or := orderrepo.New(db)
	pr := paymentrepo.New(db)
	sr := sessionrepo.New(db)
	sq := sequence.New()
	gw := razorpayrepo.NewHTTP(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	// mail
	sender := notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	notifier := notify.New(or, sender, log)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	cs := catalogsvc.New(ir)
	os_ := ordersvc.New(db, or, ir, ur, sq)
	ps := paymentsvc.New(db, pr, or, ir, ur, sq, gw, os_, notifier)
	ck := checkoutsvc.New(sr, ir, ur, os_, ps)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: cs, V: v, Log: log}
	checkoutC := &checkoutctrl.Controller{Svc: ck, V: v, Log: log}
	orderC := &orderctrl.Controller{Svc: os_, Log: log}
	paymentC := &paymentctrl.Controller{Svc: ps, Log: log}
	profileC := &profilectrl.Controller{Repo: ur, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Item:     itemC,
		Checkout: checkoutC,
		Order:    orderC,
		Payment:  paymentC,
		Profile:  profileC,

		JWTSecret: cfg.JWTSecret,
	})

	// reminder/overdue sweep
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := notifier.Sweep(ctx, time.Now().UTC()); err != nil {
				log.Error("notification sweep failed", "err", err)
			}
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
