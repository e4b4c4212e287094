package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"

	httpadp "lenme-backend/internal/adapter/http"
	"lenme-backend/internal/adapter/middleware"
	"lenme-backend/internal/adapter/repository/mysql"
	"lenme-backend/internal/config"
	"lenme-backend/internal/events"
	"lenme-backend/internal/infrastructure/cache"
	"lenme-backend/internal/infrastructure/db"
	"lenme-backend/internal/lock"
	"lenme-backend/internal/usecase/account"
	"lenme-backend/internal/usecase/ledger"
	"lenme-backend/internal/usecase/loan"
	"lenme-backend/internal/usecase/offer"
	"lenme-backend/internal/usecase/reconcile"
	"lenme-backend/pkg/clock"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	platformFee, err := decimal.NewFromString(cfg.PlatformFee)
	if err != nil {
		log.Fatalf("config: invalid PLATFORM_FEE %q: %v", cfg.PlatformFee, err)
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	var pub events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		pub = kp
		log.Printf("kafka: publishing to %s via %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	} else {
		log.Println("kafka: no brokers configured, events disabled")
	}

	clk := clock.System()
	uowork := mysql.NewGormUoW(gdb)
	locks := lock.NewRegistry(time.Duration(cfg.LockWaitMS) * time.Millisecond)
	led := ledger.New(clk)

	accountUC := account.NewUsecase(uowork, locks, clk)
	loanUC := loan.NewUsecase(uowork, locks, led, clk, pub, platformFee)
	offerUC := offer.NewUsecase(uowork, locks, led, clk, cfg.PlatformAccountID)
	reconcileUC := reconcile.NewUsecase(uowork, locks, led, clk, pub, reconcile.Policy{
		GracePeriod:          time.Duration(cfg.GracePeriodDays) * 24 * time.Hour,
		DefaultAfter:         time.Duration(cfg.DefaultAfterDays) * 24 * time.Hour,
		MinOverdueForDefault: cfg.DefaultMinOverdue,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := reconcile.NewWorker(reconcileUC, time.Duration(cfg.SweepIntervalSecs)*time.Second)
	go worker.Run(ctx)

	h := httpadp.NewHandler()
	accountH := httpadp.NewAccountHandler(accountUC)
	loanH := httpadp.NewLoanHandler(loanUC)
	offerH := httpadp.NewOfferHandler(offerUC)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	e.Use(middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))

	// routes
	e.GET("/health", h.Health)

	e.POST("/accounts", accountH.CreateAccount)
	e.GET("/accounts/:account_id", accountH.GetAccount)
	e.POST("/accounts/:account_id/deposit", accountH.Deposit)
	e.POST("/accounts/:account_id/withdraw", accountH.Withdraw)
	e.GET("/accounts/:account_id/transactions", accountH.ListTransactions)

	e.POST("/loans", loanH.CreateLoan)
	e.GET("/loans/open", loanH.ListOpenLoans)
	e.GET("/loans/available", loanH.ListAvailableLoans)
	e.GET("/loans/:loan_id", loanH.GetLoan)
	e.POST("/loans/:loan_id/publish", loanH.PublishLoan)
	e.POST("/loans/:loan_id/fund", loanH.FundLoan)
	e.GET("/loans/:loan_id/payments", loanH.ListPayments)
	e.POST("/loans/:loan_id/payments/:payment_id/pay", loanH.MakePayment)

	e.POST("/loans/:loan_id/offers", offerH.SubmitOffer)
	e.GET("/loans/:loan_id/offers", offerH.ListOffers)
	e.POST("/loans/:loan_id/offers/accept", offerH.AcceptOffer)
	e.POST("/loans/:loan_id/offers/:offer_id/reject", offerH.RejectOffer)

	addr := ":" + cfg.AppPort
	go func() {
		log.Printf("listening on %s", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
