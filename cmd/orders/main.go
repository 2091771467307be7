// Package main Storefront Orders API
//
// Checkout, order lifecycle and Khalti payment orchestration for the storefront.
//
//	@title			Storefront Orders API
//	@version		1.0
//	@description	Orders, checkout and payments for the storefront
//
//	@contact.name	API Support
//	@contact.email	support@example.com
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8082
//	@BasePath	/
//	@schemes	http https
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gorm.io/gorm"

	_ "go-storefront/docs/swagger"
	"go-storefront/internal/orders/adapters"
	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/infrastructure"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/config"
	"go-storefront/pkg/db"
	"go-storefront/pkg/events"
	grpcpkg "go-storefront/pkg/grpc"
	"go-storefront/pkg/kafka"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/middleware"
	"go-storefront/pkg/rabbitmq"
	"go-storefront/pkg/tls"
)

func main() {
	// Load configuration
	cfg := config.LoadForService("ORDERS")

	// Initialize logger
	log := logger.New("orders-service", cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting orders service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	dbConn, err := db.NewConnection(db.Config{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		Timeout:  cfg.DBTimeout,
	})
	if err != nil {
		log.Fatal("failed to connect to database: " + err.Error())
	}
	defer db.Close(dbConn)
	log.Info("connected to database", zap.String("driver", cfg.DBDriver))

	// Initialize store and run migrations
	store := adapters.NewGormStore(dbConn)
	if err := store.Migrate(); err != nil {
		log.Fatal("failed to migrate database: " + err.Error())
	}

	// Event broker
	broker := setupBroker(cfg, log)
	defer broker.close()

	// Payment gateway
	var gateway ports.PaymentGateway
	if cfg.KhaltiSecretKey != "" {
		gateway = adapters.NewKhaltiGateway(adapters.KhaltiConfig{
			BaseURL:    cfg.KhaltiBaseURL,
			SecretKey:  cfg.KhaltiSecretKey,
			AuthScheme: cfg.KhaltiAuthScheme,
			ReturnURL:  cfg.KhaltiReturnURL,
			WebsiteURL: cfg.KhaltiWebsiteURL,
			Timeout:    cfg.KhaltiTimeout,
		}, log)
	} else {
		log.Warn("KHALTI_SECRET_KEY not set, Khalti payments are disabled")
	}

	// Initialize use cases
	orders := application.NewOrderUseCase(store, gateway, broker.publisher, log, application.Options{
		ShippingFee:    cfg.ShippingFee,
		GatewayTimeout: cfg.KhaltiTimeout,
	})
	queries := application.NewOrderQueryService(adapters.NewOrderQueryRepository(dbConn), cfg.AssetBaseURL)
	resolver := adapters.NewHTTPIdentityResolver(cfg.AuthURL, cfg.AuthCacheTTL, cfg.HTTPTimeout, log)

	if broker.conn != nil {
		consumer, err := adapters.NewPaymentVerificationConsumer(broker.conn, orders, 10, log)
		if err != nil {
			log.Warn("failed to create payment verification consumer: " + err.Error())
			broker.verifyPublisher = nil
		} else if err := consumer.Start(ctx); err != nil {
			log.Warn("failed to start payment verification consumer: " + err.Error())
			broker.verifyPublisher = nil
		}
	}

	reconciler := application.NewReconciler(orders, store.Payments(), broker.verifyPublisher, application.ReconcilerConfig{
		Interval: cfg.ReconcileInterval,
		After:    cfg.ReconcileAfter,
		Window:   cfg.ReconcileWindow,
		Batch:    cfg.ReconcileBatch,
	}, log)

	// HTTP router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())

	api := router.Group("/api/v1")
	infrastructure.NewHTTPHandler(orders, queries, resolver).RegisterRoutes(api)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := ping(c.Request.Context(), dbConn); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	httpServer, err := newHTTPServer(cfg, router)
	if err != nil {
		log.Fatal("failed to load TLS config: " + err.Error())
	}

	// gRPC health surface
	health := infrastructure.NewHealthServer(func(ctx context.Context) error { return ping(ctx, dbConn) }, log)
	grpcServer, err := setupGRPCServer(cfg, log, health)
	if err != nil {
		log.Fatal("failed to set up gRPC server: " + err.Error())
	}
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server listening on " + httpServer.Addr)
		var err error
		if cfg.TLSEnabled {
			err = httpServer.ListenAndServeTLS("", "")
		} else {
			err = httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		log.Info("gRPC server listening on :" + cfg.GRPCPort)
		return grpcServer.Serve(lis)
	})

	g.Go(func() error {
		health.Watch(gctx, 10*time.Second)
		return nil
	})

	if gateway != nil {
		g.Go(func() error {
			return reconciler.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		health.Shutdown()
		grpcServer.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP shutdown error: " + err.Error())
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	log.Info("servers stopped")
}

// brokerWiring holds what the selected event broker provides
type brokerWiring struct {
	publisher ports.EventPublisher
	// verifyPublisher is nil when no consumer drains verification requests
	verifyPublisher ports.EventPublisher
	conn            *rabbitmq.Connection
	close           func()
}

func setupBroker(cfg *config.Config, log *logger.Logger) brokerWiring {
	none := brokerWiring{close: func() {}}

	switch cfg.EventsBroker {
	case "rabbitmq":
		conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("failed to connect to RabbitMQ, events will be disabled: " + err.Error())
			return none
		}
		pub, err := rabbitmq.NewPublisher(conn, log, events.ExchangeOrders, events.ExchangePayments)
		if err != nil {
			log.Warn("failed to create publisher: " + err.Error())
			conn.Close()
			return none
		}
		publisher := adapters.NewRabbitMQPublisher(pub)
		return brokerWiring{
			publisher:       publisher,
			verifyPublisher: publisher,
			conn:            conn,
			close:           func() { conn.Close() },
		}

	case "kafka":
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Warn("failed to create Kafka producer, events will be disabled: " + err.Error())
			return none
		}
		return brokerWiring{
			publisher: adapters.NewKafkaPublisher(producer),
			close:     producer.Close,
		}

	case "none", "":
		log.Info("event publishing disabled")
		return none

	default:
		log.Warn("unknown EVENTS_BROKER, events will be disabled", zap.String("broker", cfg.EventsBroker))
		return none
	}
}

func newHTTPServer(cfg *config.Config, router *gin.Engine) (*http.Server, error) {
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}
	if cfg.TLSEnabled {
		tlsConfig, err := tls.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile, "", false)
		if err != nil {
			return nil, err
		}
		server.Addr = ":" + cfg.HTTPSPort
		server.TLSConfig = tlsConfig
	}
	return server, nil
}

func setupGRPCServer(cfg *config.Config, log *logger.Logger, health *infrastructure.HealthServer) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(grpcpkg.UnaryServerInterceptor(log, cfg.GRPCTimeout)),
		grpc.StreamInterceptor(grpcpkg.StreamServerInterceptor(log)),
	}

	// Configure mTLS if enabled
	if cfg.GRPCMTLSEnabled {
		tlsConfig, err := tls.ServerConfig(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile, true)
		if err != nil {
			return nil, err
		}
		opts = append(opts, grpc.Creds(credentials.NewTLS(tlsConfig)))
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	health.Register(server)
	return server, nil
}

func ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
