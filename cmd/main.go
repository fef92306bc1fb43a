package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	attachPaymentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/attach_payment"
	cancelAppointmentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/get_appointment"
	getAppointmentEventsHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/get_appointment_events"
	getDoctorAppointmentsHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/get_doctor_appointments"
	getDoctorSlotsHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/get_doctor_slots"
	getPatientAppointmentsHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/get_patient_appointments"
	getWorkingHoursHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/get_working_hours"
	healthHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/health"
	paymentWebhookHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/payment_webhook"
	rateAppointmentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/rate_appointment"
	refundAppointmentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/refund_appointment"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/reschedule_appointment"
	updateAppointmentStatusHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/update_appointment_status"
	updateWorkingHoursHandler "github.com/m04kA/SMC-TherapyBookingService/internal/api/handlers/update_working_hours"
	"github.com/m04kA/SMC-TherapyBookingService/internal/api/middleware"
	"github.com/m04kA/SMC-TherapyBookingService/internal/config"
	"github.com/m04kA/SMC-TherapyBookingService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/appointment"
	workingHoursRepo "github.com/m04kA/SMC-TherapyBookingService/internal/infra/storage/workinghours"
	identityClient "github.com/m04kA/SMC-TherapyBookingService/internal/integrations/identity"
	therapyCatalogClient "github.com/m04kA/SMC-TherapyBookingService/internal/integrations/therapycatalog"
	appointmentsService "github.com/m04kA/SMC-TherapyBookingService/internal/service/appointments"
	paymentsService "github.com/m04kA/SMC-TherapyBookingService/internal/service/payments"
	scheduleService "github.com/m04kA/SMC-TherapyBookingService/internal/service/schedule"
	bookAppointmentUC "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/book_appointment"
	getAvailableSlotsUC "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/get_available_slots"
	rescheduleAppointmentUC "github.com/m04kA/SMC-TherapyBookingService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/logger"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/metrics"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/txmanager"
	"github.com/m04kA/SMC-TherapyBookingService/pkg/types"
)

const serializableBackoff = 20 * time.Millisecond

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-TherapyBookingService...")
	log.Info("Configuration loaded from %s", *configPath)

	location := cfg.Scheduling.Location()

	// Метрики (если включены). nil-коллектор безопасен: все методы его проверяют
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	defer close(stopMetricsCh)

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB,
		txmanager.WithRetries(cfg.Database.SerializableRetries, serializableBackoff))

	// Блокировка календаря врача
	var (
		locker      lock.Locker
		redisClient *redis.Client
	)
	switch cfg.Lock.Backend {
	case "redis":
		redisClient, err = lock.NewRedisClient(cfg.Redis.URL, cfg.Redis.PoolSize)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()

		locker = lock.NewRedisLocker(redisClient, lock.RedisOptions{
			TTL:           cfg.Lock.TTL(),
			WaitTimeout:   cfg.Lock.WaitTimeout(),
			RetryInterval: cfg.Lock.RetryInterval(),
		}, metricsCollector, log)
		log.Info("Using redis lock backend (ttl=%s, wait=%s)", cfg.Lock.TTL(), cfg.Lock.WaitTimeout())
	default:
		locker = lock.NewLocalLocker(cfg.Lock.WaitTimeout(), metricsCollector)
		log.Info("Using in-process lock backend (wait=%s)", cfg.Lock.WaitTimeout())
	}

	// Инициализируем интеграционных клиентов
	identity := identityClient.NewClient(
		cfg.Identity.URL,
		time.Duration(cfg.Identity.Timeout)*time.Second,
		identityClient.BreakerSettings{
			MaxFailures: uint32(cfg.Identity.BreakerFailures),
			OpenTimeout: time.Duration(cfg.Identity.BreakerOpenTimeout) * time.Second,
		},
		log,
	)
	catalog := therapyCatalogClient.NewClient(
		cfg.TherapyCatalog.URL,
		time.Duration(cfg.TherapyCatalog.Timeout)*time.Second,
		uint32(cfg.TherapyCatalog.BreakerFailures),
		time.Duration(cfg.TherapyCatalog.BreakerOpenTimeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (Identity=%s timeout=%ds, TherapyCatalog=%s timeout=%ds)",
		cfg.Identity.URL, cfg.Identity.Timeout, cfg.TherapyCatalog.URL, cfg.TherapyCatalog.Timeout)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	workingHoursRepository := workingHoursRepo.NewRepository(wrappedDB)

	// Сервисы
	scheduleSvc := scheduleService.NewService(
		workingHoursRepository,
		txMgr,
		types.TimeString(cfg.Scheduling.WorkdayStart),
		types.TimeString(cfg.Scheduling.WorkdayEnd),
		log,
	)
	appointmentSvc := appointmentsService.NewService(
		appointmentRepository,
		txMgr,
		location,
		metricsCollector,
		log,
	)
	paymentSvc := paymentsService.NewService(
		appointmentRepository,
		appointmentSvc,
		metricsCollector,
		log,
	)

	// Use cases
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleSvc,
		identity,
		catalog,
		locker,
		txMgr,
		location,
		metricsCollector,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		scheduleSvc,
		locker,
		txMgr,
		location,
		metricsCollector,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		scheduleSvc,
		identity,
		cfg.Scheduling.DefaultGranularityMinutes,
		location,
		log,
	)

	// Handlers
	createAppointment := createAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentSvc, log)
	rateAppointment := rateAppointmentHandler.NewHandler(appointmentSvc, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	getAppointmentEvents := getAppointmentEventsHandler.NewHandler(appointmentSvc, log)
	attachPayment := attachPaymentHandler.NewHandler(paymentSvc, log)
	refundAppointment := refundAppointmentHandler.NewHandler(paymentSvc, log)
	getPatientAppointments := getPatientAppointmentsHandler.NewHandler(appointmentSvc, log)
	getDoctorAppointments := getDoctorAppointmentsHandler.NewHandler(appointmentSvc, log)
	getDoctorSlots := getDoctorSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getWorkingHours := getWorkingHoursHandler.NewHandler(scheduleSvc, log)
	updateWorkingHours := updateWorkingHoursHandler.NewHandler(scheduleSvc, log)
	paymentWebhook := paymentWebhookHandler.NewHandler(paymentSvc, cfg.Payments.WebhookSecret, log)

	checks := map[string]healthHandler.Check{
		"postgres": wrappedDB.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	health := healthHandler.NewHandler(checks, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/health/live", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware())
		log.Info("Rate limiting enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты врача на дату
	api.HandleFunc("/doctors/{doctorId}/available-slots", getDoctorSlots.Handle).Methods(http.MethodGet)

	// Шаблон рабочих часов врача
	api.HandleFunc("/doctors/{doctorId}/working-hours", getWorkingHours.Handle).Methods(http.MethodGet)

	// События платежного провайдера, аутентификация по подписи
	api.HandleFunc("/webhooks/payments", paymentWebhook.Handle).Methods(http.MethodPost)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID и X-User-Role)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/rating", rateAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/events", getAppointmentEvents.Handle).Methods(http.MethodGet)

	// --- Оплата ---
	protected.HandleFunc("/appointments/{appointmentId}/payment", attachPayment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}/refund", refundAppointment.Handle).Methods(http.MethodPost)

	// --- Списки ---
	protected.HandleFunc("/patients/{patientId}/appointments", getPatientAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/appointments", getDoctorAppointments.Handle).Methods(http.MethodGet)

	// --- Расписание врача ---
	protected.HandleFunc("/doctors/{doctorId}/working-hours", updateWorkingHours.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped")
}
