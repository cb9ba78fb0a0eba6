package main

import (
	"context"
	"fmt"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clinic-app-server/internal/booking"
	"clinic-app-server/internal/config"
	"clinic-app-server/internal/events"
	"clinic-app-server/internal/jobs"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/notify"
	"clinic-app-server/internal/receipt"
	"clinic-app-server/internal/recommend"
	"clinic-app-server/internal/routes"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load environment variables; a missing .env is fine in containers.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found, using environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Error loading config: %v", err)
	}

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}

	dispatcher := events.NewDispatcher(logger)
	receipts := receipt.NewGenerator(cfg.MediaDir)
	bookingService := booking.NewService(db, receipts, dispatcher, logger, nil)

	var sender notify.Sender
	if cfg.Twilio.AccountSID != "" {
		sender = notify.NewTwilioSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
			cfg.Twilio.FromNumber, cfg.DefaultCountryCode, logger)
		registerSMSHandlers(dispatcher, sender)
	} else {
		logger.Warn("Twilio not configured, SMS notifications disabled")
	}

	var searcher recommend.Searcher
	if cfg.Pinecone.APIKey != "" {
		store, err := recommend.NewPineconeStore(context.Background(), cfg.Pinecone.APIKey,
			cfg.Pinecone.IndexName, cfg.Pinecone.Namespace, cfg.Pinecone.EmbedModel, logger)
		if err != nil {
			logger.WithFields(logrus.Fields{"error": err}).Warn("vector search unavailable, recommendations degrade to keyword scoring")
		} else {
			searcher = store
			registerIndexSyncHandler(dispatcher, store, db, logger)
			if cfg.Pinecone.SyncOnStart {
				syncDoctorIndex(store, db, logger)
			}
		}
	} else {
		logger.Warn("Pinecone not configured, recommendations use keyword scoring only")
	}

	if cfg.Kafka.Broker != "" {
		sink := events.NewKafkaSink(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer sink.Close()
		dispatcher.OnAppointment(sink.Publish)
	}

	engine := recommend.NewEngine(&recommend.GormDoctorSource{DB: db}, searcher, logger)

	// Without SMS the reminders have nothing to do, but the sweep still
	// has to free missed slots.
	jobStore := &jobs.GormAppointmentStore{DB: db}
	var reminderJob *jobs.ReminderJob
	if sender != nil {
		reminderJob = jobs.NewReminderJob(jobStore, sender, cfg.Jobs.MorningReminderHour, logger, nil)
	}
	sweepJob := jobs.NewNoShowJob(jobStore, sender, cfg.Jobs.NoShowGraceMinutes, sender != nil, logger, nil)
	scheduler, err := jobs.StartScheduler(reminderJob, sweepJob, logger)
	if err != nil {
		logger.Fatalf("Error starting job scheduler: %v", err)
	}
	defer scheduler.Stop()

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, routes.Deps{
		DB:       db,
		Cfg:      cfg,
		Booking:  bookingService,
		Receipts: receipts,
		Engine:   engine,
	})

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.Infof("Server running on port %s", cfg.Port)
	if err := router.Run(serverAddr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// registerSMSHandlers subscribes the booking confirmations and
// cancellation notices to the event stream.
func registerSMSHandlers(dispatcher *events.Dispatcher, sender notify.Sender) {
	dispatcher.OnAppointment(func(ev events.AppointmentEvent) error {
		switch ev.Type {
		case events.AppointmentBooked:
			if ev.PatientPhone == "" {
				return nil
			}
			return sender.Send(ev.PatientPhone, notify.ConfirmationMessage(ev.PatientName, ev.DoctorName, ev.Date, ev.Time))
		case events.AppointmentCancelled:
			if ev.DoctorPhone == "" {
				return nil
			}
			return sender.Send(ev.DoctorPhone, notify.CancellationMessage(ev.PatientName, ev.Date, ev.Time))
		}
		return nil
	})
}

// syncDoctorIndex rebuilds the index documents of every active doctor,
// so rows created before the index existed become searchable. Failure
// degrades to mutation-driven sync only.
func syncDoctorIndex(store *recommend.PineconeStore, db *gorm.DB, logger *logrus.Logger) {
	var doctors []models.Doctor
	if err := db.Preload("User").Where("is_active = ?", true).Find(&doctors).Error; err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Warn("loading doctors for index sync")
		return
	}
	if err := recommend.ReindexAll(context.Background(), store, doctors, logger); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Warn("initial doctor index sync failed")
	}
}

// registerIndexSyncHandler keeps the vector index in step with doctor
// profile mutations.
func registerIndexSyncHandler(dispatcher *events.Dispatcher, store *recommend.PineconeStore, db *gorm.DB, logger *logrus.Logger) {
	dispatcher.OnDoctor(func(ev events.DoctorEvent) error {
		ctx := context.Background()
		if ev.Type == events.DoctorDeleted {
			return store.DeleteDoctor(ctx, ev.DoctorID)
		}
		var doctor models.Doctor
		if err := db.Preload("User").First(&doctor, "id = ?", ev.DoctorID).Error; err != nil {
			return err
		}
		return store.UpsertDoctor(ctx, &doctor)
	})
}
