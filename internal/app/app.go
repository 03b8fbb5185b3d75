package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"eventcrm/internal/audit"
	"eventcrm/internal/board"
	"eventcrm/internal/config"
	"eventcrm/internal/crm"
	"eventcrm/internal/handlers"
	"eventcrm/internal/notify"
	"eventcrm/internal/queue"
	"eventcrm/internal/routes"
	"eventcrm/internal/services"
	"eventcrm/internal/store"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
)

func Run() {
	cfg := config.LoadConfig()

	// === CRM client + store ===
	crmClient := crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.APIToken)
	leadStore := store.NewLeadStore(crmClient)
	controller := board.NewController(leadStore, func(n board.Notice) {
		log.Printf("[board][notice] lead=%s %s", n.LeadID, n.Message)
	})

	boardService := services.NewBoardService(leadStore, controller, crmClient)

	// === Журнал переходов (опционально) ===
	var auditHandler *handlers.AuditHandler
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Fatal("Ошибка подключения к БД: ", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("Ошибка закрытия БД: %v", err)
			}
		}()
		auditRepo := audit.NewTransitionLogRepository(db)
		boardService.Recorder = auditRepo
		auditHandler = handlers.NewAuditHandler(auditRepo)
	} else {
		log.Println("database url не задан — журнал переходов выключен")
	}

	// === События (опционально) ===
	if cfg.RabbitMQ.URL != "" {
		rmq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Printf("[events][err] rabbitmq недоступен, события выключены: %v", err)
		} else {
			defer rmq.Close()
			boardService.Events = queue.NewProducer(rmq)
		}
	}

	// === Уведомления (опционально) ===
	var notifiers notify.Multi
	if cfg.Email.SMTPHost != "" && cfg.Email.NotifyEmail != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.NotifyEmail,
		))
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("[tg][err] бот не поднялся, telegram-уведомления выключены: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	if len(notifiers) > 0 {
		boardService.Notifier = notifiers
	}

	// первичная загрузка кэша; при недоступном CRM доска поднимется пустой
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := boardService.Refresh(ctx); err != nil {
		log.Printf("[crm][err] первичная загрузка лидов не удалась: %v", err)
	}
	cancel()

	// === Handlers ===
	boardHandler := handlers.NewBoardHandler(boardService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	routes.SetupRoutes(router, []byte(cfg.Auth.JWTSecret), boardHandler, auditHandler)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
