package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lephan/quokka/config"
	"github.com/lephan/quokka/database"
	_ "github.com/lephan/quokka/docs" // Swagger docs
	adminctrl "github.com/lephan/quokka/internal/controller/admin"
	userctrl "github.com/lephan/quokka/internal/controller/user"
	"github.com/lephan/quokka/internal/event"
	"github.com/lephan/quokka/internal/logger"
	"github.com/lephan/quokka/internal/model"
	"github.com/lephan/quokka/internal/repository"
	"github.com/lephan/quokka/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Quokka Practice API
// @version 1.0
// @description API for AI-assisted question practice: sessions, answer evaluation, feedback, hints, remediation, and study chat.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			event.NewPublisher,
			NewGinEngine,
		),

		// Repositories layer
		fx.Provide(
			repository.NewTopicRepository,
			repository.NewQuestionRepository,
			repository.NewAnswerRepository,
			repository.NewChatRepository,
		),

		// Services layer
		fx.Provide(
			service.NewGeminiTutorService,
			service.NewFeedbackService,
			service.NewRecommendationService,
			service.NewPracticeService,
			service.NewChatService,
			service.NewQuestionService,
		),

		// API controllers layer
		fx.Provide(
			adminctrl.NewAdminQuestionController,
			userctrl.NewPracticeController,
			userctrl.NewChatController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	// Request logging through zerolog
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	publisher event.Publisher,
	adminQuestionCtrl *adminctrl.AdminQuestionController,
	practiceCtrl *userctrl.PracticeController,
	chatCtrl *userctrl.ChatController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		topicsGroup := adminAPIGroup.Group("/topics")
		topicsGroup.POST("", adminQuestionCtrl.CreateTopic)
		topicsGroup.GET("", adminQuestionCtrl.GetAllTopics)
		topicsGroup.GET("/:topic_id/questions", adminQuestionCtrl.GetQuestionsByTopic)
		topicsGroup.DELETE("/:topic_id", adminQuestionCtrl.DeleteTopic)

		questionsGroup := adminAPIGroup.Group("/questions")
		questionsGroup.POST("", adminQuestionCtrl.CreateQuestion)
		questionsGroup.POST("/generate", adminQuestionCtrl.GenerateQuestions)
		questionsGroup.GET("/:question_id", adminQuestionCtrl.GetQuestion)
		questionsGroup.DELETE("/:question_id", adminQuestionCtrl.DeleteQuestion)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		practiceGroup := userAPIGroup.Group("/practice")
		practiceGroup.POST("/sessions", practiceCtrl.StartSession)
		practiceGroup.GET("/sessions/:session_id", practiceCtrl.GetSession)
		practiceGroup.POST("/sessions/:session_id/answers", practiceCtrl.SubmitAnswer)
		practiceGroup.POST("/sessions/:session_id/advance", practiceCtrl.Advance)
		practiceGroup.POST("/sessions/:session_id/remediation", practiceCtrl.AcceptRemediation)
		practiceGroup.GET("/sessions/:session_id/stats", practiceCtrl.GetStats)
		practiceGroup.POST("/questions/:question_id/hint", practiceCtrl.GetHint)

		chatGroup := userAPIGroup.Group("/chat")
		chatGroup.POST("/messages", chatCtrl.SendMessage)
		chatGroup.GET("/messages", chatCtrl.GetHistory)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Quokka Practice API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			publisher.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Topic{},
		&model.Question{},
		&model.Option{},
		&model.MatchPair{},
		&model.Blank{},
		&model.StudentAnswer{},
		&model.ChatMessage{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
