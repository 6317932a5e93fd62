package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"ai-tutor-backend/internal/ai"
	appsvc "ai-tutor-backend/internal/app"
	"ai-tutor-backend/internal/bootstrap"
	"ai-tutor-backend/internal/cache"
	"ai-tutor-backend/internal/platform/rabbitmq"
	"ai-tutor-backend/internal/repository"
	"ai-tutor-backend/internal/transport/http/handler"
	"ai-tutor-backend/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	materialRepo := repository.NewStudyMaterialRepository(app.MySQL)
	chunkRepo := repository.NewMaterialChunkRepository(app.MySQL)
	examRepo := repository.NewExamRepository(app.MySQL)
	questionRepo := repository.NewQuestionRepository(app.MySQL)
	attemptRepo := repository.NewExamAttemptRepository(app.MySQL)
	ministryRepo := repository.NewMinistryQuestionRepository(app.MySQL)
	ministryAttemptRepo := repository.NewMinistryAttemptRepository(app.MySQL)
	sessionRepo := repository.NewTutoringSessionRepository(app.MySQL)
	messageRepo := repository.NewSessionMessageRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)

	llmClient := ai.NewClient()
	chatCfg := ai.ChatConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.Model,
	}
	embCfg := ai.EmbeddingConfig{
		BaseURL: app.Config.LLM.BaseURL,
		APIKey:  app.Config.LLM.APIKey,
		Model:   app.Config.LLM.EmbeddingModel,
	}

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		app.Config.Auth.GoogleClientID,
	)
	ragService := appsvc.NewRAGService(
		materialRepo, chunkRepo, questionRepo,
		llmClient, embCfg, chatCfg,
		appsvc.RAGOptions{
			TopK:         app.Config.RAG.TopK,
			ChunkSize:    app.Config.RAG.ChunkSize,
			ChunkOverlap: app.Config.RAG.ChunkOverlap,
		},
		app.Log,
	)
	examService := appsvc.NewExamService(
		examRepo, questionRepo, attemptRepo,
		ministryRepo, ministryAttemptRepo,
		ragService, app.Log,
	)
	tutoringService := appsvc.NewTutoringService(
		sessionRepo, messageRepo, historyCache, publisher, ragService, app.Log,
	)
	userService := appsvc.NewUserService(
		userRepo, attemptRepo, ministryAttemptRepo, sessionRepo, messageRepo,
	)
	userService.SetTutoringService(tutoringService)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	materialHandler := handler.NewMaterialHandler(ragService)
	examHandler := handler.NewExamHandler(examService)
	tutoringHandler := handler.NewTutoringHandler(tutoringService)

	authJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/google", authHandler.GoogleLogin)
	authGroup.GET("/me", authJWT, authHandler.Me)

	userGroup := v1.Group("/users")
	userGroup.Use(authJWT)
	userGroup.GET("/:user_id", userHandler.Get)
	userGroup.PUT("/:user_id", userHandler.Update)
	userGroup.DELETE("/:user_id", userHandler.Delete)
	userGroup.GET("/:user_id/learning-progress", userHandler.LearningProgress)
	userGroup.GET("/:user_id/exam-history", userHandler.ExamHistory)
	userGroup.GET("/:user_id/tutoring-history", userHandler.TutoringHistory)

	materialGroup := v1.Group("/materials")
	materialGroup.Use(authJWT)
	materialGroup.POST("", materialHandler.Create)
	materialGroup.POST("/upload-pdf", materialHandler.UploadPDF)
	materialGroup.GET("", materialHandler.List)
	materialGroup.POST("/ask", materialHandler.Ask)
	materialGroup.GET("/:material_id", materialHandler.Get)
	materialGroup.DELETE("/:material_id", materialHandler.Delete)

	examGroup := v1.Group("/exams")
	examGroup.Use(authJWT)
	examGroup.POST("", examHandler.Create)
	examGroup.GET("", examHandler.List)
	examGroup.GET("/attempts", examHandler.ListUserAttempts)
	examGroup.POST("/from-ministry-questions", examHandler.CreateFromMinistry)
	examGroup.POST("/ministry-questions", examHandler.AddMinistryQuestion)
	examGroup.GET("/ministry-questions", examHandler.ListMinistryQuestions)
	examGroup.GET("/ministry-questions/:question_id", examHandler.GetMinistryQuestion)
	examGroup.DELETE("/ministry-questions/:question_id", examHandler.DeleteMinistryQuestion)
	examGroup.POST("/ministry/:exam_id/start", examHandler.StartMinistryAttempt)
	examGroup.POST("/ministry/:exam_id/submit", examHandler.SubmitMinistryAttempt)
	examGroup.GET("/ministry/:exam_id/attempts", examHandler.ListMinistryAttempts)
	examGroup.GET("/ministry/:exam_id/attempts/:attempt_id", examHandler.GetMinistryAttempt)
	examGroup.GET("/:exam_id", examHandler.Get)
	examGroup.POST("/:exam_id/questions", examHandler.AddQuestion)
	examGroup.GET("/:exam_id/questions", examHandler.ListQuestions)
	examGroup.GET("/:exam_id/ministry-questions", examHandler.ExamMinistryQuestions)
	examGroup.POST("/:exam_id/attempts/start", examHandler.StartAttempt)
	examGroup.POST("/:exam_id/attempts/:attempt_id/submit", examHandler.SubmitAttempt)
	examGroup.GET("/:exam_id/attempts/:attempt_id", examHandler.GetAttempt)
	examGroup.POST("/:exam_id/attempts/:attempt_id/retake", examHandler.Retake)

	tutoringGroup := v1.Group("/tutoring")
	tutoringGroup.Use(authJWT)
	tutoringGroup.POST("/sessions", tutoringHandler.Start)
	tutoringGroup.GET("/sessions", tutoringHandler.List)
	tutoringGroup.GET("/sessions/:session_id", tutoringHandler.Get)
	tutoringGroup.DELETE("/sessions/:session_id", tutoringHandler.Delete)
	tutoringGroup.POST("/sessions/:session_id/ask", tutoringHandler.Ask)
	tutoringGroup.POST("/sessions/:session_id/rate", tutoringHandler.Rate)
	tutoringGroup.GET("/sessions/:session_id/messages", tutoringHandler.Messages)

	return router
}
