package server

import (
	"roadwatch/internal/handler"
	"roadwatch/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	log    *zap.Logger
}

// NewServer wires the gateway routes over explicitly constructed
// collaborators; the server owns no client state of its own.
func NewServer(jwtSecret []byte, pipe handler.Submitter, reconciler handler.HistoryProvider, oracle handler.OracleHealthChecker, log *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		log:    log,
	}

	s.setupRoutes(jwtSecret, pipe, reconciler, oracle)

	return s
}

func (s *Server) setupRoutes(jwtSecret []byte, pipe handler.Submitter, reconciler handler.HistoryProvider, oracle handler.OracleHealthChecker) {
	analyzeHandler := handler.NewAnalyzeHandler(pipe, s.log)
	detectionHandler := handler.NewDetectionHandler(pipe, s.log)
	historyHandler := handler.NewHistoryHandler(reconciler, s.log)
	healthHandler := handler.NewHealthHandler(oracle, s.log)

	// Health check, unauthenticated
	s.router.GET("/ping", healthHandler.Health)

	// Authenticated API
	api := s.router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtSecret, s.log))
	{
		api.POST("/analyze", analyzeHandler.Analyze)
		api.POST("/detections", detectionHandler.RecordDetection)
		api.GET("/history", historyHandler.GetHistory)
		api.GET("/history/summary", historyHandler.GetSummary)
	}
}

func (s *Server) Run(addr string) {
	s.log.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.log.Fatal("Server failed to start", zap.Error(err))
	}
}
