// Package kvserver is the reference implementation of the remote record
// store contract: a bearer-authenticated, prefix-queryable key-value
// service. Keys are namespaced per user (history:{userId}:...) and every
// call is checked against the authenticated identity.
package kvserver

import (
	"net/http"
	"strings"

	"roadwatch/internal/middleware"
	"roadwatch/internal/models"
	"roadwatch/internal/recordstore"
	"roadwatch/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	repo   repository.RecordRepository
	log    *zap.Logger
}

func NewServer(jwtSecret []byte, repo repository.RecordRepository, log *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		repo:   repo,
		log:    log,
	}

	kv := router.Group("/kv")
	kv.Use(middleware.AuthMiddleware(jwtSecret, log))
	{
		kv.PUT("/:key", s.put)
		kv.GET("", s.scan)
	}

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) {
	s.log.Info("Record store starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.log.Fatal("Record store failed to start", zap.Error(err))
	}
}

// put upserts one entry under the caller's namespace. Last write survives;
// there is no server-side retry.
func (s *Server) put(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	key := c.Param("key")

	if !ownsKey(userID, key) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Key outside caller namespace"})
		return
	}

	var entry models.HistoryEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.repo.Upsert(key, entry); err != nil {
		s.log.Error("Failed to store record", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// scan returns every record under the given prefix, ordered by key. An
// unmatched prefix yields an empty list, not an error.
func (s *Server) scan(c *gin.Context) {
	userID := c.MustGet("user_id").(string)
	prefix := c.Query("prefix")

	if !ownsKey(userID, prefix) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Prefix outside caller namespace"})
		return
	}

	records, err := s.repo.ScanByPrefix(prefix)
	if err != nil {
		s.log.Error("Failed to scan records", zap.String("prefix", prefix), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan records"})
		return
	}

	if records == nil {
		records = []recordstore.KeyedEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// ownsKey checks that the key or prefix stays inside the caller's
// history namespace.
func ownsKey(userID, key string) bool {
	return strings.HasPrefix(key, models.UserPrefix(userID))
}
