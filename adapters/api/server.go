// Package api serves stored analysis results over HTTP: JSON for machines,
// a rendered report for people.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"ocrstat/adapters/export"
	"ocrstat/domain/compare"
	"ocrstat/domain/core"
	"ocrstat/ports"
)

// Server exposes the result repository.
type Server struct {
	router *gin.Engine
	repo   ports.ResultRepository
	alpha  float64
	log    *logrus.Entry
}

// NewServer creates the HTTP server around a repository. alpha is only used
// for report significance annotations, not recomputation.
func NewServer(repo ports.ResultRepository, alpha float64) *Server {
	s := &Server{
		router: gin.Default(),
		repo:   repo,
		alpha:  alpha,
		log:    logrus.WithField("component", "api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)
	apiGroup := s.router.Group("/api")
	{
		apiGroup.GET("/analyses", s.handleListAnalyses)
		apiGroup.GET("/analyses/:id", s.handleGetAnalysis)
		apiGroup.GET("/analyses/:id/report", s.handleGetReport)
	}
}

// Run blocks serving on addr.
func (s *Server) Run(addr string) error {
	s.log.WithField("addr", addr).Info("results API listening")
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListAnalyses(c *gin.Context) {
	summaries, err := s.repo.List(c.Request.Context(), 50)
	if err != nil {
		s.log.WithError(err).Error("list analyses")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": summaries})
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	table, ok := s.loadTable(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) handleGetReport(c *gin.Context) {
	table, ok := s.loadTable(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", export.HTML(table, s.alpha))
}

func (s *Server) loadTable(c *gin.Context) (*compare.ResultTable, bool) {
	id, err := core.ParseAnalysisID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	t, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
			return nil, false
		}
		s.log.WithError(err).Error("get analysis")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return nil, false
	}
	return t, true
}
