package api

import (
    "context"
    "net/http"
    "time"

    "github.com/gin-contrib/cors"
    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "github.com/example/news-summarizer/internal/logging"
    "github.com/example/news-summarizer/internal/models"
    "github.com/example/news-summarizer/internal/monitoring"
    "github.com/example/news-summarizer/internal/tracing"
)

// Summarizer is the work behind POST /summarize.
type Summarizer interface {
    Summarize(ctx context.Context, req *models.SummaryRequest) (*models.SummaryResponse, error)
}

type Options struct {
    Summarizer Summarizer
    Logger     *logging.Logger
    Metrics    *monitoring.Metrics
    Tracer     *tracing.Tracer
    // MetricsEnabled exposes GET /metrics when Metrics is set.
    MetricsEnabled bool
}

// Server is the HTTP surface of the service.
type Server struct {
    engine     *gin.Engine
    summarizer Summarizer
    logger     *logging.Logger
}

func NewServer(opts Options) *Server {
    if opts.Logger == nil { opts.Logger = logging.NewNop() }
    if opts.Tracer == nil { opts.Tracer = tracing.New("news-summarizer", opts.Logger) }
    s := &Server{engine: gin.New(), summarizer: opts.Summarizer, logger: opts.Logger.Named("api")}

    s.engine.Use(monitoring.Middleware(opts.Metrics))
    s.engine.Use(tracing.HTTPMiddleware(opts.Tracer))
    s.engine.Use(cors.New(cors.Config{
        AllowAllOrigins: true,
        AllowMethods:    []string{"GET", "POST", "OPTIONS"},
        AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", tracing.HeaderTraceID},
        ExposeHeaders:   []string{tracing.HeaderTraceID},
        MaxAge:          12 * time.Hour,
    }))
    s.engine.Use(gin.CustomRecovery(s.recover))

    s.engine.GET("/", s.root)
    s.engine.GET("/health", s.health)
    s.engine.POST("/summarize", s.summarize)
    if opts.MetricsEnabled && opts.Metrics != nil {
        s.engine.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
    }
    s.engine.NoRoute(func(c *gin.Context) {
        c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "Not found", Code: codeNotFound})
    })
    return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) root(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"message": "News Summary API is running"})
}

func (s *Server) health(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) summarize(c *gin.Context) {
    var req models.SummaryRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: err.Error(), Code: codeValidation})
        return
    }
    resp, err := s.summarizer.Summarize(c.Request.Context(), &req)
    if err != nil {
        status, payload := translate(err)
        s.logger.Debug("summarize failed", zap.String("url", req.URL), zap.String("code", payload.Code), zap.Error(err))
        _ = c.Error(err)
        c.JSON(status, payload)
        return
    }
    c.JSON(http.StatusOK, resp)
}

func (s *Server) recover(c *gin.Context, recovered any) {
    s.logger.Error("panic recovered", zap.String("path", c.Request.URL.Path), zap.Any("panic", recovered), zap.Stack("stack"))
    c.AbortWithStatusJSON(http.StatusInternalServerError, internalError)
}
