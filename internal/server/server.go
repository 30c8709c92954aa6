package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/agenthands/copycheck/internal/config"
	"github.com/agenthands/copycheck/internal/core"
	"github.com/agenthands/copycheck/internal/core/extraction"
	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/agenthands/copycheck/internal/core/review"
	"github.com/agenthands/copycheck/internal/corpus"
	"github.com/agenthands/copycheck/internal/driver"
	"github.com/agenthands/copycheck/internal/embed"
	"github.com/agenthands/copycheck/internal/index"
	"github.com/agenthands/copycheck/internal/llm"
	"github.com/gin-gonic/gin"
)

type Server struct {
	Checker *core.Checker
	Config  *config.Config

	closers []func(context.Context) error
}

// New wraps an already built checker.
func New(checker *core.Checker, cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Server{Checker: checker, Config: cfg}
}

// NewServer wires the checker from configuration. Only the absence of both an
// index and a corpus is fatal; LLM, Memgraph and watcher failures are logged
// and the server runs without them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	cc := cfg.Copyright
	s := &Server{Config: cfg}

	holder := index.NewHolder(nil)
	var candidates *core.Corpus
	idx, err := index.Load(cc.CacheDir, cc.ModelKey)
	if err != nil {
		log.Printf("Warning: no usable index for model %q: %v", cc.ModelKey, err)
		rows, err := corpus.Load(ctx, cc.CorpusPath)
		if err != nil {
			log.Printf("Warning: could not load corpus: %v", err)
		} else {
			log.Printf("Loaded %d games from %s for lexical similarity", len(rows), cc.CorpusPath)
			candidates = core.NewCorpus(rows)
		}
	} else {
		log.Printf("Loaded index %s: %d items, dimension %d", cc.ModelKey, idx.Stats.NumItems, idx.Stats.Dimension)
		holder.Store(idx)
	}

	key := cc.ModelKey
	enc := embed.NewEncoder(key, func(ctx context.Context) (embed.Model, error) {
		return embed.Open(ctx, key, cfg.LLM)
	})

	if idx != nil {
		if _, err := enc.Model(ctx); err != nil {
			log.Printf("Warning: query encoder unavailable, using lexical similarity: %v", err)
		}
	}

	llmClient, _, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		log.Printf("Warning: failed to initialize LLM client: %v", err)
	}
	if c, ok := llmClient.(interface{ Close() error }); ok {
		s.closers = append(s.closers, func(context.Context) error { return c.Close() })
	}
	ex := extraction.NewExtractor(llmClient, cfg.Prompts, cc.RequestsPerSecond)
	ex.Structured = cc.StructuredOutput
	ex.Translation = cc.Translate

	checker, err := core.NewChecker(holder, enc, candidates, ex)
	if err != nil {
		return nil, err
	}
	checker.LinkBase = cc.LinkBase
	if cc.LLMReview {
		checker.Reviewer = review.NewReviewer(ex, cfg.Prompts.Review)
	}
	s.Checker = checker

	if cfg.Memgraph.URI != "" {
		d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
		if err != nil {
			log.Printf("Warning: failed to connect to Memgraph, check history disabled: %v", err)
		} else {
			if err := d.BuildIndices(ctx); err != nil {
				log.Printf("Warning: failed to build indices: %v", err)
			}
			checker.Store = driver.NewResultStore(d)
			s.closers = append(s.closers, d.Close)
		}
	}

	if cc.WatchIndex {
		w, err := index.NewWatcher(cc.CacheDir, key, holder)
		if err != nil {
			log.Printf("Warning: index hot reload disabled: %v", err)
		} else {
			go func() {
				if err := w.Run(ctx); err != nil {
					log.Printf("Warning: index watcher stopped: %v", err)
				}
			}()
			s.closers = append(s.closers, func(context.Context) error { return w.Close() })
		}
	}

	return s, nil
}

// Close releases the Memgraph connection and the index watcher.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	for _, c := range s.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.Info)

	api := r.Group("/api")
	api.GET("/status", s.Status)
	api.POST("/plans/copyright-plan", s.CheckPlan)
	api.POST("/plans/copyright-check", s.CheckDesign)
	api.GET("/plans/:planId/copyright", s.LatestCheck)
	api.POST("/copyright/approval", s.Approval)

	return r
}

func (s *Server) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "copycheck",
		"endpoints": []string{
			"POST /api/plans/copyright-plan",
			"POST /api/plans/copyright-check",
			"GET /api/plans/:planId/copyright",
			"POST /api/copyright/approval",
			"GET /api/status",
		},
	})
}

func (s *Server) Status(c *gin.Context) {
	if s.Checker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"service_ready": false, "error": "checker not initialized"})
		return
	}

	ctx := c.Request.Context()
	resp := gin.H{
		"service_ready": true,
		"mode":          s.Checker.Mode(ctx),
	}
	if idx := s.Checker.Index.Load(); idx != nil {
		resp["index"] = gin.H{
			"model_key": idx.Stats.ModelKey,
			"num_items": idx.Stats.NumItems,
			"dimension": idx.Stats.Dimension,
		}
		if s.Checker.Encoder != nil {
			if _, err := s.Checker.Encoder.Model(ctx); err != nil {
				resp["error"] = err.Error()
			}
		}
	} else {
		resp["error"] = "no index loaded; using lexical similarity over the corpus"
	}
	c.JSON(http.StatusOK, resp)
}

type CheckPlanRequest struct {
	PlanID      int64  `json:"planId"`
	SummaryText string `json:"summaryText" binding:"required"`
}

func (s *Server) CheckPlan(c *gin.Context) {
	if !s.ready(c) {
		return
	}
	var req CheckPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	v, err := s.Checker.CheckPlan(c.Request.Context(), req.PlanID, req.SummaryText)
	if err != nil {
		s.fail(c, "copyright plan check", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type CheckDesignRequest struct {
	PlanID      int64    `json:"planId"`
	Title       string   `json:"title"`
	Theme       string   `json:"theme"`
	Mechanics   []string `json:"mechanics"`
	Description string   `json:"description"`
}

func (s *Server) CheckDesign(c *gin.Context) {
	if !s.ready(c) {
		return
	}
	var req CheckDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Theme == "" && len(req.Mechanics) == 0 && req.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme, mechanics or description is required"})
		return
	}

	v, err := s.Checker.CheckRisk(c.Request.Context(), model.Design{
		PlanID:      req.PlanID,
		Title:       req.Title,
		Theme:       req.Theme,
		Mechanics:   req.Mechanics,
		Description: req.Description,
	})
	if err != nil {
		s.fail(c, "copyright check", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) LatestCheck(c *gin.Context) {
	if !s.ready(c) {
		return
	}
	planID, err := strconv.ParseInt(c.Param("planId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "planId must be an integer"})
		return
	}
	if s.Checker.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "check history is not configured"})
		return
	}

	v, err := s.Checker.LatestVerdict(c.Request.Context(), planID)
	if errors.Is(err, model.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no copyright check for this plan"})
		return
	}
	if err != nil {
		s.fail(c, "load copyright check", err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type ApprovalRequest struct {
	GameTitle string `json:"game_title" binding:"required,min=1,max=100"`
	GamePlan  string `json:"game_plan" binding:"required,min=10"`
}

func (s *Server) Approval(c *gin.Context) {
	if !s.ready(c) {
		return
	}
	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	res, err := s.Checker.CheckApproval(c.Request.Context(), req.GameTitle, req.GamePlan)
	if err != nil {
		s.fail(c, "approval check", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) ready(c *gin.Context) bool {
	if s.Checker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service not ready"})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	log.Printf("Failed %s: %v", op, err)
	switch {
	case errors.Is(err, model.ErrExtraction):
		c.JSON(http.StatusBadGateway, gin.H{"error": "extraction_failed"})
	case errors.Is(err, model.ErrNoCandidates):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service not ready"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
	}
}
