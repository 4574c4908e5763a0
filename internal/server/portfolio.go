package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/foliopress/foliopress/internal/activation"
	deploymentdomain "github.com/foliopress/foliopress/internal/deployment/domain"
	"github.com/foliopress/foliopress/internal/observability/logger"
	portfoliodomain "github.com/foliopress/foliopress/internal/portfolio/domain"
	publishdomain "github.com/foliopress/foliopress/internal/publish/domain"
	"github.com/foliopress/foliopress/pkg/db/pagination"
	"go.uber.org/zap"
)

const fingerprintHeader = "X-Client-Fingerprint"

type publishRequest struct {
	Fingerprint string                  `json:"fingerprint"`
	Content     portfoliodomain.Content `json:"content"`
}

type publishResponse struct {
	DeploymentID string `json:"deployment_id"`
	Repo         string `json:"repo"`
	Homepage     string `json:"homepage"`
}

func (s *Server) PublishPortfolio(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	fingerprint := s.clientFingerprint(c, req.Fingerprint)

	result, err := s.publishSvc.Publish(c.Request.Context(), publishdomain.Request{
		Fingerprint: fingerprint,
		Content:     req.Content,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.startWatcher(result.DeploymentID.String(), result.Homepage)

	c.JSON(http.StatusOK, publishResponse{
		DeploymentID: result.DeploymentID.String(),
		Repo:         result.Repo,
		Homepage:     result.Homepage,
	})
}

func (s *Server) PortfolioStatus(c *gin.Context) {
	rawID := strings.TrimSpace(c.Query("deployment_id"))
	if rawID == "" {
		AbortWithError(c, newValidationError("deployment_id", "invalid_request", "deployment_id is required"))
		return
	}

	if watcher, ok := s.watchers.Get(rawID); ok {
		c.JSON(http.StatusOK, watcher.Progress())
		return
	}

	// No in-flight watcher: either the poll loop finished long ago or the
	// server restarted. Answer with a one-shot probe instead.
	id, err := snowflake.ParseString(rawID)
	if err != nil {
		AbortWithError(c, newValidationError("deployment_id", "invalid_request", "invalid deployment id"))
		return
	}

	deployment, err := s.deployments.FindByID(c.Request.Context(), s.db, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	live, err := s.livenessProbe()(c.Request.Context(), deployment.Homepage)
	if err != nil {
		logger.FromContext(c.Request.Context()).Debug("liveness probe failed", zap.Error(err))
		live = false
	}

	c.JSON(http.StatusOK, finishedProgress(deployment.Homepage, live))
}

type listDeploymentsResponse struct {
	Deployments interface{}          `json:"deployments"`
	PageInfo    *pagination.PageInfo `json:"page_info"`
}

func (s *Server) ListDeployments(c *gin.Context) {
	fingerprint := s.clientFingerprint(c, c.Query("fingerprint"))
	if fingerprint == "" {
		AbortWithError(c, newValidationError("fingerprint", "invalid_request", "fingerprint is required"))
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	deployments, err := s.deployments.List(c.Request.Context(), s.db, fingerprint, page)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	size := page.PageSize
	if size <= 0 {
		size = 10
	}
	pageInfo := pagination.BuildCursorPageInfo(deployments, size, func(d *deploymentdomain.Deployment) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        d.ID.String(),
			CreatedAt: d.CreatedAt.UTC().Format("2006-01-02 15:04:05.999999999"),
		})
		return token
	})
	if len(deployments) > size {
		deployments = deployments[:size]
	}

	c.JSON(http.StatusOK, listDeploymentsResponse{
		Deployments: deployments,
		PageInfo:    pageInfo,
	})
}

func (s *Server) PreviewPortfolio(c *gin.Context) {
	var content portfoliodomain.Content
	if err := c.ShouldBindJSON(&content); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	html, err := s.renderer.RenderIndex(content)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) StatusPollRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := s.clientFingerprint(c, c.Query("fingerprint"))
		if key == "" {
			key = c.ClientIP()
		}

		allowed, err := s.limiter.AllowStatusPoll(c.Request.Context(), key)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("status poll rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !allowed {
			c.Header("Retry-After", "1")
			AbortWithError(c, ErrRateLimited)
			return
		}

		c.Next()
	}
}

func (s *Server) clientFingerprint(c *gin.Context, fallback string) string {
	fingerprint := strings.TrimSpace(c.GetHeader(fingerprintHeader))
	if fingerprint == "" {
		fingerprint = strings.TrimSpace(fallback)
	}
	return fingerprint
}

func (s *Server) startWatcher(deploymentID, homepage string) {
	ctx, cancel := context.WithCancel(context.Background())
	watcher := activation.NewWatcher(s.clk, s.livenessProbe(), activation.Config{}, s.log)
	s.watchers.Put(deploymentID, watcher, cancel)
	watcher.Start(homepage)

	go func() {
		defer cancel()
		watcher.Run(ctx)
		// the status handler serves finished deployments from the DB,
		// so the entry has no reader left once the poll loop exits
		s.watchers.Evict(deploymentID, watcher)
	}()
}

func (s *Server) livenessProbe() activation.LivenessFunc {
	return func(ctx context.Context, url string) (bool, error) {
		live, err := s.checker.CheckLive(ctx, url)
		switch {
		case err != nil:
			s.obsMetrics.RecordLivenessCheck("error")
		case live:
			s.obsMetrics.RecordLivenessCheck("live")
		default:
			s.obsMetrics.RecordLivenessCheck("pending")
		}
		return live, err
	}
}

func finishedProgress(homepage string, live bool) activation.Progress {
	label := activation.LabelPropagating
	if live {
		label = activation.LabelLive
	}

	steps := make([]activation.Step, 0, 5)
	for _, id := range []activation.StepID{
		activation.StepPrepare,
		activation.StepUpload,
		activation.StepConfigure,
		activation.StepSave,
	} {
		steps = append(steps, activation.Step{ID: id, State: activation.StateDone})
	}
	steps = append(steps, activation.Step{
		ID:    activation.StepActivate,
		State: activation.StateDone,
		Label: label,
	})

	return activation.Progress{
		Steps:    steps,
		Homepage: homepage,
		Percent:  100,
		Live:     live,
		Finished: true,
	}
}
