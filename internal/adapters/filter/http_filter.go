package filter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/core"
)

// FeaturesUsed is the feature vector as reported to HTTP clients
type FeaturesUsed struct {
	HasPhishyKeywords   int     `json:"HasPhishyKeywords"`
	NumRecipients       int     `json:"NumRecipients"`
	GlobalURLRank       int     `json:"GlobalURLRank"`
	LocalURLFreq        int     `json:"LocalURLFreq"`
	RecipientLikelihood float64 `json:"RecipientLikelihood"`
}

// PredictResponse is the body of a successful POST /predict
type PredictResponse struct {
	Label        int          `json:"label"`
	FeaturesUsed FeaturesUsed `json:"features_used"`
	Domain       string       `json:"domain"`
	Probability  float64      `json:"probability"`
	ProcessingID string       `json:"processing_id"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status      string     `json:"status"`
	Emails      int        `json:"emails"`
	Senders     int        `json:"senders"`
	Days        int        `json:"days"`
	Domains     int        `json:"domains"`
	RankedCount int        `json:"ranked_domains"`
	BuiltAt     *time.Time `json:"built_at,omitempty"`
}

const (
	codeBadRequest = "BAD_REQUEST"
	codeNotFound   = "NOT_FOUND"
)

// HTTPFilter serves the scoring service over HTTP
type HTTPFilter struct {
	service        *core.LateralPhishService
	logger         *zap.Logger
	listenAddr     string
	allowedOrigins string
	app            *fiber.App
}

// NewHTTPFilter creates a new HTTP filter
func NewHTTPFilter(
	service *core.LateralPhishService,
	logger *zap.Logger,
	listenAddr string,
	allowedOrigins string,
	bodyLimit int,
) *HTTPFilter {
	f := &HTTPFilter{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		allowedOrigins: allowedOrigins,
	}

	if f.allowedOrigins == "" {
		f.allowedOrigins = "*"
	}

	f.app = fiber.New(fiber.Config{
		AppName:               "lateral-phish-detector",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          f.handleError,
	})

	f.app.Use(recover.New())
	f.app.Use(requestid.New())
	f.app.Use(cors.New(cors.Config{
		AllowOrigins: f.allowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	f.app.Post("/predict", f.predict)
	f.app.Get("/healthz", f.health)

	return f
}

// App exposes the underlying fiber application
func (f *HTTPFilter) App() *fiber.App {
	return f.app
}

// Start starts serving in the background
func (f *HTTPFilter) Start() error {
	f.logger.Info("HTTP filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.app.Listen(f.listenAddr); err != nil {
			f.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop shuts the server down, waiting for in-flight requests
func (f *HTTPFilter) Stop() error {
	return f.app.ShutdownWithTimeout(10 * time.Second)
}

// ScoreEmail scores one message
func (f *HTTPFilter) ScoreEmail(ctx context.Context, req *core.ScoreRequest) (*core.ScoreResult, error) {
	return f.service.Score(ctx, req)
}

func (f *HTTPFilter) predict(c *fiber.Ctx) error {
	var req core.ScoreRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid JSON body: " + err.Error(),
			Code:  codeBadRequest,
		})
	}

	result, err := f.ScoreEmail(c.UserContext(), &req)
	if err != nil {
		return f.scoringError(c, err)
	}

	vector := result.Features
	return c.JSON(PredictResponse{
		Label: result.Label,
		FeaturesUsed: FeaturesUsed{
			HasPhishyKeywords:   vector.HasPhishyKeywords,
			NumRecipients:       vector.NumRecipients,
			GlobalURLRank:       vector.GlobalURLRank,
			LocalURLFreq:        vector.LocalURLFreq,
			RecipientLikelihood: vector.RoundedLikelihood(),
		},
		Domain:       result.Domain,
		Probability:  result.Probability,
		ProcessingID: result.ProcessingID,
	})
}

func (f *HTTPFilter) scoringError(c *fiber.Ctx, err error) error {
	code := core.ErrorCode(err)

	status := fiber.StatusInternalServerError
	switch code {
	case core.CodeInvalidDate:
		status = fiber.StatusBadRequest
	case core.CodeNoDomain:
		status = fiber.StatusUnprocessableEntity
	case core.CodeNotReady:
		status = fiber.StatusServiceUnavailable
	default:
		f.logger.Error("Failed to score email",
			zap.Error(err),
			zap.String("request_id", requestID(c)))
	}

	return c.Status(status).JSON(ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func (f *HTTPFilter) health(c *fiber.Ctx) error {
	snapshot := f.service.Snapshot()
	if snapshot == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{Status: "loading"})
	}

	builtAt := snapshot.BuiltAt
	return c.JSON(HealthResponse{
		Status:      "ok",
		Emails:      snapshot.Stats.Emails,
		Senders:     snapshot.Stats.Senders,
		Days:        snapshot.Stats.Days,
		Domains:     snapshot.Stats.Domains,
		RankedCount: snapshot.Ranked,
		BuiltAt:     &builtAt,
	})
}

// handleError renders errors that escape handlers, such as unknown routes
// and oversized bodies
func (f *HTTPFilter) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := core.CodeInternal

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		switch {
		case status == fiber.StatusNotFound:
			code = codeNotFound
		case status < fiber.StatusInternalServerError:
			code = codeBadRequest
		}
	}

	return c.Status(status).JSON(ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
