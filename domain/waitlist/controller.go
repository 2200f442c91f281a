package waitlist

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/akeren/launchlist/config/router"
	"github.com/akeren/launchlist/internal/log"
	"github.com/akeren/launchlist/pkg/constants"
	apperrors "github.com/akeren/launchlist/pkg/errors"
	"github.com/akeren/launchlist/pkg/factory"
	"github.com/akeren/launchlist/pkg/ratelimit"
	"github.com/gin-gonic/gin/binding"
)

const mountPoint = "/api/waitlist"

var (
	errMalformedBody = errors.New("waitlist: request body is not valid JSON")
	errNullBody      = errors.New("waitlist: request body is JSON null")
)

func NewWaitlistControllerWithService(
	service WaitlistService,
	logger *log.Logger,
	cache factory.Cache,
	requestsPerWindow int,
) *router.RESTController {
	return router.NewRESTController(
		"WaitlistController",
		mountPoint,
		func(rs *router.RouterService, c *router.RESTController) {
			metrics := newSubmissionMetrics(rs.MetricsRegisterer())
			limiter := createWaitlistRateLimiter(rs, cache, requestsPerWindow, logger)

			rs.AddPostHandler(c, limiter, "", joinWaitlistHandler(service, metrics))
		},
	)
}

// createWaitlistRateLimiter shares the router's window but allows fewer
// signups per client than the global default.
func createWaitlistRateLimiter(rs *router.RouterService, cache factory.Cache, requests int, logger *log.Logger) ratelimit.RateLimiter {
	if requests <= 0 {
		requests = constants.DefaultWaitlistRateLimitRequests
	}
	_, window := rs.GetDefaultRateLimitConfig()
	if window <= 0 {
		window = time.Minute
	}

	var limiterLogger ratelimit.Logger
	if logger != nil {
		limiterLogger = logger
	}

	return factory.NewDefaultRateLimiterFactory(requests, window, cache, limiterLogger).CreateRateLimiter()
}

func joinWaitlistHandler(service WaitlistService, metrics *submissionMetrics) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		logger := router.GetLogger(ctx)

		req, err := readJoinRequest(ctx)
		if err == nil {
			return joinWaitlist(ctx, service, metrics, req)
		}

		logger.Error("Error adding user to waitlist", "error", err)
		metrics.observe(outcomeFailed)
		return router.BareJSONResult(http.StatusInternalServerError, ErrorResponse{Error: MsgFailedToAddUser})
	}
}

func readJoinRequest(ctx *router.RequestContext) (*JoinWaitlistRequest, error) {
	body, err := ctx.GetRawData()
	if err != nil {
		return nil, err
	}
	return decodeJoinRequest(body)
}

// decodeJoinRequest accepts any JSON value except null. Arrays, strings,
// numbers and booleans carry no fields and decode to an empty request.
func decodeJoinRequest(body []byte) (*JoinWaitlistRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, errMalformedBody
	}

	var req JoinWaitlistRequest
	switch trimmed[0] {
	case 'n':
		return nil, errNullBody
	case '{':
		if err := binding.JSON.BindBody(trimmed, &req); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

func joinWaitlist(ctx *router.RequestContext, service WaitlistService, metrics *submissionMetrics, req *JoinWaitlistRequest) *router.ServiceResult {
	response, err := service.JoinWaitlist(ctx.Request.Context(), req, clientIPFromForwardedFor(ctx))
	if err != nil {
		if status := apperrors.HTTPStatusCode(err); status == http.StatusBadRequest {
			metrics.observe(outcomeInvalid)
			return router.BareJSONResult(status, ErrorResponse{Error: apperrors.GetHumanReadableMessage(err)})
		}

		// Storage details stay in the logs.
		metrics.observe(outcomeFailed)
		return router.BareJSONResult(http.StatusInternalServerError, ErrorResponse{Error: MsgFailedToAddUser})
	}

	metrics.observe(outcomeCreated)
	return router.BareJSONResult(http.StatusCreated, response)
}

// clientIPFromForwardedFor returns the first hop of X-Forwarded-For. The
// header is client-controlled, so the value is informational only.
func clientIPFromForwardedFor(ctx *router.RequestContext) string {
	first, _, _ := strings.Cut(ctx.GetHeader(constants.ForwardedForHeader), ",")
	if ip := strings.TrimSpace(first); ip != "" {
		return ip
	}
	return constants.UnknownIPAddress
}
