package api

import (
	"context"
	"errors"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/itsdivyansh1/proptech-v2-ai/internal/chat"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/codec"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/geometry"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/metrics"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/models"
	"github.com/itsdivyansh1/proptech-v2-ai/internal/recommend"
)

const (
	msgInvalidPriceInput  = "Invalid input. Provide valid 'region', 'bhk', and 'user_price'."
	msgRegionNotFound     = "Region not found"
	msgCoordinatesMissing = "Latitude and longitude are required"
	msgInvalidCoordinates = "Invalid coordinates"
	msgInvalidLocation    = "Invalid location"
	msgMessageRequired    = "Message is required"
	msgInternalError      = "Internal server error"
	msgChatUnavailable    = "Chat is not available"
	msgRateLimited        = "Too many requests"
)

// PriceEvaluator compares a claimed price with the model's prediction.
type PriceEvaluator interface {
	Evaluate(ctx context.Context, region string, bhk int, claimedPrice float64) (models.PriceEvaluation, error)
}

// Recommender picks representative listings for a location.
type Recommender interface {
	Recommend(location string, seed *float64) (*recommend.Result, error)
}

type Handler struct {
	pricing     PriceEvaluator
	recommender Recommender
	locator     geometry.Locator
	chat        chat.Client
	chatLimiter *rate.Limiter
	logger      *logrus.Logger
}

// PredictPriceRequest accepts bhk and user_price as JSON numbers or numeric
// strings.
type PredictPriceRequest struct {
	Region    string      `json:"region"`
	BHK       interface{} `json:"bhk"`
	UserPrice interface{} `json:"user_price"`
}

type RecommendRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Seed      *float64 `json:"seed"`
	Location  string   `json:"location"`
}

type RecommendResponse struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Profile         models.RegionProfile    `json:"profile"`
	Status          string                  `json:"status"`
	Message         string                  `json:"message"`
	Location        string                  `json:"location"`
}

type ChatRequest struct {
	Message      string `json:"message"`
	SystemPrompt string `json:"system_prompt"`
}

func NewHandler(
	pricing PriceEvaluator,
	recommender Recommender,
	locator geometry.Locator,
	chatClient chat.Client,
	chatLimiter *rate.Limiter,
	logger *logrus.Logger,
) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if chatLimiter == nil {
		chatLimiter = rate.NewLimiter(rate.Inf, 0)
	}

	return &Handler{
		pricing:     pricing,
		recommender: recommender,
		locator:     locator,
		chat:        chatClient,
		chatLimiter: chatLimiter,
		logger:      logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"chat_enabled": h.chat.IsEnabled(),
	})
}

func (h *Handler) PredictPrice(c *gin.Context) {
	var req PredictPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse price request")
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   msgInvalidPriceInput,
			"details": gin.H{"region": nil, "bhk": nil, "user_price": nil},
		})
		return
	}

	bhk, bhkOK := parseInt(req.BHK)
	userPrice, priceOK := parseFloat(req.UserPrice)
	if !bhkOK || !priceOK {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": msgInvalidPriceInput,
			"details": gin.H{
				"region":     codec.NormalizeRegion(req.Region),
				"bhk":        req.BHK,
				"user_price": req.UserPrice,
			},
		})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"region":     req.Region,
		"bhk":        bhk,
		"user_price": userPrice,
	}).Debug("Received price request")

	result, err := h.pricing.Evaluate(c.Request.Context(), req.Region, bhk, userPrice)
	if err != nil {
		h.respondError(c, err, msgInvalidPriceInput)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) RecommendProperties(c *gin.Context) {
	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Failed to parse recommendation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": msgCoordinatesMissing, "status": "error"})
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		if req.Latitude == nil || req.Longitude == nil || *req.Latitude == 0 || *req.Longitude == 0 {
			h.logger.Warn("No coordinates provided")
			c.JSON(http.StatusBadRequest, gin.H{"error": msgCoordinatesMissing, "status": "error"})
			return
		}

		var err error
		location, err = h.locator.Locate(*req.Latitude, *req.Longitude)
		if err != nil {
			h.respondError(c, err, msgInvalidCoordinates)
			return
		}
	}

	result, err := h.recommender.Recommend(location, req.Seed)
	if err != nil {
		h.respondError(c, err, msgInvalidLocation)
		return
	}

	c.JSON(http.StatusOK, RecommendResponse{
		Recommendations: result.Recommendations,
		Profile:         result.Profile,
		Status:          "success",
		Message:         "Showing popular recommendations for " + result.Location,
		Location:        result.Location,
	})
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMessageRequired, "status": "error"})
		return
	}

	if !h.chat.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgChatUnavailable, "status": "error"})
		return
	}

	if !h.chatLimiter.Allow() {
		metrics.APIRateLimitHits.WithLabelValues(c.FullPath()).Inc()
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(h.chatLimiter)))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msgRateLimited, "status": "error"})
		return
	}

	reply, err := h.chat.Complete(c.Request.Context(), chat.BuildPrompt(req.SystemPrompt, req.Message))
	if err != nil {
		if errors.Is(err, chat.ErrUnavailable) || errors.Is(err, chat.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": msgChatUnavailable, "status": "error"})
			return
		}
		h.logger.WithError(err).Error("Error in chat")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError, "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply, "status": "success"})
}

// respondError maps a domain error to a status code and body. inputMessage is
// the error text for rejected input on this endpoint.
func (h *Handler) respondError(c *gin.Context, err error, inputMessage string) {
	var inputErr *models.InputError

	switch {
	case errors.As(err, &inputErr):
		body := gin.H{"error": inputMessage}
		if inputErr.Details != nil {
			body["details"] = inputErr.Details
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, models.ErrUnknownRegion):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgRegionNotFound, "status": "error"})
	case models.IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "status": "error"})
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternalError, "details": err.Error()})
	}
}

func parseInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func parseFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func retryAfterSeconds(l *rate.Limiter) int {
	r := l.Reserve()
	defer r.Cancel()
	if !r.OK() {
		return 60
	}
	return int(math.Ceil(r.Delay().Seconds()))
}
