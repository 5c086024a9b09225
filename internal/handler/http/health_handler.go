package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthHandler reports whether the service can reach its backing stores.
type HealthHandler struct {
	redisClient *redis.Client
	mongoClient *mongo.Client
}

func NewHealthHandler(redisClient *redis.Client, mongoClient *mongo.Client) *HealthHandler {
	return &HealthHandler{redisClient: redisClient, mongoClient: mongoClient}
}

func (h *HealthHandler) HealthzHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "ok", "redis": "ok", "mongo": "ok"}
	code := http.StatusOK

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		status["status"] = "degraded"
		status["redis"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if err := h.mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		status["status"] = "degraded"
		status["mongo"] = err.Error()
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, status)
}
