package controllers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"powerpulse/apperrors"
	"powerpulse/services"
)

// Shared service handles, wired once from main
var (
	progressService *services.ProgressService
	fanout          *services.NotificationFanout
	accessPolicy    *services.AccessPolicy
)

// Init wires the controllers to their services
func Init(progress *services.ProgressService, notificationFanout *services.NotificationFanout, policy *services.AccessPolicy) {
	progressService = progress
	fanout = notificationFanout
	accessPolicy = policy
}

var statusByCode = map[string]int{
	apperrors.CodeUnauthenticated: http.StatusUnauthorized,
	apperrors.CodeUnauthorized:    http.StatusForbidden,
	apperrors.CodeNotFound:        http.StatusNotFound,
	apperrors.CodeValidation:      http.StatusBadRequest,
	apperrors.CodeDuplicate:       http.StatusConflict,
	apperrors.CodeOperationFailed: http.StatusInternalServerError,
}

// respondError renders any error as the stable error envelope
func respondError(c *gin.Context, err error) {
	appErr := apperrors.As(err)
	if appErr.Code == apperrors.CodeOperationFailed {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	status, ok := statusByCode[appErr.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": appErr})
}

// wrapMongoError maps duplicate-key violations to the DUPLICATE code and
// everything else to OPERATION_FAILED
func wrapMongoError(err error, field, value, fallback string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.Duplicate(field, value)
	}
	return apperrors.OperationFailed(fallback, err)
}

// duplicateTitleValue picks the conflicting title for a duplicate-key error
// on an update: the title carried by the update when there is one, the
// route id otherwise
func duplicateTitleValue(set bson.M, fallback string) string {
	if title, ok := set["title"].(string); ok {
		return title
	}
	return fallback
}

// paginationParams reads limit/offset query values with defaults and caps
func paginationParams(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
