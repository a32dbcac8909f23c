package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"powerpulse/apperrors"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.Unauthenticated(), http.StatusUnauthorized},
		{apperrors.Unauthorized("Admin access required"), http.StatusForbidden},
		{apperrors.NotFound("Exercise", "abc"), http.StatusNotFound},
		{apperrors.Validation("Invalid input", nil), http.StatusBadRequest},
		{apperrors.Duplicate("title", "Push-up"), http.StatusConflict},
		{apperrors.OperationFailed("Failed to save", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		c, w := testContext(t)
		respondError(c, tc.err)

		assert.Equal(t, tc.status, w.Code)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apperrors.CodeOf(tc.err), body.Error.Code)
	}
}

func TestRespondErrorWrapsForeignErrors(t *testing.T) {
	c, w := testContext(t)
	respondError(c, errors.New("socket closed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeOperationFailed, body.Error.Code)
}

func TestWrapMongoErrorDuplicateKey(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	err := wrapMongoError(dup, "title", "Push-up", "Failed to create exercise")

	appErr := apperrors.As(err)
	assert.Equal(t, apperrors.CodeDuplicate, appErr.Code)
	assert.Contains(t, appErr.Message, "Push-up")

	other := wrapMongoError(errors.New("connection reset"), "title", "Push-up", "Failed to create exercise")
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(other))
}

func TestDuplicateTitleValuePrefersUpdatedTitle(t *testing.T) {
	set := bson.M{"title": "Push-up", "difficulty": "BEGINNER"}
	assert.Equal(t, "Push-up", duplicateTitleValue(set, "65a0c0ffee"))

	// No title in the update: fall back to the route id
	assert.Equal(t, "65a0c0ffee", duplicateTitleValue(bson.M{"difficulty": "BEGINNER"}, "65a0c0ffee"))
}
