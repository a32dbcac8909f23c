package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"powerpulse/apperrors"
	"powerpulse/db"
	"powerpulse/middlewares"
	"powerpulse/models"
	"powerpulse/services"
	"powerpulse/utils"
)

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	ID          string `json:"id"`
	Rank        int    `json:"rank"`
	Name        string `json:"name"`
	TotalPoints int    `json:"totalPoints"`
	TopLevel    int    `json:"topLevel"`
	CurrentUser bool   `json:"currentUser"`
}

// totalPoints sums a user's earned points across all entries. Under the
// primary policy stored points are remainders and each level is worth the
// full threshold; under the legacy policy points already hold the lifetime
// total.
func totalPoints(entries []models.ProgressEntry, lifetimePoints bool) (total, topLevel int) {
	for _, entry := range entries {
		if lifetimePoints {
			total += entry.Points
		} else {
			total += entry.Level*services.PointsPerLevel + entry.Points
		}
		if entry.Level > topLevel {
			topLevel = entry.Level
		}
	}
	return total, topLevel
}

// GetLeaderboard ranks users by total points earned across all exercise
// types
func GetLeaderboard(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if err := accessPolicy.RequireAuthenticated(identity); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := db.GetCollection(db.UsersCollection).Find(ctx, bson.M{})
	if err != nil {
		respondError(c, apperrors.OperationFailed("Failed to fetch users", err))
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		respondError(c, apperrors.OperationFailed("Failed to decode users", err))
		return
	}

	lifetimePoints := progressService.KeepsLifetimePoints()
	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		total, topLevel := totalPoints(user.Progress, lifetimePoints)

		name := user.Name
		if name == "" {
			name = utils.ExtractNameFromEmail(user.Email)
		}

		entries = append(entries, LeaderboardEntry{
			ID:          user.ID.Hex(),
			Name:        name,
			TotalPoints: total,
			TopLevel:    topLevel,
			CurrentUser: user.FirebaseUID == identity.UID,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalPoints > entries[j].TotalPoints
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}
