package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/score"
	"github.com/medaverse/meda-api/util"
)

func postScore(intake *score.Intake) gin.HandlerFunc {
	return func(c *gin.Context) {
		if intake == nil {
			util.ErrResponse(c, http.StatusServiceUnavailable, score.ErrIntakeDisabled)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		var envelope persist.ScoreEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, util.ErrInvalidInput{Reason: "malformed score envelope"})
			return
		}
		if err := binding.Validator.ValidateStruct(&envelope); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, util.ErrInvalidInput{Reason: err.Error()})
			return
		}

		result, err := intake.Process(c, envelope, body)
		if err != nil {
			util.ErrResponse(c, errStatus(err), err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getTimestamp() gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": now.Unix(),
			"iso":       now.Format(time.RFC3339),
		})
	}
}

func getBlacklist(blacklist persist.BlacklistRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		entry, found, err := blacklist.Entry(c, wallet)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		if !found {
			c.JSON(http.StatusOK, gin.H{"address": wallet.String(), "blacklisted": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"address":     wallet.String(),
			"blacklisted": entry.Active,
			"reason":      entry.Reason,
			"created_at":  entry.CreatedAt,
		})
	}
}

func getPlayerStats(scores persist.ScoreRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		stats, err := scores.PlayerStats(c, wallet)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
