package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/util"
)

type purgeInput struct {
	Address string `json:"address"`
	Chain   string `json:"chain"`
	All     bool   `json:"all"`
}

// purgeCache invalidates hot caches and snapshots, either for one wallet
// or process-wide, so operators can force the next read back to source.
func purgeCache(deps *dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input purgeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, util.ErrInvalidInput{Reason: "malformed purge request"})
			return
		}

		if input.All {
			deps.gateway.PurgeAll()
			deps.repos.catalog.PurgeCaches()
			c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
			return
		}

		wallet, err := persist.ToAddress(input.Address)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		chain := input.Chain
		if chain == "" {
			chain = chainFromQuery(c)
		}
		deps.gateway.PurgeWallet(wallet)
		deps.portfolio.Purge(c, wallet, chain)
		c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
	}
}

type resolveErrorsInput struct {
	IDs []int64 `json:"ids" binding:"required"`
}

func listCacheErrors(repo persist.CacheErrorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := repo.Unresolved(c, 100)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"errors": records, "count": len(records)})
	}
}

func resolveCacheErrors(repo persist.CacheErrorRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input resolveErrorsInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, util.ErrInvalidInput{Reason: "ids are required"})
			return
		}
		if err := repo.MarkResolved(c, input.IDs); err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
	}
}
