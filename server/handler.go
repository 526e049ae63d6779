package server

import (
	"github.com/gin-gonic/gin"

	"github.com/medaverse/meda-api/middleware"
)

func handlersInit(router *gin.Engine, deps *dependencies) *gin.Engine {

	// NFT ENRICHMENT

	router.GET("/heroes", getHeroes(deps.engine))
	router.GET("/weapons", getWeapons(deps.engine))
	router.GET("/lands", getLands(deps.engine))
	router.GET("/enhanced-player-data", getEnhancedPlayerData(deps.engine))

	// INDEXER

	router.GET("/portfolio", getPortfolio(deps.portfolio))
	router.GET("/nfts/:address", getWalletNFTs(deps.portfolio))
	router.POST("/portfolio/refresh", refreshPortfolio(deps.portfolio))

	// GAME

	router.POST("/score", postScore(deps.intake))
	router.GET("/timestamp", getTimestamp())
	router.GET("/blacklist", getBlacklist(deps.repos.blacklist))
	router.GET("/player-stats", getPlayerStats(deps.repos.scores))

	// OPS

	router.GET("/health", healthcheck(deps))

	adminGroup := router.Group("/admin", middleware.AdminRequired())
	adminGroup.POST("/cache/purge", purgeCache(deps))
	adminGroup.GET("/cache/errors", listCacheErrors(deps.repos.cacheErrors))
	adminGroup.POST("/cache/errors/resolve", resolveCacheErrors(deps.repos.cacheErrors))

	return router
}
