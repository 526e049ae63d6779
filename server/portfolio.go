package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medaverse/meda-api/env"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/portfolio"
	"github.com/medaverse/meda-api/util"
)

func chainFromQuery(c *gin.Context) string {
	if chain := c.Query("chain"); chain != "" {
		return chain
	}
	return env.GetString("CHAIN")
}

func getPortfolio(gateway *portfolio.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		result, err := gateway.ERC20Portfolio(c, wallet, chainFromQuery(c))
		if err != nil {
			util.ErrResponse(c, errStatus(err), err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getWalletNFTs(gateway *portfolio.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := persist.ToAddress(c.Param("address"))
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		result, err := gateway.NFTs(c, wallet, chainFromQuery(c))
		if err != nil {
			util.ErrResponse(c, errStatus(err), err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func refreshPortfolio(gateway *portfolio.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, gateway.Refresh(c, wallet, chainFromQuery(c)))
	}
}
