package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medaverse/meda-api/service/enrich"
	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/util"
)

type walletInput struct {
	Address string `form:"address" binding:"required"`
}

func walletFromQuery(c *gin.Context) (persist.Address, bool) {
	var input walletInput
	if err := c.ShouldBindQuery(&input); err != nil {
		util.ErrResponse(c, http.StatusBadRequest, util.ErrInvalidInput{Reason: "address is required"})
		return "", false
	}
	wallet, err := persist.ToAddress(input.Address)
	if err != nil {
		util.ErrResponse(c, http.StatusBadRequest, err)
		return "", false
	}
	return wallet, true
}

func getHeroes(engine *enrich.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		heroes, err := engine.Heroes(c, wallet)
		if err != nil {
			util.ErrResponse(c, errStatus(err), err)
			return
		}

		c.JSON(http.StatusOK, enrich.RenderHeroEnvelope(heroes))
	}
}

func getWeapons(engine *enrich.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		weapons, err := engine.Weapons(c, wallet)
		if err != nil {
			util.ErrResponse(c, errStatus(err), err)
			return
		}

		c.JSON(http.StatusOK, enrich.RenderWeaponUnity(weapons))
	}
}

func getLands(engine *enrich.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, engine.Lands(c, wallet))
	}
}

func getEnhancedPlayerData(engine *enrich.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, ok := walletFromQuery(c)
		if !ok {
			return
		}

		data, err := engine.PlayerData(c, wallet)
		if err != nil {
			util.ErrResponse(c, errStatus(err), err)
			return
		}

		c.JSON(http.StatusOK, data)
	}
}
