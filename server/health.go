package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medaverse/meda-api/env"
	"github.com/medaverse/meda-api/service/rpc"
)

type subsystemStatus struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type healthcheckResponse struct {
	Message string                     `json:"msg"`
	Env     string                     `json:"env"`
	RPC     subsystemStatus            `json:"rpc"`
	DB      subsystemStatus            `json:"db"`
	Redis   subsystemStatus            `json:"redis"`
	Score   subsystemStatus            `json:"score"`
	Pool    []rpc.EndpointStatus       `json:"rpc_endpoints"`
}

// healthcheck reports every subsystem independently. The endpoint itself
// returns 200 as long as the process is serving; consumers read the flags.
func healthcheck(deps *dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := healthcheckResponse{
			Message: "meda api operational",
			Env:     env.GetString("ENV"),
			Pool:    deps.pool.Statuses(),
		}

		ctx, cancel := contextWithTimeout(5 * time.Second)
		defer cancel()

		resp.RPC.OK = false
		for _, s := range resp.Pool {
			if s.Healthy {
				resp.RPC.OK = true
				break
			}
		}
		if !resp.RPC.OK {
			if _, err := deps.pool.Acquire(ctx); err == nil {
				resp.RPC.OK = true
			} else {
				resp.RPC.Detail = err.Error()
			}
		}

		if err := deps.repos.db.PingContext(ctx); err != nil {
			resp.DB.Detail = err.Error()
		} else {
			resp.DB.OK = true
		}

		if deps.redis == nil {
			resp.Redis.Detail = "not configured"
		} else if err := deps.redis.Ping(ctx); err != nil {
			resp.Redis.Detail = err.Error()
		} else {
			resp.Redis.OK = true
		}

		if deps.intake == nil {
			resp.Score.Detail = "rsa keys missing"
		} else {
			resp.Score.OK = true
		}

		c.JSON(http.StatusOK, resp)
	}
}
