package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/openmotel/motel/internal/ownerctx"
	roomdomain "github.com/openmotel/motel/internal/room/domain"
)

// OwnerHeader carries the authenticated owner principal, injected by
// the fronting auth layer after it has verified the caller.
const OwnerHeader = "X-Owner-Id"

func OwnerContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(OwnerHeader))
		if raw == "" {
			AbortWithError(c, roomdomain.ErrInvalidOwner)
			return
		}
		ownerID, err := snowflake.ParseString(raw)
		if err != nil || ownerID == 0 {
			AbortWithError(c, roomdomain.ErrInvalidOwner)
			return
		}

		ctx := ownerctx.WithOwnerID(c.Request.Context(), ownerID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
