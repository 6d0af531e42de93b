package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

func parseCtxIP(c *gin.Context) net.IP {
	return net.ParseIP(ipFromCtx(c))
}
