package middleware

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

type clientIPCtxKey struct{}

// proxy headers checked in order before falling back to RemoteAddr
var forwardedHeaders = []string{"X-Real-Ip", "CF-Connecting-IP", "X-Forwarded"}

// AuditMiddleware resolves the client IP once per request and puts it on
// the request context, so event writes issued with c.Request.Context()
// record where they came from.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		c.Request = c.Request.WithContext(WithClientIP(c.Request.Context(), ip))
		c.Next()
	}
}

// WithClientIP tags ctx with the IP of the client a write originates from.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPCtxKey{}, ip)
}

// ClientIPFrom returns the IP attached by WithClientIP, or "".
func ClientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPCtxKey{}).(string)
	return ip
}

func getClientIP(c *gin.Context) string {
	// X-Forwarded-For may list every hop; the first one is the client
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); isValidIP(ip) {
			return ip
		}
	}

	for _, h := range forwardedHeaders {
		if ip := c.GetHeader(h); ip != "" && isValidIP(ip) {
			return ip
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
