package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"github.com/aprovacrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

type SwaggerConfig = config.SwaggerConfig

// SwaggerProtection guards /swagger. A disabled endpoint answers 404; an
// allowlist (plain IPs or CIDRs) is checked before the optional JWT step.
// jwtMiddleware must not skip the /swagger prefix.
func SwaggerProtection(cfg SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allowlist := parseAllowlist(cfg.AllowedIPs)
	restricted := len(cfg.AllowedIPs) > 0

	return func(c *gin.Context) {
		requestID := c.GetString(RequestIDContextKey)
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "Documentação da API indisponível", requestID))
			return
		}
		if restricted && !allowlist.contains(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Acesso à documentação restrito", requestID))
			return
		}
		if cfg.RequireAuth && jwtMiddleware != nil {
			if jwtMiddleware(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

type ipAllowlist []netip.Prefix

// parseAllowlist accepts "10.0.0.0/8" and bare addresses like "192.168.1.5".
// Entries that parse as neither are dropped.
func parseAllowlist(entries []string) ipAllowlist {
	var list ipAllowlist
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if strings.Contains(raw, "/") {
			if p, err := netip.ParsePrefix(raw); err == nil {
				list = append(list, p.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(raw); err == nil {
			addr = addr.Unmap()
			list = append(list, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return list
}

func (l ipAllowlist) contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
