package middleware

import (
	"fmt"
	"math"

	"github.com/labstack/echo/v4"

	"slem/internal/infrastructure/ratelimit"
	"slem/pkg/errors"
	"slem/pkg/logger"
	"slem/pkg/response"
)

// RateLimit throttles per authenticated user, falling back to the client IP.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get("uid").(string)
			if !ok || key == "" {
				key = "ip:" + c.RealIP()
			}

			if allowed, wait := limiter.Allow(key, action); !allowed {
				logger.Warn("RATE LIMIT: %s blocked on %s (retry in %v)", key, action, wait)
				seconds := int(math.Ceil(wait.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", fmt.Sprint(seconds))
				return response.Error(c, errors.TooManyRequests("Too many requests, please try again later"))
			}
			return next(c)
		}
	}
}
