package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	userRepo "trustwork/database/repository/user"
	"trustwork/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// authCachePrefix namespaces token-hash entries in the auth cache DB.
const authCachePrefix = "authToken:"

// authCacheTTL is refreshed on every hit so active sessions stay cached.
const authCacheTTL = time.Hour

// JWTAuthMiddleware authenticates a Bearer token. The signature check alone
// is not enough: the token's hash must also match the hash stored for the
// user, so revocation and re-login invalidate old tokens immediately. The
// hash lives in the auth cache with a DB fallback on miss.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or malformed Authorization header"})
			return
		}

		claims, err := utils.ExtractClaims(tokenString)
		if err != nil || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		cacheKey := authCachePrefix + claims.Subject

		authCache := utils.GetAuthCacheClient()
		if authCache != nil {
			cachedHash, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil {
				if cachedHash != computedHash {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
					return
				}
				_ = authCache.Expire(ctx, cacheKey, authCacheTTL).Err()
				setIdentity(c, claims)
				c.Next()
				return
			}
			if err != redis.Nil {
				logger.Warn("auth cache lookup failed, falling back to DB", zap.Error(err))
			}
		}

		usr, err := users.GetByID(claims.Subject)
		if err != nil || usr == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
			return
		}
		if usr.TokenHash == "" || usr.TokenHash != computedHash {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
			return
		}

		if authCache != nil {
			if err := authCache.Set(ctx, cacheKey, usr.TokenHash, authCacheTTL).Err(); err != nil {
				logger.Warn("failed to prime auth cache", zap.Error(err))
			}
		}

		setIdentity(c, claims)
		c.Next()
	}
}

func setIdentity(c *gin.Context, claims *utils.TokenClaims) {
	c.Set("userID", claims.Subject)
	c.Set("userEmail", claims.Email)
	c.Set("userRole", claims.Role)
}
