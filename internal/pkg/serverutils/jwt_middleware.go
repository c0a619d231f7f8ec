package serverutils

import (
	"strconv"

	"carematch-be/internal/entity"
	"carematch-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const principalKey = "principal"

// JwtMiddleware accepts HS256 bearer tokens carrying user_id and role
// claims and stores the resulting principal on the request.
func JwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)

	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return apperror.Unauthenticated("missing token")
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return apperror.Unauthenticated("invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperror.Unauthenticated("invalid claims")
		}

		principal, err := principalFromClaims(claims)
		if err != nil {
			return err
		}

		ctx.Locals(principalKey, principal)
		return ctx.Next()
	}
}

func principalFromClaims(claims jwt.MapClaims) (entity.Principal, error) {
	var userId int64
	switch v := claims["user_id"].(type) {
	case float64:
		userId = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return entity.Principal{}, apperror.Unauthenticated("invalid user_id claim")
		}
		userId = parsed
	default:
		return entity.Principal{}, apperror.Unauthenticated("missing user_id claim")
	}
	if userId <= 0 {
		return entity.Principal{}, apperror.Unauthenticated("invalid user_id claim")
	}

	roleStr, _ := claims["role"].(string)
	role := entity.UserRole(roleStr)
	if !role.Valid() {
		return entity.Principal{}, apperror.Unauthenticated("invalid role claim")
	}

	return entity.Principal{UserId: userId, Role: role}, nil
}

// GetPrincipal returns the caller set by JwtMiddleware.
func GetPrincipal(ctx *fiber.Ctx) (entity.Principal, error) {
	principal, ok := ctx.Locals(principalKey).(entity.Principal)
	if !ok {
		return entity.Principal{}, apperror.Unauthenticated("not authenticated")
	}
	return principal, nil
}

// SetPrincipal is used by tests and internal callers that authenticate
// by other means.
func SetPrincipal(ctx *fiber.Ctx, principal entity.Principal) {
	ctx.Locals(principalKey, principal)
}
