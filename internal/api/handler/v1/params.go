package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qrdesk/qr-admin-api/internal/api/handler/v1/response"
	"github.com/qrdesk/qr-admin-api/internal/api/middleware"
	"github.com/qrdesk/qr-admin-api/internal/domain"
)

var errNoUser = errors.New("no authenticated user")

// pathID parses a numeric path parameter. A malformed id is reported as a
// missing resource, the same as an unknown one.
func pathID(ctx *gin.Context, name, resource string) (uint, *response.Err) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrNotFound(resource, "id", raw)
	}

	return uint(id), nil
}

func queryPage(ctx *gin.Context) int {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		return 1
	}

	return page
}

func currentUser(ctx *gin.Context) (domain.User, *response.Err) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errNoUser)
	}

	return user, nil
}

func internalErr(op string, err error) *response.Err {
	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}
