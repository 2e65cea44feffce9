package core

import (
	"github.com/gin-gonic/gin"

	"tuis-oj-prototype/judge"
)

// respondError translates a judge error into the wire envelope of §6:
// {code, reason, message}. Errors that did not originate in the judge
// package are treated as internal.
func respondError(c *gin.Context, err error) {
	kind := judge.KindOf(err)
	c.JSON(kind.HTTPStatus(), errorBody(kind, err))
}

// respondGetError is used by getter endpoints, where an invalid-argument
// failure is returned with HTTP 404 rather than 400 (idiosyncratic but
// preserved for compatibility, see §6).
func respondGetError(c *gin.Context, err error) {
	kind := judge.KindOf(err)
	status := kind.HTTPStatus()
	if kind == judge.KindInvalidArgument {
		status = 404
	}
	c.JSON(status, errorBody(kind, err))
}

func errorBody(kind judge.ErrorKind, err error) gin.H {
	return gin.H{"code": kind.Code(), "reason": kind.Reason(), "message": err.Error()}
}
