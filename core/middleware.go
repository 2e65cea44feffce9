package core

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tuis-oj-prototype/judge"
)

// Recovery is the gin.Recovery()-equivalent of §4.9: it converts a panic in
// any handler into the ERR_INTERNAL envelope instead of tearing down the
// process, logging the panic value the way the reference codebase's
// recovery middleware does.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(judge.KindInternal, judge.ErrInternal("internal error")))
			}
		}()
		c.Next()
	}
}
