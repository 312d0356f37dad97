// Package handlers contains the gin request handlers for the REST API.
package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
)

// errorResponse is the JSON body returned for any failed request.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps an application error onto an HTTP status and JSON body.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		c.JSON(appErr.Code.HTTPStatus(), errorResponse{
			Code:    appErr.Code.String(),
			Message: appErr.Message,
			Detail:  appErr.Detail,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, errorResponse{
		Code:    errors.ErrCodeUnknown.String(),
		Message: err.Error(),
	})
}
