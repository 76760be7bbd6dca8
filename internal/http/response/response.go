package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/mimichub-backend/internal/domain/aggregates"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope keeps the flat "detail" string clients already read next to
// the structured error.
type ErrorEnvelope struct {
	Detail string   `json:"detail"`
	Error  APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = domainagg.MessageOf(err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Detail: msg,
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// Fail maps a service error onto its HTTP status.
func Fail(c *gin.Context, err error) {
	code := domainagg.CodeOf(err)
	if code == "" {
		code = domainagg.CodeInternal
	}
	RespondError(c, StatusFor(code), string(code), err)
}

// BadRequest reports malformed input such as an unparsable body or path id.
func BadRequest(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("bad request")
	}
	RespondError(c, http.StatusBadRequest, string(domainagg.CodeValidation), err)
}

func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeNotFound:
		return http.StatusNotFound
	case domainagg.CodeValidation, domainagg.CodeConflict, domainagg.CodePreconditionFailed:
		return http.StatusBadRequest
	case domainagg.CodeUnauthorized:
		return http.StatusUnauthorized
	case domainagg.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondMessage writes {"message": msg}.
func RespondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
