package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeEmailExists        = 40002
	CodeInvalidRating      = 40003
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeInvalidGoogleToken = 40102
	CodeForbidden          = 40300
	CodeNotFound           = 40400
	CodeUserNotFound       = 40401
	CodeExamNotFound       = 40402
	CodeQuestionNotFound   = 40403
	CodeAttemptNotFound    = 40404
	CodeSessionNotFound    = 40405
	CodeMaterialNotFound   = 40406
	CodeAttemptCompleted   = 40900
	CodeInternalServer     = 50000
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, APIResponse{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
