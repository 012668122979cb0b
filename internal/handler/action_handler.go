package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ckan-go/internal/dto"
	"ckan-go/internal/logging"
	"ckan-go/internal/logic"
	"ckan-go/internal/middleware"
	"ckan-go/internal/types"
	"ckan-go/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ActionHandler 动作API处理器 /api/3/action/:name
type ActionHandler struct {
	registry *logic.Registry
	siteURL  string
}

// NewActionHandler 创建动作API处理器
func NewActionHandler(registry *logic.Registry, siteURL string) *ActionHandler {
	return &ActionHandler{
		registry: registry,
		siteURL:  strings.TrimRight(siteURL, "/"),
	}
}

// newActionContext 由请求身份构造动作上下文
func newActionContext(c *gin.Context, registry *logic.Registry) *types.Context {
	ctx := registry.NewContext()
	ctx.IPAddress = c.ClientIP()
	if userID, ok := middleware.GetUserID(c); ok {
		ctx.UserID = userID
		ctx.User, _ = middleware.GetUserName(c)
		ctx.UserIsAdmin = middleware.IsSysadmin(c)
	}
	return ctx
}

// requestData GET 取查询参数，POST 取 JSON 或表单
func requestData(c *gin.Context) (types.DataDict, error) {
	data := types.DataDict{}
	if c.Request.Method == http.MethodPost {
		if c.ContentType() == gin.MIMEJSON {
			if c.Request.ContentLength == 0 {
				return data, nil
			}
			if err := c.ShouldBindJSON(&data); err != nil {
				return nil, err
			}
			return data, nil
		}
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		for key, values := range c.Request.PostForm {
			data[key] = formValue(values)
		}
		return data, nil
	}

	for key, values := range c.Request.URL.Query() {
		data[key] = formValue(values)
	}
	return data, nil
}

func formValue(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Handle 调用动作并返回统一信封
// @Summary 调用动作
// @Tags 动作API
// @Produce json
// @Param name path string true "动作名"
// @Success 200 {object} dto.ActionResponse
// @Router /api/3/action/{name} [post]
func (h *ActionHandler) Handle(c *gin.Context) {
	name := c.Param("name")
	help := fmt.Sprintf("%s/api/3/action/help_show?name=%s", h.siteURL, name)

	data, err := requestData(c)
	if err != nil {
		utils.ActionFailure(c, http.StatusBadRequest, help, &dto.ActionError{
			Type:    "Bad Request",
			Message: "Bad request - JSON Error: " + err.Error(),
		})
		return
	}

	result, err := h.registry.Call(name, newActionContext(c, h.registry), data)
	if err != nil {
		status, actionErr := actionError(err)
		if status == http.StatusInternalServerError {
			logging.Logger().WithFields(logrus.Fields{
				"action": name,
				"error":  err.Error(),
			}).Error("action failed")
		}
		utils.ActionFailure(c, status, help, actionErr)
		return
	}

	utils.ActionSuccess(c, help, result)
}

// actionError 把动作错误映射为HTTP状态码和错误对象
func actionError(err error) (int, *dto.ActionError) {
	var (
		notFoundAction *logic.ActionNotFound
		notAuthorized  *logic.NotAuthorized
		notFound       *logic.NotFound
		validation     *logic.ValidationError
	)

	switch {
	case errors.As(err, &notFoundAction):
		return http.StatusBadRequest, &dto.ActionError{
			Type:    "Bad Request",
			Message: "Bad request - " + notFoundAction.Error(),
		}
	case errors.As(err, &notAuthorized):
		return http.StatusForbidden, &dto.ActionError{
			Type:    "Authorization Error",
			Message: "Access denied: " + notAuthorized.Msg,
		}
	case errors.As(err, &notFound):
		msg := "Not found"
		if notFound.Msg != "" {
			msg += ": " + notFound.Msg
		}
		return http.StatusNotFound, &dto.ActionError{Type: "Not Found Error", Message: msg}
	case errors.As(err, &validation):
		return http.StatusConflict, &dto.ActionError{Type: "Validation Error", Fields: validation.Errors}
	}
	return http.StatusInternalServerError, &dto.ActionError{
		Type:    "Internal Server Error",
		Message: "Internal Server Error",
	}
}
