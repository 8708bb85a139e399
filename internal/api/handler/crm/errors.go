package crm

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/service/crm"
	"gorm.io/gorm"
)

// respondError 把业务错误映射成HTTP状态码。
// 要求未满足返回422并附带校验详情，版本冲突返回409。
func respondError(c *gin.Context, err error, context string) {
	if blocked, ok := crm.IsValidationBlocked(err); ok {
		c.JSON(http.StatusUnprocessableEntity, model.Response{
			Code:    http.StatusUnprocessableEntity,
			Message: blocked.Error(),
			Data:    blocked.Result,
		})
		return
	}

	switch {
	case errors.Is(err, crm.ErrVersionConflict):
		c.JSON(http.StatusConflict, model.Error(409, err.Error()))
	case errors.Is(err, crm.ErrStageNotInFunnel),
		errors.Is(err, crm.ErrNotCurrentStage),
		errors.Is(err, crm.ErrSequentialMove),
		errors.Is(err, crm.ErrLastFunnelOfType),
		errors.Is(err, crm.ErrFunnelHasTickets),
		errors.Is(err, crm.ErrGlobalDefaultFunnel):
		c.JSON(http.StatusBadRequest, model.Error(400, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, model.Error(404, "记录不存在"))
	default:
		model.HandleError(c, http.StatusInternalServerError, err, context)
	}
}
