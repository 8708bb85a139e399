package crm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/funnel"
)

// 业务错误，handler层据此映射HTTP状态码
var (
	// ErrVersionConflict 乐观锁版本冲突（409）
	ErrVersionConflict = errors.New("工单已被其他操作修改，请刷新后重试")
	// ErrStageNotInFunnel 目标阶段不属于工单所在漏斗（400）
	ErrStageNotInFunnel = errors.New("目标阶段不属于该漏斗")
	// ErrNotCurrentStage 审批的阶段不是工单当前阶段（400）
	ErrNotCurrentStage = errors.New("只能审批工单当前所在的阶段")
	// ErrSequentialMove 顺序推进模式下只能移到相邻的下一阶段（400）
	ErrSequentialMove = errors.New("该漏斗强制顺序推进，只能移动到下一阶段或退回之前的阶段")
	// ErrLastFunnelOfType 不能删除组织内某类型的最后一个漏斗（400）
	ErrLastFunnelOfType = errors.New("不能删除该类型的最后一个漏斗")
	// ErrFunnelHasTickets 漏斗下还有工单时不能删除（400）
	ErrFunnelHasTickets = errors.New("漏斗下仍有工单，请先移走或删除工单")
	// ErrGlobalDefaultFunnel 平台级模板漏斗不可删除（400）
	ErrGlobalDefaultFunnel = errors.New("平台默认漏斗不可删除")
)

// ValidationBlockedError 阶段要求未满足导致移动被拒（422）
type ValidationBlockedError struct {
	StageName string
	Result    *funnel.ValidationResult
}

func (e *ValidationBlockedError) Error() string {
	return fmt.Sprintf("阶段 %s 的前置要求未满足: %s", e.StageName, strings.Join(e.Result.Missing, "; "))
}

// IsValidationBlocked 判断错误是否为要求未满足
func IsValidationBlocked(err error) (*ValidationBlockedError, bool) {
	var blocked *ValidationBlockedError
	if errors.As(err, &blocked) {
		return blocked, true
	}
	return nil, false
}
