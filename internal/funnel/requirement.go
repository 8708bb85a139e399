// Package funnel 漏斗看板的纯计算核心：阶段要求校验、阶段状态推导、看板分组。
// 本包不依赖数据库和HTTP层，所有函数都是纯函数。
package funnel

import (
	"fmt"
	"strings"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

// CheckResult 单类要求的校验明细
type CheckResult struct {
	Required bool   `json:"required"` // 该类要求是否被配置
	Met      bool   `json:"met"`
	Message  string `json:"message,omitempty"`
}

// ValidationResult 阶段要求校验结果
type ValidationResult struct {
	Valid    bool        `json:"valid"`
	Missing  []string    `json:"missing"` // 未满足要求的用户可读描述
	Tasks    CheckResult `json:"tasks"`
	Fields   CheckResult `json:"fields"`
	Approval CheckResult `json:"approval"`
	Products CheckResult `json:"products"`
	Progress CheckResult `json:"progress"`
	// 当前阶段任务完成率（0-100），无任务时为0
	ProgressPercent int `json:"progressPercent"`
}

// Validate 校验工单是否满足指定阶段的前置要求。
// approval 是该工单在该阶段的最新审批记录，没有时传nil。
// 未配置任何要求时校验恒通过。
func Validate(stageID string, reqs *model.StageRequirements, t *model.ServiceTicket, approval *model.StageApproval) *ValidationResult {
	result := &ValidationResult{Valid: true, Missing: []string{}}
	result.ProgressPercent = StageProgress(t, stageID)

	if reqs == nil || reqs.IsEmpty() {
		return result
	}

	// 必须完成的任务
	if len(reqs.RequiredTasks) > 0 {
		result.Tasks.Required = true
		completed := 0
		for _, task := range t.Tasks {
			if task.StageID == stageID && reqs.RequiredTasks.Contains(task.ID) && task.Status == model.TaskStatusCompleted {
				completed++
			}
		}
		missing := len(reqs.RequiredTasks) - completed
		if missing > 0 {
			result.Tasks.Message = fmt.Sprintf("%d tarefa(s) obrigatória(s) não completada(s)", missing)
			result.Missing = append(result.Missing, fmt.Sprintf("Tarefas obrigatórias: %d pendente(s)", missing))
		} else {
			result.Tasks.Met = true
			result.Tasks.Message = "Todas as tarefas obrigatórias completas"
		}
	} else {
		result.Tasks.Met = true
	}

	// 必须填写的字段
	if len(reqs.RequiredFields) > 0 {
		result.Fields.Required = true
		var missingFields []string
		for _, field := range reqs.RequiredFields {
			if strings.TrimSpace(t.FieldValue(field)) == "" {
				missingFields = append(missingFields, field)
			}
		}
		if len(missingFields) > 0 {
			result.Fields.Message = fmt.Sprintf("Campos obrigatórios não preenchidos: %s", strings.Join(missingFields, ", "))
			result.Missing = append(result.Missing, fmt.Sprintf("Campos: %s", strings.Join(missingFields, ", ")))
		} else {
			result.Fields.Met = true
			result.Fields.Message = "Todos os campos obrigatórios preenchidos"
		}
	} else {
		result.Fields.Met = true
	}

	// 必须审批通过
	if reqs.RequiredApproval {
		result.Approval.Required = true
		if approval != nil && approval.Status == model.ApprovalApproved {
			result.Approval.Met = true
		} else {
			result.Approval.Message = "Aprovação pendente"
			result.Missing = append(result.Missing, "Aprovação pendente")
		}
	} else {
		result.Approval.Met = true
	}

	// 必须有关联产品
	if reqs.RequiredProducts {
		result.Products.Required = true
		if len(t.Products) > 0 {
			result.Products.Met = true
		} else {
			result.Products.Message = "Produtos/orçamento necessário"
			result.Missing = append(result.Missing, "Produtos/orçamento necessário")
		}
	} else {
		result.Products.Met = true
	}

	// 任务完成率下限
	if reqs.MinProgress > 0 {
		result.Progress.Required = true
		if result.ProgressPercent >= reqs.MinProgress {
			result.Progress.Met = true
		} else {
			result.Progress.Message = fmt.Sprintf("Progresso: %d%% < %d%%", result.ProgressPercent, reqs.MinProgress)
			result.Missing = append(result.Missing, result.Progress.Message)
		}
	} else {
		result.Progress.Met = true
	}

	result.Valid = result.Tasks.Met && result.Fields.Met && result.Approval.Met && result.Products.Met && result.Progress.Met
	return result
}

// StageProgress 计算工单在某阶段的任务完成率（0-100）
// 该阶段没有任务时返回0
func StageProgress(t *model.ServiceTicket, stageID string) int {
	total := 0
	completed := 0
	for _, task := range t.Tasks {
		if task.StageID != stageID {
			continue
		}
		total++
		if task.Status == model.TaskStatusCompleted {
			completed++
		}
	}
	if total == 0 {
		return 0
	}
	return completed * 100 / total
}

// OverallProgress 计算工单全部任务的完成率（0-100）
func OverallProgress(t *model.ServiceTicket) int {
	if len(t.Tasks) == 0 {
		return 0
	}
	completed := 0
	for _, task := range t.Tasks {
		if task.Status == model.TaskStatusCompleted {
			completed++
		}
	}
	return completed * 100 / len(t.Tasks)
}
