package model

// DefaultFunnelNames 各类型默认漏斗名称
var DefaultFunnelNames = map[string]string{
	FunnelTypeSales:         "Funil de Vendas",
	FunnelTypeServices:      "Atendimentos",
	FunnelTypePredetermined: "Processos",
}

// DefaultStageSet 各类型漏斗的默认阶段集
// 创建漏斗时未指定阶段则使用这里的定义
func DefaultStageSet(funnelType string) []StageInput {
	switch funnelType {
	case FunnelTypeSales:
		return []StageInput{
			{Name: "Qualificado", Color: "#3b82f6"},
			{Name: "Contato Feito", Color: "#f59e0b"},
			{Name: "Reunião Agendada", Color: "#ef4444"},
			{Name: "Proposta Enviada", Color: "#8b5cf6"},
			{Name: "Negociação", Color: "#6366f1"},
		}
	case FunnelTypeServices:
		return []StageInput{
			{Name: "Triagem", Color: "#3b82f6"},
			{Name: "Em Análise", Color: "#f59e0b"},
			{Name: "Em Resolução", Color: "#8b5cf6"},
			{Name: "Resolvido", Color: "#10b981", IsResolved: true},
		}
	case FunnelTypePredetermined:
		return []StageInput{
			{Name: "Início", Color: "#3b82f6"},
			{Name: "Em Progresso", Color: "#f59e0b"},
			{Name: "Conclusão", Color: "#10b981", IsResolved: true},
		}
	default:
		return nil
	}
}
