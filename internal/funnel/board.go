package funnel

import (
	"sort"

	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/model"
)

// Column 看板列：一个阶段及其当前停留的工单
type Column struct {
	Stage   model.FunnelStage     `json:"stage"`
	Tickets []model.ServiceTicket `json:"tickets"`
	Count   int                   `json:"count"`
}

// SortStages 按Position升序排列阶段，返回排序后的副本
func SortStages(stages []model.FunnelStage) []model.FunnelStage {
	sorted := make([]model.FunnelStage, len(stages))
	copy(sorted, stages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}

// Group 把工单按当前阶段分组成看板列，列顺序与阶段顺序一致。
// 工单顺序保持传入顺序；阶段指针不在本漏斗内的工单不会出现在任何列中。
func Group(f *model.Funnel, tickets []model.ServiceTicket) []Column {
	stages := SortStages(f.Stages)
	columns := make([]Column, len(stages))
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		columns[i] = Column{Stage: s, Tickets: []model.ServiceTicket{}}
		index[s.ID] = i
	}

	for _, t := range tickets {
		i, ok := index[t.StageID]
		if !ok {
			continue
		}
		columns[i].Tickets = append(columns[i].Tickets, t)
	}

	for i := range columns {
		columns[i].Count = len(columns[i].Tickets)
	}
	return columns
}
