package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Server Metrics

	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration API请求处理时长
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// CRM Funnel Metrics

	// TicketMovesTotal 工单阶段移动总数
	TicketMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_ticket_moves_total",
			Help: "Total number of ticket stage moves",
		},
		[]string{"funnel_type", "result"}, // result: ok, blocked, conflict, error
	)

	// ApprovalDecisionsTotal 阶段审批决定总数
	ApprovalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_approval_decisions_total",
			Help: "Total number of stage approval decisions",
		},
		[]string{"decision"}, // approved, rejected
	)

	// TicketsOpen 当前未解决的工单数
	TicketsOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crm_tickets_open",
			Help: "Number of unresolved tickets per funnel",
		},
		[]string{"funnel_id"},
	)

	// SLABreachedTotal SLA超时工单累计数
	SLABreachedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_sla_breached_total",
			Help: "Total number of tickets marked as SLA breached",
		},
	)

	// WebsocketClients 当前在线的看板订阅连接数
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_websocket_clients",
			Help: "Number of connected board websocket clients",
		},
	)

	// AIInterpretTotal AI自动化解析请求总数
	AIInterpretTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_ai_interpret_total",
			Help: "Total number of AI automation interpretation requests",
		},
		[]string{"result"}, // ok, parse_error, provider_error
	)
)
