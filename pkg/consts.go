package pkg

const (
	HeaderTraceId   string = "X-Trace-Id"
	HeaderRequestId string = "X-Request-Id"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
	UserId    string = "user_id"
	UserRole  string = "user_role"
	Username  string = "username"
)

// OrderStatus is the lifecycle state of a purchase attempt.
// Transitions only move forward: pending -> completed or pending -> expired.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusExpired   OrderStatus = "expired"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// EventKind identifies a lifecycle notification.
type EventKind string

const (
	EventAccountRegistered EventKind = "account-registered"
	EventOrderPaid         EventKind = "order-paid"
	EventPanelCreated      EventKind = "panel-created"
	EventPanelDeleted      EventKind = "panel-deleted"
)
