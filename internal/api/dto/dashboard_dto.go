package dto

// DashboardStatsResponse is the staff dashboard snapshot.
type DashboardStatsResponse struct {
	TotalTickets      int64            `json:"total_tickets"`
	OpenTickets       int64            `json:"open_tickets"`
	BreachedTickets   int64            `json:"breached_tickets"`
	TicketsByStatus   map[string]int64 `json:"tickets_by_status"`
	TicketsByPriority map[string]int64 `json:"tickets_by_priority"`
	OpenSessions      int64            `json:"open_sessions"`
	ActiveStaff       int64            `json:"active_staff"`
	EndUsers          int64            `json:"end_users"`
	Companies         int64            `json:"companies"`
}
