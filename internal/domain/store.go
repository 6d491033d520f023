package domain

// Connection status values reported by /api/store.
const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// StoreInfo describes the configured store database.
type StoreInfo struct {
	Store    string `json:"store"`
	Database string `json:"database"`
	Status   string `json:"status"`
}

// DashboardInfo is the live database summary.
type DashboardInfo struct {
	Database   string `json:"database" db:"database_name"`
	TableCount int    `json:"tableCount" db:"table_count"`
}

// Dropdowns holds the filter options for the sales report.
type Dropdowns struct {
	Brands    []string `json:"brands"`
	Customers []string `json:"customers"`
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	Token           string `json:"token,omitempty"`
	ExpiresAt       int64  `json:"expiresAt,omitempty"`
}
