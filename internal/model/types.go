package model

// Shared domain types used by the API, the optimizer, and the store.

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Warehouse is the depot a set of routes originates from.
type Warehouse struct {
	WarehouseID string  `json:"warehouseId"`
	Name        string  `json:"name,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// DeliveryPoint is one physical stop with a demand to satisfy.
type DeliveryPoint struct {
	ClientID     string  `json:"clientId"`
	CustomerName string  `json:"customerName,omitempty"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	DemandQty    int     `json:"demandQty"`
}

// VehicleConstraints is the call-scoped vehicle configuration. It is a
// value type on purpose: each optimization call gets its own copy and
// nothing is shared between concurrent requests.
type VehicleConstraints struct {
	Capacity        int     `json:"capacity"`
	MaxRouteTimeMin int     `json:"maxRouteTimeMin"`
	AverageSpeedMph float64 `json:"averageSpeedMph"`
	ServiceTimeMin  int     `json:"serviceTimeMin"`
	FleetSize       int     `json:"fleetSize"`
}

// Stop kinds.
const (
	StopKindWarehouse = "warehouse"
	StopKindDelivery  = "delivery"
)

type Stop struct {
	StopID           string  `json:"stopId"`
	ClientID         string  `json:"clientId"`
	CustomerName     string  `json:"customerName,omitempty"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	DemandQty        int     `json:"demandQty"`
	EstimatedArrival string  `json:"estimatedArrival"`
	Order            int     `json:"order"`
	Kind             string  `json:"kind"`
}

type Route struct {
	RouteID          string  `json:"routeId"`
	WarehouseID      string  `json:"warehouseId"`
	Stops            []Stop  `json:"stops"`
	TotalDistance    int     `json:"totalDistance"`
	EstimatedTimeMin float64 `json:"estimatedTimeMin"`
	EstimatedCost    float64 `json:"estimatedCost"`
	EfficiencyScore  float64 `json:"efficiencyScore"`
	NumStops         int     `json:"numStops"`
	TotalDemand      int     `json:"totalDemand"`
	Utilization      float64 `json:"utilization"`
}

// Optimization statuses.
const (
	StatusSuccess    = "success"
	StatusInfeasible = "infeasible"
	StatusError      = "error"
)

// Diagnostics carries solver-side details that are informational, not
// part of the feasibility contract.
type Diagnostics struct {
	Notes             []string `json:"notes,omitempty"`
	Iterations        int      `json:"iterations,omitempty"`
	Improvements      int      `json:"improvements,omitempty"`
	SolveMillis       int64    `json:"solveMillis,omitempty"`
	Approximate       bool     `json:"approximate,omitempty"`
	OffendingClientID string   `json:"offendingClientId,omitempty"`
}

type OptimizationResult struct {
	Status               string      `json:"status"`
	Error                string      `json:"error,omitempty"`
	WarehouseID          string      `json:"warehouseId,omitempty"`
	TotalRoutes          int         `json:"totalRoutes"`
	TotalDistance        int         `json:"totalDistance"`
	TotalTimeMin         float64     `json:"totalTimeMin"`
	TotalCost            float64     `json:"totalCost"`
	FleetEfficiencyScore float64     `json:"fleetEfficiencyScore"`
	Routes               []Route     `json:"routes"`
	Diagnostics          Diagnostics `json:"diagnostics"`
	LastUpdated          string      `json:"lastUpdated,omitempty"`
}

// StoredResult is an OptimizationResult as persisted by the store.
type StoredResult struct {
	ID        string             `json:"id"`
	CreatedAt string             `json:"createdAt"`
	Result    OptimizationResult `json:"result"`
}

// OptimizeRequest is the POST /v1/routes/optimize body. Constraint
// fields overlay the server defaults: only positive values override,
// a zero or omitted field keeps the configured default.
type OptimizeRequest struct {
	Warehouse          Warehouse           `json:"warehouse"`
	DeliveryPoints     []DeliveryPoint     `json:"deliveryPoints"`
	VehicleConstraints *VehicleConstraints `json:"vehicleConstraints,omitempty"`
	TimeBudgetMs       int                 `json:"timeBudgetMs,omitempty"`
}

// SalesRecord is one cleaned daily sales row.
type SalesRecord struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	WarehouseID string  `json:"warehouseId"`
	SKUID       string  `json:"skuId"`
	UnitsSold   int     `json:"unitsSold"`
	Revenue     float64 `json:"revenue,omitempty"`
}

type ForecastPoint struct {
	Date            string             `json:"date"`
	PredictedDemand float64            `json:"predictedDemand"`
	ConfidenceLower float64            `json:"confidenceLower"`
	ConfidenceUpper float64            `json:"confidenceUpper"`
	ModelConfidence float64            `json:"modelConfidence"`
	PatternFactors  map[string]float64 `json:"patternFactors,omitempty"`
}

type ForecastResult struct {
	WarehouseID string          `json:"warehouseId"`
	SKUID       string          `json:"skuId"`
	Points      []ForecastPoint `json:"forecastData"`
	Method      string          `json:"predictionMethod"`
	DataPoints  int             `json:"dataPoints"`
	LastUpdated string          `json:"lastUpdated"`
}

type Anomaly struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	WarehouseID string  `json:"warehouseId"`
	SKUID       string  `json:"skuId"`
	Type        string  `json:"type"`     // spike | drop
	Severity    string  `json:"severity"` // medium | high
	Description string  `json:"description"`
	ZScore      float64 `json:"zScore"`
	ImpactPct   float64 `json:"impactPct"`
}

type AnomalyReport struct {
	WarehouseID string    `json:"warehouseId"`
	SKUID       string    `json:"skuId"`
	Anomalies   []Anomaly `json:"anomalies"`
	Mean        float64   `json:"mean"`
	StdDev      float64   `json:"stdDev"`
	Threshold   float64   `json:"threshold"`
	DataPoints  int       `json:"dataPoints"`
	LastUpdated string    `json:"lastUpdated"`
}

type StockRecommendation struct {
	WarehouseID     string  `json:"warehouseId"`
	SKUID           string  `json:"skuId"`
	MeanDailyDemand float64 `json:"meanDailyDemand"`
	DemandStdDev    float64 `json:"demandStdDev"`
	SafetyStock     int     `json:"safetyStock"`
	ReorderPoint    int     `json:"reorderPoint"`
	OrderUpToLevel  int     `json:"orderUpToLevel"`
	LeadTimeDays    int     `json:"leadTimeDays"`
	ServiceLevel    float64 `json:"serviceLevel"`
	ForecastDemand  float64 `json:"avgForecastDemand,omitempty"`
	DemandTrend     string  `json:"demandTrend,omitempty"` // increasing | decreasing
	LastUpdated     string  `json:"lastUpdated"`
}

// EfficiencyDistribution buckets route scores the way the dashboard
// reports them.
type EfficiencyDistribution struct {
	Excellent int `json:"excellent"` // >= 90
	Good      int `json:"good"`      // 70..89
	Fair      int `json:"fair"`      // 50..69
	Poor      int `json:"poor"`      // < 50
}

type RouteStatistics struct {
	TotalRoutes            int                    `json:"totalRoutes"`
	TotalDistance          float64                `json:"totalDistance"`
	TotalTimeMin           float64                `json:"totalTimeMin"`
	TotalCost              float64                `json:"totalCost"`
	TotalStops             int                    `json:"totalStops"`
	AverageDistance        float64                `json:"averageDistance"`
	AverageTimeMin         float64                `json:"averageTimeMin"`
	AverageCost            float64                `json:"averageCost"`
	AverageStops           float64                `json:"averageStops"`
	EfficiencyDistribution EfficiencyDistribution `json:"efficiencyDistribution"`
	OverallEfficiency      float64                `json:"overallEfficiency"`
}

type DashboardOverview struct {
	TotalOptimizations int             `json:"totalOptimizations"`
	TotalRoutes        int             `json:"totalRoutes"`
	TotalSalesRecords  int             `json:"totalSalesRecords"`
	Warehouses         []string        `json:"warehouses"`
	RouteStats         RouteStatistics `json:"routeStats"`
	LastUpdated        string          `json:"lastUpdated"`
}

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Source      string   `json:"source"`
	RowsRead    int      `json:"rowsRead"`
	RowsKept    int      `json:"rowsKept"`
	RowsDropped int      `json:"rowsDropped"`
	Inserted    int      `json:"inserted"`
	Issues      []string `json:"issues,omitempty"`
}
