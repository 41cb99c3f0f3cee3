package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "supplynav/internal/model"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

// Migrate creates the schema if it does not exist yet.
func (p *Postgres) Migrate(ctx context.Context) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS optimizations (
            id UUID PRIMARY KEY,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            warehouse_id TEXT NOT NULL DEFAULT '',
            result JSONB NOT NULL
        )`,
        `CREATE INDEX IF NOT EXISTS idx_optimizations_created ON optimizations (created_at DESC)`,
        `CREATE TABLE IF NOT EXISTS sales (
            sale_date DATE NOT NULL,
            warehouse_id TEXT NOT NULL,
            sku_id TEXT NOT NULL,
            units_sold INT NOT NULL,
            revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
            PRIMARY KEY (sale_date, warehouse_id, sku_id)
        )`,
    }
    for _, s := range stmts {
        if _, err := p.db.ExecContext(ctx, s); err != nil {
            return fmt.Errorf("migrate: %w", err)
        }
    }
    return nil
}

func (p *Postgres) SaveOptimization(ctx context.Context, res model.OptimizationResult) (model.StoredResult, error) {
    id := uuid.New()
    now := time.Now().UTC()
    body, err := json.Marshal(res)
    if err != nil { return model.StoredResult{}, err }
    _, err = p.db.ExecContext(ctx,
        `INSERT INTO optimizations (id, created_at, warehouse_id, result) VALUES ($1,$2,$3,$4)`,
        id, now, res.WarehouseID, body)
    if err != nil { return model.StoredResult{}, err }
    return model.StoredResult{ID: id.String(), CreatedAt: now.Format(time.RFC3339), Result: res}, nil
}

func (p *Postgres) GetOptimization(ctx context.Context, id string) (model.StoredResult, error) {
    var (
        created time.Time
        body    []byte
    )
    err := p.db.QueryRowContext(ctx,
        `SELECT created_at, result FROM optimizations WHERE id=$1`, id).Scan(&created, &body)
    if errors.Is(err, sql.ErrNoRows) {
        return model.StoredResult{}, ErrNotFound
    }
    if err != nil { return model.StoredResult{}, err }
    sr := model.StoredResult{ID: id, CreatedAt: created.UTC().Format(time.RFC3339)}
    if err := json.Unmarshal(body, &sr.Result); err != nil {
        return model.StoredResult{}, err
    }
    return sr, nil
}

func (p *Postgres) ListOptimizations(ctx context.Context, limit int) ([]model.StoredResult, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    rows, err := p.db.QueryContext(ctx,
        `SELECT id::text, created_at, result FROM optimizations ORDER BY created_at DESC LIMIT $1`, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.StoredResult{}
    for rows.Next() {
        var (
            sr      model.StoredResult
            created time.Time
            body    []byte
        )
        if err := rows.Scan(&sr.ID, &created, &body); err != nil { return nil, err }
        sr.CreatedAt = created.UTC().Format(time.RFC3339)
        if err := json.Unmarshal(body, &sr.Result); err != nil { return nil, err }
        out = append(out, sr)
    }
    return out, rows.Err()
}

func (p *Postgres) RouteStats(ctx context.Context) (model.RouteStatistics, error) {
    results, err := p.ListOptimizations(ctx, 500)
    if err != nil { return model.RouteStatistics{}, err }
    return computeRouteStats(results), nil
}

func (p *Postgres) InsertSales(ctx context.Context, recs []model.SalesRecord) (int, error) {
    tx, err := p.db.BeginTx(ctx, nil)
    if err != nil { return 0, err }
    defer func(){ _ = tx.Rollback() }()
    inserted := 0
    for _, r := range recs {
        res, err := tx.ExecContext(ctx,
            `INSERT INTO sales (sale_date, warehouse_id, sku_id, units_sold, revenue)
             VALUES ($1,$2,$3,$4,$5)
             ON CONFLICT (sale_date, warehouse_id, sku_id) DO NOTHING`,
            r.Date, r.WarehouseID, r.SKUID, r.UnitsSold, r.Revenue)
        if err != nil { return 0, err }
        if n, _ := res.RowsAffected(); n > 0 { inserted++ }
    }
    if err := tx.Commit(); err != nil { return 0, err }
    return inserted, nil
}

func (p *Postgres) ListSales(ctx context.Context, warehouseID, skuID string) ([]model.SalesRecord, error) {
    q := `SELECT sale_date::text, warehouse_id, sku_id, units_sold, revenue FROM sales`
    args := []any{}
    where := ""
    if warehouseID != "" {
        args = append(args, warehouseID)
        where = fmt.Sprintf(" WHERE warehouse_id=$%d", len(args))
    }
    if skuID != "" {
        args = append(args, skuID)
        if where == "" {
            where = fmt.Sprintf(" WHERE sku_id=$%d", len(args))
        } else {
            where += fmt.Sprintf(" AND sku_id=$%d", len(args))
        }
    }
    rows, err := p.db.QueryContext(ctx, q+where+` ORDER BY sale_date`, args...)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.SalesRecord{}
    for rows.Next() {
        var r model.SalesRecord
        if err := rows.Scan(&r.Date, &r.WarehouseID, &r.SKUID, &r.UnitsSold, &r.Revenue); err != nil {
            return nil, err
        }
        out = append(out, r)
    }
    return out, rows.Err()
}

func (p *Postgres) DashboardOverview(ctx context.Context) (model.DashboardOverview, error) {
    results, err := p.ListOptimizations(ctx, 500)
    if err != nil { return model.DashboardOverview{}, err }

    var salesCount int
    if err := p.db.QueryRowContext(ctx, `SELECT count(*) FROM sales`).Scan(&salesCount); err != nil {
        return model.DashboardOverview{}, err
    }
    rows, err := p.db.QueryContext(ctx,
        `SELECT DISTINCT warehouse_id FROM sales
         UNION SELECT DISTINCT warehouse_id FROM optimizations WHERE warehouse_id <> ''
         ORDER BY 1`)
    if err != nil { return model.DashboardOverview{}, err }
    defer rows.Close()
    names := []string{}
    for rows.Next() {
        var w string
        if err := rows.Scan(&w); err != nil { return model.DashboardOverview{}, err }
        names = append(names, w)
    }
    if err := rows.Err(); err != nil { return model.DashboardOverview{}, err }

    ov := model.DashboardOverview{
        TotalOptimizations: len(results),
        TotalSalesRecords:  salesCount,
        Warehouses:         names,
        RouteStats:         computeRouteStats(results),
        LastUpdated:        time.Now().UTC().Format(time.RFC3339),
    }
    ov.TotalRoutes = ov.RouteStats.TotalRoutes
    return ov, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }
