package repositories

import (
	"context"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AuditLogsRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditLog, error)
	// List returns one page of matching logs, newest first, plus the total match count
	List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, int, error)
	GetStatistics(ctx context.Context, tenantID uuid.UUID, since time.Time) (*models.AuditStatistics, error)
}

type auditLogsRepo struct {
	db DBTX
}

func NewAuditLogsRepo(db DBTX) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

const auditLogColumns = `a.id, a.tenant_id, a.user_id, a.action, a.model_type, a.model_id, a.old_values, a.new_values, a.changes,
	a.description, a.ip_address, a.user_agent, a.request_id, a.route, a.method, a.url, a.response_status, a.execution_time_ms,
	a.created_at, NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), '')`

func (r *auditLogsRepo) Create(ctx context.Context, auditLog *models.AuditLog) error {
	if auditLog.ID == uuid.Nil {
		auditLog.ID = uuid.New()
	}
	if auditLog.CreatedAt.IsZero() {
		auditLog.CreatedAt = time.Now()
	}

	oldValues, err := marshalJSONB(auditLog.OldValues)
	if err != nil {
		return err
	}
	newValues, err := marshalJSONB(auditLog.NewValues)
	if err != nil {
		return err
	}
	changes, err := marshalJSONB(auditLog.Changes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_logs (id, tenant_id, user_id, action, model_type, model_id, old_values, new_values, changes,
			description, ip_address, user_agent, request_id, route, method, url, response_status, execution_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = r.db.Exec(ctx, query,
		auditLog.ID,
		auditLog.TenantID,
		auditLog.UserID,
		auditLog.Action,
		auditLog.ModelType,
		auditLog.ModelID,
		oldValues,
		newValues,
		changes,
		auditLog.Description,
		auditLog.IPAddress,
		auditLog.UserAgent,
		auditLog.RequestID,
		auditLog.Route,
		auditLog.Method,
		auditLog.URL,
		auditLog.ResponseStatus,
		auditLog.ExecutionTimeMs,
		auditLog.CreatedAt,
	)
	return err
}

func scanAuditLog(row pgx.Row) (*models.AuditLog, error) {
	auditLog := &models.AuditLog{}
	var oldValues, newValues, changes []byte

	err := row.Scan(
		&auditLog.ID,
		&auditLog.TenantID,
		&auditLog.UserID,
		&auditLog.Action,
		&auditLog.ModelType,
		&auditLog.ModelID,
		&oldValues,
		&newValues,
		&changes,
		&auditLog.Description,
		&auditLog.IPAddress,
		&auditLog.UserAgent,
		&auditLog.RequestID,
		&auditLog.Route,
		&auditLog.Method,
		&auditLog.URL,
		&auditLog.ResponseStatus,
		&auditLog.ExecutionTimeMs,
		&auditLog.CreatedAt,
		&auditLog.UserName,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalJSONB(oldValues, &auditLog.OldValues); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(newValues, &auditLog.NewValues); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(changes, &auditLog.Changes); err != nil {
		return nil, err
	}
	return auditLog, nil
}

func (r *auditLogsRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditLog, error) {
	query := `SELECT ` + auditLogColumns + `
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.tenant_id = $1 AND a.id = $2`
	return scanAuditLog(r.db.QueryRow(ctx, query, tenantID, id))
}

func auditFilters(tenantID uuid.UUID, filters *models.AuditLogFilters) *filterBuilder {
	f := newFilterBuilder(tenantID)

	if filters.UserID != nil {
		f.add("a.user_id = $%d", *filters.UserID)
	}
	if filters.Action != nil {
		f.add("a.action = $%d", *filters.Action)
	}
	if filters.ModelType != nil {
		f.add("a.model_type = $%d", *filters.ModelType)
	}
	if filters.ModelID != nil {
		f.add("a.model_id = $%d", *filters.ModelID)
	}
	if filters.StartDate != nil {
		f.add("a.created_at >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil {
		f.add("a.created_at <= $%d", *filters.EndDate)
	}
	if filters.RecentHours > 0 {
		f.add("a.created_at >= NOW() - make_interval(hours => $%d)", filters.RecentHours)
	}
	if filters.ExcludeAuth {
		f.add("a.action <> ALL($%d)", models.AuthActions)
	}
	if filters.OnlyAuth {
		f.add("a.action = ANY($%d)", models.AuthActions)
	}
	if filters.Search != "" {
		f.add("(a.description ILIKE $%d OR a.model_type ILIKE $%d)", likePattern(filters.Search))
	}
	return f
}

func (r *auditLogsRepo) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, int, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	f := auditFilters(tenantID, filters)

	var total int
	countQuery := `SELECT COUNT(*) FROM audit_logs a WHERE a.tenant_id = $1` + f.where
	if err := r.db.QueryRow(ctx, countQuery, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + auditLogColumns + `
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.tenant_id = $1` + f.where + `
		ORDER BY a.created_at DESC` + f.page(filters.Limit, filters.Offset)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	auditLogs := []*models.AuditLog{}
	for rows.Next() {
		auditLog, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, err
		}
		auditLogs = append(auditLogs, auditLog)
	}
	return auditLogs, total, rows.Err()
}

func (r *auditLogsRepo) GetStatistics(ctx context.Context, tenantID uuid.UUID, since time.Time) (*models.AuditStatistics, error) {
	stats := &models.AuditStatistics{
		TenantID:    tenantID,
		PeriodStart: since,
		PeriodEnd:   time.Now(),
		ByAction:    make(map[string]int),
		ByModelType: make(map[string]int),
		TopUsers:    []models.AuditUserCount{},
		Timeline:    []models.AuditDayCount{},
	}

	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs WHERE tenant_id = $1 AND created_at >= $2`, tenantID, since).Scan(&stats.TotalLogs)
	if err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, `
		SELECT action, COUNT(*) FROM audit_logs
		WHERE tenant_id = $1 AND created_at >= $2
		GROUP BY action`, tenantID, since, stats.ByAction); err != nil {
		return nil, err
	}

	if err := r.groupCount(ctx, `
		SELECT model_type, COUNT(*) FROM audit_logs
		WHERE tenant_id = $1 AND created_at >= $2
		GROUP BY model_type`, tenantID, since, stats.ByModelType); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT a.user_id, COALESCE(NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''), 'System'), COUNT(*)
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.tenant_id = $1 AND a.created_at >= $2
		GROUP BY a.user_id, u.first_name, u.last_name
		ORDER BY COUNT(*) DESC
		LIMIT 10`, tenantID, since)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var uc models.AuditUserCount
		if err := rows.Scan(&uc.UserID, &uc.UserName, &uc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.TopUsers = append(stats.TopUsers, uc)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `
		SELECT date_trunc('day', created_at), COUNT(*)
		FROM audit_logs
		WHERE tenant_id = $1 AND created_at >= $2
		GROUP BY 1
		ORDER BY 1`, tenantID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dc models.AuditDayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		stats.Timeline = append(stats.Timeline, dc)
	}

	return stats, rows.Err()
}

func (r *auditLogsRepo) groupCount(ctx context.Context, query string, tenantID uuid.UUID, since time.Time, into map[string]int) error {
	rows, err := r.db.Query(ctx, query, tenantID, since)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}
