package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

const ticketColumns = `id, ticket_id, version, category, intent, issue_category, title, description, voice_recording_ref,
       status, priority, ward_code, ward_name, sub_county, zone, lat, lng, location_text, photos,
       reporter, beneficiary, assigned_department, department_source, assigned_to,
       created_by_id, created_by_role, created_at, updated_at, sla_deadline, resolved_at,
       reopen_count, satisfaction_rating`

type postgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository builds a Ticket Store on PostgreSQL. The version
// column provides the compare-and-swap; child rows are insert-only.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &postgresTicketRepository{pool: pool}
}

func (r *postgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32)`
	if _, err := tx.Exec(ctx, query, ticketArgs(ticket)...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if err := insertChildren(ctx, tx, ticket); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedVersion int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET version=$3, status=$4, priority=$5, ward_code=$6, ward_name=$7, sub_county=$8, zone=$9,
            assigned_department=$10, department_source=$11, assigned_to=$12, updated_at=$13, sla_deadline=$14,
            resolved_at=$15, reopen_count=$16, satisfaction_rating=$17
        WHERE id=$1 AND version=$2`
	cmd, err := tx.Exec(ctx, query,
		ticket.ID,
		expectedVersion,
		ticket.Version,
		ticket.Status,
		ticket.Priority,
		ticket.WardCode,
		ticket.WardName,
		ticket.SubCounty,
		ticket.Zone,
		ticket.AssignedDepartment,
		ticket.DepartmentSource,
		ticket.AssignedTo,
		ticket.UpdatedAt,
		ticket.SLADeadline,
		ticket.ResolvedAt,
		ticket.ReopenCount,
		ticket.SatisfactionRating,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	if err := insertChildren(ctx, tx, ticket); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *postgresTicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE ticket_id=$1`, ticketID)
}

func (r *postgresTicketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	if err := r.loadChildren(ctx, tickets); err != nil {
		return nil, err
	}
	return &tickets[0], nil
}

func (r *postgresTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY ticket_id ASC`, ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func ticketArgs(t *domain.Ticket) []any {
	var lat, lng *float64
	if t.Coordinates != nil {
		lat, lng = &t.Coordinates.Lat, &t.Coordinates.Lng
	}
	return []any{
		t.ID, t.TicketID, t.Version, t.Category, t.Intent, t.IssueCategory, t.Title, t.Description, t.VoiceRecordingRef,
		t.Status, t.Priority, t.WardCode, t.WardName, t.SubCounty, t.Zone, lat, lng, t.LocationText, nonNil(t.Photos),
		t.Reporter, t.Beneficiary, t.AssignedDepartment, t.DepartmentSource, t.AssignedTo,
		t.CreatedBy.ID, t.CreatedBy.Role, t.CreatedAt, t.UpdatedAt, t.SLADeadline, t.ResolvedAt,
		t.ReopenCount, t.SatisfactionRating,
	}
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	defer rows.Close()
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		var lat, lng *float64
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketID,
			&ticket.Version,
			&ticket.Category,
			&ticket.Intent,
			&ticket.IssueCategory,
			&ticket.Title,
			&ticket.Description,
			&ticket.VoiceRecordingRef,
			&ticket.Status,
			&ticket.Priority,
			&ticket.WardCode,
			&ticket.WardName,
			&ticket.SubCounty,
			&ticket.Zone,
			&lat,
			&lng,
			&ticket.LocationText,
			&ticket.Photos,
			&ticket.Reporter,
			&ticket.Beneficiary,
			&ticket.AssignedDepartment,
			&ticket.DepartmentSource,
			&ticket.AssignedTo,
			&ticket.CreatedBy.ID,
			&ticket.CreatedBy.Role,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.SLADeadline,
			&ticket.ResolvedAt,
			&ticket.ReopenCount,
			&ticket.SatisfactionRating,
		); err != nil {
			return nil, err
		}
		if lat != nil && lng != nil {
			ticket.Coordinates = &domain.Coordinate{Lat: *lat, Lng: *lng}
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

// insertChildren writes history, remarks and ratings. Existing rows are left
// untouched, so a replayed entry can never rewrite the audit trail.
func insertChildren(ctx context.Context, tx pgx.Tx, t *domain.Ticket) error {
	batch := &pgx.Batch{}
	for _, item := range t.History {
		batch.Queue(`
            INSERT INTO ticket_history (ticket_id, seq, action, performed_by_id, performed_by_role, note, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT (ticket_id, seq) DO NOTHING`,
			t.ID, item.Seq, item.Action, item.PerformedBy.ID, item.PerformedBy.Role, item.Note, item.Timestamp)
	}
	for _, remark := range t.Remarks {
		batch.Queue(`
            INSERT INTO ticket_remarks (ticket_id, seq, author, author_role, body, attachments, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7) ON CONFLICT (ticket_id, seq) DO NOTHING`,
			t.ID, remark.Seq, remark.By, remark.ByRole, remark.Text, nonNil(remark.Attachments), remark.Timestamp)
	}
	for i, rating := range t.SatisfactionHistory {
		batch.Queue(`
            INSERT INTO ticket_ratings (ticket_id, seq, rating, cycle, rated_at)
            VALUES ($1,$2,$3,$4,$5) ON CONFLICT (ticket_id, seq) DO NOTHING`,
			t.ID, i+1, rating.Rating, rating.Cycle, rating.RatedAt)
	}
	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (r *postgresTicketRepository) loadChildren(ctx context.Context, tickets []domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	byID := make(map[string]*domain.Ticket, len(tickets))
	for i := range tickets {
		ids[i] = tickets[i].ID
		byID[tickets[i].ID] = &tickets[i]
	}

	rows, err := r.pool.Query(ctx, `
        SELECT ticket_id, seq, action, performed_by_id, performed_by_role, note, created_at
        FROM ticket_history WHERE ticket_id = ANY($1) ORDER BY ticket_id, seq`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var ticketID string
		var item domain.WorkflowHistoryItem
		if err := rows.Scan(&ticketID, &item.Seq, &item.Action, &item.PerformedBy.ID, &item.PerformedBy.Role, &item.Note, &item.Timestamp); err != nil {
			rows.Close()
			return err
		}
		byID[ticketID].History = append(byID[ticketID].History, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
        SELECT ticket_id, seq, author, author_role, body, attachments, created_at
        FROM ticket_remarks WHERE ticket_id = ANY($1) ORDER BY ticket_id, seq`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var ticketID string
		var remark domain.Remark
		if err := rows.Scan(&ticketID, &remark.Seq, &remark.By, &remark.ByRole, &remark.Text, &remark.Attachments, &remark.Timestamp); err != nil {
			rows.Close()
			return err
		}
		byID[ticketID].Remarks = append(byID[ticketID].Remarks, remark)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
        SELECT ticket_id, rating, cycle, rated_at
        FROM ticket_ratings WHERE ticket_id = ANY($1) ORDER BY ticket_id, seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ticketID string
		var record domain.SatisfactionRecord
		if err := rows.Scan(&ticketID, &record.Rating, &record.Cycle, &record.RatedAt); err != nil {
			return err
		}
		byID[ticketID].SatisfactionHistory = append(byID[ticketID].SatisfactionHistory, record)
	}
	return rows.Err()
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
