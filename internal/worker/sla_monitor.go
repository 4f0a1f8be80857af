package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/nairobi-county/county-tickets/internal/clock"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/observability"
	"github.com/nairobi-county/county-tickets/internal/sla"
)

// digestLimit caps how many tickets one digest line lists.
const digestLimit = 20

// OverdueLister is the read side the monitor needs.
type OverdueLister interface {
	Overdue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
}

// SLAMonitor periodically reports open tickets past their deadline. It only
// reads; overdue stays a derived fact and nothing is written back.
type SLAMonitor struct {
	query   OverdueLister
	clock   clock.Clock
	metrics *observability.Metrics
	logger  *zap.Logger
	cron    *cron.Cron
}

// Digest summarises one monitor run.
type Digest struct {
	At           time.Time
	Overdue      int
	ByDepartment map[domain.Department]int
	Worst        []string
}

// NewSLAMonitor parses a standard 5-field cron schedule. An empty schedule
// returns a nil monitor, meaning disabled.
func NewSLAMonitor(schedule string, query OverdueLister, clk clock.Clock, metrics *observability.Metrics, logger *zap.Logger) (*SLAMonitor, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil, nil
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid SLA monitor schedule %q: %w", schedule, err)
	}

	m := &SLAMonitor{
		query:   query,
		clock:   clk,
		metrics: metrics,
		logger:  logger,
		cron:    cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
	}
	if _, err := m.cron.AddFunc(schedule, func() {
		if _, err := m.RunOnce(context.Background()); err != nil {
			m.logger.Error("sla monitor run failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// Start begins scheduling in the background.
func (m *SLAMonitor) Start() {
	if m == nil {
		return
	}
	m.logger.Info("sla monitor started", zap.Int("entries", len(m.cron.Entries())))
	m.cron.Start()
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (m *SLAMonitor) Stop(ctx context.Context) {
	if m == nil {
		return
	}
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
		m.logger.Warn("sla monitor stop timed out")
	}
}

// RunOnce computes the overdue digest at the current time, logs it and
// updates the overdue gauge.
func (m *SLAMonitor) RunOnce(ctx context.Context) (Digest, error) {
	now := m.clock.Now()
	tickets, err := m.query.Overdue(ctx, now)
	if err != nil {
		return Digest{}, err
	}

	digest := Digest{At: now, Overdue: len(tickets), ByDepartment: map[domain.Department]int{}}
	for i := range tickets {
		t := &tickets[i]
		digest.ByDepartment[t.AssignedDepartment]++
		if len(digest.Worst) < digestLimit {
			late := -sla.Remaining(now, *t.SLADeadline)
			digest.Worst = append(digest.Worst, fmt.Sprintf("%s (%s, %s late)", t.TicketID, t.AssignedDepartment, late.Round(time.Minute)))
		}
	}

	m.metrics.SetOverdue(digest.Overdue)
	if digest.Overdue == 0 {
		m.logger.Info("sla digest: no overdue tickets")
		return digest, nil
	}
	fields := []zap.Field{zap.Int("overdue", digest.Overdue), zap.Strings("tickets", digest.Worst)}
	for dept, n := range digest.ByDepartment {
		fields = append(fields, zap.Int("dept."+string(dept), n))
	}
	m.logger.Warn("sla digest", fields...)
	return digest, nil
}
