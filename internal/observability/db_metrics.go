package observability

import (
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/jackc/pgx/v5/pgconn"
)

// ObserveDB times fn under op. A not-found result counts as ok: it is an answer, not a failure.
func (p *Prom) ObserveDB(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"
	if err != nil && !errors.Is(err, user.ErrNotFound) {
		status = "error"
		p.DbErrorsTotal.WithLabelValues(op, classifyDBErr(err)).Inc()
	}

	p.DbQueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())

	return err
}

var pgErrorClasses = map[string]string{
	"23505": "unique_violation",
	"40001": "serialization_failure",
	"40P01": "deadlock",
	"57014": "query_canceled",
}

// message fragments for drivers without typed errors (sqlite, redis), checked in order
var messageClasses = []struct {
	fragments []string
	class     string
}{
	{[]string{"timeout", "deadline"}, "timeout"},
	{[]string{"connection", "refused", "broken pipe"}, "connection"},
	{[]string{"locked", "busy"}, "locked"},
}

func classifyDBErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if class, ok := pgErrorClasses[pgErr.Code]; ok {
			return class
		}
		return "pg_" + pgErr.Code
	}

	msg := strings.ToLower(err.Error())
	for _, mc := range messageClasses {
		for _, f := range mc.fragments {
			if strings.Contains(msg, f) {
				return mc.class
			}
		}
	}

	return "unknown"
}
