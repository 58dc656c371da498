package postgres

import (
	"strconv"
	"strings"

	"github.com/phrazzld/task-manager-api/internal/domain"
)

// taskSelect reads a task with its status, creator, optional executor and
// labels in one statement. Labels are aggregated to a JSON array by a
// correlated sub-select so tasks are never duplicated by the join.
const taskSelect = `
SELECT
	t.id, t.name, t.description, t.status_id, t.creator_id, t.executor_id, t.created_at, t.updated_at,
	s.name,
	c.first_name, c.last_name, c.email,
	e.first_name, e.last_name, e.email,
	COALESCE((
		SELECT json_agg(json_build_object('id', l.id, 'name', l.name) ORDER BY l.id)
		FROM tasks_labels tl
		JOIN labels l ON l.id = tl.label_id
		WHERE tl.task_id = t.id
	), '[]'::json)
FROM tasks t
JOIN statuses s ON s.id = t.status_id
JOIN users c ON c.id = t.creator_id
LEFT JOIN users e ON e.id = t.executor_id`

const taskOrder = ` ORDER BY t.created_at DESC, t.id DESC`

// taskQuery accumulates WHERE conditions with numbered placeholders.
type taskQuery struct {
	conds []string
	args  []any
}

// where appends a condition. Every "?" in cond is replaced by the
// placeholder for arg.
func (q *taskQuery) where(cond string, arg any) *taskQuery {
	q.args = append(q.args, arg)
	placeholder := "$" + strconv.Itoa(len(q.args))
	q.conds = append(q.conds, strings.ReplaceAll(cond, "?", placeholder))
	return q
}

// byFilter applies the optional filters. Unset fields add nothing.
func (q *taskQuery) byFilter(f domain.TaskFilter) *taskQuery {
	if f.StatusID != nil {
		q.where("t.status_id = ?", *f.StatusID)
	}
	if f.ExecutorID != nil {
		q.where("t.executor_id = ?", *f.ExecutorID)
	}
	if f.LabelID != nil {
		q.where("EXISTS (SELECT 1 FROM tasks_labels fl WHERE fl.task_id = t.id AND fl.label_id = ?)", *f.LabelID)
	}
	if f.CreatorID != nil {
		q.where("t.creator_id = ?", *f.CreatorID)
	}
	return q
}

// build returns the final SQL and its arguments.
func (q *taskQuery) build() (string, []any) {
	var sb strings.Builder
	sb.WriteString(taskSelect)
	if len(q.conds) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(q.conds, " AND "))
	}
	sb.WriteString(taskOrder)
	return sb.String(), q.args
}

// buildTaskQuery returns the listing query for f.
func buildTaskQuery(f domain.TaskFilter) (string, []any) {
	q := &taskQuery{}
	return q.byFilter(f).build()
}
