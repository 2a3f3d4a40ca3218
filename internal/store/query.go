package store

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// whereBuilder accumulates AND-ed conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(column, op string, value any) {
	b.args = append(b.args, value)
	b.conds = append(b.conds, fmt.Sprintf("%s %s $%d", column, op, len(b.args)))
}

func (b *whereBuilder) addRaw(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func buildSubmissionQuery(filter SubmissionFilter) (string, []any) {
	var where whereBuilder
	if filter.UserID != nil {
		where.add("user_id", "=", filter.UserID.Hex())
	}
	if filter.QuizID != nil {
		where.add("quiz_id", "=", filter.QuizID.Hex())
	}
	if filter.ModuleID != nil {
		where.add("module_id", "=", filter.ModuleID.Hex())
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions` + where.clause() + ` ORDER BY id ASC`
	return query, where.args
}

func buildUserCountQuery(filter UserCountFilter) (string, []any) {
	var where whereBuilder
	if filter.VerifiedOnly {
		where.addRaw("is_verified")
	}
	if !filter.CreatedSince.IsZero() {
		where.add("created_at", ">=", filter.CreatedSince)
	}
	if !filter.LoggedInSince.IsZero() {
		where.add("last_login", ">=", filter.LoggedInSince)
	}
	return `SELECT COUNT(*) FROM users` + where.clause(), where.args
}

func buildSubmissionCountQuery(since time.Time) (string, []any) {
	var where whereBuilder
	if !since.IsZero() {
		where.add("created_at", ">=", since)
	}
	return `SELECT COUNT(*) FROM submissions` + where.clause(), where.args
}

// parseObjectID decodes a hex id column into dst.
func parseObjectID(dst *primitive.ObjectID, column, value string) error {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	*dst = id
	return nil
}
