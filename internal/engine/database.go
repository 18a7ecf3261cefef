package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/internal/parse"
	"github.com/warekit/shuttle/pkg/api"
	"github.com/warekit/shuttle/pkg/log"
)

// database executes a database action: it extracts the RETURNS clause and
// any CONNECT directive, binds or rebinds the session connection,
// substitutes field placeholders with typed literals, executes the
// statement, and maps at most one result row positionally onto the RETURNS
// fields. Every failure becomes a Fail result; nothing propagates past this
// executor.
func (x *Executor) database(
	ctx context.Context, action *api.DatabaseAction, sess *Session,
) *Result {
	cache := x.engine.Cache()

	returnFields, stmt := parse.ExtractReturns(action.Statement)

	if name, rest, ok := parse.ExtractConnect(stmt); ok {
		if sess.CurrentDatabase() != name {
			if err := x.connectSession(ctx, sess, name); err != nil {
				return FailCause(err, "database connect failed: %v", err)
			}
		}
		if rest == "" {
			return Pass("connected to database: %s", name)
		}
		stmt = rest
	} else if sess.Conn() == nil {
		name, err := x.engine.databases.DefaultName()
		if err != nil {
			return FailCause(err, "%v", err)
		}
		if err := x.connectSession(ctx, sess, name); err != nil {
			return FailCause(err, "database connect failed: %v", err)
		}
	}

	substituted := parse.SubstituteFields(stmt, func(id uuid.UUID) string {
		value := sess.Field(id)
		if value == nil {
			return "NULL"
		}
		field := cache.Field(id)
		if field == nil {
			// unknown field declaration, quote as string for safety
			return sqlLiteral(value, api.FieldString)
		}
		return sqlLiteral(value, field.Type)
	})

	slog.Debug("Executing statement",
		slog.String("statement", substituted),
		log.Database(sess.CurrentDatabase()))

	rows, err := sess.Conn().QueryContext(ctx, substituted)
	if err != nil {
		return FailCause(err, "database execution failed: %v", err)
	}
	defer func() { _ = rows.Close() }()

	res := Pass("database execution completed on %s", sess.CurrentDatabase())

	if rows.Next() && len(returnFields) > 0 {
		cols, err := rows.Columns()
		if err != nil {
			return FailCause(err, "database execution failed: %v", err)
		}
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return FailCause(err, "database execution failed: %v", err)
		}

		for i := 0; i < min(len(cols), len(returnFields)); i++ {
			value := normalizeColumn(raw[i])
			sess.SetField(returnFields[i], value)
			res.Fields[returnFields[i]] = value
		}
	}
	if err := rows.Err(); err != nil {
		return FailCause(err, "database execution failed: %v", err)
	}
	return res
}

// connectSession closes the session's existing connection, if any, and
// binds a fresh one against the named database's configured target
func (x *Executor) connectSession(
	ctx context.Context, sess *Session, name string,
) error {
	if err := sess.CloseConnection(ctx); err != nil {
		return err
	}
	db, err := x.engine.databases.Get(name)
	if err != nil {
		return err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}
	return sess.BindConnection(ctx, conn, name)
}

// normalizeColumn translates driver column values into field values: SQL
// NULL becomes an absent value and byte slices become strings
func normalizeColumn(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(t)
	default:
		return t
	}
}
