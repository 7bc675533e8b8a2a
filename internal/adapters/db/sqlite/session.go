package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/RickieES/localizethat-sub000/internal/domain"
)

var (
	ErrTxOpen = errors.New("transaction already open")
	ErrNoTx   = errors.New("no open transaction")
)

var nodeColumns = []string{
	"id", "kind", "parent_id", "twin_id", "locale", "name",
	"file_kind", "content_kind", "text_value", "order_in_file",
	"dont_export", "keep_original", "created_at", "updated_at",
}

// Session is the SQLite unit-of-work handle behind ports.Session. It routes
// statements through the open transaction when one exists and keeps an
// identity map from row id to the in-memory node, so twin links resolve to
// the same node instances the engines already hold.
type Session struct {
	db    *sql.DB
	sq    sq.StatementBuilderType
	tx    *sql.Tx
	nodes map[int64]domain.LocaleNode
}

func NewSession(db *sql.DB) *Session {
	return &Session{db: db, sq: sq.StatementBuilder, nodes: map[int64]domain.LocaleNode{}}
}

func (s *Session) Begin(ctx context.Context) error {
	if s.tx != nil {
		return ErrTxOpen
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	s.tx = tx
	return nil
}

func (s *Session) Commit() error {
	if s.tx == nil {
		return ErrNoTx
	}
	err := s.tx.Commit()
	s.tx = nil
	return err
}

func (s *Session) Rollback() error {
	if s.tx == nil {
		return ErrNoTx
	}
	err := s.tx.Rollback()
	s.tx = nil
	return err
}

func (s *Session) InTransaction() bool { return s.tx != nil }

func (s *Session) conn() dbtx {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func parentID(n domain.LocaleNode) any {
	if p := n.Parent(); p != nil && p.ID() != 0 {
		return p.ID()
	}
	return nil
}

func twinID(n domain.LocaleNode) any {
	if t := n.DefaultTwin(); t != nil && t.ID() != 0 {
		return t.ID()
	}
	return nil
}

// nodeValues flattens a node into the nodes-table column values, switching
// exhaustively over the closed kind set. MarkedForDeletion is transient and
// never stored.
func nodeValues(n domain.LocaleNode) (fileKind, contentKind any, text string, order int, dontExport, keepOriginal bool) {
	switch v := n.(type) {
	case *domain.LocaleContainer:
		_ = v
	case *domain.LocaleFile:
		fileKind = string(v.FileKind())
		dontExport = v.DontExport
	case *domain.LocaleContent:
		contentKind = string(v.ContentKind())
		text = v.TextValue
		order = v.OrderInFile
		dontExport = v.DontExport
		keepOriginal = v.KeepOriginal
	}
	return
}

func (s *Session) Persist(ctx context.Context, n domain.LocaleNode) error {
	fileKind, contentKind, text, order, dontExport, keepOriginal := nodeValues(n)
	q := s.sq.Insert("nodes").
		Columns("kind", "parent_id", "twin_id", "locale", "name", "file_kind", "content_kind",
			"text_value", "order_in_file", "dont_export", "keep_original", "created_at", "updated_at").
		Values(string(n.NodeKind()), parentID(n), twinID(n), n.Locale(), n.Name(), fileKind, contentKind,
			text, order, dontExport, keepOriginal,
			n.CreationDate().Format(time.RFC3339), n.LastUpdate().Format(time.RFC3339))
	sqlStr, args, _ := q.ToSql()
	res, err := s.conn().ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	n.SetID(id)
	s.nodes[id] = n
	return nil
}

func (s *Session) Merge(ctx context.Context, n domain.LocaleNode) error {
	if n.ID() == 0 {
		return s.Persist(ctx, n)
	}
	fileKind, contentKind, text, order, dontExport, keepOriginal := nodeValues(n)
	q := s.sq.Update("nodes").
		Set("parent_id", parentID(n)).
		Set("twin_id", twinID(n)).
		Set("locale", n.Locale()).
		Set("name", n.Name()).
		Set("file_kind", fileKind).
		Set("content_kind", contentKind).
		Set("text_value", text).
		Set("order_in_file", order).
		Set("dont_export", dontExport).
		Set("keep_original", keepOriginal).
		Set("updated_at", time.Now().UTC().Format(time.RFC3339)).
		Where(sq.Eq{"id": n.ID()})
	sqlStr, args, _ := q.ToSql()
	_, err := s.conn().ExecContext(ctx, sqlStr, args...)
	return err
}

func (s *Session) Remove(ctx context.Context, n domain.LocaleNode) error {
	if n.ID() == 0 {
		return nil
	}
	q := s.sq.Delete("nodes").Where(sq.Eq{"id": n.ID()})
	sqlStr, args, _ := q.ToSql()
	if _, err := s.conn().ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	delete(s.nodes, n.ID())
	return nil
}

type nodeRow struct {
	id           int64
	kind         string
	parentID     sql.NullInt64
	twinID       sql.NullInt64
	locale       string
	name         string
	fileKind     sql.NullString
	contentKind  sql.NullString
	textValue    string
	orderInFile  int
	dontExport   bool
	keepOriginal bool
	createdAt    string
	updatedAt    string
}

func scanNodeRow(scan func(dest ...any) error) (*nodeRow, error) {
	var r nodeRow
	err := scan(&r.id, &r.kind, &r.parentID, &r.twinID, &r.locale, &r.name,
		&r.fileKind, &r.contentKind, &r.textValue, &r.orderInFile,
		&r.dontExport, &r.keepOriginal, &r.createdAt, &r.updatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// materialize turns a row into a node, reusing the identity-mapped instance
// when the row was loaded before, and wires the twin link when the master is
// already in memory.
func (s *Session) materialize(r *nodeRow) (domain.LocaleNode, error) {
	if n, ok := s.nodes[r.id]; ok {
		return n, nil
	}
	var n domain.LocaleNode
	switch domain.NodeKind(r.kind) {
	case domain.KindContainer:
		n = domain.NewLocaleContainer(r.name, r.locale)
	case domain.KindFile:
		f := domain.NewLocaleFile(r.name, r.locale, domain.FileKind(r.fileKind.String))
		f.DontExport = r.dontExport
		n = f
	case domain.KindContent:
		ct := domain.NewLocaleContent(r.name, r.locale, domain.ContentKind(r.contentKind.String))
		ct.TextValue = r.textValue
		ct.OrderInFile = r.orderInFile
		ct.DontExport = r.dontExport
		ct.KeepOriginal = r.keepOriginal
		n = ct
	default:
		return nil, fmt.Errorf("node %d: unknown kind %q", r.id, r.kind)
	}
	n.SetID(r.id)
	if t, err := time.Parse(time.RFC3339, r.createdAt); err == nil {
		n.SetCreationDate(t)
	}
	if t, err := time.Parse(time.RFC3339, r.updatedAt); err == nil {
		n.SetLastUpdate(t)
	}
	if r.twinID.Valid {
		if master, ok := s.nodes[r.twinID.Int64]; ok {
			if err := n.SetDefaultTwin(master); err != nil {
				return nil, fmt.Errorf("node %d: %w", r.id, err)
			}
		}
	}
	s.nodes[r.id] = n
	return n, nil
}

func (s *Session) NodeByID(ctx context.Context, id int64) (domain.LocaleNode, error) {
	if n, ok := s.nodes[id]; ok {
		return n, nil
	}
	q := s.sq.Select(nodeColumns...).From("nodes").Where(sq.Eq{"id": id}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	r, err := scanNodeRow(s.conn().QueryRowContext(ctx, sqlStr, args...).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.materialize(r)
}

func (s *Session) FindTwin(ctx context.Context, master domain.LocaleNode, locale string) (domain.LocaleNode, error) {
	if twin := master.TwinForLocale(locale); twin != nil && twin != master {
		return twin, nil
	}
	q := s.sq.Select(nodeColumns...).From("nodes").
		Where(sq.Eq{"twin_id": master.ID(), "locale": locale}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	r, err := scanNodeRow(s.conn().QueryRowContext(ctx, sqlStr, args...).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return s.materialize(r)
}

// LoadChildren populates c's direct child containers and files, and each
// file's content items, attaching them under c and registering twin links
// against already-loaded masters.
func (s *Session) LoadChildren(ctx context.Context, c *domain.LocaleContainer) error {
	rows, err := s.childRows(ctx, c.ID())
	if err != nil {
		return err
	}
	for _, r := range rows {
		known := s.nodes[r.id] != nil
		n, err := s.materialize(r)
		if err != nil {
			return err
		}
		switch v := n.(type) {
		case *domain.LocaleContainer:
			if !known {
				c.AddContainer(v)
			}
		case *domain.LocaleFile:
			if !known {
				c.AddFile(v)
			}
			if err := s.loadContents(ctx, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) loadContents(ctx context.Context, f *domain.LocaleFile) error {
	rows, err := s.childRows(ctx, f.ID())
	if err != nil {
		return err
	}
	for _, r := range rows {
		known := s.nodes[r.id] != nil
		n, err := s.materialize(r)
		if err != nil {
			return err
		}
		if ct, ok := n.(*domain.LocaleContent); ok && !known {
			f.AddContent(ct)
		}
	}
	return nil
}

func (s *Session) childRows(ctx context.Context, parentID int64) ([]*nodeRow, error) {
	q := s.sq.Select(nodeColumns...).From("nodes").
		Where(sq.Eq{"parent_id": parentID}).OrderBy("id")
	sqlStr, args, _ := q.ToSql()
	rows, err := s.conn().QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*nodeRow
	for rows.Next() {
		r, err := scanNodeRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Session) LocalePathByContainer(ctx context.Context, c *domain.LocaleContainer) (*domain.LocalePath, error) {
	q := s.sq.Select("id", "path", "locale", "container_id", "created_at").
		From("locale_paths").Where(sq.Eq{"container_id": c.ID()}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := s.conn().QueryRowContext(ctx, sqlStr, args...)
	var lp domain.LocalePath
	var containerID sql.NullInt64
	var created string
	if err := row.Scan(&lp.ID, &lp.Path, &lp.Locale, &containerID, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	lp.Container = c
	lp.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &lp, nil
}
