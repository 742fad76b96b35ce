package debugsink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ByLCY/textimage/logging"
)

const schema = `create table if not exists snapshots (
	id integer primary key autoincrement,
	name text not null,
	created_at text not null,
	data blob not null
)`

// Snapshot 是数据库中的一条快照记录。
type Snapshot struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	Data      []byte
}

// SQLiteSink 把快照存进 sqlite 数据库，便于服务端集中留存。
type SQLiteSink struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite 打开（必要时创建）path 处的数据库。
func OpenSQLite(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("打开快照数据库 %s 失败: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化快照表失败: %w", err)
	}
	return &SQLiteSink{db: db, now: time.Now}, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

func (s *SQLiteSink) Persist(ctx context.Context, data []byte, name string) error {
	created := s.now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		"insert into snapshots (name, created_at, data) values (?, ?, ?)", name, created, data)
	if err != nil {
		return fmt.Errorf("写入调试快照 %s 失败: %w", name, err)
	}
	id, _ := res.LastInsertId()
	logging.Logger().Info("debug snapshot stored", "id", id, "name", name, "bytes", len(data))
	return nil
}

// List 按写入顺序返回最近 limit 条快照（不含图片数据）。
func (s *SQLiteSink) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"select id, name, created_at from snapshots order by id desc limit ?", limit)
	if err != nil {
		return nil, fmt.Errorf("查询快照失败: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var created string
		if err := rows.Scan(&snap.ID, &snap.Name, &created); err != nil {
			return nil, err
		}
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Get 读取一条快照的完整数据。
func (s *SQLiteSink) Get(ctx context.Context, id int64) (*Snapshot, error) {
	snap := Snapshot{ID: id}
	var created string
	err := s.db.QueryRowContext(ctx,
		"select name, created_at, data from snapshots where id = ?", id).Scan(&snap.Name, &created, &snap.Data)
	if err != nil {
		return nil, fmt.Errorf("读取快照 %d 失败: %w", id, err)
	}
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &snap, nil
}
