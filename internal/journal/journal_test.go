package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"morph-server/internal/sqlinline"
)

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (testRowsBase) Conn() *pgx.Conn                              { return nil }
func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (testRowsBase) RawValues() [][]byte                          { return nil }
func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

type testRows struct {
	testRowsBase
	rows [][]any
	idx  int
}

func (r *testRows) Close()     {}
func (r *testRows) Err() error { return nil }
func (r *testRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *testRows) Scan(dest ...any) error {
	return assign(r.rows[r.idx-1], dest)
}

func assign(src []any, dest []any) error {
	if len(src) != len(dest) {
		return fmt.Errorf("scan arity mismatch: %d != %d", len(src), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = src[i].(string)
		case *int:
			*p = src[i].(int)
		case *time.Time:
			*p = src[i].(time.Time)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

type simpleRow struct {
	values []any
}

func (r simpleRow) Scan(dest ...any) error {
	if r.values == nil {
		return pgx.ErrNoRows
	}
	return assign(r.values, dest)
}

type fakeDB struct {
	execQueries []string
	execArgs    [][]any
	rowValues   []any
	queryRows   [][]any
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execQueries = append(f.execQueries, query)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return simpleRow{values: f.rowValues}
}

func (f *fakeDB) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return &testRows{rows: f.queryRows}, nil
}

func sampleRunRow(id string) []any {
	started := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	return []any{
		id, "make it fluffy", "an animal", "the prompt",
		"x/flux2-klein:latest", "1024x1024", 6, 2,
		started, started.Add(3 * time.Minute),
	}
}

func TestNilJournalIsNoOp(t *testing.T) {
	var j *Journal
	if j.Enabled() {
		t.Fatalf("nil journal must report disabled")
	}
	if err := j.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := j.Record(context.Background(), Run{ID: "x"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	runs, err := j.List(context.Background(), 10)
	if err != nil || runs != nil {
		t.Fatalf("List = %v, %v", runs, err)
	}
	if _, err := j.Get(context.Background(), "x"); err != ErrNotFound {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
}

func TestRecordInsertsRunAndAssets(t *testing.T) {
	db := &fakeDB{}
	j := &Journal{db: db}

	run := Run{
		ID:               "4c2f0a9e-0000-0000-0000-000000000001",
		Instruction:      "make it fluffy",
		SubjectType:      "an animal",
		Prompt:           "the prompt",
		GenModel:         "x/flux2-klein:latest",
		GenSize:          "1024x1024",
		CandidatesStored: 2,
		Assets: []Asset{
			{Position: 1, URL: "http://a/1.png"},
			{Position: 2, URL: "http://a/2.png"},
		},
	}
	if err := j.Record(context.Background(), run); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(db.execQueries) != 3 {
		t.Fatalf("exec count = %d, want 3", len(db.execQueries))
	}
	if db.execQueries[0] != sqlinline.QInsertRun {
		t.Fatalf("first exec is not the run insert")
	}
	if db.execArgs[0][0] != run.ID {
		t.Fatalf("run insert id = %v", db.execArgs[0][0])
	}
	for i := 1; i <= 2; i++ {
		if db.execQueries[i] != sqlinline.QInsertRunAsset {
			t.Fatalf("exec %d is not an asset insert", i)
		}
		if db.execArgs[i][1] != i {
			t.Fatalf("asset %d position = %v", i, db.execArgs[i][1])
		}
	}
}

func TestListScansRuns(t *testing.T) {
	db := &fakeDB{queryRows: [][]any{
		sampleRunRow("4c2f0a9e-0000-0000-0000-000000000001"),
		sampleRunRow("4c2f0a9e-0000-0000-0000-000000000002"),
	}}
	j := &Journal{db: db}

	runs, err := j.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].SubjectType != "an animal" || runs[0].CandidatesStored != 2 {
		t.Fatalf("run scan mismatch: %+v", runs[0])
	}
}

func TestGetReturnsRunWithAssets(t *testing.T) {
	id := "4c2f0a9e-0000-0000-0000-000000000001"
	db := &fakeDB{
		rowValues: sampleRunRow(id),
		queryRows: [][]any{
			{1, "http://a/1.png"},
			{2, "http://a/2.png"},
		},
	}
	j := &Journal{db: db}

	run, err := j.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.ID != id {
		t.Fatalf("run id = %q", run.ID)
	}
	if len(run.Assets) != 2 || run.Assets[1].URL != "http://a/2.png" {
		t.Fatalf("assets = %+v", run.Assets)
	}
}

func TestGetNotFound(t *testing.T) {
	j := &Journal{db: &fakeDB{}}
	if _, err := j.Get(context.Background(), "4c2f0a9e-0000-0000-0000-000000000009"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
