package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dataload/internal/plugin/common"
)

func TestDialect_DSN(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		param  Parameter
		want   string
	}{
		{
			name:   "lib/pq defaults",
			driver: "postgres",
			param:  Parameter{Username: "retail", Password: "secret", Host: "db", Database: "retail_db"},
			want:   "host=db port=5432 user=retail password=secret dbname=retail_db sslmode=disable",
		},
		{
			name:   "lib/pq quoting",
			driver: "",
			param:  Parameter{Username: "u", Password: "it's a pw", Host: "db", Port: 6432, Database: "d", SSLMode: "require"},
			want:   `host=db port=6432 user=u password='it\'s a pw' dbname=d sslmode=require`,
		},
		{
			name:   "lib/pq empty password",
			driver: "postgres",
			param:  Parameter{Username: "u", Host: "db", Database: "d"},
			want:   "host=db port=5432 user=u password='' dbname=d sslmode=disable",
		},
		{
			name:   "pgx url",
			driver: "pgx",
			param:  Parameter{Username: "retail", Password: "secret", Host: "db", Database: "retail_db"},
			want:   "postgres://retail:secret@db:5432/retail_db?sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			param := tt.param
			assert.Equal(t, tt.want, NewDialect(&param, tt.driver).DSN())
		})
	}
}

func TestDialect_SQL(t *testing.T) {
	d := NewDialect(&Parameter{Schema: "staging"}, "pgx")
	assert.Equal(t, "pgx", d.DriverName())
	assert.Equal(t, `"staging"."orders"`, d.TableName("orders"))
	assert.Equal(t, "$3", d.Placeholder(3))
	assert.Equal(t, `DROP TABLE IF EXISTS "staging"."orders"`, d.DropTableSQL("orders"))

	w := common.NewSQLTableWriter(d, common.TableOptions{})
	cols := common.MustColumns("order_id", "order_status")
	assert.Equal(t,
		`INSERT INTO "staging"."orders" ("order_id", "order_status") VALUES ($1, $2)`,
		w.InsertSQL("orders", cols))
	assert.Equal(t,
		`CREATE TABLE "staging"."orders" ("order_id" TEXT, "order_status" TEXT)`,
		w.CreateTableSQL("orders", cols))
}

func TestNewWriters(t *testing.T) {
	pq := NewPostgreSQLWriter(&Parameter{})
	assert.Equal(t, "postgres", pq.Dialect().DriverName())

	pgx := NewPgxWriter(&Parameter{})
	assert.Equal(t, "pgx", pgx.Dialect().DriverName())
	assert.Equal(t, `"public"."t"`, pgx.Dialect().TableName("t"))
}
