package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shopadmin/shop-admin/internal/config"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name string
		db   config.DB
		want string
	}{
		{
			name: "mysql fields",
			db: config.DB{
				GormEngine: config.EngineMySQL,
				Host:       "localhost",
				Port:       3306,
				User:       "shop",
				Password:   "secret",
				Name:       "shop",
				Extras:     "parseTime=True",
			},
			want: "shop:secret@tcp(localhost:3306)/shop?parseTime=True",
		},
		{
			name: "mysql default extras",
			db: config.DB{
				Host: "db",
				Port: 3306,
				User: "u",
				Name: "n",
			},
			want: "u:@tcp(db:3306)/n?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name: "postgres fields",
			db: config.DB{
				GormEngine: config.EnginePostgres,
				Host:       "pg",
				Port:       5432,
				User:       "shop",
				Password:   "pw",
				Name:       "shop",
				Extras:     "sslmode=disable",
			},
			want: "host=pg port=5432 user=shop password=pw dbname=shop sslmode=disable",
		},
		{
			name: "sqlite default path",
			db:   config.DB{GormEngine: config.EngineSQLite},
			want: "shop-admin.db",
		},
		{
			name: "sqlite with extras",
			db:   config.DB{GormEngine: config.EngineSQLite, Path: "/tmp/x.db", Extras: "_pragma=foreign_keys(1)"},
			want: "/tmp/x.db?_pragma=foreign_keys(1)",
		},
		{
			name: "url wins",
			db: config.DB{
				GormEngine: config.EnginePostgres,
				Host:       "ignored",
				URL:        "postgres://u:p@pg:5432/shop?sslmode=disable",
			},
			want: "postgres://u:p@pg:5432/shop?sslmode=disable",
		},
		{
			name: "mysql url is converted",
			db: config.DB{
				GormEngine: config.EngineMySQL,
				URL:        "mysql://u:p@db:3306/shop",
			},
			want: "u:p@tcp(db:3306)/shop?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Create(&config.Config{DB: tt.db}))
		})
	}
}
