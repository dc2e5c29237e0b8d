package backup

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/shopadmin/shop-admin/internal/config"
)

// DestPlaceholder is replaced with the target file in backup.command.
const DestPlaceholder = "{{dest}}"

// Dumper writes a snapshot of the database to a file.
type Dumper interface {
	// Name is used as the prefix of the backup file.
	Name() string
	// Ext is the extension of the uncompressed dump, including the dot.
	Ext() string
	Dump(ctx context.Context, dest string) error
}

// NewDumper picks the dumper for the configured engine. A non-empty
// backup.command overrides the built-in tools.
func NewDumper(cfg *config.Config, db *gorm.DB) Dumper {
	conn := connection(cfg.DB)

	if cfg.Backup.Command != "" {
		return &CommandDumper{name: conn.name, command: cfg.Backup.Command}
	}

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return newPgDump(conn, cfg.DB.URL)
	case config.EngineSQLite:
		return &SQLiteDumper{db: db, name: conn.name}
	default:
		return newMySQLDump(conn)
	}
}

// conn holds the connection fields the dump tools need.
type conn struct {
	host     string
	port     int
	user     string
	password string
	name     string
}

func connection(db config.DB) conn {
	c := conn{host: db.Host, port: db.Port, user: db.User, password: db.Password, name: db.Name}

	if db.URL != "" {
		if u, err := url.Parse(db.URL); err == nil && u.Host != "" {
			c.host = u.Hostname()
			c.port, _ = strconv.Atoi(u.Port())
			c.user = u.User.Username()
			c.password, _ = u.User.Password()
			c.name = strings.TrimPrefix(u.Path, "/")
		}
	}

	if db.GormEngine == config.EngineSQLite {
		path := db.Path
		if path == "" {
			path = db.Name
		}

		c.name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if c.name == "" || c.name == "." {
		c.name = "database"
	}

	return c
}

// ExecDumper runs an external dump tool.
type ExecDumper struct {
	name string
	ext  string
	bin  string
	args func(dest string) []string
	env  []string
}

// Name implements Dumper.
func (d *ExecDumper) Name() string { return d.name }

// Ext implements Dumper.
func (d *ExecDumper) Ext() string { return d.ext }

// Dump implements Dumper.
func (d *ExecDumper) Dump(ctx context.Context, dest string) error {
	return run(ctx, exec.CommandContext(ctx, d.bin, d.args(dest)...), d.env)
}

func newMySQLDump(c conn) *ExecDumper {
	return &ExecDumper{
		name: c.name,
		ext:  ".sql",
		bin:  "mysqldump",
		args: func(dest string) []string {
			args := []string{"--single-transaction", "--routines", "--host=" + c.host, "--user=" + c.user}
			if c.port != 0 {
				args = append(args, "--port="+strconv.Itoa(c.port))
			}

			return append(args, "--result-file="+dest, c.name)
		},
		// keeps the password off the process list
		env: []string{"MYSQL_PWD=" + c.password},
	}
}

func newPgDump(c conn, rawURL string) *ExecDumper {
	d := &ExecDumper{
		name: c.name,
		ext:  ".sql",
		bin:  "pg_dump",
		env:  []string{"PGPASSWORD=" + c.password},
	}

	d.args = func(dest string) []string {
		if rawURL != "" {
			return []string{"--dbname=" + rawURL, "--file=" + dest}
		}

		args := []string{"--host=" + c.host, "--username=" + c.user, "--file=" + dest}
		if c.port != 0 {
			args = append(args, "--port="+strconv.Itoa(c.port))
		}

		return append(args, c.name)
	}

	return d
}

// CommandDumper runs a user supplied shell command.
type CommandDumper struct {
	name    string
	command string
}

// Name implements Dumper.
func (d *CommandDumper) Name() string { return d.name }

// Ext implements Dumper.
func (d *CommandDumper) Ext() string { return ".dump" }

// Dump implements Dumper.
func (d *CommandDumper) Dump(ctx context.Context, dest string) error {
	line := strings.ReplaceAll(d.command, DestPlaceholder, shellQuote(dest))

	return run(ctx, exec.CommandContext(ctx, "sh", "-c", line), nil)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// SQLiteDumper copies the database with VACUUM INTO, no external tool needed.
type SQLiteDumper struct {
	db   *gorm.DB
	name string
}

// Name implements Dumper.
func (d *SQLiteDumper) Name() string { return d.name }

// Ext implements Dumper.
func (d *SQLiteDumper) Ext() string { return ".db" }

// Dump implements Dumper.
func (d *SQLiteDumper) Dump(ctx context.Context, dest string) error {
	if err := d.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return errors.Wrap(err, "vacuum into failed")
	}

	return nil
}

func run(ctx context.Context, cmd *exec.Cmd, env []string) error {
	var stderr bytes.Buffer

	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), env...)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "dump aborted")
		}

		return fmt.Errorf("%s failed: %w: %s", filepath.Base(cmd.Path), err, strings.TrimSpace(stderr.String()))
	}

	return nil
}
