// Command journal is the CLI for Juniper Journal. It runs the API server,
// exposes the Scripture reference tools and backs up or restores a user's
// journal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperJournal/core/scripture"
	"github.com/FocuswithJustin/JuniperJournal/core/sqlite"
	"github.com/FocuswithJustin/JuniperJournal/internal/api"
	"github.com/FocuswithJustin/JuniperJournal/internal/archive"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
	"github.com/FocuswithJustin/JuniperJournal/internal/store"
	"github.com/FocuswithJustin/JuniperJournal/internal/validation"
)

const version = api.Version

// CLI defines the command-line interface for journal.
type CLI struct {
	Serve   ServeCmd   `cmd:"" help:"Start the REST API server"`
	Parse   ParseCmd   `cmd:"" help:"Parse a Scripture reference"`
	Format  FormatCmd  `cmd:"" help:"Format references given as JSON"`
	Resolve ResolveCmd `cmd:"" help:"Resolve a book name or abbreviation"`
	Books   BooksCmd   `cmd:"" help:"List the books of the Bible"`
	Export  ExportCmd  `cmd:"" help:"Export a user's journal and readings to a backup"`
	Import  ImportCmd  `cmd:"" help:"Import a backup into a user's account"`
	Token   TokenCmd   `cmd:"" help:"Issue an API bearer token for a user"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ServeCmd starts the API server. Flags override JOURNAL_* environment
// variables.
type ServeCmd struct {
	Port       int    `help:"HTTP server port (JOURNAL_PORT)"`
	DB         string `help:"SQLite database path (JOURNAL_DB_PATH)" type:"path"`
	NoAuth     bool   `name:"no-auth" help:"Disable authentication; every request runs as the dev user"`
	TrustProxy bool   `name:"trust-proxy" help:"Rate limit on X-Forwarded-For set by a reverse proxy (JOURNAL_TRUST_PROXY)"`
	LogLevel   string `help:"Log level: debug, info, warn, error (JOURNAL_LOG_LEVEL)"`
	LogFormat  string `help:"Log format: json or text (JOURNAL_LOG_FORMAT)"`
}

func (c *ServeCmd) Run() error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.DB != "" {
		cfg.DBPath = c.DB
	}
	if c.NoAuth {
		cfg.Auth.Disabled = true
	}
	if c.TrustProxy {
		cfg.TrustProxy = true
	}
	if c.LogLevel != "" {
		cfg.LogLevel = c.LogLevel
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := api.NewServer(cfg, st)
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}

// ParseCmd parses free text into a reference.
type ParseCmd struct {
	Text []string `arg:"" help:"Reference text, e.g. John 3:16"`
	List bool     `short:"l" help:"Accept a comma- or semicolon-separated list"`
	JSON bool     `name:"json" help:"Print the structured reference as JSON"`
}

func (c *ParseCmd) Run(ctx *kong.Context) error {
	text := strings.Join(c.Text, " ")
	var refs []scripture.Reference
	if c.List {
		var ok bool
		if refs, ok = scripture.ParseList(text); !ok {
			return unparseable(text)
		}
	} else {
		ref, ok := scripture.Parse(text)
		if !ok {
			return unparseable(text)
		}
		refs = []scripture.Reference{ref}
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		if c.List {
			return enc.Encode(refs)
		}
		return enc.Encode(refs[0])
	}
	for _, ref := range refs {
		fmt.Fprintf(ctx.Stdout, "%s\t%s\n", scripture.Format(ref), ref.Kind())
	}
	return nil
}

func unparseable(text string) error {
	return fmt.Errorf("could not parse %q. Try format: Book Chapter:Verse", text)
}

// FormatCmd renders structured references.
type FormatCmd struct {
	JSON string `arg:"" help:"A reference object or an array of them, or - for stdin"`
}

func (c *FormatCmd) Run(ctx *kong.Context) error {
	data := []byte(c.JSON)
	if c.JSON == "-" {
		var err error
		if data, err = io.ReadAll(os.Stdin); err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	data = []byte(strings.TrimSpace(string(data)))

	var refs []scripture.Reference
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &refs); err != nil {
			return fmt.Errorf("decode references: %w", err)
		}
	} else {
		var ref scripture.Reference
		if err := json.Unmarshal(data, &ref); err != nil {
			return fmt.Errorf("decode reference: %w", err)
		}
		refs = []scripture.Reference{ref}
	}
	fmt.Fprintln(ctx.Stdout, scripture.FormatMany(refs))
	return nil
}

// ResolveCmd maps a book name or abbreviation to its canonical name.
type ResolveCmd struct {
	Name []string `arg:"" help:"Book name or abbreviation"`
}

func (c *ResolveCmd) Run(ctx *kong.Context) error {
	q := strings.Join(c.Name, " ")
	book, ok := scripture.Resolve(q)
	if !ok {
		return fmt.Errorf("no book matches %q", q)
	}
	fmt.Fprintln(ctx.Stdout, book)
	return nil
}

// BooksCmd lists the registry.
type BooksCmd struct {
	Testament string `help:"Only list OT or NT books"`
}

func (c *BooksCmd) Run(ctx *kong.Context) error {
	want := scripture.Testament(strings.ToUpper(c.Testament))
	if want != "" && want != scripture.OldTestament && want != scripture.NewTestament {
		return fmt.Errorf("testament must be OT or NT, got %q", c.Testament)
	}
	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tBOOK\tTESTAMENT\tCHAPTERS")
	for _, b := range scripture.Catalog() {
		if want != "" && b.Testament != want {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", b.Order, b.Name, b.Testament, b.Chapters)
	}
	return w.Flush()
}

// ExportCmd writes a user's data to a .tar.xz or .tar.gz backup.
type ExportCmd struct {
	DB   string `help:"SQLite database path" default:"journal.db" env:"JOURNAL_DB_PATH" type:"path"`
	User string `required:"" help:"User id to export"`
	Out  string `arg:"" help:"Output file (.tar.xz, .tar.gz or .tgz)"`
}

func (c *ExportCmd) Run(ctx *kong.Context) error {
	if err := validation.Path(c.Out); err != nil {
		return fmt.Errorf("output path: %w", err)
	}
	if err := validation.Filename(filepath.Base(c.Out)); err != nil {
		return fmt.Errorf("output path: %w", err)
	}
	if _, err := archive.CompressionFor(c.Out); err != nil {
		return err
	}

	bg := context.Background()
	st, err := store.Open(bg, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.ListEntries(bg, c.User)
	if err != nil {
		return err
	}
	readings, err := st.ListReadings(bg, c.User)
	if err != nil {
		return err
	}
	b := archive.Backup{
		Manifest: archive.Manifest{UserID: c.User, ExportedAt: time.Now()},
		Entries:  entries,
		Readings: readings,
	}
	if err := archive.WriteFile(c.Out, b); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Stdout, "exported %d entries and %d readings to %s\n", len(entries), len(readings), c.Out)
	return nil
}

// ImportCmd restores a backup into a user's account.
type ImportCmd struct {
	DB   string `help:"SQLite database path" default:"journal.db" env:"JOURNAL_DB_PATH" type:"path"`
	User string `help:"User id to import into (defaults to the backup's user)"`
	Path string `arg:"" help:"Backup file" type:"existingfile"`
}

func (c *ImportCmd) Run(ctx *kong.Context) error {
	b, err := archive.ReadFile(c.Path)
	if err != nil {
		return err
	}
	user := c.User
	if user == "" {
		user = b.Manifest.UserID
	}

	bg := context.Background()
	st, err := store.Open(bg, c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.ImportEntries(bg, user, b.Entries)
	if err != nil {
		return err
	}
	readings, err := st.ImportReadings(bg, user, b.Readings)
	if err != nil {
		return err
	}
	for _, c := range append(entries.Conflicts, readings.Conflicts...) {
		fmt.Fprintf(ctx.Stdout, "skipped: %v\n", c)
	}
	fmt.Fprintf(ctx.Stdout, "imported %d entries and %d readings for %s\n", entries.Written, readings.Written, user)
	return nil
}

// TokenCmd issues a bearer token signed with JOURNAL_AUTH_SECRET.
type TokenCmd struct {
	User string        `arg:"" help:"User id (token subject)"`
	TTL  time.Duration `help:"Token lifetime" default:"720h"`
}

func (c *TokenCmd) Run(ctx *kong.Context) error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	auth := cfg.Auth
	auth.Disabled = false
	if err := auth.Validate(); err != nil {
		return err
	}
	tok, err := api.IssueToken(auth, c.User, c.TTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Stdout, tok)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(ctx.Stdout, "journal version %s\n", version)
	fmt.Fprintf(ctx.Stdout, "sqlite driver: %s (%s)\n", info.Package, info.DriverType)
	return nil
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("journal"),
		kong.Description("Juniper Journal - Scripture journaling and Bible reading log"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, options...)
	return kong.New(cli, options...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	err = ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}

