// Command ledgerctl - консольный интерфейс к реестру заказов.
//
//	ledgerctl [-config sabor.yaml] [-driver csv] [-path dados/pedidos.csv] <command> [flags]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sabor/internal/app"
	"github.com/vladislavdragonenkov/sabor/internal/domain"
	"github.com/vladislavdragonenkov/sabor/internal/export"
	"github.com/vladislavdragonenkov/sabor/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/sabor/internal/tabular"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	defaultWatchGroup = "ledgerctl-watch"
)

// usageError - ошибка в аргументах команды.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// env - общее окружение команд.
type env struct {
	cfg    app.Config
	logger *log.Entry
	deps   *app.Dependencies
	out    io.Writer
}

type command struct {
	summary string
	// ledger - команде нужен загруженный реестр.
	ledger bool
	run    func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"add":     {summary: "register a new order", ledger: true, run: cmdAdd},
	"list":    {summary: "list orders, optionally filtered by customer name (-q)", ledger: true, run: cmdList},
	"show":    {summary: "print one order", ledger: true, run: cmdShow},
	"update":  {summary: "edit an order; omitted flags keep current values", ledger: true, run: cmdUpdate},
	"delete":  {summary: "remove an order", ledger: true, run: cmdDelete},
	"export":  {summary: "write csv, xlsx, docx-slip or docx-all", ledger: true, run: cmdExport},
	"slips":   {summary: "write one docx slip per order", ledger: true, run: cmdSlips},
	"watch":   {summary: "print ledger events from kafka until interrupted", run: cmdWatch},
	"formats": {summary: "list export formats", run: cmdFormats},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("ledgerctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML config file (default: sabor.yaml, /etc/sabor/sabor.yaml)")
	driver := global.String("driver", "", "storage driver override: memory|csv|postgres")
	path := global.String("path", "", "CSV ledger file override")
	verbose := global.Bool("v", false, "verbose logging")
	global.Usage = func() { printUsage(stderr, global) }

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if global.NArg() == 0 {
		printUsage(stderr, global)
		return exitUsage
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "ledgerctl: unknown command %q\n", name)
		printUsage(stderr, global)
		return exitUsage
	}

	cfg, err := loadConfig(*configPath, *driver, *path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "ledgerctl: %v\n", err)
		return exitError
	}

	e := &env{cfg: cfg, logger: newLogger(stderr, *verbose), out: stdout}
	if cmd.ledger {
		deps, err := app.NewDependencies(ctx, cfg, e.logger)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "ledgerctl: %v\n", err)
			return exitError
		}
		defer func() {
			if err := deps.Close(); err != nil {
				e.logger.WithError(err).Warn("failed to close storage")
			}
		}()
		e.deps = deps
	}

	if err := cmd.run(ctx, e, global.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		_, _ = fmt.Fprintf(stderr, "ledgerctl %s: %v\n", name, err)
		var uerr usageError
		if errors.As(err, &uerr) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func loadConfig(path, driver, csvPath string) (app.Config, error) {
	var files []string
	if path != "" {
		files = []string{path}
	}
	cfg, err := app.LoadConfig(files...)
	if err != nil {
		return app.Config{}, err
	}
	if driver != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(driver))
	}
	if csvPath != "" {
		cfg.StoragePath = csvPath
	}
	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, verbose bool) *log.Entry {
	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	logger.SetLevel(log.WarnLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger.WithField("component", "ledgerctl")
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	_, _ = fmt.Fprintln(w, "usage: ledgerctl [global flags] <command> [flags]")
	_, _ = fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
	_, _ = fmt.Fprintln(w, "\nglobal flags:")
	global.SetOutput(w)
	global.PrintDefaults()
}

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet("ledgerctl "+name, flag.ContinueOnError)
	fs.SetOutput(e.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{msg: err.Error()}
	}
	if fs.NArg() > 0 {
		return usageError{msg: fmt.Sprintf("unexpected arguments: %s", strings.Join(fs.Args(), " "))}
	}
	return nil
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return usageError{msg: "-id is required"}
	}
	return nil
}

// flush публикует события после изменения реестра, если настроен Kafka.
func flush(ctx context.Context, e *env) {
	res := e.deps.Flush(ctx)
	if res.Failed > 0 {
		e.logger.WithField("failed", res.Failed).Warn("some ledger events were not published")
	}
}

func cmdAdd(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("add", e)
	name := fs.String("name", "", "customer name")
	address := fs.String("address", "", "delivery address (optional)")
	products := fs.String("products", "", `comma separated products, e.g. "Pão, Bolo"`)
	quantities := fs.String("quantities", "", `comma separated quantities, e.g. "2, 1"`)
	if err := parse(fs, args); err != nil {
		return err
	}

	rec, err := e.deps.Ledger.Create(ctx, domain.ParseCandidate(*name, *address, *products, *quantities))
	if err != nil {
		return err
	}
	flush(ctx, e)
	_, err = fmt.Fprintf(e.out, "created %s\n", rec.ID)
	return err
}

func cmdList(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("list", e)
	query := fs.String("q", "", "case-insensitive substring of the customer name")
	if err := parse(fs, args); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tCUSTOMER\tADDRESS\tPRODUCTS\tQUANTITIES\tCREATED")
	n := 0
	for rec := range e.deps.Ledger.Search(*query) {
		n++
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.CustomerName, rec.Address,
			domain.JoinList(rec.Products), tabular.QuantitiesCell(rec.Quantities),
			tabular.FormatTime(rec.CreatedAt))
	}
	if n == 0 {
		_, err := fmt.Fprintln(e.out, "no orders found")
		return err
	}
	return tw.Flush()
}

func cmdShow(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("show", e)
	id := fs.String("id", "", "order id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(*id); err != nil {
		return err
	}

	rec, err := e.deps.Ledger.Get(*id)
	if err != nil {
		return err
	}
	printRecord(e.out, rec)
	return nil
}

func printRecord(w io.Writer, rec domain.OrderRecord) {
	_, _ = fmt.Fprintf(w, "id:        %s\n", rec.ID)
	_, _ = fmt.Fprintf(w, "customer:  %s\n", rec.CustomerName)
	_, _ = fmt.Fprintf(w, "address:   %s\n", rec.Address)
	_, _ = fmt.Fprintf(w, "created:   %s\n", tabular.FormatTime(rec.CreatedAt))
	for _, line := range rec.Lines() {
		_, _ = fmt.Fprintf(w, "  %3d x %s\n", line.Quantity, line.Product)
	}
	_, _ = fmt.Fprintf(w, "total:     %d\n", rec.TotalUnits())
}

func cmdUpdate(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("update", e)
	id := fs.String("id", "", "order id")
	name := fs.String("name", "", "customer name")
	address := fs.String("address", "", "delivery address")
	products := fs.String("products", "", "comma separated products")
	quantities := fs.String("quantities", "", "comma separated quantities")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(*id); err != nil {
		return err
	}

	current, err := e.deps.Ledger.Get(*id)
	if err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["name"] {
		*name = current.CustomerName
	}
	if !set["address"] {
		*address = current.Address
	}
	if !set["products"] {
		*products = domain.JoinList(current.Products)
	}
	if !set["quantities"] {
		*quantities = tabular.QuantitiesCell(current.Quantities)
	}

	rec, err := e.deps.Ledger.Update(ctx, *id, domain.ParseCandidate(*name, *address, *products, *quantities))
	if err != nil {
		return err
	}
	flush(ctx, e)
	_, err = fmt.Fprintf(e.out, "updated %s\n", rec.ID)
	return err
}

func cmdDelete(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("delete", e)
	id := fs.String("id", "", "order id")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := requireID(*id); err != nil {
		return err
	}

	if err := e.deps.Ledger.Delete(ctx, *id); err != nil {
		return err
	}
	flush(ctx, e)
	_, err := fmt.Fprintf(e.out, "deleted %s\n", *id)
	return err
}

func cmdExport(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("export", e)
	formatName := fs.String("format", string(export.FormatCSV), "csv|xlsx|docx-slip|docx-all")
	dir := fs.String("out", e.cfg.ExportDir, "output directory")
	id := fs.String("id", "", "export a single order (required for docx-slip)")
	if err := parse(fs, args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	if format == export.FormatDocxSlip {
		if err := requireID(*id); err != nil {
			return err
		}
	}

	records := e.deps.Ledger.All()
	if *id != "" {
		rec, err := e.deps.Ledger.Get(*id)
		if err != nil {
			return err
		}
		records = []domain.OrderRecord{rec}
	}

	artifact, err := export.Render(format, records)
	if err != nil {
		return err
	}
	path, err := export.WriteArtifact(*dir, artifact)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.out, "wrote %s (%d orders)\n", path, len(records))
	return err
}

func cmdSlips(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("slips", e)
	dir := fs.String("dir", e.cfg.ExportDir, "output directory")
	if err := parse(fs, args); err != nil {
		return err
	}

	paths, err := export.WriteSlips(ctx, *dir, e.deps.Ledger.All())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(e.out, "wrote %d slips to %s\n", len(paths), *dir)
	return err
}

func cmdFormats(_ context.Context, e *env, args []string) error {
	fs := newFlagSet("formats", e)
	if err := parse(fs, args); err != nil {
		return err
	}
	for _, f := range export.Formats() {
		if _, err := fmt.Fprintln(e.out, f); err != nil {
			return err
		}
	}
	return nil
}

func cmdWatch(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet("watch", e)
	group := fs.String("group", defaultWatchGroup, "consumer group id")
	topic := fs.String("topic", e.cfg.KafkaTopic, "ledger events topic")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !e.cfg.NotificationsEnabled() {
		return errors.New("kafka brokers are not configured (SABOR_KAFKA_BROKERS)")
	}

	consumer, err := kafka.NewConsumer(e.cfg.KafkaBrokers, *group, []string{*topic}, func(_ context.Context, event domain.LedgerEvent) error {
		_, err := fmt.Fprintln(e.out, formatEvent(event))
		return err
	})
	if err != nil {
		return err
	}
	consumer.Start(ctx)
	<-ctx.Done()
	return consumer.Stop()
}

func formatEvent(event domain.LedgerEvent) string {
	line := fmt.Sprintf("%s %-14s %s %s",
		tabular.FormatTime(event.Occurred), event.Type, event.OrderID, event.CustomerName)
	if len(event.Products) > 0 {
		line += " [" + domain.JoinList(event.Products) + "]"
	}
	return line
}
