// Command ledgerctl is an administrative tool for ledger entries: it can
// show, list, modify and delete entries directly, keeping stock quantities
// consistent through the same effect engine the API uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/category"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/stock"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/ledger_repo"
	"stockledger/internal/infrastructure/storage/postgres/stock_repo"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()
	svc, pool, err := setup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var cmdErr error
	switch os.Args[1] {
	case "show":
		cmdErr = runShow(ctx, svc, os.Args[2:])
	case "list":
		cmdErr = runList(ctx, svc, os.Args[2:])
	case "modify":
		cmdErr = runModify(ctx, svc, os.Args[2:])
	case "delete":
		cmdErr = runDelete(ctx, svc, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], cmdErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ledgerctl <command> [flags]

commands:
  show    --id <uuid>                      print one entry with its decoded items
  list    [--warehouse] [--type] [--day] [--limit] [--offset]
  modify  --id <uuid> [--quantity] [--user] [--notes] [--date]
  delete  --id <uuid> --confirm=DELETE     reverse the stock effect and remove the entry`)
}

func setup(ctx context.Context) (*ledger.Service, *postgres.Pool, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL not set")
	}

	poolCfg := postgres.DefaultPoolConfig(dsn)
	poolCfg.MaxConns = 2
	poolCfg.MinConns = 1

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, nil, err
	}

	txManager := postgres.NewTxManager(pool)
	stockService := stock.NewService(stock_repo.NewItemRepo(txManager))
	warehouseService := warehouse.NewService(catalog_repo.NewWarehouseRepo(txManager), stockService)
	categoryService := category.NewService(catalog_repo.NewCategoryRepo(txManager))

	svc := ledger.NewService(
		ledger_repo.NewEntryRepo(txManager),
		stockService,
		categoryService,
		warehouseService,
		txManager,
	)
	return svc, pool, nil
}

func runShow(ctx context.Context, svc *ledger.Service, args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	entryID := fs.String("id", "", "Required: ledger entry id (uuid)")
	_ = fs.Parse(args)

	parsed, err := parseID(*entryID)
	if err != nil {
		return err
	}

	e, err := svc.GetByID(ctx, parsed)
	if err != nil {
		return err
	}
	return printEntry(e)
}

func runList(ctx context.Context, svc *ledger.Service, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	warehouseID := fs.String("warehouse", "", "Filter: warehouse id (uuid, either side of a transfer)")
	entryType := fs.String("type", "", "Filter: entry type (IN, OUT, ADJUST, TRANSFER)")
	day := fs.String("day", "", "Filter: calendar day (2006-01-02)")
	limit := fs.Int("limit", 50, "Max entries to print")
	offset := fs.Int("offset", 0, "Entries to skip")
	_ = fs.Parse(args)

	filter := ledger.ListFilter{Limit: *limit, Offset: *offset}
	if *warehouseID != "" {
		parsed, err := parseID(*warehouseID)
		if err != nil {
			return err
		}
		filter.WarehouseID = &parsed
	}
	if *entryType != "" {
		t := ledger.EntryType(strings.ToUpper(*entryType))
		filter.Type = &t
	}
	if *day != "" {
		parsed, err := time.Parse("2006-01-02", *day)
		if err != nil {
			return fmt.Errorf("invalid --day: %w", err)
		}
		filter.Day = &parsed
	}

	entries, err := svc.List(ctx, filter)
	if err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		reverted := ""
		if snap := ledger.DecodeSnapshot(e.Snapshot, e.Quantity); snap.Reverted {
			reverted = " [REVERTED]"
		}
		fmt.Printf("%s  %s  %-8s  qty=%-6d  user=%s%s\n",
			e.ID, e.Date.Format("2006-01-02 15:04:05"), e.Type, e.Quantity, e.Actor, reverted)
	}
	fmt.Printf("%d entries\n", len(entries))
	return nil
}

func runModify(ctx context.Context, svc *ledger.Service, args []string) error {
	fs := flag.NewFlagSet("modify", flag.ExitOnError)
	entryID := fs.String("id", "", "Required: ledger entry id (uuid)")
	quantity := fs.Int64("quantity", 0, "New signed aggregate quantity")
	quantitySet := false
	actor := fs.String("user", "", "New user name")
	notes := fs.String("notes", "", "New notes")
	date := fs.String("date", "", "New entry date (RFC 3339)")
	_ = fs.Parse(args)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "quantity" {
			quantitySet = true
		}
	})

	parsed, err := parseID(*entryID)
	if err != nil {
		return err
	}

	var input ledger.ModifyInput
	if quantitySet {
		input.Quantity = quantity
	}
	if *actor != "" {
		input.Actor = actor
	}
	if *notes != "" {
		input.Notes = notes
	}
	if *date != "" {
		parsedDate, err := time.Parse(time.RFC3339, *date)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		input.Date = &parsedDate
	}
	if input.Quantity == nil && input.Actor == nil && input.Notes == nil && input.Date == nil {
		return fmt.Errorf("nothing to modify")
	}

	e, err := svc.Modify(ctx, parsed, input)
	if err != nil {
		return err
	}

	fmt.Println("entry modified")
	return printEntry(e)
}

func runDelete(ctx context.Context, svc *ledger.Service, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	entryID := fs.String("id", "", "Required: ledger entry id (uuid)")
	confirm := fs.String("confirm", "", "Type DELETE to proceed")
	_ = fs.Parse(args)

	parsed, err := parseID(*entryID)
	if err != nil {
		return err
	}

	e, err := svc.GetByID(ctx, parsed)
	if err != nil {
		return err
	}
	if err := printEntry(e); err != nil {
		return err
	}

	if *confirm != "DELETE" {
		return fmt.Errorf("set --confirm=DELETE to proceed")
	}

	if err := svc.Delete(ctx, parsed); err != nil {
		return err
	}

	fmt.Println("entry deleted, stock effect reversed")
	return nil
}

func parseID(raw string) (id.ID, error) {
	if strings.TrimSpace(raw) == "" {
		return id.Nil(), fmt.Errorf("--id is required")
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		return id.Nil(), fmt.Errorf("invalid --id: %w", err)
	}
	return parsed, nil
}

func printEntry(e *ledger.Entry) error {
	snap := ledger.DecodeSnapshot(e.Snapshot, e.Quantity)

	out := map[string]any{
		"id":        e.ID.String(),
		"warehouse": e.WarehouseID.String(),
		"type":      e.Type,
		"quantity":  e.Quantity,
		"date":      e.Date.Format(time.RFC3339),
		"user":      e.Actor,
		"notes":     e.Notes,
		"items":     snap.Items,
		"reverted":  snap.Reverted,
	}
	if e.RelatedWarehouseID != nil {
		out["relatedWarehouse"] = e.RelatedWarehouseID.String()
	}
	if snap.Reverted {
		out["revertedBy"] = snap.RevertedBy
		out["revertedAt"] = snap.RevertedAt
		out["revertNotes"] = snap.RevertNotes
		out["originalType"] = snap.OriginalType
		out["originalTotalQuantity"] = snap.OriginalTotalQuantity
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
