package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minicrm/backoffice/internal/config"
	customerapp "github.com/minicrm/backoffice/internal/customer/application"
	customerpg "github.com/minicrm/backoffice/internal/customer/infrastructure/postgres"
	"github.com/minicrm/backoffice/internal/etl"
	productapp "github.com/minicrm/backoffice/internal/product/application"
	productpg "github.com/minicrm/backoffice/internal/product/infrastructure/postgres"
	"github.com/minicrm/backoffice/pkg/logging"
	"github.com/minicrm/backoffice/pkg/migrate"
)

func main() {
	customersPath := flag.String("customers", "", "customers CSV file")
	productsPath := flag.String("products", "", "products CSV file")
	faultyDir := flag.String("faulty-dir", "logs", "directory for rejected-row CSV files")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if *customersPath == "" && *productsPath == "" {
		log.Error("nothing to import, pass -customers and/or -products")
		os.Exit(2)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrate.Run(ctx, log, pool); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	customers := customerapp.NewService(log, customerpg.NewRepository(log, pool))
	products := productapp.NewService(log, productpg.NewRepository(log, pool))

	if *customersPath != "" {
		if err := importFile(ctx, log, *customersPath, *faultyDir, "customers", func(row etl.Row) error {
			_, err := customers.Create(ctx, etl.CustomerInput(row))
			return err
		}); err != nil {
			log.Error("customer import failed", "err", err)
			os.Exit(1)
		}
	}
	if *productsPath != "" {
		if err := importFile(ctx, log, *productsPath, *faultyDir, "products", func(row etl.Row) error {
			_, err := products.Create(ctx, etl.ProductInput(row))
			return err
		}); err != nil {
			log.Error("product import failed", "err", err)
			os.Exit(1)
		}
	}
}

type faultyRow struct {
	row    etl.Row
	reason string
}

func importFile(ctx context.Context, log *slog.Logger, path, faultyDir, entity string, insert func(etl.Row) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	var imported int
	var faulty []faultyRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		row := etl.Row{}
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := insert(row); err != nil {
			faulty = append(faulty, faultyRow{row: row, reason: err.Error()})
			continue
		}
		imported++
	}

	log.Info("import finished", "entity", entity, "imported", imported, "rejected", len(faulty))
	if len(faulty) == 0 {
		return nil
	}
	return writeFaultyRows(log, faultyDir, entity, header, faulty)
}

// writeFaultyRows exports rejected rows with an ERROR_REASON column so they
// can be fixed up and re-imported.
func writeFaultyRows(log *slog.Logger, dir, entity string, header []string, faulty []faultyRow) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("faulty_rows_%s_%s.csv", entity, time.Now().UTC().Format("2006-01-02T15-04-05"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append(append([]string{}, header...), "ERROR_REASON")); err != nil {
		return err
	}
	for _, fr := range faulty {
		record := make([]string, 0, len(header)+1)
		for _, col := range header {
			record = append(record, fr.row[col])
		}
		record = append(record, fr.reason)
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Info("faulty rows exported", "entity", entity, "count", len(faulty), "file", path)
	return nil
}
