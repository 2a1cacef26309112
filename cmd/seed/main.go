// Command seed fills an empty catalog with a handful of well-known EVs so a
// fresh database has something to browse. Names already present are left
// untouched, so it is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/EVCatalog/internal/domain"
	"github.com/utafrali/EVCatalog/internal/repository/postgres"
	"github.com/utafrali/EVCatalog/internal/service"
	"github.com/utafrali/EVCatalog/migrations"
	pkgconfig "github.com/utafrali/EVCatalog/pkg/config"
	"github.com/utafrali/EVCatalog/pkg/database"
	apperrors "github.com/utafrali/EVCatalog/pkg/errors"
	"github.com/utafrali/EVCatalog/pkg/logger"
)

// seedConfig reads the same database variables as the server without
// requiring its identity or broker settings.
type seedConfig struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"evcatalog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"evcatalog_secret"`
	PostgresDB   string `env:"EV_DB_NAME" envDefault:"ev_catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
}

var demoCatalog = []domain.EVInput{
	{Name: "Model 3 Long Range", Manufacturer: "Tesla", Year: 2023, BatterySize: 78.1, RangeWLTP: 629, Cost: 49990, Power: 366},
	{Name: "Model Y Performance", Manufacturer: "Tesla", Year: 2023, BatterySize: 78.1, RangeWLTP: 514, Cost: 58990, Power: 393},
	{Name: "ID.3 Pro S", Manufacturer: "Volkswagen", Year: 2023, BatterySize: 77, RangeWLTP: 557, Cost: 44990, Power: 150},
	{Name: "ID.4 GTX", Manufacturer: "Volkswagen", Year: 2022, BatterySize: 77, RangeWLTP: 480, Cost: 53990, Power: 220},
	{Name: "EV6 GT-Line", Manufacturer: "Kia", Year: 2022, BatterySize: 77.4, RangeWLTP: 528, Cost: 51990, Power: 239},
	{Name: "Ioniq 5 Premium", Manufacturer: "Hyundai", Year: 2022, BatterySize: 72.6, RangeWLTP: 481, Cost: 46990, Power: 225},
	{Name: "Taycan 4S", Manufacturer: "Porsche", Year: 2021, BatterySize: 93.4, RangeWLTP: 463, Cost: 105000, Power: 390},
	{Name: "i4 eDrive40", Manufacturer: "BMW", Year: 2022, BatterySize: 83.9, RangeWLTP: 590, Cost: 57900, Power: 250},
	{Name: "Leaf e+", Manufacturer: "Nissan", Year: 2021, BatterySize: 62, RangeWLTP: 385, Cost: 36990, Power: 160},
	{Name: "Zoe R135", Manufacturer: "Renault", Year: 2021, BatterySize: 52, RangeWLTP: 386, Cost: 32990, Power: 100},
}

func main() {
	var cfg seedConfig
	if err := pkgconfig.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("ev-catalog-seed", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg seedConfig, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, &database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        2,
		MaxConnLifetime: 10 * time.Minute,
		MaxConnIdleTime: time.Minute,
	}, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS(), log); err != nil {
		return err
	}

	catalog := service.NewCatalogService(postgres.NewEVRepository(pool), nil, nil, nil, service.DefaultStoreTimeout, log)

	var created, skipped int
	for _, input := range demoCatalog {
		_, err := catalog.CreateEV(ctx, input)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrAlreadyExists):
			skipped++
		default:
			return err
		}
	}

	log.Info("seed complete", slog.Int("created", created), slog.Int("skipped", skipped))
	return nil
}
