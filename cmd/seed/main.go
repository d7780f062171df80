// Command seed loads a catalog document into the database and optionally
// creates an admin account.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rpggio/stepwise/internal/config"
	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/sqlite"
)

func main() {
	var (
		dbPath        string
		catalogFile   string
		adminUsername string
		adminPassword string
		adminName     string
		dryRun        bool
	)
	flag.StringVar(&dbPath, "db", "", "database path (defaults to the configured db.path)")
	flag.StringVar(&catalogFile, "file", "", "YAML catalog document (defaults to the built-in starter catalog)")
	flag.StringVar(&adminUsername, "admin-username", "", "create an admin account with this username")
	flag.StringVar(&adminPassword, "admin-password", "", "password for the admin account")
	flag.StringVar(&adminName, "admin-name", "Administrator", "display name for the admin account")
	flag.BoolVar(&dryRun, "dry-run", false, "parse the catalog and print what would be seeded")
	flag.Parse()

	cfg, err := config.Read()
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}
	if dbPath == "" {
		dbPath = cfg.DB.Path
	}

	reqs, err := loadCatalog(catalogFile)
	if err != nil {
		fmt.Printf("load catalog: %v\n", err)
		os.Exit(1)
	}
	if dryRun {
		for _, req := range reqs {
			fmt.Printf("%s (%s, %s, %d steps)\n", req.Title, req.Category, req.Difficulty, len(req.Steps))
		}
		fmt.Printf("%d activities\n", len(reqs))
		return
	}

	db, err := sqlite.New(dbPath)
	if err != nil {
		fmt.Printf("open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		fmt.Printf("migrate: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	added, err := catalog.NewService(sqlite.NewCatalogRepository(db), nil).Seed(ctx, reqs)
	if err != nil {
		fmt.Printf("seed catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("catalog: %d added, %d already present\n", added, len(reqs)-added)

	if adminUsername == "" {
		return
	}
	verifier, err := account.VerifierForMode(cfg.Auth.PasswordMode)
	if err != nil {
		fmt.Printf("password mode: %v\n", err)
		os.Exit(1)
	}
	accounts := account.NewService(sqlite.NewUserRepository(db), verifier, nil)
	admin, err := accounts.Create(ctx, account.SignupRequest{
		Name:     adminName,
		Username: adminUsername,
		Password: adminPassword,
		Role:     account.RoleAdmin,
	})
	switch {
	case errors.Is(err, account.ErrUsernameTaken):
		fmt.Printf("admin %q already exists\n", adminUsername)
	case err != nil:
		fmt.Printf("create admin: %v\n", err)
		os.Exit(1)
	default:
		fmt.Printf("admin %q created (%s)\n", admin.Username, admin.ID)
	}
}

func loadCatalog(path string) ([]catalog.CreateRequest, error) {
	if path == "" {
		return catalog.StarterCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.ParseSeed(data)
}
