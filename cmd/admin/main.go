package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"sunday-market/internal/core/config"
	"sunday-market/internal/core/database"
	"sunday-market/internal/core/logger"
	"sunday-market/internal/domain"
	"sunday-market/internal/repo"
	"sunday-market/internal/service"
)

type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func main() {
	_ = godotenv.Load()
	var e env
	var cleanup func()

	app := &cli.App{
		Name:  "market-admin",
		Usage: "maintenance tasks for the Sunday Market database",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"CONFIG_PATH"}, Usage: "config file"},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			e.cfg = cfg
			e.log, cleanup = logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
			e.db, err = database.NewGorm(database.Opts{
				Driver:   cfg.DB.Driver,
				DSN:      cfg.DB.DSN,
				Username: cfg.DB.Username,
				Password: cfg.DB.Password,
				LogLevel: cfg.DB.LogLevel,
				Writer:   logger.ToStdLogger(e.log.Named("gorm"), zapcore.InfoLevel),
			})
			return err
		},
		After: func(*cli.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update the tables",
				Action: func(*cli.Context) error {
					if err := database.Migrate(e.db); err != nil {
						return err
					}
					e.log.Info("migrate done")
					return nil
				},
			},
			{
				Name:  "create-user",
				Usage: "create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"MARKET_PASSWORD"}},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
					&cli.StringFlag{Name: "shop-name"},
					&cli.StringFlag{Name: "role", Value: domain.RoleBuyer.String(), Usage: "AdminUser, Seller or Buyer"},
				},
				Action: func(c *cli.Context) error {
					role, err := domain.ParseRole(c.String("role"))
					if err != nil {
						return err
					}
					u, err := service.NewSessions(repo.NewUserRepo(e.db), e.log).CreateUser(c.Context, service.NewUser{
						FirstName: c.String("first-name"),
						LastName:  c.String("last-name"),
						Email:     c.String("email"),
						Password:  c.String("password"),
						ShopName:  c.String("shop-name"),
						Role:      role,
					})
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "created %s (%s) as %s\n", u.Email, u.Slug, u.Role)
					return nil
				},
			},
			{
				Name:      "set-role",
				Usage:     "change an account's role",
				ArgsUsage: "<email> <role>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: set-role <email> <role>", 2)
					}
					role, err := domain.ParseRole(c.Args().Get(1))
					if err != nil {
						return err
					}
					u, err := service.NewSessions(repo.NewUserRepo(e.db), e.log).SetRole(c.Context, c.Args().Get(0), role)
					if errors.Is(err, domain.ErrNotFound) {
						return cli.Exit("no account with that email", 1)
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%s is now %s\n", u.Email, u.Role)
					return nil
				},
			},
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
