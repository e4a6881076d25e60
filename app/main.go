package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"example.com/lara-pickles/app/internal/config"
	"example.com/lara-pickles/app/internal/domain/access"
	domcart "example.com/lara-pickles/app/internal/domain/cart"
	domorder "example.com/lara-pickles/app/internal/domain/order"
	domproduct "example.com/lara-pickles/app/internal/domain/product"
	"example.com/lara-pickles/app/internal/infra/persistence/memory"
	"example.com/lara-pickles/app/internal/infra/persistence/seed"
	"example.com/lara-pickles/app/internal/infra/persistence/sqlstore"
	"example.com/lara-pickles/app/internal/infra/security"
	api "example.com/lara-pickles/app/internal/interface/http"
	cartuc "example.com/lara-pickles/app/internal/usecase/cart"
	checkoutuc "example.com/lara-pickles/app/internal/usecase/checkout"
	lookupuc "example.com/lara-pickles/app/internal/usecase/lookup"
	orderuc "example.com/lara-pickles/app/internal/usecase/order"
	productuc "example.com/lara-pickles/app/internal/usecase/product"
)

func main() {
	app := &cli.App{
		Name:  "lara-pickles",
		Usage: "pickle storefront backend",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			tokenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("lara-pickles failed")
	}
}

type repositories struct {
	products domproduct.Repository
	carts    domcart.Repository
	orders   domorder.Repository
	close    func() error
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memory.NewStore()
		return &repositories{
			products: store.Products(),
			carts:    store.Carts(),
			orders:   store.Orders(),
			close:    func() error { return nil },
		}, nil
	}

	dialect, err := sqlstore.ParseDialect(cfg.StoreDriver)
	if err != nil {
		return nil, err
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.DSN())
	if err != nil {
		return nil, err
	}
	store := sqlstore.NewStore(db, dialect)
	return &repositories{
		products: store.Products(),
		carts:    store.Carts(),
		orders:   store.Orders(),
		close:    store.Close,
	}, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := cfg.NewLogger()
			if cfg.UsesDevSecret() {
				log.Warn("no LARA_IDP_JWT_SECRET set, using the development secret")
			}

			repos, err := openRepositories(c.Context, cfg)
			if err != nil {
				return err
			}
			defer repos.close()

			if cfg.SeedCatalog {
				if _, err := seed.Catalog(c.Context, repos.products, log); err != nil {
					return err
				}
			}

			sessions := access.ContextSession{}
			router := api.NewAPI(api.Dependencies{
				ProductService: productuc.NewService(repos.products, sessions, log),
				CartService:    cartuc.NewService(repos.carts, repos.products, sessions, log),
				CheckoutService: checkoutuc.NewService(repos.carts, repos.products, repos.orders, sessions, log,
					checkoutuc.WithPrecision(cfg.CurrencyPrecision)),
				OrderService:  orderuc.NewService(repos.orders, repos.products, sessions, log),
				LookupService: lookupuc.NewService(repos.orders, sessions, log),
				TokenVerifier: security.NewJWTService(cfg.IDPJWTSecret, cfg.IDPIssuer, time.Hour),
				Logger:        log,
				Precision:     cfg.CurrencyPrecision,
			}).Router()

			srv := &http.Server{
				Addr:              ":" + cfg.AppPort,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			return runServer(srv, cfg.ShutdownTimeout, log)
		},
	}
}

func runServer(srv *http.Server, shutdownTimeout time.Duration, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	killSignalChan := make(chan os.Signal, 1)
	signal.Notify(killSignalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(killSignalChan)

	select {
	case err := <-errCh:
		return err
	case sig := <-killSignalChan:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func migrateCommand() *cli.Command {
	run := func(c *cli.Context, up bool) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := cfg.NewLogger()
		if cfg.StoreDriver == config.DriverMemory {
			return errors.New("migrations need LARA_STORE_DRIVER=mysql or postgres")
		}

		dialect, err := sqlstore.ParseDialect(cfg.StoreDriver)
		if err != nil {
			return err
		}
		db, err := sqlstore.Open(c.Context, dialect, cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if up {
			err = sqlstore.MigrateUp(db, dialect)
		} else {
			err = sqlstore.MigrateDown(db, dialect, c.Int("steps"))
		}
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"dialect": dialect, "up": up}).Info("migrations applied")
		return nil
	}

	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back SQL schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Action: func(c *cli.Context) error { return run(c, true) },
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error { return run(c, false) },
			},
		},
	}
}

// tokenCommand mints a token signed with the configured secret, standing in
// for the identity provider during local development.
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "print a development identity token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true},
			&cli.StringFlag{Name: "role", Value: string(access.RoleCustomer)},
			&cli.StringFlag{Name: "email"},
			&cli.StringFlag{Name: "phone"},
			&cli.StringFlag{Name: "name"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			role, err := access.ParseRole(c.String("role"))
			if err != nil {
				return err
			}
			token, err := security.NewJWTService(cfg.IDPJWTSecret, cfg.IDPIssuer, c.Duration("ttl")).GenerateToken(&access.Identity{
				Subject: c.String("subject"),
				Email:   c.String("email"),
				Phone:   c.String("phone"),
				Name:    c.String("name"),
				Role:    role,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}
