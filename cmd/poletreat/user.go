package main

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Spok95/poletreat/internal/auth"
	"github.com/Spok95/poletreat/internal/infra/db"
)

// userCmd creates a user or resets an existing one's password and role.
func userCmd() *cobra.Command {
	var login, password, fullName, role string
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create or update a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := auth.Role(role)
			switch r {
			case auth.RoleAdmin, auth.RoleClerk, auth.RoleAccountant:
			default:
				return fmt.Errorf("unknown role %q", role)
			}
			if login == "" || password == "" {
				return fmt.Errorf("--login and --password are required")
			}

			cfg, log, err := setup()
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			u, err := auth.NewUsers(pool).Upsert(cmd.Context(), login, password, fullName, r)
			if err != nil {
				return err
			}
			log.Info("user saved", "id", u.ID, "login", u.Login, "role", u.Role)

			if cfg.Redis.Addr != "" {
				rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
				defer func() { _ = rdb.Close() }()
				if err := auth.NewCachedStore(nil, rdb, log).Forget(cmd.Context(), u.ID); err != nil {
					log.Warn("cached principal not cleared", "id", u.ID, "err", err)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&login, "login", "", "login name")
	f.StringVar(&password, "password", "", "password")
	f.StringVar(&fullName, "name", "", "full name")
	f.StringVar(&role, "role", string(auth.RoleClerk), "admin, clerk or accountant")
	return cmd
}
