package system

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/internal/resource"
	redispkg "github.com/Alijeyrad/salon_storefront/pkg/redis"
	"github.com/Alijeyrad/salon_storefront/pkg/transport"
)

func NewCheckCommand() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate config and probe the backend and redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			fmt.Println("Config OK.")

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			t, err := transport.New(cfg.Backend, slog.Default())
			if err != nil {
				return fmt.Errorf("failed to build transport: %w", err)
			}
			salons, err := resource.New(t).ListPublishedSalons(ctx)
			if err != nil {
				return fmt.Errorf("backend %s unreachable: %w", cfg.Backend.BaseURL, err)
			}
			fmt.Printf("Backend OK, %d published salons.\n", len(salons))

			rdb, err := redispkg.NewRedisFromCentral(cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			if rdb == nil {
				fmt.Println("Redis disabled.")
				return nil
			}
			defer rdb.Close()
			fmt.Println("Redis OK.")
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Maximum time to wait for each probe")

	return cmd
}
