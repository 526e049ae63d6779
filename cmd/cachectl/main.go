package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/medaverse/meda-api/service/persist"
	"github.com/medaverse/meda-api/service/persist/postgres"
)

var (
	kind      string
	all       bool
	apiURL    string
	adminPass string
	limit     int
)

func init() {
	cobra.OnInitialize(setDefaults)

	invalidateCmd.Flags().StringVarP(&kind, "kind", "k", "heroes", "token kind (heroes|weapons)")
	invalidateCmd.Flags().BoolVar(&all, "all", false, "invalidate every cached row of the kind")

	purgeCmd.Flags().StringVar(&apiURL, "api", "http://localhost:4000", "api base url")
	purgeCmd.Flags().StringVar(&adminPass, "admin-pass", "", "admin password (defaults to ADMIN_PASS)")
	purgeCmd.Flags().BoolVar(&all, "all", false, "purge every hot cache entry")

	errorsCmd.Flags().IntVarP(&limit, "limit", "n", 50, "max rows to list")

	rootCmd.AddCommand(invalidateCmd, purgeCmd, errorsCmd, resolveCmd)
}

func setDefaults() {
	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "")
	viper.SetDefault("POSTGRES_DB", "postgres")
	viper.SetDefault("ADMIN_PASS", "")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:   "cachectl",
	Short: "Operate the token and hot caches",
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate [bc_id...]",
	Short: "Flip is_valid off for cached token rows so the next read refetches from chain",
	Args: func(cmd *cobra.Command, args []string) error {
		if !all && len(args) == 0 {
			return fmt.Errorf("pass bc_ids or --all")
		}
		if kind != persist.TokenKindHeroes.String() && kind != persist.TokenKindWeapons.String() {
			return fmt.Errorf("unknown kind %q", kind)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pgx := postgres.MustCreatePgxClient()
		defer pgx.Close()

		var repo interface {
			Invalidate(ctx context.Context, ids []uint64) error
			InvalidateAll(ctx context.Context) error
		}
		if kind == persist.TokenKindHeroes.String() {
			repo = postgres.NewHeroTokenRepository(pgx)
		} else {
			repo = postgres.NewWeaponTokenRepository(pgx)
		}

		if all {
			if err := repo.InvalidateAll(ctx); err != nil {
				return err
			}
			fmt.Printf("invalidated all %s rows\n", kind)
			return nil
		}

		ids := make([]uint64, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseUint(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("bad bc_id %q: %w", arg, err)
			}
			ids = append(ids, id)
		}
		if err := repo.Invalidate(ctx, ids); err != nil {
			return err
		}
		fmt.Printf("invalidated %d %s rows\n", len(ids), kind)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge [wallet]",
	Short: "Purge the server's hot caches through the admin endpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"all": all}
		if len(args) == 1 {
			wallet, err := persist.ToAddress(args[0])
			if err != nil {
				return err
			}
			body["address"] = wallet.String()
		} else if !all {
			return fmt.Errorf("pass a wallet or --all")
		}

		return adminPost(apiURL+"/admin/cache/purge", body)
	},
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List unresolved cache errors",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db := postgres.MustCreateClient()
		defer db.Close()

		records, err := postgres.NewCacheErrorRepository(db).Unresolved(ctx, limit)
		if err != nil {
			return err
		}
		for _, r := range records {
			token := "-"
			if r.TokenID != nil {
				token = strconv.FormatUint(*r.TokenID, 10)
			}
			fmt.Printf("%d\t%s\t%s\ttoken=%s\t%s\t%s\n", r.ID, r.ContractKind, r.ErrorType, token, r.CreatedAt.Format(time.RFC3339), r.Message)
		}
		fmt.Printf("%d unresolved\n", len(records))
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [id...]",
	Short: "Mark cache errors resolved",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("bad id %q: %w", arg, err)
			}
			ids = append(ids, id)
		}

		db := postgres.MustCreateClient()
		defer db.Close()

		if err := postgres.NewCacheErrorRepository(db).MarkResolved(ctx, ids); err != nil {
			return err
		}
		fmt.Printf("resolved %d errors\n", len(ids))
		return nil
	},
}

func adminPost(url string, body map[string]any) error {
	pass := adminPass
	if pass == "" {
		pass = viper.GetString("ADMIN_PASS")
	}

	bs, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", pass)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, out)
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
