package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kompox/webstack/adapters/store/inmem"
	"github.com/kompox/webstack/adapters/store/rdb"
	"github.com/kompox/webstack/domain"
)

const defaultStatePath = rdb.DefaultPath

// buildOutputRepository opens the output store named by --state-url.
func buildOutputRepository(cmd *cobra.Command) (domain.OutputRepository, error) {
	url, _ := cmd.Flags().GetString("state-url")
	return openOutputRepository(cmd.Context(), url)
}

func openOutputRepository(ctx context.Context, url string) (domain.OutputRepository, error) {
	switch {
	case url == "memory:" || url == "":
		return inmem.NewOutputRepository(), nil
	case strings.HasPrefix(url, "sqlite:") || strings.HasPrefix(url, "sqlite3:"):
		db, err := rdb.Open(ctx, url)
		if err != nil {
			return nil, err
		}
		return rdb.NewOutputRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported state url: %s", url)
	}
}
