package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	_ "github.com/kompox/webstack/adapters/drivers/dns/azuredns"
	_ "github.com/kompox/webstack/adapters/drivers/dns/cloudflare"
	_ "github.com/kompox/webstack/adapters/drivers/provider/aks"
	_ "github.com/kompox/webstack/adapters/drivers/provider/local"
	"github.com/kompox/webstack/config/stackcfg"
	"github.com/kompox/webstack/internal/logging"
)

// envPrefix maps a persistent flag such as --log-format to WEBSTACK_LOG_FORMAT.
const envPrefix = "WEBSTACK_"

func flagEnvName(name string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// applyFlagEnv sets every flag of fs not given on the command line from its
// WEBSTACK_* variable. Only the root persistent flags are passed here;
// subcommand switches such as destroy --deprovision never come from the
// environment.
func applyFlagEnv(fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		if v, ok := os.LookupEnv(flagEnvName(f.Name)); ok && v != "" {
			if err := fs.Set(f.Name, v); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", flagEnvName(f.Name), err))
			}
		}
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var logFile *logging.LogFile
	cmd := &cobra.Command{
		Use:     "webstack",
		Short:   "Deploy a web application stack to a local or cloud Kubernetes cluster",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "webstack.yml", "Stored configuration file (env WEBSTACK_CONFIG)")
	pf.String("env-file", ".env", "Dotenv file loaded before reading overrides (env WEBSTACK_ENV_FILE)")
	pf.String("state-url", "sqlite:"+defaultStatePath, "Output store URL (memory: | sqlite:/path/to.db) (env WEBSTACK_STATE_URL)")
	pf.String("log-format", "human", "Log format (human|text|json) (env WEBSTACK_LOG_FORMAT)")
	pf.String("log-level", "INFO", "Log level (DEBUG|INFO|WARN|ERROR) (env WEBSTACK_LOG_LEVEL)")
	pf.String("log-output", "-", `Log output ("-" for stderr, "none", or a file path; empty selects a generated file) (env WEBSTACK_LOG_OUTPUT)`)
	pf.String("log-dir", ".webstack/logs", "Directory for generated and relative log files (env WEBSTACK_LOG_DIR)")
	pf.Int("log-retention-days", logging.DefaultRetentionDays, "Days to keep generated log files; negative keeps all (env WEBSTACK_LOG_RETENTION_DAYS)")
	pf.Duration("edge-timeout", defaultEdgeTimeout, "Maximum wait for the load balancer address (env WEBSTACK_EDGE_TIMEOUT)")

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		if err := applyFlagEnv(c.Root().PersistentFlags()); err != nil {
			return err
		}
		envFile, _ := c.Flags().GetString("env-file")
		if err := stackcfg.LoadDotenv(envFile, c.Flags().Changed("env-file")); err != nil {
			return err
		}

		format, _ := c.Flags().GetString("log-format")
		levelStr, _ := c.Flags().GetString("log-level")
		output, _ := c.Flags().GetString("log-output")
		dir, _ := c.Flags().GetString("log-dir")
		level, err := logging.ParseLevel(levelStr)
		if err != nil {
			return err
		}
		retention, _ := c.Flags().GetInt("log-retention-days")
		lf, err := logging.NewLogFile(&logging.LogConfig{Output: output, Dir: dir, RetentionDays: retention})
		if err != nil {
			return err
		}
		logFile = lf
		l, err := logging.NewWithWriter(format, level, lf.Writer())
		if err != nil {
			return err
		}
		l = l.With("runId", uuid.NewString())
		ctx := logging.WithLogger(c.Context(), l)
		if lf.Path != "" {
			l.Info(ctx, "command line", "args", os.Args)
		}
		c.SetContext(ctx)
		quietKlog()
		return nil
	}
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	}

	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdConfig())
	cmd.AddCommand(newCmdPlan())
	cmd.AddCommand(newCmdUp())
	cmd.AddCommand(newCmdDestroy())
	cmd.AddCommand(newCmdDNS())
	cmd.AddCommand(newCmdOutput())
	cmd.AddCommand(newCmdCluster())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
