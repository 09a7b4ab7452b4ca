package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/parley-chat/parley/pkg/attach"
	"github.com/parley-chat/parley/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		address       string
		historyLimit  int
		attachmentTTL time.Duration
		s3Bucket      string
		s3Prefix      string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat server",
		Long: `Run the chat server.

Serves the WebSocket endpoint on /ws, health on /healthz, and
Prometheus metrics on /metrics. Attachments live in memory unless an
S3 bucket is configured.

Examples:
  parley serve
  parley serve --address :9000
  parley serve --s3-bucket my-bucket --s3-prefix attachments/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), address, historyLimit, attachmentTTL, s3Bucket, s3Prefix)
		},
	}

	cmd.Flags().StringVarP(&address, "address", "a", ":8080", "Listen address")
	cmd.Flags().IntVar(&historyLimit, "history", 0, "Messages retained for replay (default 256)")
	cmd.Flags().DurationVar(&attachmentTTL, "attachment-ttl", 0, "How long attachments stay fetchable (default 1h)")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "Store attachments in this S3 bucket")
	cmd.Flags().StringVar(&s3Prefix, "s3-prefix", "attachments/", "Key prefix for S3 attachment objects")

	return cmd
}

func runServe(ctx context.Context, address string, historyLimit int, attachmentTTL time.Duration, s3Bucket, s3Prefix string) error {
	cfg := server.DefaultConfig()
	cfg.Address = address
	if historyLimit > 0 {
		cfg.HistoryLimit = historyLimit
	}
	if attachmentTTL > 0 {
		cfg.AttachmentTTL = attachmentTTL
	}
	cfg.Metrics = server.NewMetrics()

	if s3Bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		cfg.Store = attach.NewS3Store(s3.NewFromConfig(awsCfg), s3Bucket, s3Prefix, cfg.Limits.AttachmentMax)
		info("attachments stored in s3://%s/%s", s3Bucket, s3Prefix)
	}

	printBanner()
	fmt.Println()
	return server.New(cfg).Run()
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
