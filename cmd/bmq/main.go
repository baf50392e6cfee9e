package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/willhoy/blazingmq/internal/blob"
	"github.com/willhoy/blazingmq/internal/compression"
	cfgpkg "github.com/willhoy/blazingmq/internal/config"
	"github.com/willhoy/blazingmq/internal/eventstore"
	"github.com/willhoy/blazingmq/internal/properties"
	"github.com/willhoy/blazingmq/internal/protocol"
	pebblestore "github.com/willhoy/blazingmq/internal/storage/pebble"
	logpkg "github.com/willhoy/blazingmq/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bmq",
		Short: "BlazingMQ wire tooling",
		Long:  "bmq inspects and archives PUT events of the broker wire protocol.",
	}
	rootCmd.PersistentFlags().String("config", os.Getenv("BMQ_CONFIG"), "Path to JSON config file")
	rootCmd.PersistentFlags().String("log-level", os.Getenv("BMQ_LOG_LEVEL"), "Log level: debug|info|warn|error")
	rootCmd.PersistentFlags().String("log-format", os.Getenv("BMQ_LOG_FORMAT"), "Log format: text|json")

	eventCmd := &cobra.Command{Use: "event", Short: "PUT event operations"}
	eventCmd.AddCommand(newDumpCmd(), newIngestCmd())
	rootCmd.AddCommand(eventCmd)
	return rootCmd
}

// loadSetup resolves config (file, env, flags) and builds the logger.
func loadSetup(cmd *cobra.Command) (cfgpkg.Config, logpkg.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, nil, err
	}
	cfgpkg.FromEnv(&cfg)
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}
	if err := cfg.Validate(); err != nil {
		return cfgpkg.Config{}, nil, err
	}

	level, err := logpkg.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logpkg.InfoLevel
	}
	var formatter logpkg.Formatter = &logpkg.TextFormatter{}
	if cfg.LogFormat == "json" {
		formatter = &logpkg.JSONFormatter{}
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(level),
		logpkg.WithFormatter(formatter),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	// Pebble logs through the standard library; keep one format.
	logpkg.RedirectStdLog(logger)
	return cfg, logger, nil
}

// loadEvent reads an event file into a segmented blob and decodes its
// header.
func loadEvent(cfg cfgpkg.Config, path string) (*blob.Blob, protocol.EventHeader, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, protocol.EventHeader{}, err
	}
	if len(raw) > cfg.MaxEventBytes {
		return nil, protocol.EventHeader{},
			fmt.Errorf("event file %s is %d bytes, limit %d", path, len(raw), cfg.MaxEventBytes)
	}
	b := blob.FromBytes(raw, cfg.SegmentSize)
	eh, err := protocol.DecodeEventHeader(b)
	if err != nil {
		return nil, protocol.EventHeader{}, err
	}
	return b, eh, nil
}

func policyFromFlag(decompress bool) compression.Policy {
	if decompress {
		return compression.DecompressAlways
	}
	return compression.DecompressNone
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Iterate a PUT event file and print its messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			logger = logger.WithComponent("dump")
			file, _ := cmd.Flags().GetString("file")
			decompress, _ := cmd.Flags().GetBool("decompress")

			b, eh, err := loadEvent(cfg, file)
			if err != nil {
				return err
			}
			logger.Debug("event loaded",
				logpkg.Str("file", file),
				logpkg.Int("bytes", b.Length()),
				logpkg.Int("segments", b.NumSegments()))

			it := protocol.NewPutMessageIterator(
				protocol.WithMaxDecompressedBytes(cfg.MaxDecompressedBytes))
			if err := it.Reset(b, eh, policyFromFlag(decompress)); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			index := 0
			for it.Next() == 1 {
				index++
				h := it.Header()
				fmt.Fprintf(out, "message %d: queue=%d guid=%s compression=%s\n",
					index, h.QueueID, h.GUID, h.Compression)
				fmt.Fprintf(out, "  appData=%dB properties=%dB payload=%dB options=%dB\n",
					it.ApplicationDataSize(), it.MessagePropertiesSize(),
					it.MessagePayloadSize(), it.OptionsSize())
				var id string
				if it.ExtractMsgGroupID(&id) {
					fmt.Fprintf(out, "  msgGroupId=%q\n", id)
				}
				if it.HasMessageProperties() && it.MessagePropertiesSize() > 0 {
					var mp properties.MessageProperties
					if err := it.LoadMessagePropertiesInto(&mp); err == nil {
						fmt.Fprintf(out, "  properties=%v\n", mp.Names())
					}
				}
			}
			if err := it.Err(); err != nil {
				logger.Error("invalid PUT event", logpkg.Err(err), logpkg.Int("messages", index))
				it.DumpBlob(cmd.ErrOrStderr())
				return err
			}
			fmt.Fprintf(out, "%d message(s), event length %dB\n", index, eh.TotalLength)
			return nil
		},
	}
	cmd.Flags().String("file", "", "PUT event file to read")
	cmd.Flags().Bool("decompress", false, "Decompress application data")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Iterate a PUT event file and archive its messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadSetup(cmd)
			if err != nil {
				return err
			}
			logger = logger.WithComponent("ingest")
			file, _ := cmd.Flags().GetString("file")
			decompress, _ := cmd.Flags().GetBool("decompress")
			if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
				cfg.DataDir = dir
			}
			if cfg.DataDir == "" {
				return fmt.Errorf("no data directory; pass --data-dir or set BMQ_DATA_DIR")
			}

			b, eh, err := loadEvent(cfg, file)
			if err != nil {
				return err
			}
			db, err := pebblestore.Open(pebblestore.Options{
				DataDir: cfg.DataDir,
				Fsync:   pebblestore.FsyncModeAlways,
			})
			if err != nil {
				return err
			}
			defer db.Close()

			it := protocol.NewPutMessageIterator(
				protocol.WithMaxDecompressedBytes(cfg.MaxDecompressedBytes))
			if err := it.Reset(b, eh, policyFromFlag(decompress)); err != nil {
				return err
			}
			n, err := eventstore.New(db).Archive(context.Background(), it)
			if err != nil {
				logger.Error("archive failed", logpkg.Err(err))
				it.DumpBlob(cmd.ErrOrStderr())
				return err
			}
			logger.Info("event archived",
				logpkg.Str("file", file),
				logpkg.Int("messages", n),
				logpkg.Str("dataDir", cfg.DataDir))
			return nil
		},
	}
	cmd.Flags().String("file", "", "PUT event file to read")
	cmd.Flags().String("data-dir", os.Getenv("BMQ_DATA_DIR"), "Archive directory")
	cmd.Flags().Bool("decompress", false, "Decompress application data before archiving")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
