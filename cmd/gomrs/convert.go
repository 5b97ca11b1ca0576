package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/delph-in/gomrs/codec"
	"github.com/delph-in/gomrs/config"
	"github.com/delph-in/gomrs/corpus"
)

func convertCmd(cfg func() *config.Config) *cobra.Command {
	var (
		from   string
		to     string
		indent bool
		watch  bool
	)

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert graphs between serialization formats",
		Long: `Convert reads graphs from the given files (glob patterns with **
are supported), re-encodes them in the target format, and writes the
result to stdout, one graph per block.

The source codec is chosen by file extension unless --from forces one;
the target codec defaults to the configured format.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := to
			if target == "" {
				target = cfg().Format
			}
			enc := codec.DefaultRegistry.ByName(target)
			if enc == nil {
				return fmt.Errorf("unknown target format %q (available: %s)",
					target, strings.Join(codec.DefaultRegistry.Names(), ", "))
			}

			var forced codec.Codec
			if from != "" {
				forced = codec.DefaultRegistry.ByName(from)
				if forced == nil {
					return fmt.Errorf("unknown source format %q (available: %s)",
						from, strings.Join(codec.DefaultRegistry.Names(), ", "))
				}
			}

			opts := &codec.Options{Indent: indent}
			if !watch {
				return convertOnce(cmd.OutOrStdout(), args, forced, enc, opts)
			}
			return convertWatch(cmd.Context(), cmd.OutOrStdout(), args, forced, enc, opts)
		},
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "Force the source format instead of selecting by extension")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Target format (default: configured format)")
	cmd.Flags().BoolVar(&indent, "indent", false, "Pretty-print the output")
	cmd.Flags().BoolVar(&watch, "watch", false, "Watch the given directories and convert files as they change")

	return cmd
}

// convertOnce reads the patterns one time and writes every converted
// graph to stdout. Items that failed to decode are reported and make
// the run fail after the remaining items were written.
func convertOnce(out io.Writer, patterns []string, forced codec.Codec, enc codec.Codec, opts *codec.Options) error {
	reader := corpus.NewReader(nil, nil)
	items, err := reader.ReadWith(patterns, forced)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.Err != nil {
			continue
		}
		data, err := enc.Encode(item.Graph, opts)
		if err != nil {
			return fmt.Errorf("encode %s: %w", item.Path, err)
		}
		fmt.Fprintln(out, string(data))
	}

	if failed := corpus.Errors(items); len(failed) > 0 {
		return fmt.Errorf("%d of %d items failed to decode", len(failed), len(items))
	}
	return nil
}

// convertWatch watches each named directory and converts files on
// create and modify until interrupted.
func convertWatch(ctx context.Context, out io.Writer, dirs []string, forced codec.Codec, enc codec.Codec, opts *codec.Options) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	extensions := watchExtensions(forced)
	for _, dir := range dirs {
		w, err := corpus.NewWatcher(dir, extensions, 500*time.Millisecond, nil)
		if err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		defer w.Stop()

		go func(w *corpus.Watcher) {
			for event := range w.Events() {
				if event.Operation == corpus.OpDelete {
					continue
				}
				if err := convertOnce(out, []string{event.Path}, forced, enc, opts); err != nil {
					slog.Warn("conversion failed", "path", event.Path, "error", err)
				}
			}
		}(w)
	}

	slog.Info("watching for changes", "dirs", strings.Join(dirs, ", "))
	<-ctx.Done()
	return nil
}

// watchExtensions lists the file extensions worth watching: the forced
// codec's when one is set, otherwise every registered extension.
func watchExtensions(forced codec.Codec) []string {
	if forced != nil {
		return forced.Extensions()
	}
	var exts []string
	for _, name := range codec.DefaultRegistry.Names() {
		exts = append(exts, codec.DefaultRegistry.ByName(name).Extensions()...)
	}
	return exts
}
