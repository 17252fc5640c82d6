package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/helixml/byteserve/application/service"
	"github.com/helixml/byteserve/domain/byterange"
	"github.com/helixml/byteserve/domain/download"
)

func rangesCmd() *cobra.Command {
	var length int64

	cmd := &cobra.Command{
		Use:   "ranges HEADER",
		Short: "Parse a Range header and show the response it would get",
		Long: `Parse a Range header value such as "bytes=0-499,-200" and print each range.

With --length the ranges are answered for a resource of that many bytes and
the resulting status and headers are printed.`,
		Example: `  byteserve ranges "bytes=100-"
  byteserve ranges "bytes=100-,-50" --length 1000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := byterange.ParseHeader(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printRanges(out, ranges)

			if !cmd.Flags().Changed("length") {
				return nil
			}
			if length < 0 {
				return fmt.Errorf("--length must not be negative")
			}

			resp, err := service.NewPartialDownload(nil).Respond(download.NewCursor(length), ranges)
			if err != nil {
				return err
			}
			printResponse(out, resp)
			return nil
		},
	}

	cmd.Flags().Int64Var(&length, "length", 0, "Resource length to answer the ranges for")

	return cmd
}

func printRanges(out io.Writer, ranges []byterange.ByteRange) {
	for i, r := range ranges {
		limit := "end"
		if l, ok := r.Limit(); ok {
			limit = fmt.Sprint(l)
		}
		kind := "range"
		switch {
		case r.IsSuffix():
			kind = "suffix"
		case r.IsOpenEnded():
			kind = "open"
		}
		_, _ = fmt.Fprintf(out, "%d: %s offset=%d limit=%s kind=%s\n", i, r, r.Offset(), limit, kind)
	}
}

func printResponse(out io.Writer, resp download.Response) {
	_, _ = fmt.Fprintf(out, "status: %d\n", resp.Status())

	header := resp.Header()
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(out, "%s: %s\n", k, header.Get(k))
	}
}
