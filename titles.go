package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/xiaoyuanzhu-com/comix/config"
	"github.com/xiaoyuanzhu-com/comix/library"
	"github.com/xiaoyuanzhu-com/comix/log"
)

func newTitlesCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "titles",
		Short: "Index the collection and print its titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			index, err := library.Build(library.Config{
				Root:   cfg.Basics.Directory,
				Logger: log.GetLogger("library").Level(zerolog.WarnLevel),
			})
			if err != nil {
				return err
			}
			return writeTitles(cmd.OutOrStdout(), index)
		},
	}
}

// writeTitles prints one row per title, sorted by key
func writeTitles(w io.Writer, index *library.Index) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Key", "Title", "Issues", "Files", "Size"})

	for _, key := range index.Keys() {
		t, _ := index.Title(key)
		var size int64
		for _, path := range t.Files {
			if info, err := os.Stat(path); err == nil {
				size += info.Size()
			}
		}
		tw.AppendRow(table.Row{
			key,
			t.DisplayTitle,
			strconv.Itoa(t.IssueCount),
			strconv.Itoa(len(t.Files)),
			humanize.Bytes(uint64(size)),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d titles", index.Len()), "", strconv.Itoa(index.Total()), ""})

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}
