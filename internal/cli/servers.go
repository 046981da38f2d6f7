package cli

import (
	"fmt"
	"io"
	"rustbot/internal/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func ServersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "servers",
		Short: "List the monitored servers",
		Long:  "Print the tracked BattleMetrics servers and the live message they are shown in, read from the monitor data file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			data, err := store.ReadMonitorFile(cfg.MonitorDataPath())
			if err != nil {
				return err
			}
			printServers(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func printServers(out io.Writer, data store.MonitorData) {

	label := color.New(color.Bold)
	muted := color.New(color.FgHiBlack)

	if data.Pointer.ChannelID == "" {
		fmt.Fprintf(out, "%s %s\n", label.Sprint("Channel:"), muted.Sprint("not set"))
	} else {
		fmt.Fprintf(out, "%s %s\n", label.Sprint("Channel:"), data.Pointer.ChannelID)
	}
	if data.Pointer.MessageID == "" {
		fmt.Fprintf(out, "%s %s\n", label.Sprint("Message:"), muted.Sprint("none"))
	} else {
		fmt.Fprintf(out, "%s %s\n", label.Sprint("Message:"), data.Pointer.MessageID)
	}

	if len(data.Entities) == 0 {
		fmt.Fprintln(out, muted.Sprint("No servers are monitored."))
		return
	}
	fmt.Fprintf(out, "%s\n", label.Sprintf("%d servers:", len(data.Entities)))
	for _, entity := range data.Entities {
		swatch := muted.Sprint("auto")
		if entity.Color != "" {
			swatch = color.New(color.FgCyan).Sprint(entity.Color)
		}
		description := ""
		if entity.ShowDescription {
			description = color.New(color.FgYellow).Sprint(" [description]")
		}
		fmt.Fprintf(out, "  %s  %s%s\n", color.New(color.FgHiGreen).Sprint(entity.ID), swatch, description)
	}
}
