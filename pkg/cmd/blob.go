package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
)

var (
	blobCmd = &cobra.Command{
		Use:   "blob",
		Short: "Blob store related commands",
	}

	blobTypesCmd = &cobra.Command{
		Use:   "types",
		Short: "list all registered blob store types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered blob types:")
			for _, t := range blob.GetRegisteredTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), "   - "+string(t))
			}
		},
	}

	blobListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list stored audio files in the configured blob store",
		Aliases: []string{"ls", "l"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
			defer cancel()

			store, err := blob.New(ctx, &configs.GetConfig().Blob)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tSIZE\tMODIFIED")

			for _, i := range infos {
				fmt.Fprintf(w, "%s\t%d\t%s\n", i.Key, i.Size, i.ModTime.Format("2006-01-02 15:04:05"))
			}

			return w.Flush()
		},
	}
)

// registerBlobCommands 注册文件存储相关命令.
func registerBlobCommands() {
	rootCmd.AddCommand(blobCmd)
	blobCmd.AddCommand(blobTypesCmd, blobListCmd)
}
