package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k1nky/pachca-client/internal/pachca"
)

var uploadFlags struct {
	name  string
	image bool
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file and print its key",
	Long: `Upload a local file to Pachca storage and print the key and size that
can be referenced from a message.

Examples:
  pachca upload build.log
  pachca upload chart.png --image --name "Weekly chart.png"`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadFlags.name, "name", "", "Display name (default: base name of path)")
	uploadCmd.Flags().BoolVar(&uploadFlags.image, "image", false, "Upload as an image")
}

func runUpload(cmd *cobra.Command, args []string) error {
	typ := pachca.FileTypeFile
	if uploadFlags.image {
		typ = pachca.FileTypeImage
	}
	f := pachca.NewFile(args[0], uploadFlags.name, typ)

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.api.UploadFile(cmd.Context(), f); err != nil {
		return describeError("uploading file", err)
	}
	printOut(cmd, formatUploadOutput(f, globalFlags.json))
	return nil
}

func formatUploadOutput(f *pachca.File, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(map[string]any{
			"key":       f.Key,
			"name":      f.Name,
			"file_type": f.Type,
			"size":      f.Size,
		})
	}
	return fmt.Sprintf("✓ Uploaded %s (%d bytes)\n  key: %s\n", f.Name, f.Size, f.Key)
}
