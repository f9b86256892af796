package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/presentation/graph"
	"github.com/aretw0/intake/internal/presentation/tui"
	"github.com/aretw0/intake/pkg/domain"
)

var formCmd = &cobra.Command{
	Use:   "form [file]",
	Short: "Validate and describe a form definition",
	Long: `Loads a form definition (the argument, --form, FORM_FILE, or the built-in
kitchen form), validates it and prints its questions. With --mermaid the
dialogue is printed as a Mermaid flowchart instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.FormFile
		if len(args) == 1 {
			path = args[0]
		}

		form := domain.DefaultForm()
		if path != "" {
			def, err := config.LoadForm(path)
			if err != nil {
				return err
			}
			form = def.Form
		}

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			fmt.Print(graph.GenerateMermaid(form, nil))
			return nil
		}

		render := tui.Renderer(tui.PlainRenderer)
		if cli.IsTerminal(os.Stdout) {
			render = tui.NewRenderer()
		}
		out, err := render(tui.FormMarkdown(form))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formCmd)
	formCmd.Flags().Bool("mermaid", false, "Print the dialogue as a Mermaid flowchart")
}
