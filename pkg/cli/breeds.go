package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/m-mizutani/whisker/pkg/model"
	"github.com/m-mizutani/whisker/pkg/usecase/discovery"
	"github.com/urfave/cli/v3"
)

func breedsCommand() *cli.Command {
	var (
		cfg    config
		format string
	)

	flags := []cli.Flag{formatFlag(&format)}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "breeds",
		Usage: "List all cat breeds",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setup(ctx, c)

			uc := discovery.New(cfg.newCatAPI())
			breeds, err := uc.LoadCatalog(ctx)
			if err != nil {
				return err
			}

			return writeOutput(c.Root().Writer, format, breeds, func() string {
				return renderBreedTable(breeds)
			})
		},
	}
}

func renderBreedTable(breeds []*model.Breed) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "ORIGIN", "TEMPERAMENT")
	for _, b := range breeds {
		t.Row(string(b.ID), b.Name, b.Origin, b.Temperament)
	}
	return t.Render() + fmt.Sprintf("\n%d breeds", len(breeds))
}
