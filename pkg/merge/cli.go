package merge

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/travigo/transmodel/pkg/model"
	"github.com/travigo/transmodel/pkg/snapshot"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "merge",
		Usage: "Combine snapshots into a single validated model",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a merge described by a YAML definition",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "definition",
						Usage:    "Path of the merge definition file",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					definition, err := LoadDefinition(c.String("definition"))
					if err != nil {
						return err
					}

					var sources []Source
					for _, sourceDefinition := range definition.Sources {
						collections, err := snapshot.ReadFile(sourceDefinition.Path)
						if err != nil {
							return err
						}

						validated, err := model.New(collections)
						if err != nil {
							return err
						}

						sources = append(sources, Source{
							Model: validated,
							Tag:   sourceDefinition.Tag,
						})

						log.Info().
							Str("path", sourceDefinition.Path).
							Str("tag", sourceDefinition.Tag).
							Msg("Loaded merge source")
					}

					merged, err := Merge(sources)
					if err != nil {
						return err
					}

					return snapshot.WriteFile(definition.OutputPath, merged)
				},
			},
		},
	}
}
