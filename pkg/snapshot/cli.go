package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/travigo/transmodel/pkg/ctm"
	"github.com/travigo/transmodel/pkg/model"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "model",
		Usage: "Validate & transform transit model snapshots",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Check referential integrity of a snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the snapshot",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					collections, err := ReadFile(c.String("file"))
					if err != nil {
						return err
					}

					violations := collections.Validate()
					for _, violation := range violations {
						log.Error().
							Str("kind", string(violation.Kind)).
							Str("identifier", violation.Identifier).
							Str("field", violation.Field).
							Str("target", violation.TargetID).
							Msg("Integrity violation")
					}

					if len(violations) > 0 {
						return fmt.Errorf("snapshot has %d integrity violations", len(violations))
					}

					log.Info().Msg("Snapshot is valid")

					return nil
				},
			},
			{
				Name:  "filter",
				Usage: "Extract or remove the subgraph of selected networks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the input snapshot",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Usage:    "Path of the filtered snapshot",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "action",
						Usage: "Either extract or remove",
						Value: "extract",
					},
					&cli.StringSliceFlag{
						Name:  "network",
						Usage: "Network identifiers to filter on",
					},
					&cli.StringFlag{
						Name:  "expression",
						Usage: "Expression selecting networks, e.g. 'Name startsWith \"TG\"'",
					},
				},
				Action: func(c *cli.Context) error {
					collections, err := ReadFile(c.String("file"))
					if err != nil {
						return err
					}

					action := model.FilterAction(c.String("action"))

					if expression := c.String("expression"); expression != "" {
						err = collections.FilterNetworksExpr(action, expression)
					} else if networks := c.StringSlice("network"); len(networks) > 0 {
						err = collections.FilterNetworks(action, networks)
					} else {
						err = errors.New("either --network or --expression must be given")
					}
					if err != nil {
						return err
					}

					if err := collections.Sanitize(); err != nil {
						return err
					}

					validated, err := model.New(collections)
					if err != nil {
						return err
					}

					return WriteFile(c.String("output"), validated)
				},
			},
			{
				Name:  "restrict",
				Usage: "Restrict a snapshot to a validity period",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the input snapshot",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Usage:    "Path of the restricted snapshot",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "start",
						Usage:    "First day to keep (2006-01-02)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "end",
						Usage:    "Last day to keep (2006-01-02)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					start, err := time.Parse(ctm.DateFormat, c.String("start"))
					if err != nil {
						return err
					}
					end, err := time.Parse(ctm.DateFormat, c.String("end"))
					if err != nil {
						return err
					}

					collections, err := ReadFile(c.String("file"))
					if err != nil {
						return err
					}

					if err := collections.RestrictPeriod(start, end); err != nil {
						return err
					}
					if err := collections.Sanitize(); err != nil {
						return err
					}

					validated, err := model.New(collections)
					if err != nil {
						return err
					}

					return WriteFile(c.String("output"), validated)
				},
			},
			{
				Name:  "inspect",
				Usage: "Dump a single record from a snapshot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path of the snapshot",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "kind",
						Usage:    "Record kind, e.g. Line",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Record identifier",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					collections, err := ReadFile(c.String("file"))
					if err != nil {
						return err
					}

					record, found := lookup(collections, ctm.Kind(c.String("kind")), c.String("id"))
					if !found {
						return fmt.Errorf("no %s with identifier %s", c.String("kind"), c.String("id"))
					}

					pretty.Println(record)

					return nil
				},
			},
		},
	}
}

func lookup(collections *model.Collections, kind ctm.Kind, id string) (any, bool) {
	switch kind {
	case ctm.KindNetwork:
		return collections.Networks.GetByID(id)
	case ctm.KindCommercialMode:
		return collections.CommercialModes.GetByID(id)
	case ctm.KindPhysicalMode:
		return collections.PhysicalModes.GetByID(id)
	case ctm.KindCompany:
		return collections.Companies.GetByID(id)
	case ctm.KindContributor:
		return collections.Contributors.GetByID(id)
	case ctm.KindDataset:
		return collections.Datasets.GetByID(id)
	case ctm.KindLine:
		return collections.Lines.GetByID(id)
	case ctm.KindRoute:
		return collections.Routes.GetByID(id)
	case ctm.KindTrip:
		return collections.Trips.GetByID(id)
	case ctm.KindStopArea:
		return collections.StopAreas.GetByID(id)
	case ctm.KindStopPoint:
		return collections.StopPoints.GetByID(id)
	case ctm.KindCalendar:
		return collections.Calendars.GetByID(id)
	case ctm.KindComment:
		return collections.Comments.GetByID(id)
	case ctm.KindGeometry:
		return collections.Geometries.GetByID(id)
	case ctm.KindFareZone:
		return collections.FareZones.GetByID(id)
	case ctm.KindFareRule:
		return collections.FareRules.GetByID(id)
	}

	return nil, false
}
