/*
This is free and unencumbered software released into the public domain. For more
information, see <http://unlicense.org/> or the accompanying UNLICENSE file.
*/

package chart

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/iand/pedigree/canvas"
	"github.com/iand/pedigree/gedcom"
	"github.com/iand/pedigree/layout"
	"github.com/iand/pedigree/logging"
	"github.com/iand/pedigree/render/emf"
	"github.com/iand/pedigree/render/svg"
)

var treeopts struct {
	gedcomFile     string
	person         string
	generations    int
	format         string
	outputFilename string
	boxWidth       string
	units          string
	dpi            float64
}

var Command = &cli.Command{
	Name:   "tree",
	Usage:  "Render an ancestor tree chart for a person.",
	Action: treeCmd,
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:        "gedcom",
			Aliases:     []string{"g", "input"},
			Usage:       "GEDCOM file to read from",
			Destination: &treeopts.gedcomFile,
		},
		&cli.StringFlag{
			Name:        "person",
			Usage:       "identifier or name of the person to build the tree from",
			Destination: &treeopts.person,
		},
		&cli.IntFlag{
			Name:        "gen",
			Usage:       "number of ancestor generations to draw, including the person",
			Value:       4,
			Destination: &treeopts.generations,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "output format, svg or emf",
			Value:       "svg",
			Destination: &treeopts.format,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output image filename",
			Destination: &treeopts.outputFilename,
		},
		&cli.StringFlag{
			Name:        "box-width",
			Usage:       "width of each person box, e.g. 1.5in or 40mm",
			Destination: &treeopts.boxWidth,
		},
		&cli.StringFlag{
			Name:        "units",
			Usage:       "unit for svg coordinates (pt, in, cm, mm, px)",
			Value:       "in",
			Destination: &treeopts.units,
		},
		&cli.Float64Flag{
			Name:        "dpi",
			Usage:       "device resolution for emf output",
			Value:       300,
			Destination: &treeopts.dpi,
		},
	}, logging.Flags...),
}

func treeCmd(cc *cli.Context) error {
	logging.Setup()

	g, err := gedcom.Load(treeopts.gedcomFile)
	if err != nil {
		return fmt.Errorf("load gedcom: %w", err)
	}

	p, ok := g.FindPerson(treeopts.person)
	if !ok {
		return fmt.Errorf("person %q not found", treeopts.person)
	}
	if logging.Opts.VeryVerbose {
		logging.Dump(p)
	}

	opts := layout.DefaultOptions()
	opts.Generations = treeopts.generations
	if treeopts.boxWidth != "" {
		w, err := canvas.ParseLength(treeopts.boxWidth)
		if err != nil {
			return fmt.Errorf("box width: %w", err)
		}
		opts.BoxWidth = w
	}

	ch, err := layout.Ancestors(g, p.ID, opts)
	if err != nil {
		return fmt.Errorf("layout tree: %w", err)
	}

	c := canvas.New()
	ch.Paint(c)
	c.Seal()

	var out []byte
	switch treeopts.format {
	case "svg":
		o := svg.DefaultOptions()
		o.Unit = canvas.Unit(treeopts.units)
		out, err = svg.Render(c, o)
	case "emf":
		out, err = emf.Render(c, emf.Options{DPI: treeopts.dpi})
	default:
		return fmt.Errorf("unsupported output format: %s", treeopts.format)
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}

	if treeopts.outputFilename != "" {
		if err := os.WriteFile(treeopts.outputFilename, out, 0o666); err != nil {
			return fmt.Errorf("failed writing output file: %w", err)
		}
		return nil
	}
	_, err = os.Stdout.Write(out)
	return err
}
