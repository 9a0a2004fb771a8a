package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"waira/pkg/climate"
)

type riskResult struct {
	Line       int                `json:"fila,omitempty"`
	Name       string             `json:"nombre,omitempty"`
	Assessment climate.Assessment `json:"evaluacion"`
}

func riskCmd(c *cli) *cobra.Command {
	var (
		file string
		in   climate.RiskInput
	)
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Score crop risk for one crop or a .csv/.xlsx batch",
		Example: `  wairactl risk --tipo oca --suelo arcilloso --agua lejos
  wairactl risk --file cultivos.xlsx --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := climate.DefaultTable()
			var results []riskResult
			if file != "" {
				rows, err := climate.LoadInputs(file)
				if err != nil {
					return fmt.Errorf("load %s: %w", file, err)
				}
				for _, r := range rows {
					results = append(results, riskResult{Line: r.Line, Name: r.Name, Assessment: table.Assess(r.Input)})
				}
				c.log.Debug("risk batch", zap.String("file", file), zap.Int("rows", len(rows)))
			} else {
				if in.CropType == "" {
					return fmt.Errorf("--tipo or --file is required")
				}
				results = append(results, riskResult{Assessment: table.Assess(in)})
			}

			if c.asJSON {
				return printJSON(cmd.OutOrStdout(), results)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILA\tNOMBRE\tNIVEL\tPUNTAJE\tFACTORES")
			for _, r := range results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\n", r.Line, r.Name, r.Assessment.Level, r.Assessment.Score, strings.Join(r.Assessment.Fired, ","))
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.StringVar(&file, "file", "", "batch of crops (.csv or .xlsx, header row required)")
	f.BoolVar(&c.asJSON, "json", false, "print JSON")
	f.StringVar(&in.CropType, "tipo", "", "crop type")
	f.StringVar(&in.SoilType, "suelo", "", "soil type")
	f.StringVar(&in.SunExposure, "sol", "", "sun exposure")
	f.StringVar(&in.WaterSource, "agua", "", "water source")
	f.StringVar(&in.PlotLocation, "parcela", "", "plot location")
	f.StringVar(&in.Accessibility, "accesibilidad", "", "road accessibility")
	f.Float64Var(&in.DistanceCapital, "distancia", 0, "distance to the capital in km")
	f.Float64Var(&in.Altitude, "altitud", 0, "altitude in meters")
	f.StringVar(&in.PrimaryTransport, "transporte", "", "primary transport")
	f.StringSliceVar(&in.CriticalRoutes, "ruta", nil, "critical route (repeatable)")
	f.StringVar(&in.Frequency, "frecuencia", "", "transport frequency")
	f.StringVar(&in.IrrigationType, "riego", "", "irrigation method")
	f.StringVar(&in.FertilizerType, "fertilizante", "", "fertilizer type")
	return cmd
}
