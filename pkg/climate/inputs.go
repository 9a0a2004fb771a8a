package climate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one crop read from a batch sheet.
type Row struct {
	Line  int       `json:"fila"`
	Name  string    `json:"nombre"`
	Input RiskInput `json:"entrada"`
}

// LoadInputs reads crop rows from a .csv or .xlsx file. The first row is the
// header; columns are matched by normalized name so exported sheets and hand
// written ones both load.
func LoadInputs(path string) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		x, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer x.Close()
		sheets := x.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		recs, err := x.GetRows(sheets[0])
		if err != nil {
			return nil, err
		}
		return parseRecords(recs)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ParseCSV(f)
	}
}

func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var recs [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	return parseRecords(recs)
}

func normHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF") // BOM
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

func parseRecords(recs [][]string) ([]Row, error) {
	if len(recs) == 0 {
		return nil, errors.New("empty sheet")
	}
	hmap := map[string]int{}
	for i, h := range recs[0] {
		hmap[normHeader(h)] = i
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[normHeader(k)]; ok {
				return idx
			}
		}
		return -1
	}

	cName := findAny("nombre", "name")
	cType := findAny("tipo", "cultivo", "crop")
	if cType == -1 {
		return nil, fmt.Errorf("missing crop type column, found headers: %v", recs[0])
	}
	cSoil := findAny("tipoSuelo", "suelo")
	cSun := findAny("exposicionSolar", "sol")
	cWater := findAny("fuenteAgua", "agua")
	cPlot := findAny("ubicacionParcela", "parcela")
	cAccess := findAny("accesibilidad")
	cDist := findAny("distancia_capital_km", "distancia")
	cAlt := findAny("altitud")
	cTransport := findAny("transporte_principal", "transporte")
	cRoutes := findAny("rutas_criticas", "rutas")
	cFreq := findAny("frecuencia_transporte", "frecuencia")
	cIrr := findAny("metodoRiego", "riego")
	cFert := findAny("tipoFertilizante", "fertilizante")

	var out []Row
	for i, rec := range recs[1:] {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		num := func(idx int) float64 {
			v, _ := strconv.ParseFloat(get(idx), 64)
			return v
		}
		if get(cType) == "" {
			continue
		}
		out = append(out, Row{
			Line: i + 2,
			Name: get(cName),
			Input: RiskInput{
				CropType:         get(cType),
				SoilType:         get(cSoil),
				SunExposure:      get(cSun),
				WaterSource:      get(cWater),
				PlotLocation:     get(cPlot),
				Accessibility:    get(cAccess),
				DistanceCapital:  num(cDist),
				Altitude:         num(cAlt),
				PrimaryTransport: get(cTransport),
				CriticalRoutes:   splitList(get(cRoutes)),
				Frequency:        get(cFreq),
				IrrigationType:   get(cIrr),
				FertilizerType:   get(cFert),
			},
		})
	}
	return out, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' }) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
