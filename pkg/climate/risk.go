package climate

import (
	"encoding/json"
	"math"

	"waira/entities"
)

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// RiskInput is the flat set of crop form answers the scorer looks at. Keys
// match the crop wizard fields.
type RiskInput struct {
	CropType         string   `json:"tipo"`
	SoilType         string   `json:"tipoSuelo"`
	SunExposure      string   `json:"exposicionSolar"`
	WaterSource      string   `json:"fuenteAgua"`
	PlotLocation     string   `json:"ubicacionParcela"`
	Accessibility    string   `json:"accesibilidad"`
	DistanceCapital  float64  `json:"distancia_capital_km"`
	Altitude         float64  `json:"altitud"`
	PrimaryTransport string   `json:"transporte_principal"`
	CriticalRoutes   []string `json:"rutas_criticas"`
	Frequency        string   `json:"frecuencia_transporte"`
	IrrigationType   string   `json:"metodoRiego"`
	FertilizerType   string   `json:"tipoFertilizante"`
}

type Rule struct {
	Name    string
	Weight  float64
	Applies func(RiskInput) bool
}

// Table holds the crop base weights, the additive rules and the level
// thresholds.
type Table struct {
	Base        map[string]float64
	DefaultBase float64
	Rules       []Rule
	LowBelow    float64
	MediumBelow float64
}

func DefaultTable() Table {
	return Table{
		Base: map[string]float64{
			"papa": 0.3, "quinua": 0.1, "maiz": 0.2, "habas": 0.2,
			"oca": 0.4, "ulluco": 0.3, "cebada": 0.2, "trigo": 0.2,
		},
		DefaultBase: 0.3,
		Rules: []Rule{
			{"suelo_arcilloso", 0.2, func(in RiskInput) bool { return in.SoilType == "arcilloso" }},
			{"sol_parcial", 0.1, func(in RiskInput) bool { return in.SunExposure == "parcial" }},
			{"agua_lejos", 0.3, func(in RiskInput) bool { return in.WaterSource == "lejos" }},
			{"ladera", 0.2, func(in RiskInput) bool { return in.PlotLocation == "ladera" }},
			{"acceso_dificil", 0.3, func(in RiskInput) bool { return in.Accessibility == string(entities.AccessDifficult) }},
			{"lejos_capital", 0.2, func(in RiskInput) bool { return in.DistanceCapital > 200 }},
			{"gran_altitud", 0.2, func(in RiskInput) bool { return in.Altitude > 4000 }},
			{"transporte_publico", 0.2, func(in RiskInput) bool { return in.PrimaryTransport == string(entities.TransportPublic) }},
			{"ruta_unica", 0.3, func(in RiskInput) bool { return len(in.CriticalRoutes) == 1 }},
			{"transporte_mensual", 0.2, func(in RiskInput) bool { return in.Frequency == string(entities.FrequencyMonthly) }},
			{"riego_manual", 0.1, func(in RiskInput) bool { return in.IrrigationType == "manual" }},
			{"fertilizante_quimico", 0.1, func(in RiskInput) bool { return in.FertilizerType == "quimico" }},
		},
		LowBelow:    0.3,
		MediumBelow: 0.6,
	}
}

type Assessment struct {
	Score float64  `json:"puntaje"`
	Level Level    `json:"nivel"`
	Fired []string `json:"factores"`
}

func (t Table) Assess(in RiskInput) Assessment {
	score, ok := t.Base[in.CropType]
	if !ok {
		score = t.DefaultBase
	}
	fired := []string{}
	for _, r := range t.Rules {
		if r.Applies(in) {
			score += r.Weight
			fired = append(fired, r.Name)
		}
	}
	return Assessment{Score: score, Level: t.level(score), Fired: fired}
}

func (t Table) level(score float64) Level {
	switch {
	case score < t.LowBelow:
		return LevelLow
	case score < t.MediumBelow:
		return LevelMedium
	default:
		return LevelHigh
	}
}

var defaultTable = DefaultTable()

// Evaluate scores in against the default table.
func Evaluate(in RiskInput) Level { return defaultTable.Assess(in).Level }

func Assess(in RiskInput) Assessment { return defaultTable.Assess(in) }

// InputFromCrop maps a saved crop onto the scorer's flat input.
func InputFromCrop(c entities.Crop) RiskInput {
	in := RiskInput{
		CropType:         c.Type,
		SoilType:         c.SoilType,
		SunExposure:      c.SunExposure,
		WaterSource:      c.WaterSource,
		PlotLocation:     c.PlotLocation,
		Accessibility:    string(c.Location.Accessibility),
		DistanceCapital:  c.Location.DistanceCapital,
		PrimaryTransport: string(c.Mobility.PrimaryTransport),
		CriticalRoutes:   c.Mobility.CriticalRoutes,
		Frequency:        string(c.Mobility.Frequency),
		IrrigationType:   c.IrrigationType,
		FertilizerType:   c.FertilizerType,
	}
	if c.Location.Altitude != nil {
		in.Altitude = float64(*c.Location.Altitude)
	}
	return in
}

// InputFromFields reads the answers of a crop form that is still being
// filled. Flat keys win and the nested ubicacion and movilidad objects fill
// what they leave out. A value of the wrong shape counts as unanswered and
// does not affect the other keys.
func InputFromFields(fields map[string]any) RiskInput {
	var in RiskInput
	b, err := json.Marshal(fields)
	if err != nil {
		return in
	}
	_ = json.Unmarshal(b, &in)

	var nested struct {
		Location entities.GeoLocation `json:"ubicacion"`
		Mobility entities.Mobility    `json:"movilidad"`
	}
	_ = json.Unmarshal(b, &nested)
	loc, mob := nested.Location, nested.Mobility
	if in.Accessibility == "" {
		in.Accessibility = string(loc.Accessibility)
	}
	if in.DistanceCapital == 0 {
		in.DistanceCapital = loc.DistanceCapital
	}
	if in.Altitude == 0 && loc.Altitude != nil {
		in.Altitude = float64(*loc.Altitude)
	}
	if in.PrimaryTransport == "" {
		in.PrimaryTransport = string(mob.PrimaryTransport)
	}
	if in.CriticalRoutes == nil {
		in.CriticalRoutes = mob.CriticalRoutes
	}
	if in.Frequency == "" {
		in.Frequency = string(mob.Frequency)
	}
	return in
}

// Fill copies the answers a crop keeps under ubicacion and movilidad from in
// wherever the crop has none, so the saved crop scores like its form did.
func Fill(c entities.Crop, in RiskInput) entities.Crop {
	loc, mob := &c.Location, &c.Mobility
	if loc.Accessibility == "" {
		loc.Accessibility = entities.Accessibility(in.Accessibility)
	}
	if loc.DistanceCapital == 0 {
		loc.DistanceCapital = in.DistanceCapital
	}
	if loc.Altitude == nil && in.Altitude != 0 {
		a := int(math.Round(in.Altitude))
		loc.Altitude = &a
	}
	if mob.PrimaryTransport == "" {
		mob.PrimaryTransport = entities.TransportMode(in.PrimaryTransport)
	}
	if mob.CriticalRoutes == nil {
		mob.CriticalRoutes = in.CriticalRoutes
	}
	if mob.Frequency == "" {
		mob.Frequency = entities.TransportFrequency(in.Frequency)
	}
	return c
}

// Annotate stores the crop's computed risk level on it.
func Annotate(c entities.Crop) entities.Crop {
	c.RiskLevel = string(Assess(InputFromCrop(c)).Level)
	return c
}
