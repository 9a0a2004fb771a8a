package entities

type Accessibility string

const (
	AccessExcellent Accessibility = "excelente"
	AccessGood      Accessibility = "buena"
	AccessRegular   Accessibility = "regular"
	AccessDifficult Accessibility = "dificil"
)

type TransportMode string

const (
	TransportOwnVehicle  TransportMode = "vehiculo_propio"
	TransportContracted  TransportMode = "contratado"
	TransportCooperative TransportMode = "cooperativa"
	TransportPublic      TransportMode = "publico"
	TransportMixed       TransportMode = "mixto"
)

type TransportFrequency string

const (
	FrequencyDaily    TransportFrequency = "diario"
	FrequencyWeekly   TransportFrequency = "semanal"
	FrequencyBiweekly TransportFrequency = "quincenal"
	FrequencyMonthly  TransportFrequency = "mensual"
	FrequencyOnDemand TransportFrequency = "por_demanda"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeoLocation is shared by every farm entity. Nothing here is validated;
// forms mark fields as required only on the client.
type GeoLocation struct {
	Department      string        `json:"departamento"`
	Province        string        `json:"provincia"`
	District        string        `json:"distrito"`
	Coordinates     *Coordinates  `json:"coordenadas,omitempty"`
	Altitude        *int          `json:"altitud,omitempty"` // meters
	GeoFeatures     []string      `json:"caracteristicas_geograficas"`
	Accessibility   Accessibility `json:"accesibilidad"`
	MainRoads       []string      `json:"carreteras_principales"`
	DistanceCapital float64       `json:"distancia_capital_km"`
	Climate         string        `json:"clima,omitempty"`
	Temperature     string        `json:"temperatura,omitempty"`
	Precipitation   string        `json:"precipitacion,omitempty"`
}

type Mobility struct {
	PrimaryTransport TransportMode      `json:"transporte_principal"`
	Vehicles         []string           `json:"vehiculos_disponibles"`
	LoadCapacityKg   float64            `json:"capacidad_carga_kg"`
	Frequency        TransportFrequency `json:"frecuencia_transporte"`
	CriticalRoutes   []string           `json:"rutas_criticas"`
	BackupTransport  string             `json:"backup_transporte"`
	MonthlyCost      float64            `json:"costos_transporte_mes"`
}

type Contact struct {
	Phone   string `json:"telefono"`
	Email   string `json:"email,omitempty"`
	Address string `json:"direccion"`
}

type Position struct {
	Row    int `json:"fila"`
	Column int `json:"columna"`
}
