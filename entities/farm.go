package entities

import "math"

// Entity is the payload a populated cell carries. The set of implementations
// is closed: only the six farm kinds below satisfy it.
type Entity interface {
	Kind() CellType
	// Subtype is the entity's own category, persisted as the cell's subtipo.
	Subtype() string
	entity()
}

type Crop struct {
	ID                 string      `json:"id"`
	Name               string      `json:"nombre"`
	Type               string      `json:"tipo"` // papa|quinua|maiz|habas|oca|ulluco|cebada|trigo
	Variety            string      `json:"variedad"`
	PlantingDate       string      `json:"fechaPlantacion"`
	HarvestDate        string      `json:"fechaCosechaEstimada"`
	Area               float64     `json:"area"` // hectares
	GrowthStage        string      `json:"etapaCrecimiento"`
	Health             float64     `json:"salud"`          // 0-100
	ClimateRisk        float64     `json:"riesgClimatico"` // 0-100
	EstimatedYield     float64     `json:"rendimientoEstimado"`
	InvestmentCost     float64     `json:"costoInversion"`
	Position           Position    `json:"posicion"`
	Notes              string      `json:"notas"`
	Location           GeoLocation `json:"ubicacion"`
	Mobility           Mobility    `json:"movilidad"`
	TargetMarkets      []string    `json:"mercados_destino"`
	CriticalDependency []string    `json:"dependencias_criticas"`

	SoilType       string `json:"tipoSuelo,omitempty"`
	SunExposure    string `json:"exposicionSolar,omitempty"`
	WaterSource    string `json:"fuenteAgua,omitempty"`
	PlotLocation   string `json:"ubicacionParcela,omitempty"`
	IrrigationType string `json:"metodoRiego,omitempty"`
	FertilizerType string `json:"tipoFertilizante,omitempty"`
	RiskLevel      string `json:"nivelRiesgo,omitempty"`
}

type SupplierProduct struct {
	Name    string  `json:"nombre"`
	Price   float64 `json:"precio"`
	Unit    string  `json:"unidad"`
	Quality int     `json:"calidad"` // 1-5
}

type Supplier struct {
	ID              string            `json:"id"`
	Name            string            `json:"nombre"`
	Type            string            `json:"tipo"` // semillas|fertilizantes|pesticidas|herramientas|maquinaria
	Contact         Contact           `json:"contacto"`
	Products        []SupplierProduct `json:"productos"`
	Reliability     int               `json:"confiabilidad"` // 1-5
	DeliveryTime    string            `json:"tiempoEntrega"`
	Position        Position          `json:"posicion"`
	Location        GeoLocation       `json:"ubicacion"`
	Mobility        Mobility          `json:"movilidad"`
	CoverageZones   []string          `json:"zonas_cobertura"`
	BackupSuppliers []string          `json:"backup_proveedores"`
}

type PurchasedProduct struct {
	Name       string  `json:"nombre"`
	QuantityKg float64 `json:"cantidad_kg"`
	PricePerKg float64 `json:"precio_kg"`
	Frequency  string  `json:"frecuencia,omitempty"`
	Selected   bool    `json:"seleccionado"`
}

type Customer struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"nombre"`
	Type                 string             `json:"tipo"` // mayorista|minorista|restaurante|mercado_local|exportacion
	Contact              Contact            `json:"contacto"`
	ProductsOfInterest   []string           `json:"productos_interes"`
	Purchases            []PurchasedProduct `json:"productos_compra"`
	Frequency            string             `json:"frecuencia"`
	Rating               int                `json:"calificacion"` // 1-5
	Position             Position           `json:"posicion"`
	Location             GeoLocation        `json:"ubicacion"`
	Mobility             Mobility           `json:"movilidad"`
	DistributionChannels []string           `json:"canales_distribucion"`
	AlternativeCustomers []string           `json:"clientes_alternativos"`
}

// PurchaseVolumeKg sums cantidad_kg over the purchase list; a nil list is zero.
func (c Customer) PurchaseVolumeKg() float64 {
	total := 0.0
	for _, p := range c.Purchases {
		total += p.QuantityKg
	}
	return total
}

type Worker struct {
	ID                 string      `json:"id"`
	Name               string      `json:"nombre"`
	Surname            string      `json:"apellidos"`
	Role               string      `json:"rol"` // agricultor|operador_maquinaria|supervisor|veterinario|administrador
	Specialty          string      `json:"especialidad"`
	Experience         int         `json:"experiencia"` // years
	Salary             float64     `json:"salario"`
	Contact            Contact     `json:"contacto"`
	Skills             []string    `json:"habilidades"`
	Availability       string      `json:"disponibilidad"` // tiempo_completo|medio_tiempo|temporal
	Rating             int         `json:"calificacion"`
	Position           Position    `json:"posicion"`
	Location           GeoLocation `json:"ubicacion"`
	Mobility           Mobility    `json:"movilidad"`
	GeographicCoverage []string    `json:"cobertura_geografica"`
	BackupWorkers      []string    `json:"trabajadores_backup"`
}

type InventoryItem struct {
	Name               string  `json:"nombre"`
	Quantity           float64 `json:"cantidad"`
	Unit               string  `json:"unidad"`
	IntakeDate         string  `json:"fecha_ingreso"`
	ExpiryDate         string  `json:"fecha_vencimiento,omitempty"`
	Value              float64 `json:"valor"`
	HectaresCorrespond float64 `json:"hectareas_correspondientes"`
	Origin             string  `json:"origen"`
}

// unitWeightKg is the weight assumed for one item counted in units rather
// than kg or litres.
const unitWeightKg = 50

// CapacityLoad is how much of a warehouse's capacity the item takes.
func (it InventoryItem) CapacityLoad() float64 {
	if it.Unit == "kg" || it.Unit == "litros" {
		return it.Quantity
	}
	return it.Quantity * unitWeightKg
}

type Warehouse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"nombre"`
	Type               string          `json:"tipo"` // productos_agricolas|semillas|fertilizantes|herramientas|maquinaria
	TotalCapacity      float64         `json:"capacidad_total"`
	UsedCapacity       float64         `json:"capacidad_usada"`
	TemperatureControl bool            `json:"temperatura_control"`
	HumidityControl    bool            `json:"humedad_control"`
	Items              []InventoryItem `json:"items"`
	Position           Position        `json:"posicion"`
	Location           GeoLocation     `json:"ubicacion"`
	Mobility           Mobility        `json:"movilidad"`
	BackupWarehouses   []string        `json:"almacenes_backup"`
	DistributionRoutes []string        `json:"rutas_distribucion"`
}

type Reservoir struct {
	ID                  string      `json:"id"`
	Name                string      `json:"nombre"`
	Type                string      `json:"tipo"`         // natural|artificial|pozo|rio|lago
	Capacity            float64     `json:"capacidad"`    // liters
	CurrentLevel        float64     `json:"nivel_actual"` // percent
	WaterQuality        string      `json:"calidad_agua"`
	IrrigationSystems   []string    `json:"sistemas_riego"`
	MaintenanceCost     float64     `json:"costo_mantenimiento"`
	Position            Position    `json:"posicion"`
	Location            GeoLocation `json:"ubicacion"`
	DistributionNetwork []string    `json:"red_distribucion"`
	BackupSources       []string    `json:"fuentes_backup"`
	WaterTransport      string      `json:"transporte_agua"` // gravedad|bombeo|mixto
}

func (Crop) Kind() CellType      { return CellCrop }
func (Supplier) Kind() CellType  { return CellSupplier }
func (Customer) Kind() CellType  { return CellCustomer }
func (Worker) Kind() CellType    { return CellWorker }
func (Warehouse) Kind() CellType { return CellWarehouse }
func (Reservoir) Kind() CellType { return CellReservoir }

func (c Crop) Subtype() string      { return c.Type }
func (s Supplier) Subtype() string  { return s.Type }
func (c Customer) Subtype() string  { return c.Type }
func (w Worker) Subtype() string    { return w.Role }
func (w Warehouse) Subtype() string { return w.Type }
func (r Reservoir) Subtype() string { return r.Type }

func (Crop) entity()      {}
func (Supplier) entity()  {}
func (Customer) entity()  {}
func (Worker) entity()    {}
func (Warehouse) entity() {}
func (Reservoir) entity() {}

// UsagePct is the share of capacity in use, capped at 100 and rounded.
func (w Warehouse) UsagePct() int {
	if w.TotalCapacity <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(w.UsedCapacity/w.TotalCapacity*100)))
}

// AddItem appends it and books its load against the used capacity.
func (w *Warehouse) AddItem(it InventoryItem) {
	w.Items = append(w.Items, it)
	w.UsedCapacity += it.CapacityLoad()
}

// RemoveItem drops the item at idx and releases its load.
func (w *Warehouse) RemoveItem(idx int) (InventoryItem, bool) {
	if idx < 0 || idx >= len(w.Items) {
		return InventoryItem{}, false
	}
	it := w.Items[idx]
	w.Items = append(w.Items[:idx:idx], w.Items[idx+1:]...)
	w.UsedCapacity -= it.CapacityLoad()
	return it, true
}
