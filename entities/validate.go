package entities

import (
	"fmt"
	"strings"
)

var (
	CropTypes      = []string{"papa", "quinua", "maiz", "habas", "oca", "ulluco", "cebada", "trigo"}
	SupplierTypes  = []string{"semillas", "fertilizantes", "pesticidas", "herramientas", "maquinaria"}
	CustomerTypes  = []string{"mayorista", "minorista", "restaurante", "mercado_local", "exportacion"}
	WorkerRoles    = []string{"agricultor", "operador_maquinaria", "supervisor", "veterinario", "administrador"}
	WarehouseTypes = []string{"productos_agricolas", "semillas", "fertilizantes", "herramientas", "maquinaria"}
	ReservoirTypes = []string{"natural", "artificial", "pozo", "rio", "lago"}
)

type FieldError struct {
	Field   string `json:"campo"`
	Message string `json:"mensaje"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type checker struct{ errs ValidationErrors }

func (c *checker) add(field, msg string) { c.errs = append(c.errs, FieldError{field, msg}) }

func (c *checker) required(field, v string) {
	if strings.TrimSpace(v) == "" {
		c.add(field, "es obligatorio")
	}
}

func (c *checker) oneOf(field, v string, allowed []string) {
	for _, a := range allowed {
		if v == a {
			return
		}
	}
	c.add(field, fmt.Sprintf("valor %q no permitido", v))
}

// rating accepts 0 as "not rated".
func (c *checker) rating(field string, v int) {
	if v != 0 && (v < 1 || v > 5) {
		c.add(field, "debe estar entre 1 y 5")
	}
}

func (c *checker) percent(field string, v float64) {
	if v < 0 || v > 100 {
		c.add(field, "debe estar entre 0 y 100")
	}
}

func (c *checker) nonNegative(field string, v float64) {
	if v < 0 {
		c.add(field, "no puede ser negativo")
	}
}

// Validate checks the fields a saved entity must carry. It returns nil or a
// ValidationErrors value.
func Validate(e Entity) error {
	var c checker
	switch v := e.(type) {
	case Crop:
		c.required("nombre", v.Name)
		c.oneOf("tipo", v.Type, CropTypes)
		c.percent("salud", v.Health)
		c.percent("riesgClimatico", v.ClimateRisk)
		c.nonNegative("area", v.Area)
	case Supplier:
		c.required("nombre", v.Name)
		c.oneOf("tipo", v.Type, SupplierTypes)
		c.rating("confiabilidad", v.Reliability)
		for i, p := range v.Products {
			c.rating(fmt.Sprintf("productos[%d].calidad", i), p.Quality)
		}
	case Customer:
		c.required("nombre", v.Name)
		c.oneOf("tipo", v.Type, CustomerTypes)
		c.rating("calificacion", v.Rating)
	case Worker:
		c.required("nombre", v.Name)
		c.oneOf("rol", v.Role, WorkerRoles)
		c.rating("calificacion", v.Rating)
	case Warehouse:
		c.required("nombre", v.Name)
		c.oneOf("tipo", v.Type, WarehouseTypes)
		c.nonNegative("capacidad_total", v.TotalCapacity)
	case Reservoir:
		c.required("nombre", v.Name)
		c.oneOf("tipo", v.Type, ReservoirTypes)
		c.percent("nivel_actual", v.CurrentLevel)
		c.nonNegative("capacidad", v.Capacity)
	case nil:
		c.add("datos", "es obligatorio")
	}
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}
