package entities

import "time"

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "critica"
	SeverityHigh     AlertSeverity = "alta"
	SeverityMedium   AlertSeverity = "media"
	SeverityLow      AlertSeverity = "baja"
	SeverityInfo     AlertSeverity = "informativa"
)

type AlertContact struct {
	Phone string `json:"telefono,omitempty"`
	Email string `json:"email,omitempty"`
	Web   string `json:"web,omitempty"`
}

// Alert is a climate or supply notice. Relevance is computed per request
// against the caller's profile and never persisted.
type Alert struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	Title           string        `json:"titulo"`
	Description     string        `json:"descripcion"`
	Category        string        `json:"categoria" gorm:"index"` // climatica|suministro|precios|infraestructura|normativa|mercado
	Severity        AlertSeverity `json:"severidad" gorm:"index"`
	Location        string        `json:"ubicacion"`
	ExpiresAt       *time.Time    `json:"fechaVencimiento,omitempty"`
	Source          string        `json:"fuente"`
	SourceURL       string        `json:"fuenteURL,omitempty" gorm:"index"`
	Impact          []string      `gorm:"serializer:json" json:"impacto"`
	Recommendations []string      `gorm:"serializer:json" json:"recomendaciones"`
	AffectedCrops   []string      `gorm:"serializer:json" json:"cultivosAfectados,omitempty"`
	Contact         *AlertContact `gorm:"serializer:json" json:"contacto,omitempty"`
	Active          bool          `json:"activa"`
	Verified        bool          `json:"verificada"`
	FromWeb         bool          `json:"esWeb"`
	CreatedAt       time.Time     `json:"fechaCreacion"`

	Relevance int `gorm:"-" json:"relevancia"`
}
