package entities

import "time"

type ProducerKnowledge struct {
	TechUse     string `json:"uso_tecnologia"`
	Irrigation  string `json:"manejo_riego"`
	Marketing   string `json:"comercializacion"`
	PestControl string `json:"control_plagas"`
}

type ProducerNeeds struct {
	Training      bool `json:"capacitacion"`
	Financing     bool `json:"financiamiento"`
	Technology    bool `json:"tecnologia"`
	Marketing     bool `json:"comercializacion"`
	Certification bool `json:"certificacion"`
}

type SocialLinks struct {
	Facebook string `json:"facebook"`
	WhatsApp string `json:"whatsapp"`
	Other    string `json:"otra"`
}

// Profile is the farmer profile shown in the reserved owner cell, stored
// under perfiles/{uid}.
type Profile struct {
	UID             string            `json:"uid"`
	Name            string            `json:"nombre"`
	Surname         string            `json:"apellidos"`
	ProducerType    string            `json:"tipo_productor"` // pequeno|mediano|grande|cooperativa|comunidad
	Age             string            `json:"edad"`
	Gender          string            `json:"genero"`
	Education       string            `json:"nivel_educacion"`
	YearsExperience string            `json:"anos_experiencia"`
	Association     string            `json:"asociacion"`
	Mobile          string            `json:"celular"`
	Email           string            `json:"email"`
	MainLocation    *GeoLocation      `json:"ubicacion_principal"`
	MainProducts    []string          `json:"productos_principales"`
	Certifications  []string          `json:"certificaciones"`
	Knowledge       ProducerKnowledge `json:"conocimientos"`
	Needs           ProducerNeeds     `json:"necesidades"`
	Social          SocialLinks       `json:"redes_sociales"`
	PushToken       string            `json:"fcm_token,omitempty"`
	UpdatedAt       time.Time         `json:"actualizado"`
}

// Region is the profile location used to match alerts.
func (p *Profile) Region() string {
	if p == nil || p.MainLocation == nil {
		return ""
	}
	return p.MainLocation.Department
}
