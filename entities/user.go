package entities

import "time"

type UserSettings struct {
	AlertsEnabled bool   `json:"alertasActivadas"`
	DarkTheme     bool   `json:"temaOscuro"`
	Language      string `json:"idioma"` // es|en|pt|qu
}

type UserMetadata struct {
	LastAccess time.Time `json:"ultimoAcceso"`
	Devices    int       `json:"dispositivosConectados"`
	TimeZone   string    `json:"zonaHoraria"`
}

// User is the account record kept under usuarios/{uid}.
type User struct {
	ID           string       `json:"id,omitempty"`
	Name         string       `json:"nombre"`
	Surname      string       `json:"apellido"`
	Email        string       `json:"email"`
	RegisteredAt time.Time    `json:"fechaRegistro"`
	Kind         string       `json:"tipo"` // agricultor|tecnico|administrador
	Settings     UserSettings `json:"configuracion"`
	Metadata     UserMetadata `json:"metadata"`

	// RegisteredWith is "google" for federated sign-ups, empty otherwise.
	RegisteredWith string `json:"registradoCon,omitempty"`
}

// NewFarmerAccount returns the record written when a farmer registers.
func NewFarmerAccount(uid, name, surname, email, tz string, now time.Time) User {
	return User{
		ID:           uid,
		Name:         name,
		Surname:      surname,
		Email:        email,
		RegisteredAt: now,
		Kind:         "agricultor",
		Settings:     UserSettings{AlertsEnabled: true, DarkTheme: false, Language: "es"},
		Metadata:     UserMetadata{LastAccess: now, Devices: 1, TimeZone: tz},
	}
}
