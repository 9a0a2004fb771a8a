package config

import (
	"errors"
	"fmt"
)

func oneOf(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s: %q is not one of %v", name, v, allowed)
}

// Validate rejects combinations the app cannot start with.
func (c AppConfig) Validate() error {
	var errs []error
	errs = append(errs,
		oneOf("STORE_BACKEND", c.StoreBackend, StoreSQLite, StoreFirestore),
		oneOf("AUTH_MODE", c.AuthMode, AuthDev, AuthFirebase),
		oneOf("NOTIFIER", c.Notifier, NotifierLog, NotifierFCM),
	)
	l := c.Layout
	if l.Rows <= 0 || l.Cols <= 0 {
		errs = append(errs, fmt.Errorf("GRID_ROWS/GRID_COLS must be positive, got %dx%d", l.Rows, l.Cols))
	} else if !l.Contains(l.OwnerRow, l.OwnerCol) {
		errs = append(errs, fmt.Errorf("OWNER_ROW/OWNER_COL (%d,%d) outside the grid", l.OwnerRow, l.OwnerCol))
	}
	if c.AuthMode == AuthFirebase && c.FirebaseAPIKey == "" {
		errs = append(errs, errors.New("AUTH_MODE=firebase needs FIREBASE_API_KEY"))
	}
	if c.UsesFirebase() && c.FirebaseProjectID == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required for firestore, firebase auth or fcm"))
	}
	return errors.Join(errs...)
}
